package handlers

// Ограничения формы одиночного занятия
const (
	SessionTitleMaxLength = 200
	SessionTextMaxLength  = 2000 // Описание и заметки

	// Сколько записей журнала показывать в /history
	HistoryLimit = 10
)
