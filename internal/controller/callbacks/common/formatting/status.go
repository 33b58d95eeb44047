package formatting

import "github.com/Freeeeeet/tutor_admin_bot/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetSubmissionStatusDisplay возвращает emoji и текст для статуса отправки
func GetSubmissionStatusDisplay(status model.SubmissionStatus) StatusDisplay {
	displays := map[model.SubmissionStatus]StatusDisplay{
		model.SubmissionStatusPending:   {"⏳", "Отправляется"},
		model.SubmissionStatusSucceeded: {"✅", "Создано"},
		model.SubmissionStatusFailed:    {"❌", "Ошибка"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetSubmissionKindText возвращает название вида отправки
func GetSubmissionKindText(kind model.SubmissionKind) string {
	switch kind {
	case model.SubmissionKindBulk:
		return "пакет"
	case model.SubmissionKindSingle:
		return "одиночное"
	default:
		return string(kind)
	}
}
