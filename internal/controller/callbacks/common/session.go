package common

import (
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
)

// SingleSessionInputFromState собирает форму одиночного занятия из данных диалога
func SingleSessionInputFromState(sm *state.Manager, chatID int64) (service.SingleSessionInput, string) {
	var in service.SingleSessionInput

	in.StudentID, _ = sm.GetInt64(chatID, state.KeyStudentID)
	in.TeacherID, _ = sm.GetInt64(chatID, state.KeyTeacherID)
	in.SubjectID, _ = sm.GetInt64(chatID, state.KeySubjectID)
	in.Title, _ = sm.GetString(chatID, state.KeyTitle)
	in.SessionDate, _ = sm.GetString(chatID, state.KeyDate)
	in.StartTime, _ = sm.GetString(chatID, state.KeyStart)
	in.EndTime, _ = sm.GetString(chatID, state.KeyEnd)
	in.MeetingLink, _ = sm.GetString(chatID, state.KeyLink)
	in.Description, _ = sm.GetString(chatID, state.KeyDescription)
	in.Notes, _ = sm.GetString(chatID, state.KeyNotes)
	in.IdempotencyKey, _ = sm.GetString(chatID, state.KeyRequestKey)

	subjectName, _ := sm.GetString(chatID, state.KeySubjectName)
	return in, subjectName
}

// FindSubject ищет предмет в списке, сохранённом в данных диалога
func FindSubject(sm *state.Manager, chatID, subjectID int64) (model.Subject, bool) {
	value, ok := sm.GetData(chatID, state.KeySubjects)
	if !ok {
		return model.Subject{}, false
	}
	subjects, ok := value.([]model.Subject)
	if !ok {
		return model.Subject{}, false
	}
	for _, s := range subjects {
		if s.ID == subjectID {
			return s, true
		}
	}
	return model.Subject{}, false
}

// SessionDescriptionScreen шаг 8: необязательное описание
func SessionDescriptionScreen() (string, *models.InlineKeyboardMarkup) {
	return "Шаг 8 из 9: отправьте описание занятия или нажмите «Пропустить».",
		keyboard.NewBuilder().Row(keyboard.SkipButton(SessionSkipDesc)).Build()
}

// SessionNotesScreen шаг 9: необязательные заметки
func SessionNotesScreen() (string, *models.InlineKeyboardMarkup) {
	return "Шаг 9 из 9: отправьте заметки для учителя или нажмите «Пропустить».",
		keyboard.NewBuilder().Row(keyboard.SkipButton(SessionSkipNote)).Build()
}

// FinishSessionDialog проверяет собранную форму и переводит диалог к подтверждению.
// Если форма не проходит проверку, диалог закрывается.
func FinishSessionDialog(sessions *service.SingleSessionService, sm *state.Manager, chatID int64) (string, *models.InlineKeyboardMarkup) {
	in, subjectName := SingleSessionInputFromState(sm, chatID)
	if err := sessions.Validate(in); err != nil {
		sm.ClearState(chatID)
		return ErrorMessage(err) + "\n\nНачать заново: /session", nil
	}

	sm.SetState(chatID, state.StateSessionConfirm)
	return BuildSingleConfirmScreen(in, subjectName)
}
