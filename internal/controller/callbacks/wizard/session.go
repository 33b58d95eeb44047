package wizard

import (
	"errors"
	"html"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"go.uber.org/zap"
)

// HandleSessionSubject выбирает предмет одиночного занятия
func HandleSessionSubject(hc *common.HandlerContext) {
	sm := hc.Handler.StateManager
	if sm.GetState(hc.ChatID) != state.StateSessionSubject {
		hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
		return
	}

	subjectID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail("Parse subject", err)
		return
	}

	subject, ok := common.FindSubject(sm, hc.ChatID, subjectID)
	if !ok {
		hc.AnswerAlert(common.ErrorMessage(service.ErrUnknownSubject))
		return
	}

	hc.SetData(state.KeySubjectID, subject.ID)
	hc.SetData(state.KeySubjectName, subject.Name)
	hc.SetState(state.StateSessionTitle)

	hc.Answer("")
	hc.Show("📚 Предмет: "+html.EscapeString(subject.Name), nil)
	sendPrompt(hc, "🏷 Введите название занятия:")
}

// HandleSessionSkipLink пропускает ввод ссылки на встречу
func HandleSessionSkipLink(hc *common.HandlerContext) {
	sm := hc.Handler.StateManager
	if sm.GetState(hc.ChatID) != state.StateSessionLink {
		hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
		return
	}

	hc.SetData(state.KeyLink, "")
	hc.SetState(state.StateSessionDescription)

	hc.Answer("")
	hc.Show(common.SessionDescriptionScreen())
}

// HandleSessionSkipDescription пропускает описание
func HandleSessionSkipDescription(hc *common.HandlerContext) {
	sm := hc.Handler.StateManager
	if sm.GetState(hc.ChatID) != state.StateSessionDescription {
		hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
		return
	}

	hc.SetData(state.KeyDescription, "")
	hc.SetState(state.StateSessionNotes)

	hc.Answer("")
	hc.Show(common.SessionNotesScreen())
}

// HandleSessionSkipNotes пропускает заметки и показывает подтверждение
func HandleSessionSkipNotes(hc *common.HandlerContext) {
	sm := hc.Handler.StateManager
	if sm.GetState(hc.ChatID) != state.StateSessionNotes {
		hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
		return
	}

	hc.SetData(state.KeyNotes, "")

	hc.Answer("")
	hc.Show(common.FinishSessionDialog(hc.Handler.Sessions, sm, hc.ChatID))
}

// HandleSessionConfirm создаёт занятие
func HandleSessionConfirm(hc *common.HandlerContext) {
	sm := hc.Handler.StateManager
	if sm.GetState(hc.ChatID) != state.StateSessionConfirm {
		hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
		return
	}

	in, subjectName := common.SingleSessionInputFromState(sm, hc.ChatID)

	hc.Answer("⏳ Создаём занятие...")
	err := hc.Handler.Sessions.Create(hc.Ctx, hc.ChatID, in)
	if err != nil {
		hc.Handler.Logger.Warn("Single session not created",
			zap.Int64("chat_id", hc.ChatID),
			zap.Error(err))

		// Ошибки квоты и формы не исправить повтором: диалог закрывается
		var quotaErr *schedule.QuotaExceededError
		var inputErr *service.InputError
		if errors.As(err, &quotaErr) || errors.As(err, &inputErr) ||
			errors.Is(err, schedule.ErrNoActiveSubscription) || errors.Is(err, service.ErrEndNotAfterStart) {
			hc.ClearState()
			hc.Show(common.ErrorMessage(err)+"\n\nНачать заново: /session", nil)
			return
		}

		text, kb := common.BuildSingleConfirmScreen(in, subjectName)
		hc.Show(common.ErrorMessage(err)+"\n\n"+text, kb)
		return
	}

	hc.ClearState()
	hc.Show("✅ Занятие «"+html.EscapeString(in.Title)+"» создано на "+in.SessionDate+" "+in.StartTime, nil)
}

// HandleSessionCancel закрывает диалог одиночного занятия
func HandleSessionCancel(hc *common.HandlerContext) {
	hc.ClearState()
	hc.Answer("")
	hc.Show("❌ Создание занятия отменено.", nil)
}
