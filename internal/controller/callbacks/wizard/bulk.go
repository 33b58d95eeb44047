package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"go.uber.org/zap"
)

// Render показывает экран мастера, соответствующий его состоянию
func Render(hc *common.HandlerContext, w *service.BulkScheduler) {
	view := w.View()
	if view.Phase == service.PhasePreviewing {
		hc.Show(common.BuildPreviewScreen(view, hc.Handler.Locale))
		return
	}
	hc.Show(common.BuildWizardScreen(view, hc.Handler.Locale))
}

// withWizard достаёт мастер чата или сообщает, что он закрыт
func withWizard(hc *common.HandlerContext, fn func(w *service.BulkScheduler)) {
	w, err := hc.Wizard()
	if err != nil {
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}
	fn(w)
}

// HandleShow возвращает к экрану редактирования
func HandleShow(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		hc.Answer("")
		Render(hc, w)
	})
}

// HandleSubject выбирает предмет учителя
func HandleSubject(hc *common.HandlerContext) {
	subjectID, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail("Parse subject", err)
		return
	}

	withWizard(hc, func(w *service.BulkScheduler) {
		if err := w.SelectSubject(subjectID); err != nil {
			hc.Fail("Select subject", err)
			return
		}
		hc.Answer("📚 Предмет выбран")
		Render(hc, w)
	})
}

// HandlePickSubject показывает список предметов выбранного учителя
func HandlePickSubject(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		view := w.View()
		if view.Form.TeacherID <= 0 {
			hc.AnswerAlert(common.ErrorMessage(service.ErrMissingTeacher))
			return
		}

		subjects := view.Subjects
		if subjects.Status == service.SubjectsFailed || subjects.TeacherID != view.Form.TeacherID {
			// Повторяем загрузку после сбоя
			var err error
			subjects, err = w.SelectTeacher(hc.Ctx, view.Form.TeacherID)
			if err != nil {
				hc.Fail("Reload subjects", err)
				return
			}
		}

		switch {
		case subjects.Status == service.SubjectsLoading:
			hc.Answer("⏳ Список предметов загружается")
		case len(subjects.Subjects) == 0:
			hc.AnswerAlert("ℹ️ У учителя нет предметов")
		default:
			hc.Answer("")
			hc.Show("📚 Выберите предмет:",
				common.BuildSubjectsKeyboard(subjects.Subjects, common.SchedSubject, common.SchedEdit))
		}
	})
}

// HandlePickMonth показывает выбор месяца
func HandlePickMonth(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		hc.Answer("")
		hc.Show("📅 Выберите месяц:", common.BuildMonthKeyboard(time.Now().In(hc.Handler.Location), hc.Handler.Locale))
	})
}

// HandleMonth выбирает месяц
func HandleMonth(hc *common.HandlerContext) {
	arg, err := common.ParseArgFromCallback(hc.Callback.Data)
	if err != nil {
		hc.Fail("Parse month", err)
		return
	}
	month, err := schedule.ParseMonth(arg)
	if err != nil {
		hc.Fail("Parse month", fmt.Errorf("%w: %w", common.ErrInvalidFormat, err))
		return
	}

	withWizard(hc, func(w *service.BulkScheduler) {
		if err := w.SetMonth(month); err != nil {
			hc.Fail("Set month", err)
			return
		}
		hc.Answer("📅 " + hc.Handler.Locale.MonthLabel(month))
		Render(hc, w)
	})
}

func parseWeekday(data string) (time.Weekday, error) {
	arg, err := common.ParseArgFromCallback(data)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < int(time.Sunday) || n > int(time.Saturday) {
		return 0, fmt.Errorf("%w: weekday %q", common.ErrInvalidFormat, arg)
	}
	return time.Weekday(n), nil
}

// HandleToggleWeekday переключает день недели
func HandleToggleWeekday(hc *common.HandlerContext) {
	wd, err := parseWeekday(hc.Callback.Data)
	if err != nil {
		hc.Fail("Parse weekday", err)
		return
	}

	withWizard(hc, func(w *service.BulkScheduler) {
		if err := w.ToggleWeekday(wd); err != nil {
			hc.Fail("Toggle weekday", err)
			return
		}
		hc.Answer("")
		Render(hc, w)
	})
}

// HandleWeekdayTime просит ввести время начала для дня недели
func HandleWeekdayTime(hc *common.HandlerContext) {
	wd, err := parseWeekday(hc.Callback.Data)
	if err != nil {
		hc.Fail("Parse weekday", err)
		return
	}

	withWizard(hc, func(w *service.BulkScheduler) {
		if w.Phase() != service.PhaseEditing {
			hc.AnswerAlert(common.ErrorMessage(service.ErrWrongPhase))
			return
		}
		hc.SetState(state.StateScheduleWeekdayTime)
		hc.SetData(state.KeyWeekday, wd)
		hc.Answer("")
		sendPrompt(hc, fmt.Sprintf("🕒 Введите время начала для дня «%s» в формате <b>ЧЧ:ММ</b> (например, 16:30):",
			hc.Handler.Locale.WeekdayName(wd)))
	})
}

// HandleAskStudent просит ввести ID студента
func HandleAskStudent(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		hc.SetState(state.StateScheduleStudentID)
		hc.Answer("")
		sendPrompt(hc, "👤 Введите ID студента:")
	})
}

// HandleAskTeacher просит ввести ID учителя
func HandleAskTeacher(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		hc.SetState(state.StateScheduleTeacherID)
		hc.Answer("")
		sendPrompt(hc, "👨‍🏫 Введите ID учителя:")
	})
}

// HandlePreview формирует черновик
func HandlePreview(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		draft, err := w.GeneratePreview()
		if err != nil {
			hc.Fail("Generate preview", err)
			Render(hc, w)
			return
		}

		if len(draft) == 0 {
			hc.AnswerAlert(common.BuildEmptyPreviewText(w.View(), hc.Handler.Locale))
			return
		}

		hc.Answer("")
		Render(hc, w)
	})
}

// HandleBackToEdit возвращает мастер к редактированию
func HandleBackToEdit(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		if err := w.BackToEdit(); err != nil {
			hc.Fail("Back to edit", err)
			return
		}
		hc.Answer("")
		Render(hc, w)
	})
}

// HandleConfirm отправляет черновик на бэкенд
func HandleConfirm(hc *common.HandlerContext) {
	withWizard(hc, func(w *service.BulkScheduler) {
		hc.Answer("⏳ Создаём занятия...")
		hc.Show("⏳ Создаём занятия...", nil)

		result, err := w.Confirm(hc.Ctx)
		if err != nil {
			if errors.Is(err, service.ErrWrongPhase) {
				hc.Handler.Logger.Debug("Confirm ignored", zap.Int64("chat_id", hc.ChatID), zap.Error(err))
				Render(hc, w)
				return
			}
			hc.Handler.Logger.Error("Bulk confirm failed", zap.Int64("chat_id", hc.ChatID), zap.Error(err))
			if sendErr := hc.SendMessage(common.ErrorMessage(err), nil); sendErr != nil {
				hc.Handler.Logger.Error("Failed to send message", zap.Error(sendErr))
			}
			Render(hc, w)
			return
		}

		hc.Handler.StateManager.CloseWizard(hc.ChatID)
		hc.Show(common.BuildBulkResultText(result), nil)
	})
}

// HandleCancel закрывает мастер
func HandleCancel(hc *common.HandlerContext) {
	hc.ClearState()
	hc.Answer("")
	hc.Show("❌ Планирование отменено.\n\nНачать заново: /schedule", nil)
}

func sendPrompt(hc *common.HandlerContext, text string) {
	if err := hc.SendMessage(text+"\n\nДля отмены используйте /cancel", nil); err != nil {
		hc.Handler.Logger.Error("Failed to send prompt",
			zap.Int64("chat_id", hc.ChatID),
			zap.Error(err))
	}
}
