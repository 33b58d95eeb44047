package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// wizardOrReset возвращает мастер чата; если его нет, диалог сбрасывается
func (h *Handlers) wizardOrReset(ctx context.Context, b *bot.Bot, chatID int64) (*service.BulkScheduler, bool) {
	wizard, ok := h.stateManager.Wizard(chatID)
	if !ok {
		h.stateManager.ClearState(chatID)
		h.sendError(ctx, b, chatID, common.ErrorMessage(common.ErrNoWizard))
		return nil, false
	}
	return wizard, true
}

func (h *Handlers) showWizard(ctx context.Context, b *bot.Bot, chatID int64, wizard *service.BulkScheduler) {
	text, keyboard := common.BuildWizardScreen(wizard.View(), h.locale)
	h.sendScreen(ctx, b, chatID, text, keyboard)
}

// handleScheduleStudent обрабатывает ввод ID студента в мастере
func (h *Handlers) handleScheduleStudent(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	wizard, ok := h.wizardOrReset(ctx, b, chatID)
	if !ok {
		return
	}

	studentID, ok := common.ParseID(text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ ID студента должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	_, err := wizard.SelectStudent(ctx, studentID)
	if errors.Is(err, service.ErrSuperseded) {
		return
	}
	if errors.Is(err, service.ErrWrongPhase) {
		h.stateManager.SetState(chatID, state.StateNone)
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}
	if err != nil {
		// Ошибка загрузки видна на экране мастера, выбор студента сохранён
		h.logger.Warn("Student lookup failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	if wizard.View().Form.TeacherID <= 0 {
		h.stateManager.SetState(chatID, state.StateScheduleTeacherID)
		h.showWizard(ctx, b, chatID, wizard)
		h.sendPrompt(ctx, b, chatID, "👨‍🏫 Введите ID учителя:")
		return
	}

	h.stateManager.SetState(chatID, state.StateNone)
	h.showWizard(ctx, b, chatID, wizard)
}

// handleScheduleTeacher обрабатывает ввод ID учителя и предлагает выбрать предмет
func (h *Handlers) handleScheduleTeacher(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	wizard, ok := h.wizardOrReset(ctx, b, chatID)
	if !ok {
		return
	}

	teacherID, ok := common.ParseID(text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ ID учителя должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	subjects, err := wizard.SelectTeacher(ctx, teacherID)
	if errors.Is(err, service.ErrSuperseded) {
		return
	}

	h.stateManager.SetState(chatID, state.StateNone)

	if err != nil {
		h.logger.Warn("Subjects lookup failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		h.showWizard(ctx, b, chatID, wizard)
		return
	}

	if len(subjects.Subjects) == 0 {
		h.sendError(ctx, b, chatID, "ℹ️ У учителя нет предметов. Выберите другого учителя.")
		h.showWizard(ctx, b, chatID, wizard)
		return
	}

	h.sendScreen(ctx, b, chatID, "📚 Выберите предмет:",
		common.BuildSubjectsKeyboard(subjects.Subjects, common.SchedSubject, common.SchedEdit))
}

// handleScheduleWeekdayTime обрабатывает ввод времени начала для дня недели
func (h *Handlers) handleScheduleWeekdayTime(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	wizard, ok := h.wizardOrReset(ctx, b, chatID)
	if !ok {
		return
	}

	value, _ := h.stateManager.GetData(chatID, state.KeyWeekday)
	wd, ok := value.(time.Weekday)
	if !ok {
		h.logger.Error("Invalid weekday in state", zap.Any("data", value))
		h.stateManager.SetState(chatID, state.StateNone)
		h.showWizard(ctx, b, chatID, wizard)
		return
	}

	start, err := model.ParseTimeOfDay(text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат времени! Используйте ЧЧ:ММ (например, 09:30 или 14:45). Попробуйте ещё раз:")
		return
	}

	if err := wizard.SetWeekdayTime(wd, start); err != nil {
		h.stateManager.SetState(chatID, state.StateNone)
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.stateManager.SetState(chatID, state.StateNone)
	h.showWizard(ctx, b, chatID, wizard)
}
