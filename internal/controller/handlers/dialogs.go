package handlers

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// handleSessionStudent шаг 1: ID студента
func (h *Handlers) handleSessionStudent(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	studentID, ok := common.ParseID(text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ ID студента должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(chatID, state.KeyStudentID, studentID)
	h.stateManager.SetState(chatID, state.StateSessionTeacherID)

	h.sendPrompt(ctx, b, chatID, fmt.Sprintf("✅ Студент: #%d\n\nШаг 2 из 9: введите ID учителя:", studentID))
}

// handleSessionTeacher шаг 2: ID учителя, затем выбор предмета кнопкой
func (h *Handlers) handleSessionTeacher(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	teacherID, ok := common.ParseID(text)
	if !ok {
		h.sendError(ctx, b, chatID, "❌ ID учителя должен быть положительным числом. Попробуйте ещё раз:")
		return
	}

	subjects, err := h.subjects.GetTeacherSubjects(ctx, teacherID)
	if err != nil {
		h.logger.Warn("Subjects lookup failed",
			zap.Int64("chat_id", chatID),
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nВведите ID учителя ещё раз:")
		return
	}

	if len(subjects) == 0 {
		h.sendError(ctx, b, chatID, "ℹ️ У учителя нет предметов. Введите другой ID учителя:")
		return
	}

	h.stateManager.SetData(chatID, state.KeyTeacherID, teacherID)
	h.stateManager.SetData(chatID, state.KeySubjects, subjects)
	h.stateManager.SetState(chatID, state.StateSessionSubject)

	h.sendScreen(ctx, b, chatID,
		fmt.Sprintf("✅ Учитель: #%d\n\nШаг 3 из 9: выберите предмет:", teacherID),
		common.BuildSubjectsKeyboard(subjects, common.SessionSubject, ""))
}

// handleSessionTitle шаг 4: название
func (h *Handlers) handleSessionTitle(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if text == "" {
		h.sendError(ctx, b, chatID, "❌ Название не может быть пустым. Попробуйте ещё раз:")
		return
	}
	if utf8.RuneCountInString(text) > SessionTitleMaxLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", SessionTitleMaxLength))
		return
	}

	h.stateManager.SetData(chatID, state.KeyTitle, text)
	h.stateManager.SetState(chatID, state.StateSessionDate)

	h.sendPrompt(ctx, b, chatID, "Шаг 5 из 9: введите дату занятия в формате <b>ДД.ММ.ГГГГ</b> или <b>ГГГГ-ММ-ДД</b>:")
}

// parseSessionDate принимает дату в формате ДД.ММ.ГГГГ или ГГГГ-ММ-ДД
func parseSessionDate(text string) (model.Date, error) {
	if t, err := time.Parse("02.01.2006", text); err == nil {
		return model.DateOf(t), nil
	}
	return model.ParseDate(text)
}

// handleSessionDate шаг 5: дата
func (h *Handlers) handleSessionDate(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	date, err := parseSessionDate(text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат даты. Например: 02.10.2026. Попробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(chatID, state.KeyDate, date.String())
	h.stateManager.SetState(chatID, state.StateSessionStart)

	h.sendPrompt(ctx, b, chatID, fmt.Sprintf("✅ Дата: %s (%s)\n\nШаг 6 из 9: введите время начала в формате <b>ЧЧ:ММ</b>:",
		date.String(), h.locale.WeekdayName(date.Weekday())))
}

// handleSessionStart шаг 6а: время начала
func (h *Handlers) handleSessionStart(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	start, err := model.ParseTimeOfDay(text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат времени! Используйте ЧЧ:ММ. Попробуйте ещё раз:")
		return
	}

	h.stateManager.SetData(chatID, state.KeyStart, start.String())
	h.stateManager.SetState(chatID, state.StateSessionEnd)

	h.sendPrompt(ctx, b, chatID, "Введите время окончания (ЧЧ:ММ):")
}

// handleSessionEnd шаг 6б: время окончания
func (h *Handlers) handleSessionEnd(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	end, err := model.ParseTimeOfDay(text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат времени! Используйте ЧЧ:ММ. Попробуйте ещё раз:")
		return
	}

	rawStart, _ := h.stateManager.GetString(chatID, state.KeyStart)
	start, _ := model.ParseTimeOfDay(rawStart)
	if !start.Before(end) {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Время окончания должно быть позже %s. Попробуйте ещё раз:", start))
		return
	}

	h.stateManager.SetData(chatID, state.KeyEnd, end.String())
	h.stateManager.SetState(chatID, state.StateSessionLink)

	h.sendScreen(ctx, b, chatID,
		"Шаг 7 из 9: отправьте ссылку на встречу или нажмите «Пропустить».",
		keyboard.NewBuilder().Row(keyboard.SkipButton(common.SessionSkipLink)).Build())
}

// handleSessionLink шаг 7: ссылка на встречу
func (h *Handlers) handleSessionLink(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.stateManager.SetData(chatID, state.KeyLink, text)

	in, _ := common.SingleSessionInputFromState(h.stateManager, chatID)
	if err := h.sessions.Validate(in); err != nil {
		// Ссылку можно ввести заново
		h.stateManager.SetData(chatID, state.KeyLink, "")
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nОтправьте ссылку ещё раз или нажмите «Пропустить».")
		return
	}

	h.stateManager.SetState(chatID, state.StateSessionDescription)

	screen, kb := common.SessionDescriptionScreen()
	h.sendScreen(ctx, b, chatID, screen, kb)
}

// handleSessionDescription шаг 8: описание
func (h *Handlers) handleSessionDescription(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if !h.acceptFreeText(ctx, b, chatID, text) {
		return
	}

	h.stateManager.SetData(chatID, state.KeyDescription, text)
	h.stateManager.SetState(chatID, state.StateSessionNotes)

	screen, kb := common.SessionNotesScreen()
	h.sendScreen(ctx, b, chatID, screen, kb)
}

// handleSessionNotes шаг 9: заметки, затем подтверждение
func (h *Handlers) handleSessionNotes(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if !h.acceptFreeText(ctx, b, chatID, text) {
		return
	}

	h.stateManager.SetData(chatID, state.KeyNotes, text)

	screen, kb := common.FinishSessionDialog(h.sessions, h.stateManager, chatID)
	h.sendScreen(ctx, b, chatID, screen, kb)
}

func (h *Handlers) acceptFreeText(ctx context.Context, b *bot.Bot, chatID int64, text string) bool {
	if utf8.RuneCountInString(text) <= SessionTextMaxLength {
		return true
	}
	h.sendError(ctx, b, chatID,
		fmt.Sprintf("❌ Слишком длинный текст. Максимум %d символов.\n\nПопробуйте ещё раз или нажмите «Пропустить».", SessionTextMaxLength))
	return false
}
