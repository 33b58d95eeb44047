package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/schedule - Пакетное планирование занятий по подписке на месяц\n" +
	"/session - Создать одно занятие\n" +
	"/history - Последние отправки из этого чата\n" +
	"/cancel - Отменить текущую операцию\n" +
	"/help - Показать эту справку"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := "администратор"
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"👋 Привет, %s!\n\nЭтот бот помогает планировать занятия студентов по их подпискам.\n\n%s",
		html.EscapeString(name), helpText,
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога или мастера
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if !h.stateManager.ClearState(chatID) {
		h.sendMessage(ctx, b, chatID, "❌ Нет активных операций для отмены.")
		return
	}

	h.logger.Info("Operation canceled", zap.Int64("chat_id", chatID))
	h.sendMessage(ctx, b, chatID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleSchedule открывает мастер пакетного планирования
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	// Новый мастер заменяет любой открытый диалог
	h.stateManager.ClearState(chatID)
	wizard := h.newWizard(chatID)
	h.stateManager.OpenWizard(chatID, wizard)
	h.stateManager.SetState(chatID, state.StateScheduleStudentID)

	h.logger.Info("Bulk scheduler opened", zap.Int64("chat_id", chatID))

	h.showWizard(ctx, b, chatID, wizard)
	h.sendPrompt(ctx, b, chatID, "👤 Введите ID студента:")
}

// HandleSession начинает диалог создания одного занятия
func (h *Handlers) HandleSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	h.stateManager.ClearState(chatID)
	h.stateManager.SetState(chatID, state.StateSessionStudentID)
	h.stateManager.SetData(chatID, state.KeyRequestKey, uuid.NewString())

	h.logger.Info("Single session dialog started", zap.Int64("chat_id", chatID))

	h.sendPrompt(ctx, b, chatID, "📝 Новое занятие\n\nШаг 1 из 9: введите ID студента:")
}

// HandleHistory показывает последние отправки из чата
func (h *Handlers) HandleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if arg := commandArg(update.Message.Text); arg != "" {
		h.showSubmission(ctx, b, chatID, arg)
		return
	}

	submissions, err := h.history.ListRecentByChat(ctx, chatID, HistoryLimit)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, common.BuildHistoryText(submissions, h.location))
}

// showSubmission показывает одну отправку этого чата
func (h *Handlers) showSubmission(ctx context.Context, b *bot.Bot, chatID int64, arg string) {
	id, err := uuid.Parse(arg)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный ID отправки. Скопируйте его из /history.")
		return
	}

	submission, err := h.history.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load submission",
			zap.Int64("chat_id", chatID),
			zap.String("submission_id", id.String()),
			zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	// Чужие отправки не показываем
	if submission == nil || submission.ChatID != chatID {
		h.sendError(ctx, b, chatID, "❌ Отправка не найдена.")
		return
	}

	h.sendMessage(ctx, b, chatID, common.BuildSubmissionDetailText(submission, h.location))
}

// commandArg текст после команды: "/history abc" -> "abc"
func commandArg(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния чата
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	currentState := h.stateManager.GetState(chatID)

	h.logger.Debug("HandleTextMessage called",
		zap.Int64("chat_id", chatID),
		zap.String("state", string(currentState)))

	// Обрабатываем в зависимости от состояния
	switch currentState {
	case state.StateNone:
		h.logger.Debug("No active state, ignoring message", zap.Int64("chat_id", chatID))
	case state.StateScheduleStudentID:
		h.handleScheduleStudent(ctx, b, chatID, text)
	case state.StateScheduleTeacherID:
		h.handleScheduleTeacher(ctx, b, chatID, text)
	case state.StateScheduleWeekdayTime:
		h.handleScheduleWeekdayTime(ctx, b, chatID, text)
	case state.StateSessionStudentID:
		h.handleSessionStudent(ctx, b, chatID, text)
	case state.StateSessionTeacherID:
		h.handleSessionTeacher(ctx, b, chatID, text)
	case state.StateSessionTitle:
		h.handleSessionTitle(ctx, b, chatID, text)
	case state.StateSessionDate:
		h.handleSessionDate(ctx, b, chatID, text)
	case state.StateSessionStart:
		h.handleSessionStart(ctx, b, chatID, text)
	case state.StateSessionEnd:
		h.handleSessionEnd(ctx, b, chatID, text)
	case state.StateSessionLink:
		h.handleSessionLink(ctx, b, chatID, text)
	case state.StateSessionDescription:
		h.handleSessionDescription(ctx, b, chatID, text)
	case state.StateSessionNotes:
		h.handleSessionNotes(ctx, b, chatID, text)
	case state.StateSessionSubject, state.StateSessionConfirm:
		h.sendMessage(ctx, b, chatID, "👆 Используйте кнопки выше или /cancel")
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
	}
}
