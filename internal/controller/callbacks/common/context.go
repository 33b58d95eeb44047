package common

import (
	"context"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки callback
type HandlerContext struct {
	Ctx      context.Context
	Bot      *bot.Bot
	Callback *models.CallbackQuery
	Handler  *callbacktypes.Handler
	Message  *models.Message
	ChatID   int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	chatID := callback.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:      ctx,
		Bot:      b,
		Callback: callback,
		Handler:  h,
		Message:  msg,
		ChatID:   chatID,
	}
}

// Wizard возвращает открытый мастер планирования чата
func (hc *HandlerContext) Wizard() (*service.BulkScheduler, error) {
	wizard, ok := hc.Handler.StateManager.Wizard(hc.ChatID)
	if !ok {
		return nil, ErrNoWizard
	}
	return wizard, nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// Fail логирует ошибку и показывает пользователю её текст
func (hc *HandlerContext) Fail(action string, err error) {
	hc.Handler.Logger.Warn(action+" failed",
		zap.Int64("chat_id", hc.ChatID),
		zap.String("data", hc.Callback.Data),
		zap.Error(err))
	hc.AnswerAlert(ErrorMessage(err))
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, params)

	// Игнорируем ошибку "message is not modified" - это не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// Show редактирует сообщение и логирует неудачу
func (hc *HandlerContext) Show(text string, keyboard *models.InlineKeyboardMarkup) {
	if err := hc.EditMessage(text, keyboard); err != nil {
		hc.Handler.Logger.Error("Failed to edit message",
			zap.Int64("chat_id", hc.ChatID),
			zap.Error(err))
	}
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    hc.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := hc.Bot.SendMessage(hc.Ctx, params)
	return err
}

// ClearState очищает состояние чата и закрывает мастер
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.ChatID)
}

// SetState устанавливает состояние чата
func (hc *HandlerContext) SetState(s state.UserState) {
	hc.Handler.StateManager.SetState(hc.ChatID, s)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value any) {
	hc.Handler.StateManager.SetData(hc.ChatID, key, value)
}
