package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Options параметры планирования, общие для всех чатов
type Options struct {
	Location        *time.Location
	Locale          schedule.Locale
	DurationMinutes int
}

type BotController struct {
	bot             *bot.Bot
	stateManager    *state.Manager
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	backend service.Backend,
	journal service.Journal,
	history handlers.SubmissionHistory,
	opts Options,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	sessions := service.NewSingleSessionService(backend, journal, opts.Location, logger)

	newWizard := func(chatID int64) *service.BulkScheduler {
		return service.NewBulkScheduler(backend, journal, service.BulkOptions{
			ChatID:          chatID,
			Location:        opts.Location,
			Locale:          opts.Locale,
			DurationMinutes: opts.DurationMinutes,
		}, logger)
	}

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		stateManager,
		sessions,
		backend,
		history,
		newWizard,
		opts.Locale,
		opts.Location,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		stateManager,
		sessions,
		backend,
		opts.Locale,
		opts.Location,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		stateManager:    stateManager,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Регистрируем команды
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, c.handlers.HandleSchedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/session", bot.MatchTypeExact, c.handlers.HandleSession)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, c.handlers.HandleHistory)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "schedule", Description: "🗓 Запланировать занятия на месяц"},
		{Command: "session", Description: "📝 Создать одно занятие"},
		{Command: "history", Description: "🧾 Последние отправки"},
		{Command: "cancel", Description: "❌ Отменить текущую операцию"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// ReapIdle закрывает заброшенные мастера и диалоги и сообщает об этом в чаты
func (c *BotController) ReapIdle(ctx context.Context, ttl time.Duration) int {
	reaped := c.stateManager.ReapIdle(ttl)

	for _, chatID := range reaped {
		_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⌛ Черновик закрыт из-за неактивности. Начать заново: /schedule или /session",
		})
		if err != nil {
			c.logger.Warn("Failed to notify about closed draft",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	return len(reaped)
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
