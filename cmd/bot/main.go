package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/app"
	"github.com/Freeeeeet/tutor_admin_bot/internal/backend"
	"github.com/Freeeeeet/tutor_admin_bot/internal/config"
	"github.com/Freeeeeet/tutor_admin_bot/internal/controller"
	"github.com/Freeeeeet/tutor_admin_bot/internal/repository"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)

	defer logger.Sync()

	logger.Sugar().Infow("Starting tutor admin bot",
		"environment", cfg.Environment,
		"token_length", len(cfg.TelegramToken),
		"timezone", cfg.Location.String(),
		"locale", string(cfg.Locale))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	client := backend.NewClient(
		cfg.BackendBaseURL,
		cfg.BackendToken,
		backend.DefaultHTTPClient(cfg.BackendTimeout),
		logger,
	)
	submissions := repository.NewSubmissionRepository(pool, logger)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	botController := controller.NewBotController(b, client, submissions, submissions, controller.Options{
		Location:        cfg.Location,
		Locale:          cfg.Locale,
		DurationMinutes: cfg.SessionDuration,
	}, logger)

	if err := botController.RegisterHandlers(ctx); err != nil {
		return err
	}

	scheduler := app.NewScheduler(botController, cfg.DraftTTL, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	return botController.Start(ctx)
}
