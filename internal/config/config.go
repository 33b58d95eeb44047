package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string

	BackendBaseURL string
	BackendToken   string
	BackendTimeout time.Duration

	Location        *time.Location
	Locale          schedule.Locale
	SessionDuration int
	DraftTTL        time.Duration
	MigrationsDir   string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных окружения
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		DBDSN:          getenv("DB_DSN"),
		Environment:    getenv("ENV"),
		BackendBaseURL: getenv("BACKEND_BASE_URL"),
		BackendToken:   getenv("BACKEND_TOKEN"),
		MigrationsDir:  getenv("MIGRATIONS_DIR"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	// Проверяем обязательные поля
	var errs []error
	if cfg.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required but not set"))
	}
	if cfg.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required but not set"))
	}
	if cfg.BackendBaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required but not set"))
	}

	var err error

	if cfg.BackendTimeout, err = durationOr(getenv("BACKEND_TIMEOUT"), 10*time.Second); err != nil {
		errs = append(errs, fmt.Errorf("BACKEND_TIMEOUT: %w", err))
	}
	if cfg.DraftTTL, err = durationOr(getenv("DRAFT_TTL"), 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("DRAFT_TTL: %w", err))
	}

	tz := getenv("TIMEZONE")
	if tz == "" {
		tz = "Europe/Moscow"
	}
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	locale := getenv("LOCALE")
	if locale == "" {
		locale = string(schedule.LocaleRU)
	}
	if cfg.Locale, err = schedule.ParseLocale(locale); err != nil {
		errs = append(errs, fmt.Errorf("LOCALE: %w", err))
	}

	cfg.SessionDuration = model.DefaultSessionDuration
	if raw := getenv("SESSION_DURATION_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 || minutes >= 24*60 {
			errs = append(errs, fmt.Errorf("SESSION_DURATION_MINUTES: invalid value %q", raw))
		} else {
			cfg.SessionDuration = minutes
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}
