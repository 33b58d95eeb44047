package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "tutor_admin_bot"

// NewLogger собирает zap логгер под окружение.
// В production пишем JSON с ISO временем, иначе цветной консольный вывод.
func NewLogger(env string) *zap.Logger {
	logger, err := loggerConfig(env).Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return logger
}

func loggerConfig(env string) zap.Config {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
		"env":     env,
	}

	return config
}
