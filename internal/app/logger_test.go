package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfig(t *testing.T) {
	prod := loggerConfig("production")
	assert.Equal(t, "json", prod.Encoding)
	assert.False(t, prod.Development)
	assert.Equal(t, serviceName, prod.InitialFields["service"])
	assert.Equal(t, "production", prod.InitialFields["env"])

	dev := loggerConfig("development")
	assert.Equal(t, "console", dev.Encoding)
	assert.True(t, dev.Development)
	assert.True(t, dev.Level.Enabled(zapcore.DebugLevel))
	assert.Equal(t, []string{"stdout"}, dev.OutputPaths)
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("development")
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
