package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/crewhub/model-gateway/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logFormat string
		wantLevel zapcore.Level
	}{
		{"json debug", "debug", "json", zapcore.DebugLevel},
		{"text info", "info", "text", zapcore.InfoLevel},
		{"invalid level falls back to info", "verbose", "json", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Observability.LogLevel = tt.logLevel
			cfg.Observability.LogFormat = tt.logFormat

			logger, err := initLogger(cfg)

			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
			}
		})
	}
}
