package logger

import (
	"ai_mentor_client/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		mode, level string
		want        zapcore.Level
	}{
		{"debug", "", zapcore.DebugLevel},
		{"release", "", zapcore.InfoLevel},
		{"debug", "warn", zapcore.WarnLevel},
		{"release", "nonsense", zapcore.InfoLevel},
	}
	for _, c := range cases {
		cfg := &config.Config{Server: config.ServerConfig{Mode: c.mode}, Log: config.LogConfig{Level: c.level}}
		assert.Equal(t, c.want, levelFor(cfg), "%s/%s", c.mode, c.level)
	}
}

func TestSetLevelAdjustsRunningLogger(t *testing.T) {
	InitLogger(&config.Config{Server: config.ServerConfig{Mode: "release"}})
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))

	SetLevel(&config.Config{Log: config.LogConfig{Level: "debug"}})
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
}
