package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "/var/log/opsdeck/opsdeck.log", cfg.OutputPath)
	assert.Equal(t, 10, cfg.MaxSize)
	assert.True(t, cfg.Compress)
	assert.False(t, cfg.Console)
	assert.Equal(t, "opsdeck", cfg.Service)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_NoOutputs(t *testing.T) {
	l, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	l, err := New(Config{Level: "invalid", Console: true})
	assert.Error(t, err)
	assert.Nil(t, l)
}

// TestNew_FileIsJSON 文件輸出為 JSON，並帶 service 字段
func TestNew_FileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsdeck.log")

	l, err := New(Config{Level: "debug", OutputPath: path, MaxSize: 1, Service: "opsdeck"})
	require.NoError(t, err)
	l.Info("poll complete", zap.String("subsystem", "windsurf"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"level":"info"`)
	assert.Contains(t, line, `"service":"opsdeck"`)
	assert.Contains(t, line, `"subsystem":"windsurf"`)
}

func TestNew_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Console: true, Stderr: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
