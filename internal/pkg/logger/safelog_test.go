package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskSensitive(t *testing.T) {
	machineID := strings.Repeat("ab12", 16)

	tests := []struct {
		name   string
		input  string
		want   string
		hidden string
	}{
		{"MAC 地址", "spoofed en0 to a4:83:e7:12:34:56", "a4:83:e7:**:**:**", "12:34:56"},
		{"序列號", "serial_number: C02XK1ABJG5H", "***MASKED***", "C02XK1ABJG5H"},
		{"Token", "token: abcdef1234567890", "***MASKED***", "abcdef1234567890"},
		{"UUID", "devDeviceId 550e8400-e29b-41d4-a716-446655440000", "***-UUID-***", "550e8400"},
		{"machineId", "telemetry.machineId=" + machineID, "***MACHINE-ID***", machineID},
		{"密碼", "password=mySecretPass123", "***MASKED***", "mySecretPass123"},
		{"郵箱保留域名", "signed in as user@example.com", "***@example.com", "user@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskSensitive(tt.input)
			assert.Contains(t, got, tt.want)
			assert.NotContains(t, got, tt.hidden)
		})
	}
}

func TestMaskSensitive_PlainText(t *testing.T) {
	for _, in := range []string{"", "Windsurf 配置已恢復", "poll status every 5s"} {
		assert.Equal(t, in, MaskSensitive(in))
	}
}

func newObserved() (SafeLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSafeLogger(zap.New(core)), logs
}

func TestSafeLogger_Formatted(t *testing.T) {
	l, logs := newObserved()

	l.Debugf("probe %s", "fingerprint")
	l.Infof("restored %s", "windsurf")
	l.Warnf("%s 返回 HTTP %d: %s", "restore", 500, "token=abcdef1234567890")
	l.Errorf("spoof failed for %s", "a4:83:e7:12:34:56")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.NotContains(t, entries[2].Message, "abcdef1234567890")
	assert.Contains(t, entries[3].Message, "a4:83:e7:**:**:**")
}

func TestSafeLogger_Infow(t *testing.T) {
	l, logs := newObserved()

	l.Infow("profile restored",
		"machine_id", "anything",
		"uuid", "550e8400-e29b-41d4-a716-446655440000",
		"profile", "work",
		"note", "owner user@example.com",
		"dangling",
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "***MASKED***", ctx["machine_id"])
	assert.Equal(t, "***MASKED***", ctx["uuid"])
	assert.Equal(t, "work", ctx["profile"])
	assert.Equal(t, "owner ***@example.com", ctx["note"])
	assert.Equal(t, "(MISSING)", ctx["dangling"])
}

func TestNewSafeLogger_Nil(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSafeLogger(nil).Infof("quiet")
	})
}
