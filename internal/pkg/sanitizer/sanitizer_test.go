package sanitizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"medium12", "med***12"},
		{"verylongapikey123456", "ver***456"},
	}

	for _, tt := range tests {
		result := APIKey(tt.input)
		assert.Contains(t, result, "***")
		assert.NotEqual(t, tt.input, result)
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "al***@example.com", Email("alice@example.com"))
	assert.Equal(t, "b***@x.io", Email("bo@x.io"))
	assert.Equal(t, "a@x.io", Email("a@x.io"))
}

func TestMAC(t *testing.T) {
	assert.Equal(t, "a4:83:e7:**:**:**", MAC("a4:83:e7:12:34:56"))
	assert.Equal(t, "A4-83-E7-**-**-**", MAC("A4-83-E7-12-34-56"))
	assert.Equal(t, "short", MAC("short"))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{"MAC 地址", "en0 ether a4:83:e7:12:34:56 active", "a4:83:e7:**:**:**", "12:34:56"},
		{"硬件 UUID", "Hardware UUID: 550E8400-E29B-41D4-A716-446655440000", "550E8400-****", "A716"},
		{"郵箱", "signed in as alice@example.com", "al***@example.com", "alice@"},
		{"machineId", "telemetry.machineId " + strings.Repeat("0f", 32), "0f0f0f***0f0f", strings.Repeat("0f", 10)},
		{"序列號", `{"serial_number":"C02XK1ABJG5H"}`, `"serial_number":"***G5H"`, "C02XK1"},
		{"API key", "key sk_live_abcdefghijklmnop1234", "sk_l***1234", "abcdefghijkl"},
		{"SSH 指紋", "new key SHA256:abcdefghijklmnopqrstuvwxyz0123456789ABCDEFG", "SHA256:abcd***", "0123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := Sanitize(tt.input).(string)
			assert.True(t, ok)
			assert.Contains(t, out, tt.contains)
			assert.NotContains(t, out, tt.absent)
		})
	}

	t.Run("普通文本不變", func(t *testing.T) {
		assert.Equal(t, "Status updated", Sanitize("Status updated"))
	})

	t.Run("nil 保持 nil", func(t *testing.T) {
		assert.Nil(t, Sanitize(nil))
	})

	t.Run("錯誤取消息", func(t *testing.T) {
		out := Sanitize(errors.New("restore failed for bob@corp.io"))
		assert.Equal(t, "restore failed for bo***@corp.io", out)
	})

	t.Run("結構體序列化", func(t *testing.T) {
		out := Sanitize(map[string]string{"mac": "a4:83:e7:12:34:56"})
		assert.Contains(t, out, "a4:83:e7:**:**:**")
	})
}
