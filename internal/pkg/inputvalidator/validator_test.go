package inputvalidator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMenuNumber(t *testing.T) {
	n, err := ParseMenuNumber(" 3 ", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, in := range []string{"0", "6", "abc", "1,2", "", "12345678901"} {
		_, err := ParseMenuNumber(in, 1, 5)
		assert.Error(t, err, in)
	}
}

func TestValidateHost(t *testing.T) {
	valid := []string{"localhost", "127.0.0.1", "::1", "backend.lan", "api-1.example.com"}
	for _, h := range valid {
		assert.True(t, ValidateHost(h), h)
	}

	invalid := []string{"", ".example.com", "example.com.", "-bad.lan", "under_score.lan", strings.Repeat("a", 254)}
	for _, h := range invalid {
		assert.False(t, ValidateHost(h), h)
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"http://127.0.0.1:8888", true},
		{"https://backend.lan/api", true},
		{"http://[::1]:5000", true},
		{"", false},
		{"127.0.0.1:8888", false},
		{"ftp://backend.lan", false},
		{"http://:8888", false},
		{"http://backend.lan:70000", false},
		{"http://backend.lan/?debug=1", false},
	}
	for _, tt := range tests {
		err := ValidateBaseURL(tt.input)
		if tt.ok {
			assert.NoError(t, err, tt.input)
		} else {
			assert.Error(t, err, tt.input)
		}
	}
}

func TestValidateProfileName(t *testing.T) {
	assert.NoError(t, ValidateProfileName("work"))
	assert.NoError(t, ValidateProfileName("工作 配置 (2)"))

	for _, name := range []string{"", "  ", "..", "a/b", `a\b`, "bad\x00name", strings.Repeat("x", MaxProfileName+1)} {
		assert.Error(t, ValidateProfileName(name), name)
	}
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("config-20260301-120000.000-set.bak"))

	for _, name := range []string{"", ".", "..", "../x", "a b", strings.Repeat("x", MaxBackupNameLength+1)} {
		err := ValidateFilename(name)
		require.Error(t, err, name)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	}
}

func TestValidateSafePath(t *testing.T) {
	assert.NoError(t, ValidateSafePath("/var/lib/opsdeck/backups", "config.bak"))
	assert.Error(t, ValidateSafePath("/var/lib/opsdeck/backups", "../config.yaml"))
	assert.Error(t, ValidateSafePath("/var/lib/opsdeck/backups", "."))
}

func TestSanitizeAndTruncate(t *testing.T) {
	assert.Equal(t, "abc", SanitizeInput("a\x1bb\x7fc"))
	assert.Equal(t, "中文", SanitizeInput("中\n文"))
	assert.Equal(t, "abc", TruncateInput("abcdef", 3))
	assert.Equal(t, "ab", TruncateInput("ab", 3))
}
