package logger

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/pkg/sanitizer"
)

// SafeLogger 輸出前先脫敏的格式化日誌
type SafeLogger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Infow(msg string, keysAndValues ...any)
}

// 順序有關：machineId (64 位十六進制) 要先於 UUID 處理
var maskRules = []struct {
	re   *regexp.Regexp
	tmpl string
	fn   func(string) string
}{
	{re: regexp.MustCompile(`(?i)\b[0-9a-f]{64}\b`), tmpl: "***MACHINE-ID***"},
	{re: regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`), tmpl: "***-UUID-***"},
	{re: regexp.MustCompile(`(?i)\b[0-9a-f]{2}(?:[:-][0-9a-f]{2}){5}\b`), fn: sanitizer.MAC},
	{re: regexp.MustCompile(`(?i)(serial(?:[_ -]?number)?)\s*[:=]\s*['"]?([A-Z0-9]{6,})['"]?`), tmpl: "${1}: ***MASKED***"},
	{re: regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?key|secret|token|bearer)\s*[:=]\s*['"]?([a-zA-Z0-9+/=_-]{8,})['"]?`), tmpl: "${1}: ***MASKED***"},
	{re: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?([^'"\s]{4,})['"]?`), tmpl: "${1}: ***MASKED***"},
	{re: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`), tmpl: "***@${1}"},
}

// MaskSensitive 遮蔽機器標識、硬件地址、憑據和郵箱
func MaskSensitive(input string) string {
	if input == "" {
		return input
	}
	for _, r := range maskRules {
		if r.fn != nil {
			input = r.re.ReplaceAllStringFunc(input, r.fn)
			continue
		}
		input = r.re.ReplaceAllString(input, r.tmpl)
	}
	return input
}

// 字段名命中時整值遮蔽
var sensitiveKeys = []string{"password", "secret", "token", "key", "uuid", "serial", "machine"}

func sensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

type safeLogger struct {
	s *zap.SugaredLogger
}

// NewSafeLogger 包裝 zap.Logger；nil 時不輸出
func NewSafeLogger(l *zap.Logger) SafeLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &safeLogger{s: l.Sugar()}
}

func (l *safeLogger) Debugf(format string, args ...any) {
	l.s.Debug(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (l *safeLogger) Infof(format string, args ...any) {
	l.s.Info(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (l *safeLogger) Warnf(format string, args ...any) {
	l.s.Warn(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (l *safeLogger) Errorf(format string, args ...any) {
	l.s.Error(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (l *safeLogger) Infow(msg string, keysAndValues ...any) {
	fields := make([]any, 0, len(keysAndValues))
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			// 落單的鍵
			fields = append(fields, key, "(MISSING)")
			break
		}
		if sensitiveKey(key) {
			fields = append(fields, key, "***MASKED***")
			continue
		}
		fields = append(fields, key, MaskSensitive(fmt.Sprint(keysAndValues[i+1])))
	}
	l.s.Infow(MaskSensitive(msg), fields...)
}
