package sanitizer

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rule 一類標識符：hint 全部不出現時跳過正則
type rule struct {
	hints []string
	re    *regexp.Regexp
	mask  func(string) string
}

// 順序有關：machineId 先於 UUID，郵箱先於 key
var rules = []rule{
	{
		re:   regexp.MustCompile(`(?i)\b[0-9a-f]{64}\b`),
		mask: func(s string) string { return String(s, 6, 4) },
	},
	{
		hints: []string{"@"},
		re:    regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`),
		mask:  Email,
	},
	{
		hints: []string{"sk_", "pk_", "api_", "ghp_", "gho_", "token_"},
		re:    regexp.MustCompile(`(?i)(sk|pk|api|ghp|gho|token)_[a-zA-Z0-9_-]{16,}`),
		mask:  APIKey,
	},
	{
		hints: []string{"-"},
		re:    regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`),
		mask:  UUID,
	},
	{
		re:   regexp.MustCompile(`(?i)\b[0-9a-f]{2}(?:[:-][0-9a-f]{2}){5}\b`),
		mask: MAC,
	},
	{
		hints: []string{"serial"},
		re:    regexp.MustCompile(`(?i)serial(?:[ _-]?number)?["']?\s*[:=]\s*["']?[A-Z0-9]{6,}`),
		mask:  serial,
	},
	{
		hints: []string{"SHA256:"},
		re:    regexp.MustCompile(`SHA256:[A-Za-z0-9+/]{20,}={0,2}`),
		mask:  func(s string) string { return String(s, 11, 4) },
	},
}

func (r rule) applies(s, lower string) bool {
	if len(r.hints) == 0 {
		return true
	}
	for _, h := range r.hints {
		if strings.Contains(s, h) || strings.Contains(lower, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// Sanitize 把任意值轉為字符串並遮蔽其中的設備與賬號標識，供日誌字段使用
func Sanitize(v any) any {
	var s string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		s = val
	case []byte:
		s = string(val)
	case error:
		s = val.Error()
	case fmt.Stringer:
		s = val.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("sanitize_error: %v", err)
		}
		s = string(b)
	}
	return Text(s)
}

// Text 字符串版本的 Sanitize
func Text(s string) string {
	lower := strings.ToLower(s)
	for _, r := range rules {
		if r.applies(s, lower) {
			s = r.re.ReplaceAllStringFunc(s, r.mask)
		}
	}
	return s
}

// String 保留首 start 與尾 end 個字節
func String(s string, start, end int) string {
	if len(s) <= start+end {
		return "***"
	}
	return s[:start] + "***" + s[len(s)-end:]
}

// APIKey 保留前後各 4 位
func APIKey(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return String(s, 4, 4)
}

// Email 用戶名保留前兩位 (過短時一位)，域名不變
func Email(s string) string {
	at := strings.Index(s, "@")
	if at <= 1 {
		return s
	}
	keep := min(at-1, 2)
	return s[:keep] + "***" + s[at:]
}

// UUID 只保留第一段和最後 4 位
func UUID(s string) string {
	if len(s) != 36 {
		return s
	}
	return s[:8] + "-****-****-****-" + s[32:]
}

// MAC 保留廠商前綴 (前三組)
func MAC(s string) string {
	if len(s) != 17 {
		return s
	}
	sep := s[2:3]
	return s[:8] + sep + "**" + sep + "**" + sep + "**"
}

// serial 鍵名保留，值只留末 3 位
func serial(s string) string {
	i := strings.LastIndexAny(s, ":= \"'")
	if i < 0 || len(s)-i-1 < 4 {
		return s
	}
	v := s[i+1:]
	return s[:i+1] + "***" + v[len(v)-3:]
}
