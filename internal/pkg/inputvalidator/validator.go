package inputvalidator

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// 輸入長度限制常量
const (
	MaxInputBuffer = 4096 // 輸入緩衝區最大長度（4KB）
	MaxMenuInput   = 100  // 菜單輸入最大長度

	MaxHostLength       = 253 // 主機名最大長度（RFC 1035）
	MaxProfileName      = 128 // 服務端配置檔案名
	MaxBackupNameLength = 100 // 備份文件名最大長度
)

var (
	labelRegex    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	safeNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ValidationError 驗證錯誤
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLength 驗證字符串長度
func ValidateLength(input string, maxLen int, fieldName string) error {
	if len(input) > maxLen {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("長度超過限制（最大 %d 字符，當前 %d 字符）", maxLen, len(input)),
		}
	}
	return nil
}

// ParseMenuNumber 解析菜單序號，範圍 [min, max]
func ParseMenuNumber(input string, min, max int) (int, error) {
	input = strings.TrimSpace(input)
	if len(input) > 10 {
		return 0, &ValidationError{Field: "menu", Message: "輸入過長"}
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return 0, &ValidationError{Field: "menu", Message: "只允許數字"}
	}
	if n < min || n > max {
		return 0, &ValidationError{Field: "menu", Message: fmt.Sprintf("超出範圍 (%d-%d)", min, max)}
	}
	return n, nil
}

// ValidateHost 主機名或 IP；允許 localhost 這類單級名稱
func ValidateHost(host string) bool {
	if host == "" || len(host) > MaxHostLength {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if !labelRegex.MatchString(label) {
			return false
		}
	}
	return true
}

// ValidateBaseURL 後端地址：http/https，主機有效，不帶查詢參數
func ValidateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &ValidationError{Field: "base_url", Message: "地址不能為空"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "base_url", Message: "地址格式無效"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "base_url", Message: "只支持 http 或 https"}
	}
	if !ValidateHost(u.Hostname()) {
		return &ValidationError{Field: "base_url", Message: fmt.Sprintf("主機名無效: %q", u.Hostname())}
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err != nil || n < 1 || n > 65535 {
			return &ValidationError{Field: "base_url", Message: fmt.Sprintf("端口無效: %s", p)}
		}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return &ValidationError{Field: "base_url", Message: "地址不能包含查詢參數"}
	}
	return nil
}

// ValidateProfileName 服務端配置檔案名：非空、無控制字符、無路徑分隔符
func ValidateProfileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "profile", Message: "名稱不能為空"}
	}
	if err := ValidateLength(name, MaxProfileName, "profile"); err != nil {
		return err
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `\/`) {
		return &ValidationError{Field: "profile", Message: "名稱不能包含路徑"}
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "profile", Message: "名稱包含控制字符"}
		}
	}
	return nil
}

// ValidateFilename 驗證文件名安全性 (防止路徑遍歷)
func ValidateFilename(name string) error {
	if name == "" {
		return &ValidationError{Field: "filename", Message: "文件名不能為空"}
	}
	if len(name) > MaxBackupNameLength {
		return &ValidationError{Field: "filename", Message: "文件名過長"}
	}
	// 禁止包含路徑分隔符
	if strings.ContainsAny(name, `\/`) {
		return &ValidationError{Field: "filename", Message: "文件名不能包含路徑分隔符"}
	}
	if name == "." || name == ".." {
		return &ValidationError{Field: "filename", Message: "非法文件名"}
	}
	if !safeNameRegex.MatchString(name) {
		return &ValidationError{Field: "filename", Message: "文件名包含非法字符"}
	}
	return nil
}

// ValidateSafePath 拼接後的路徑必須仍在 dir 之內
func ValidateSafePath(dir, filename string) error {
	cleanDir := filepath.Clean(dir)
	cleanPath := filepath.Clean(filepath.Join(cleanDir, filename))

	if !strings.HasPrefix(cleanPath, cleanDir+string(os.PathSeparator)) {
		return &ValidationError{Field: "path", Message: "檢測到路徑遍歷嘗試"}
	}
	return nil
}

// TruncateInput 截斷過長的輸入
func TruncateInput(input string, maxLen int) string {
	if len(input) <= maxLen {
		return input
	}
	return input[:maxLen]
}

// SanitizeInput 清理輸入（移除控制字符）
func SanitizeInput(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
