package console

import (
	"fmt"
	"strings"
	"time"
)

// Level 終端日誌與歷史記錄的級別
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// ParseLevel 解析級別，兼容後端返回的 "normal"/"warn" 等寫法
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info", "normal":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error", "danger":
		return LevelError, nil
	case "success", "ok":
		return LevelSuccess, nil
	default:
		return LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}

// LogLine 終端日誌的一行
type LogLine struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Level     Level     `json:"level"`
}

// HistoryEntry 操作歷史，最新的排在最前
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     Level     `json:"type"`
}
