package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
)

// LevelColor 控制台級別對應的顏色
func LevelColor(level console.Level) lipgloss.Color {
	switch level {
	case console.LevelSuccess:
		return Success
	case console.LevelWarning:
		return Warning
	case console.LevelError:
		return Error
	default:
		return Snow1
	}
}

// RenderLogLine [15:04:05] 文本，按級別著色
func RenderLogLine(line console.LogLine) string {
	ts := lipgloss.NewStyle().Foreground(Snow3).Render(fmt.Sprintf("[%s] ", line.Timestamp.Format("15:04:05")))
	return ts + lipgloss.NewStyle().Foreground(LevelColor(line.Level)).Render(line.Text)
}

// BuildColoredLogContent 構建帶顏色的日誌內容 (供 Viewport 使用)
func BuildColoredLogContent(lines []console.LogLine) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(RenderLogLine(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Truncate 按顯示寬度截斷，CJK 與 emoji 算寬 2
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight 按顯示寬度補齊
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
