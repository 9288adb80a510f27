package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
)

// TextColor 單色渲染函數，如 style.TextColor(style.Info)("立即檢查")
func TextColor(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(str string) string { return s.Render(str) }
}

var (
	InfoText    = TextColor(Info)
	SuccessText = TextColor(Success)
	WarningText = TextColor(Warning)
	ErrorText   = TextColor(Error)
	MutedText   = TextColor(Muted)
)

// LevelText 按日誌級別著色
func LevelText(level console.Level, s string) string {
	return TextColor(LevelColor(level))(s)
}

// Mark 成功 ✔ / 失敗 ✘
func Mark(ok bool) string {
	if ok {
		return SuccessText("✔")
	}
	return ErrorText("✘")
}
