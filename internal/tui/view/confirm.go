package view

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// RenderConfirm 執行前的確認頁
func RenderConfirm(title, description string, ti textinput.Model, notice Notice) string {
	header := renderSubpageHeader("確認")

	titleLine := style.WarningStyle.Render(" ⚠️  " + title)
	desc := lipgloss.NewStyle().
		Foreground(style.Snow2).
		Width(layoutWidth - 2).
		PaddingLeft(1).
		Render(description)

	question := renderPrompt("確定要執行嗎？")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		titleLine,
		"",
		desc,
		question,
		RenderStatusMessage(notice),
		RenderInputFooter(ti),
	)
}
