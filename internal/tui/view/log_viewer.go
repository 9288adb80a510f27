package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// LogSummary 日誌查看器底部狀態欄數據
type LogSummary struct {
	Following bool
	Lines     int
	Warnings  int
	Errors    int
}

func (s LogSummary) counts() string {
	parts := []string{fmt.Sprintf("%d 行", s.Lines)}
	if s.Warnings > 0 {
		parts = append(parts, style.WarningText(fmt.Sprintf("%d 警告", s.Warnings)))
	}
	if s.Errors > 0 {
		parts = append(parts, style.ErrorText(fmt.Sprintf("%d 錯誤", s.Errors)))
	}
	return strings.Join(parts, " · ")
}

func RenderLogViewer(vp viewport.Model, sum LogSummary) string {
	header := renderSubpageHeader("終端日誌")

	content := vp.View()
	if sum.Lines == 0 {
		content = lipgloss.NewStyle().
			Foreground(style.Muted).
			Padding(1, 1).
			Render("暫無日誌")
	}

	muted := lipgloss.NewStyle().Foreground(style.Snow3)
	percent := int(vp.ScrollPercent() * 100)

	mode := "按 Esc 返回 | ↑/↓ 滾動 | f 跟蹤"
	if sum.Following {
		mode = "📡 實時跟蹤中 (按 Esc 返回)"
	}
	status := muted.Render(" "+mode+" | ") + sum.counts() + muted.Render(fmt.Sprintf(" | %d%%", percent))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		separator("═"),
		status,
	)
}
