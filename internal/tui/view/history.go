package view

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// RenderHistory 變更歷史，最新在前
func RenderHistory(entries []console.HistoryEntry, now time.Time, ti textinput.Model) string {
	header := renderSubpageHeader("變更歷史")

	timeStyle := lipgloss.NewStyle().Foreground(style.Snow3)

	var rows []string
	if len(entries) == 0 {
		rows = append(rows,
			timeStyle.Render(" "+now.Format("2006-01-02 15:04:05")+"  ")+
				style.MutedText("System initialized. No changes yet."))
	}
	for _, e := range entries {
		ts := "-------------------"
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, timeStyle.Render(" "+ts+"  ")+
			style.LevelText(e.Level, style.Truncate(e.Message, layoutWidth-22)))
	}
	rows = append(rows, separator("═"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		RenderInputFooter(ti),
	)
}
