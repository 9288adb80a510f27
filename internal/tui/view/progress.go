package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

var phaseText = map[operation.Phase]string{
	operation.PhaseIdle:      "尚未運行",
	operation.PhaseRunning:   "執行中...",
	operation.PhaseCompleted: "✅ 已完成",
	operation.PhaseFailed:    "❌ 失敗",
	operation.PhaseError:     "❌ 錯誤",
}

// RenderProgress 操作進度面板
func RenderProgress(title string, run orchestrator.Run, spinner string, lines []console.LogLine, notice Notice) string {
	if title == "" {
		title = "操作進度"
	}
	header := renderSubpageHeader(title)

	phase := lipgloss.NewStyle().Foreground(style.GetPhaseColor(run.Phase)).Render(phaseText[run.Phase])
	if run.Phase == operation.PhaseRunning {
		phase = spinner + " " + phase
	}
	rows := []string{" 狀態: " + phase}

	if !run.StartedAt.IsZero() {
		elapsed := "-"
		if !run.FinishedAt.IsZero() {
			elapsed = run.FinishedAt.Sub(run.StartedAt).Round(100 * time.Millisecond).String()
		}
		rows = append(rows, style.MutedText(fmt.Sprintf(" 開始: %s   耗時: %s",
			run.StartedAt.Format("15:04:05"), elapsed)))
	}
	if run.Error != "" {
		rows = append(rows, style.ErrorText(" 原因: "+run.Error))
	}

	rows = append(rows, separator("─"))
	if len(run.Progress) == 0 {
		rows = append(rows, style.MutedText(" 等待後端返回步驟..."))
	}
	for _, p := range run.Progress {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(style.GetStepColor(p.Class)).
			Render(fmt.Sprintf(" %s %s: %s", p.Icon, p.Step, strings.ToUpper(string(p.Status)))))
	}
	rows = append(rows, separator("═"))

	tail := lines
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	for _, l := range tail {
		l.Text = style.Truncate(l.Text, layoutWidth-12)
		rows = append(rows, " "+style.RenderLogLine(l))
	}

	hint := style.HelpStyle.Render("Esc 返回 • 操作在後台繼續執行")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		RenderStatusMessage(notice),
		hint,
	)
}
