package view

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// phaseLabels 操作階段的顯示文本
var phaseLabels = map[operation.Phase]string{
	operation.PhaseRunning:   "[運行中]",
	operation.PhaseCompleted: "(已完成)",
	operation.PhaseFailed:    "[失敗]",
	operation.PhaseError:     "[錯誤]",
}

// RenderOperationsMenu 渲染操作列表，序號從 1 開始
func RenderOperationsMenu(defs []operation.Definition, phases map[string]operation.Phase, ti textinput.Model, notice Notice) string {
	header := renderSubpageHeader("執行操作")

	items := make([]MenuItem, 0, len(defs)+2)
	var group string
	for i, d := range defs {
		// 按子系統分組
		if g := string(d.Subsystem); i > 0 && g != group {
			items = append(items, MenuItem{})
		}
		group = string(d.Subsystem)

		phase := phases[d.Name]
		color := style.Snow1
		if phase == operation.PhaseRunning {
			color = style.StatusYellow
		}
		items = append(items, MenuItem{
			Num:       strconv.Itoa(i + 1),
			Text:      d.DisplayTitle(),
			Desc:      phaseLabels[phase],
			TextColor: color,
		})
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		renderMenuWithAlignment(items, true),
		RenderStatusMessage(notice),
		RenderInputFooter(ti),
	)
}
