package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
)

var (
	// 標題樣式
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	// 幫助樣式
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(1)

	// 錯誤樣式
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// 成功樣式
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// 警告樣式
	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// 面板樣式
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)
)

// GetPhaseColor 操作階段的顏色
func GetPhaseColor(p operation.Phase) lipgloss.Color {
	switch p {
	case operation.PhaseRunning:
		return Warning
	case operation.PhaseCompleted:
		return Success
	case operation.PhaseFailed, operation.PhaseError:
		return Error
	default:
		return Muted
	}
}

// GetStepColor 進度記錄的顏色，按 class 區分
func GetStepColor(class string) lipgloss.Color {
	switch class {
	case "success":
		return Success
	case "failed":
		return Error
	case "running":
		return Warning
	default:
		return Snow2
	}
}
