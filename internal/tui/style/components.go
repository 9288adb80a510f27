package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// BadgeKind 徽章底色
type BadgeKind int

const (
	BadgeMuted BadgeKind = iota
	BadgeSuccess
	BadgeWarning
	BadgeError
	BadgeInfo
)

func badgeStyle(fg, bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1).Bold(true)
}

var badgeStyles = map[BadgeKind]lipgloss.Style{
	BadgeSuccess: badgeStyle(Polar1, StatusGreen),
	BadgeWarning: badgeStyle(Polar1, StatusYellow),
	BadgeError:   badgeStyle(Snow1, StatusRed),
	BadgeInfo:    badgeStyle(Snow1, Aurora3),
	BadgeMuted:   lipgloss.NewStyle().Foreground(Snow1).Background(Polar3).Padding(0, 1),
}

// RenderBadge 未知類型按 muted 渲染
func RenderBadge(text string, kind BadgeKind) string {
	s, ok := badgeStyles[kind]
	if !ok {
		s = badgeStyles[BadgeMuted]
	}
	return s.Render(text)
}

// StateBadgeKind 子系統狀態詞對應的徽章
func StateBadgeKind(state string) BadgeKind {
	switch state {
	case status.StateActive, status.StateNormal, status.StateSpoofed,
		status.StateApplied, status.StateRotated:
		return BadgeSuccess
	case status.StateInactive, status.StateOffline:
		return BadgeError
	case status.StateOriginal:
		return BadgeWarning
	default:
		return BadgeMuted
	}
}

// StateBadge 空狀態顯示為 unknown
func StateBadge(state string) string {
	if state == "" {
		state = status.StateUnknown
	}
	return RenderBadge(state, StateBadgeKind(state))
}
