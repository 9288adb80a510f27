package state

import (
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// LogState 日誌查看器：滾動窗口與級別計數
type LogState struct {
	Viewport      viewport.Model
	ViewportReady bool // 收到第一次窗口尺寸後才可用
	IsFollowing   bool // tail -f

	Rendered int
	Warnings int
	Errors   int

	last console.LogLine
}

func NewLogState() *LogState {
	return &LogState{IsFollowing: true}
}

// Resize 頂部標題與底部狀態欄共佔 8 行
func (s *LogState) Resize(width, height int) {
	h := max(height-8, 5)
	if !s.ViewportReady {
		s.Viewport = viewport.New(width, h)
		s.ViewportReady = true
		return
	}
	s.Viewport.Width = width
	s.Viewport.Height = h
}

// Sync 緩衝區沒有新行時返回 false，不重置滾動位置
func (s *LogState) Sync(lines []console.LogLine) bool {
	var last console.LogLine
	if n := len(lines); n > 0 {
		last = lines[n-1]
	}
	if len(lines) == s.Rendered && last == s.last {
		return false
	}

	s.Warnings, s.Errors = 0, 0
	for _, l := range lines {
		switch l.Level {
		case console.LevelWarning:
			s.Warnings++
		case console.LevelError:
			s.Errors++
		}
	}
	s.Viewport.SetContent(style.BuildColoredLogContent(lines))
	s.Rendered = len(lines)
	s.last = last
	if s.IsFollowing {
		s.Viewport.GotoBottom()
	}
	return true
}
