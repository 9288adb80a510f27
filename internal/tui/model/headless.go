package model

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yat-Muk/opsdeck/internal/application"
	"github.com/Yat-Muk/opsdeck/internal/domain/console"
)

// Headless 無終端時的 watch 模式：不渲染界面，日誌逐行輸出
type Headless struct {
	engine  *application.Engine
	onReady func()

	pingEvery time.Duration
	ping      func()
}

// watchdogMsg 喂狗時刻，經由事件循環投遞
type watchdogMsg struct{}

// NewHeadless 創建 watch 模式模型，新日誌行寫入 out
func NewHeadless(engine *application.Engine, out io.Writer, onReady func()) *Headless {
	engine.OnLine(func(l console.LogLine) {
		fmt.Fprintln(out, FormatLine(l))
	})
	return &Headless{engine: engine, onReady: onReady}
}

// WithWatchdog 每隔 every 在事件循環內調用一次 ping，every 為 0 時不啟用
// 循環卡住時 ping 隨之停止
func (h *Headless) WithWatchdog(every time.Duration, ping func()) *Headless {
	h.pingEvery = every
	h.ping = ping
	return h
}

func (h *Headless) watchdogTick() tea.Cmd {
	if h.pingEvery <= 0 || h.ping == nil {
		return nil
	}
	return tea.Tick(h.pingEvery, func(time.Time) tea.Msg { return watchdogMsg{} })
}

// FormatLine 純文本日誌格式
func FormatLine(l console.LogLine) string {
	return fmt.Sprintf("[%s] %-7s %s", l.Timestamp.Format("15:04:05"), l.Level, l.Text)
}

func (h *Headless) Init() tea.Cmd {
	if h.onReady != nil {
		h.onReady()
	}
	return tea.Batch(h.engine.Start(), h.watchdogTick())
}

func (h *Headless) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := message.(watchdogMsg); ok {
		h.ping()
		return h, h.watchdogTick()
	}
	if k, ok := message.(tea.KeyMsg); ok {
		if k.Type == tea.KeyCtrlC {
			return h, tea.Quit
		}
		return h, nil
	}
	if h.engine.Owns(message) {
		return h, h.engine.Handle(message)
	}
	return h, nil
}

func (h *Headless) View() string { return "" }
