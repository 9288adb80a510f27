package model

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/tui/handlers"
	"github.com/Yat-Muk/opsdeck/internal/tui/msg"
	"github.com/Yat-Muk/opsdeck/internal/tui/state"
)

// Router 事件路由器
type Router struct {
	stateMgr   *state.Manager
	keyHandler *handlers.KeyHandler
	cmdBuilder *handlers.CommandBuilder
	log        *zap.Logger
}

// NewRouter 創建路由器
func NewRouter(cfg *handlers.Config) *Router {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	cmdBuilder := handlers.NewCommandBuilder(log)
	keyHandler := handlers.NewKeyHandler(cfg.StateMgr, cmdBuilder)

	return &Router{
		stateMgr:   cfg.StateMgr,
		keyHandler: keyHandler,
		cmdBuilder: cmdBuilder,
		log:        log,
	}
}

// InitModel 用於 Model.Init 調用
func (r *Router) InitModel() tea.Cmd {
	cmds := []tea.Cmd{
		r.stateMgr.UI().TextInput.Focus(),
		r.stateMgr.UI().Spinner.Tick,
		ClockCmd(),
	}
	if e := r.stateMgr.Engine(); e != nil {
		cmds = append(cmds, e.Start())
	}
	return tea.Batch(cmds...)
}

// Update 適配 bubbletea 的 Update 簽名
func (r *Router) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	cmd := r.routeMessage(message)
	r.stateMgr.SyncLogViewer()
	return nil, cmd
}

// View 適配 bubbletea 的 View 簽名
func (r *Router) View() string {
	return r.stateMgr.Render()
}

// routeMessage 內部路由邏輯
func (r *Router) routeMessage(message tea.Msg) tea.Cmd {
	m := r.stateMgr

	switch msgType := message.(type) {

	case tea.WindowSizeMsg:
		m.UI().UpdateSize(msgType.Width, msgType.Height)
		if m.Log().ViewportReady {
			m.Log().Resize(msgType.Width, msgType.Height)
		}
		return nil

	case tea.KeyMsg:
		_, cmd := r.keyHandler.Handle(msgType, m)
		return cmd

	case msg.ClockMsg:
		m.Console().Now = time.Time(msgType)
		return ClockCmd()

	case msg.QuitMsg:
		return tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.UI().Spinner, cmd = m.UI().Spinner.Update(msgType)
		return cmd
	}

	// 輪詢與操作結果
	if e := m.Engine(); e != nil && e.Owns(message) {
		return e.Handle(message)
	}

	// 光標閃爍等
	return m.UI().UpdateInput(message)
}

// ClockCmd 每秒刷新頂部時鐘
func ClockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return msg.ClockMsg(t)
	})
}
