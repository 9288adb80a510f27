package model

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/tui/msg"
)

// Model bubbletea 頂層模型，所有消息交給 Router
type Model struct {
	router   *Router
	quitting bool
}

func NewModel(router *Router) *Model {
	return &Model{router: router}
}

func (m *Model) Init() tea.Cmd {
	return m.router.InitModel()
}

// Update 路由處理中 panic 時記錄並退出，避免終端停在 raw 模式
func (m *Model) Update(message tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.router.log.Error("控制台處理消息時崩潰",
				zap.String("msg", fmt.Sprintf("%T", message)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			m.quitting = true
			next, cmd = m, tea.Quit
		}
	}()

	if _, ok := message.(msg.QuitMsg); ok {
		m.quitting = true
	}
	_, cmd = m.router.Update(message)
	return m, cmd
}

// View 退出後返回空串，不留殘影
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return m.router.View()
}
