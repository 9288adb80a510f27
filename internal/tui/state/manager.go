package state

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/application"
)

// Config 初始化配置
type Config struct {
	Log     *zap.Logger
	Engine  *application.Engine
	BaseURL string
	Version string
}

// Manager 狀態管理器 (State Container)
type Manager struct {
	log *zap.Logger

	engine  *application.Engine
	baseURL string
	version string

	ui       *UIState
	console  *ConsoleState
	logState *LogState
}

// NewManager 創建狀態管理器
func NewManager(cfg *Config) *Manager {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:      log,
		engine:   cfg.Engine,
		baseURL:  cfg.BaseURL,
		version:  cfg.Version,
		ui:       NewUIState(),
		console:  NewConsoleState(),
		logState: NewLogState(),
	}
}

// Getters 訪問器

func (m *Manager) UI() *UIState                { return m.ui }
func (m *Manager) Console() *ConsoleState      { return m.console }
func (m *Manager) Log() *LogState              { return m.logState }
func (m *Manager) Engine() *application.Engine { return m.engine }
