package handlers

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/tui/state"
)

// Config 用於初始化 Handlers 的配置結構體
type Config struct {
	Log      *zap.Logger
	StateMgr *state.Manager
}
