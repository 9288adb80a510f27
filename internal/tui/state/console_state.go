package state

import (
	"time"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// ConfirmKind 待確認的動作類型
type ConfirmKind int

const (
	ConfirmOperation ConfirmKind = iota
	ConfirmRestore
)

// Pending 等待用戶確認的動作
type Pending struct {
	Kind        ConfirmKind
	Operation   string
	Subsystem   status.Subsystem
	Profile     string
	Title       string
	Description string
}

// ConsoleState 控制台頁面狀態
type ConsoleState struct {
	Pending          *Pending
	ActiveOperation  string           // 進度面板跟蹤的操作
	ProfileSubsystem status.Subsystem // 配置頁當前子系統
	Now              time.Time
}

func NewConsoleState() *ConsoleState {
	return &ConsoleState{
		ProfileSubsystem: status.Windsurf,
		Now:              time.Now(),
	}
}

// Ask 記錄待確認動作
func (s *ConsoleState) Ask(p Pending) {
	s.Pending = &p
}

// Take 取出並清空待確認動作
func (s *ConsoleState) Take() *Pending {
	p := s.Pending
	s.Pending = nil
	return p
}
