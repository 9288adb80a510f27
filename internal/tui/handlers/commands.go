package handlers

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/tui/state"
)

// CommandBuilder 把用戶動作轉換為引擎請求
type CommandBuilder struct {
	log *zap.Logger
}

// NewCommandBuilder 構造函數
func NewCommandBuilder(log *zap.Logger) *CommandBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandBuilder{log: log}
}

// RunOperationCmd 啟動已確認的操作並切換到進度面板
func (b *CommandBuilder) RunOperationCmd(m *state.Manager, name string) tea.Cmd {
	e := m.Engine()
	if e == nil {
		return nil
	}

	cmd, err := e.RequestOperation(name, true)
	if err != nil {
		b.reportError(m, err)
		if errors.Is(err, errors.ErrOperationRunning) {
			m.Console().ActiveOperation = name
			return m.UI().SwitchView(state.ProgressView)
		}
		return nil
	}

	m.Console().ActiveOperation = name
	switchCmd := m.UI().SwitchView(state.ProgressView)
	m.UI().SetStatus(state.StatusInfo, "操作已提交", "")
	return tea.Batch(switchCmd, cmd)
}

// RestoreCmd 恢復已保存的配置
func (b *CommandBuilder) RestoreCmd(m *state.Manager, sub status.Subsystem, profile string) tea.Cmd {
	e := m.Engine()
	if e == nil {
		return nil
	}

	cmd, err := e.RequestRestore(sub, profile, true)
	if err != nil {
		b.reportError(m, err)
		return nil
	}

	m.Console().ActiveOperation = orchestrator.RestoreName(sub)
	switchCmd := m.UI().SwitchView(state.ProgressView)
	m.UI().SetStatus(state.StatusInfo, fmt.Sprintf("正在恢復 %s", profile), "")
	return tea.Batch(switchCmd, cmd)
}

// CheckStatusCmd 立即檢查全部子系統
func (b *CommandBuilder) CheckStatusCmd(m *state.Manager) tea.Cmd {
	e := m.Engine()
	if e == nil {
		return nil
	}
	m.UI().SetStatus(state.StatusInfo, "正在檢查狀態...", "")
	return e.RequestPoll(status.Windsurf, status.VSCode, status.Host)
}

// ReloadProfilesCmd 重新拉取配置列表
func (b *CommandBuilder) ReloadProfilesCmd(m *state.Manager) tea.Cmd {
	e := m.Engine()
	if e == nil {
		return nil
	}
	return e.RequestProfiles()
}

// reportError 把請求錯誤映射到狀態欄
func (b *CommandBuilder) reportError(m *state.Manager, err error) {
	b.log.Debug("請求被拒絕", zap.Error(err))

	switch {
	case errors.Is(err, errors.ErrOperationRunning):
		m.UI().SetStatus(state.StatusWarn, "操作正在執行中", "請等待完成後再試")
	case errors.IsValidation(err):
		m.UI().SetStatus(state.StatusError, "無法執行", errors.Reason(err))
	default:
		m.UI().SetStatus(state.StatusError, "請求失敗", err.Error())
	}
}
