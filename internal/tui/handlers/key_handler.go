package handlers

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/inputvalidator"
	"github.com/Yat-Muk/opsdeck/internal/tui/constants"
	"github.com/Yat-Muk/opsdeck/internal/tui/state"
	"github.com/Yat-Muk/opsdeck/internal/tui/view"
)

// KeyHandler 核心處理器：負責全局導航和請求分發
type KeyHandler struct {
	stateMgr   *state.Manager
	cmdBuilder *CommandBuilder
}

func NewKeyHandler(stateMgr *state.Manager, cmdBuilder *CommandBuilder) *KeyHandler {
	return &KeyHandler{
		stateMgr:   stateMgr,
		cmdBuilder: cmdBuilder,
	}
}

// Handle 處理全局按鍵
func (h *KeyHandler) Handle(msg tea.KeyMsg, m *state.Manager) (*state.Manager, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	currentView := m.UI().CurrentView

	// 日誌查看器：按鍵交給 Viewport
	if currentView == state.LogViewerView {
		return h.handleLogViewer(msg, m)
	}

	// 進度面板沒有輸入框，任意確認鍵返回
	if currentView == state.ProgressView {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			return m, m.UI().SwitchView(state.MainMenuView)
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return h.handleInputSubmit(m, currentView)

	case tea.KeyEsc:
		return h.handleInputEscape(m, currentView)

	default:
		return m, m.UI().UpdateInput(msg)
	}
}

func (h *KeyHandler) handleLogViewer(msg tea.KeyMsg, m *state.Manager) (*state.Manager, tea.Cmd) {
	logs := m.Log()
	switch msg.String() {
	case "esc", "q", constants.KeyBack:
		return m, m.UI().SwitchView(state.MainMenuView)
	case "f":
		logs.IsFollowing = !logs.IsFollowing
		if logs.IsFollowing {
			logs.Viewport.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	logs.Viewport, cmd = logs.Viewport.Update(msg)
	// 手動滾動後停止跟隨
	if !logs.Viewport.AtBottom() {
		logs.IsFollowing = false
	}
	return m, cmd
}

// ========================================
// 核心分發邏輯 (Enter 觸發)
// ========================================

func (h *KeyHandler) handleInputSubmit(m *state.Manager, view state.View) (*state.Manager, tea.Cmd) {
	raw := inputvalidator.TruncateInput(m.UI().GetInputBuffer(), inputvalidator.MaxMenuInput)
	input := strings.TrimSpace(inputvalidator.SanitizeInput(raw))
	m.UI().ClearInput()

	// 確認頁允許空輸入，等同於 N
	if input == "" && view != state.ConfirmView {
		return m, nil
	}

	switch view {
	case state.MainMenuView:
		return h.submitMainMenu(m, input)
	case state.OperationsView:
		return h.submitOperations(m, input)
	case state.ConfirmView:
		return h.submitConfirm(m, input)
	case state.ProfilesView:
		return h.submitProfiles(m, input)
	case state.HistoryView:
		if input == constants.KeyBack {
			return m, m.UI().SwitchView(state.MainMenuView)
		}
		return m, nil
	}

	return m, nil
}

func (h *KeyHandler) handleInputEscape(m *state.Manager, view state.View) (*state.Manager, tea.Cmd) {
	switch view {
	case state.MainMenuView:
		m.UI().ClearInput()
		m.UI().ClearStatus()
		return m, nil
	case state.ConfirmView:
		return h.cancelPending(m)
	}
	m.UI().ClearStatus()
	return m, m.UI().SwitchView(state.MainMenuView)
}

func (h *KeyHandler) submitMainMenu(m *state.Manager, input string) (*state.Manager, tea.Cmd) {
	ui := m.UI()

	switch strings.ToLower(input) {
	case constants.KeyMain_Operations:
		return m, ui.SwitchView(state.OperationsView)

	case constants.KeyMain_Profiles:
		return m, tea.Batch(
			ui.SwitchView(state.ProfilesView),
			h.cmdBuilder.ReloadProfilesCmd(m),
		)

	case constants.KeyMain_Check:
		return m, h.cmdBuilder.CheckStatusCmd(m)

	case constants.KeyMain_Logs:
		m.Log().IsFollowing = true
		return m, ui.SwitchView(state.LogViewerView)

	case constants.KeyMain_History:
		return m, ui.SwitchView(state.HistoryView)

	case constants.KeyMain_Progress:
		if m.Console().ActiveOperation == "" {
			ui.SetStatus(state.StatusInfo, "尚未執行任何操作", "")
			return m, nil
		}
		return m, ui.SwitchView(state.ProgressView)

	case constants.KeyMain_Quit:
		return m, tea.Quit
	}

	ui.SetStatus(state.StatusError, fmt.Sprintf("無效選項: %s", input), "")
	return m, nil
}

func (h *KeyHandler) submitOperations(m *state.Manager, input string) (*state.Manager, tea.Cmd) {
	ui := m.UI()
	if input == constants.KeyBack {
		return m, ui.SwitchView(state.MainMenuView)
	}

	e := m.Engine()
	if e == nil {
		return m, nil
	}
	defs := e.Operations()

	def, ok := pick(defs, input)
	if !ok {
		ui.SetStatus(state.StatusError, fmt.Sprintf("無效選項: %s", input), "")
		return m, nil
	}

	if e.Operation(def.Name).Phase == operation.PhaseRunning {
		ui.SetStatus(state.StatusWarn, fmt.Sprintf("%s 正在執行中", def.DisplayTitle()), "")
		m.Console().ActiveOperation = def.Name
		return m, ui.SwitchView(state.ProgressView)
	}

	m.Console().Ask(state.Pending{
		Kind:        state.ConfirmOperation,
		Operation:   def.Name,
		Title:       def.DisplayTitle(),
		Description: def.Description,
	})
	return m, ui.SwitchView(state.ConfirmView)
}

func (h *KeyHandler) submitConfirm(m *state.Manager, input string) (*state.Manager, tea.Cmd) {
	switch strings.ToLower(input) {
	case constants.KeyConfirm_Yes, "yes":
	default:
		return h.cancelPending(m)
	}

	p := m.Console().Take()
	if p == nil {
		return m, m.UI().SwitchView(state.MainMenuView)
	}

	switch p.Kind {
	case state.ConfirmRestore:
		return m, h.cmdBuilder.RestoreCmd(m, p.Subsystem, p.Profile)
	default:
		return m, h.cmdBuilder.RunOperationCmd(m, p.Operation)
	}
}

// cancelPending 拒絕確認：不發起請求，也不寫終端日誌
func (h *KeyHandler) cancelPending(m *state.Manager) (*state.Manager, tea.Cmd) {
	p := m.Console().Take()
	back := state.OperationsView
	if p != nil && p.Kind == state.ConfirmRestore {
		back = state.ProfilesView
	}
	cmd := m.UI().SwitchView(back)
	m.UI().SetStatus(state.StatusInfo, "已取消", "")
	return m, cmd
}

func (h *KeyHandler) submitProfiles(m *state.Manager, input string) (*state.Manager, tea.Cmd) {
	ui := m.UI()
	c := m.Console()

	switch strings.ToLower(input) {
	case constants.KeyBack:
		return m, ui.SwitchView(state.MainMenuView)
	case constants.KeyProfiles_Windsurf:
		c.ProfileSubsystem = status.Windsurf
		return m, nil
	case constants.KeyProfiles_VSCode:
		c.ProfileSubsystem = status.VSCode
		return m, nil
	case constants.KeyProfiles_Reload:
		ui.SetStatus(state.StatusInfo, "正在重新加載...", "")
		return m, h.cmdBuilder.ReloadProfilesCmd(m)
	}

	e := m.Engine()
	if e == nil {
		return m, nil
	}
	profiles := e.Profiles(c.ProfileSubsystem)

	idx, err := inputvalidator.ParseMenuNumber(input, 1, len(profiles))
	if err != nil {
		ui.SetStatus(state.StatusError, fmt.Sprintf("無效選項: %s", input), "")
		return m, nil
	}
	p := profiles[idx-1]
	if err := inputvalidator.ValidateProfileName(p.Name); err != nil {
		ui.SetStatus(state.StatusError, fmt.Sprintf("配置名稱無效: %v", err), "")
		return m, nil
	}

	desc := p.Description
	if desc == "" && p.Hostname != "" {
		desc = "主機: " + p.Hostname
	}
	c.Ask(state.Pending{
		Kind:        state.ConfirmRestore,
		Subsystem:   c.ProfileSubsystem,
		Profile:     p.Name,
		Title:       fmt.Sprintf("恢復 %s 配置: %s", view.SubsystemLabel(c.ProfileSubsystem), p.Name),
		Description: desc,
	})
	return m, ui.SwitchView(state.ConfirmView)
}

// pick 按 1 起始的序號選擇操作
func pick(defs []operation.Definition, input string) (operation.Definition, bool) {
	idx, err := inputvalidator.ParseMenuNumber(input, 1, len(defs))
	if err != nil {
		return operation.Definition{}, false
	}
	return defs[idx-1], true
}
