package state

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	ttea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/opsdeck/internal/tui/view"
)

// View 定義視圖枚舉
type View int

const (
	MainMenuView   View = iota // 儀表板 + 主菜單
	OperationsView             // 操作列表
	ConfirmView                // 執行前確認
	ProgressView               // 操作進度
	ProfilesView               // 已保存配置
	LogViewerView              // 終端日誌 (全屏/滾動)
	HistoryView                // 變更歷史
)

// StatusType 狀態類型
type StatusType int

const (
	StatusReady StatusType = iota
	StatusSuccess
	StatusError
	StatusInfo
	StatusWarn
)

// StatusMsg 狀態欄消息
type StatusMsg struct {
	Type    StatusType
	Message string
	Detail  string
}

// Notice 轉換為狀態欄渲染數據
func (s StatusMsg) Notice() view.Notice {
	tone := view.ToneNone
	switch s.Type {
	case StatusInfo:
		tone = view.ToneInfo
	case StatusSuccess:
		tone = view.ToneSuccess
	case StatusWarn:
		tone = view.ToneWarn
	case StatusError:
		tone = view.ToneError
	}
	return view.Notice{Tone: tone, Text: s.Message, Detail: s.Detail}
}

// UIState UI 核心狀態
type UIState struct {
	CurrentView  View
	PreviousView View // 用於返回
	TextInput    textinput.Model
	Spinner      spinner.Model
	Width        int
	Height       int
	Status       StatusMsg
}

// NewUIState 創建 UI 狀態
func NewUIState() *UIState {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &UIState{
		CurrentView: MainMenuView,
		TextInput:   ti,
		Width:       80,
		Height:      24,
		Status:      StatusMsg{Type: StatusReady},
		Spinner:     s,
	}
}

// SwitchView 切換視圖
func (s *UIState) SwitchView(v View) ttea.Cmd {
	s.PreviousView = s.CurrentView
	s.CurrentView = v
	s.TextInput.Reset()

	// 錯誤狀態保留給用戶看
	if s.Status.Type != StatusError {
		s.Status = StatusMsg{Type: StatusReady}
	}

	return s.TextInput.Focus()
}

// SetStatus 設置狀態欄消息
func (s *UIState) SetStatus(t StatusType, msg, detail string) {
	s.Status = StatusMsg{
		Type:    t,
		Message: msg,
		Detail:  detail,
	}
}

// ClearStatus 清空狀態欄
func (s *UIState) ClearStatus() {
	s.Status = StatusMsg{Type: StatusReady}
}

// UpdateInput 更新輸入框
func (s *UIState) UpdateInput(msg ttea.Msg) ttea.Cmd {
	var cmd ttea.Cmd
	s.TextInput, cmd = s.TextInput.Update(msg)
	return cmd
}

func (s *UIState) GetInputBuffer() string {
	return s.TextInput.Value()
}

func (s *UIState) ClearInput() {
	s.TextInput.Reset()
}

// UpdateSize 更新尺寸
func (s *UIState) UpdateSize(w, h int) {
	s.Width = w
	s.Height = h
}
