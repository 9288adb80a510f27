package operation

import (
	"strings"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// StepStatus 後端報告的單步狀態
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Icon 進度圖標
func (s StepStatus) Icon() string {
	switch s {
	case StepSuccess:
		return "✅"
	case StepFailed:
		return "❌"
	case StepRunning:
		return "⏳"
	default:
		return "⏭️"
	}
}

// Class 進度記錄的樣式類別，其他狀態一律為空 (中性)
func (s StepStatus) Class() string {
	switch s {
	case StepSuccess:
		return "success"
	case StepFailed:
		return "failed"
	case StepRunning:
		return "running"
	default:
		return ""
	}
}

// Level 對應的終端日誌級別
func (s StepStatus) Level() console.Level {
	switch s {
	case StepSuccess:
		return console.LevelSuccess
	case StepFailed:
		return console.LevelError
	default:
		return console.LevelInfo
	}
}

// Step 後端返回的一個步驟
type Step struct {
	Name   string     `json:"step"`
	Status StepStatus `json:"status"`
	Output string     `json:"output,omitempty"`
}

// Result 一次操作的整體結果
type Result struct {
	Success bool   `json:"success"`
	Steps   []Step `json:"steps,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// FailureReason 失敗原因，優先使用 error 字段
func (r Result) FailureReason() string {
	if e := strings.TrimSpace(r.Error); e != "" {
		return e
	}
	if m := strings.TrimSpace(r.Message); m != "" {
		return m
	}
	return "process failed"
}

// Phase 單個操作的狀態機
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
	PhaseError     Phase = "error"
)

// Terminal 是否為終態
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseError
}

// Progress 進度面板上的一條記錄
type Progress struct {
	Step   string
	Status StepStatus
	Icon   string
	Class  string
}

// NewProgress 由步驟生成進度記錄
func NewProgress(s Step) Progress {
	return Progress{
		Step:   s.Name,
		Status: s.Status,
		Icon:   s.Status.Icon(),
		Class:  s.Status.Class(),
	}
}

// Mark 操作成功後直接寫入的狀態 (沒有輪詢端點的子系統)
type Mark struct {
	Subsystem status.Subsystem `yaml:"subsystem"`
	State     string           `yaml:"state"`
}

// Definition 一個可執行的遠程操作
type Definition struct {
	Name        string             `yaml:"name"`
	Title       string             `yaml:"title"`
	Subsystem   status.Subsystem   `yaml:"subsystem"`
	Path        string             `yaml:"path"`
	Args        map[string]string  `yaml:"args,omitempty"`
	Description string             `yaml:"description"`
	Notice      string             `yaml:"notice,omitempty"`   // 開始後追加的提示
	Reminder    string             `yaml:"reminder,omitempty"` // 成功後追加的提醒
	Refresh     []status.Subsystem `yaml:"refresh,omitempty"`
	Marks       []Mark             `yaml:"marks,omitempty"`
}

// Ack restore 等簡單調用的應答
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Reason 失敗原因
func (a Ack) Reason() string {
	if a.Error != "" {
		return a.Error
	}
	if a.Message != "" {
		return a.Message
	}
	return "unknown error"
}
