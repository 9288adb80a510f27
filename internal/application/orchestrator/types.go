package orchestrator

import (
	"time"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// Run 一次操作運行的狀態
type Run struct {
	Name       string
	ID         string
	Phase      operation.Phase
	Progress   []operation.Progress
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Run) clone() Run {
	out := *r
	out.Progress = append([]operation.Progress(nil), r.Progress...)
	return out
}

// ResultMsg 操作調用返回
type ResultMsg struct {
	Name   string
	RunID  string
	Result operation.Result
	Err    error
}

// RestoreResultMsg 恢復調用返回
type RestoreResultMsg struct {
	Subsystem status.Subsystem
	Profile   string
	RunID     string
	Ack       operation.Ack
	Err       error
}

// RefreshMsg 請求重新拉取受影響的子系統
type RefreshMsg struct {
	Operation  string
	Subsystems []status.Subsystem
}
