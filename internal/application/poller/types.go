package poller

import (
	"context"
	"time"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// Fetched 一次拉取得到的數據，按子系統分槽
type Fetched struct {
	Snapshots map[status.Subsystem]status.Value
	Profiles  map[status.Subsystem][]status.ConfigProfile
}

// FetchFunc 一次遠程調用
type FetchFunc func(ctx context.Context) (Fetched, error)

// Probe 一次遠程調用及其寫入的數據槽
type Probe struct {
	Name    string
	Label   string // 日誌中的描述，如 "system status"
	Targets []status.Target
	Fetch   FetchFunc
}

// Covers 是否寫入指定子系統
func (p Probe) Covers(sub status.Subsystem) bool {
	for _, t := range p.Targets {
		if t.Subsystem == sub {
			return true
		}
	}
	return false
}

func (p Probe) label() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

// Task 一組按同一間隔觸發的探針，Interval 為 0 時僅按需拉取
type Task struct {
	Name     string
	Interval time.Duration
	Probes   []Probe
}

// TickMsg 任務的定時觸發
type TickMsg struct {
	Task string
	At   time.Time
}

// ResultMsg 一次拉取的結果，只在事件循環中合併
type ResultMsg struct {
	Task   string
	Probe  string
	Seqs   map[status.Target]uint64
	Data   Fetched
	Err    error
	Manual bool
	Quiet  bool // 成功時不寫控制台日誌
}
