package poller

import (
	"context"
	"time"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
)

// API 輪詢用到的後端查詢
type API interface {
	StatusSummary(ctx context.Context) (map[status.Subsystem]status.Value, error)
	Profiles(ctx context.Context, sub status.Subsystem) ([]status.ConfigProfile, error)
	StealthStatus(ctx context.Context) (status.Value, error)
	MonitorProcesses(ctx context.Context) (status.Value, error)
	MonitorNetwork(ctx context.Context) (status.Value, error)
	MonitorFingerprint(ctx context.Context) (status.Value, error)
}

// Intervals 各任務的輪詢間隔
type Intervals struct {
	Status  time.Duration
	Stealth time.Duration
	Monitor time.Duration
}

// 任務名稱
const (
	TaskStatus   = "status"
	TaskStealth  = "stealth"
	TaskMonitor  = "monitor"
	TaskProfiles = "profiles"
)

// DefaultTasks 控制台的標準輪詢任務
func DefaultTasks(api API, iv Intervals) []Task {
	return []Task{
		{
			Name:     TaskStatus,
			Interval: iv.Status,
			Probes: []Probe{{
				Name:  "summary",
				Label: "system status",
				Targets: []status.Target{
					status.SnapshotOf(status.Windsurf),
					status.SnapshotOf(status.VSCode),
					status.SnapshotOf(status.Host),
				},
				Fetch: func(ctx context.Context) (Fetched, error) {
					m, err := api.StatusSummary(ctx)
					return Fetched{Snapshots: m}, err
				},
			}},
		},
		{
			Name:     TaskStealth,
			Interval: iv.Stealth,
			Probes: []Probe{
				single("stealth", "stealth status", status.Stealth, api.StealthStatus),
			},
		},
		{
			// 三個探針互不依賴，一個失敗不影響其他
			Name:     TaskMonitor,
			Interval: iv.Monitor,
			Probes: []Probe{
				single("processes", "process monitor", status.Monitor, api.MonitorProcesses),
				single("network", "network monitor", status.Network, api.MonitorNetwork),
				single("fingerprint", "fingerprint monitor", status.Fingerprint, api.MonitorFingerprint),
			},
		},
		{
			Name: TaskProfiles,
			Probes: []Probe{
				profiles(api, status.Windsurf),
				profiles(api, status.VSCode),
			},
		},
	}
}

func single(name, label string, sub status.Subsystem, fetch func(context.Context) (status.Value, error)) Probe {
	return Probe{
		Name:    name,
		Label:   label,
		Targets: []status.Target{status.SnapshotOf(sub)},
		Fetch: func(ctx context.Context) (Fetched, error) {
			v, err := fetch(ctx)
			if err != nil {
				return Fetched{}, err
			}
			return Fetched{Snapshots: map[status.Subsystem]status.Value{sub: v}}, nil
		},
	}
}

func profiles(api API, sub status.Subsystem) Probe {
	return Probe{
		Name:    string(sub) + "-profiles",
		Label:   string(sub) + " profiles",
		Targets: []status.Target{status.ProfilesOf(sub)},
		Fetch: func(ctx context.Context) (Fetched, error) {
			list, err := api.Profiles(ctx, sub)
			if err != nil {
				return Fetched{}, err
			}
			return Fetched{Profiles: map[status.Subsystem][]status.ConfigProfile{sub: list}}, nil
		},
	}
}
