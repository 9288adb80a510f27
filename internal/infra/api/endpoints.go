package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

type appStatus struct {
	Installed bool `json:"installed"`
	Configs   int  `json:"configs"`
}

type statusSummary struct {
	Hostname  string    `json:"hostname"`
	Windsurf  appStatus `json:"windsurf"`
	VSCode    appStatus `json:"vscode"`
	Timestamp string    `json:"timestamp"`
}

// StatusSummary 應用安裝狀態與主機名
func (c *Client) StatusSummary(ctx context.Context) (map[status.Subsystem]status.Value, error) {
	var s statusSummary
	if err := c.getJSON(ctx, "/api/status", &s); err != nil {
		return nil, err
	}
	at := c.stamp(s.Timestamp)

	app := func(a appStatus) status.Value {
		state := status.StateInactive
		if a.Installed {
			state = status.StateActive
		}
		return status.Value{
			Installed: a.Installed,
			Active:    a.Installed,
			State:     state,
			Count:     a.Configs,
			UpdatedAt: at,
		}
	}

	return map[status.Subsystem]status.Value{
		status.Windsurf: app(s.Windsurf),
		status.VSCode:   app(s.VSCode),
		status.Host: {
			State:     status.StateNormal,
			Details:   map[string]string{"hostname": s.Hostname},
			UpdatedAt: at,
		},
	}, nil
}

type profileWire struct {
	Name        string `json:"name"`
	Hostname    string `json:"hostname"`
	Created     string `json:"created"`
	Description string `json:"description"`
}

// Profiles 指定子系統保存的配置列表
func (c *Client) Profiles(ctx context.Context, sub status.Subsystem) ([]status.ConfigProfile, error) {
	var resp struct {
		Configs []profileWire `json:"configs"`
	}
	if err := c.getJSON(ctx, "/api/configs/"+string(sub), &resp); err != nil {
		return nil, err
	}

	out := make([]status.ConfigProfile, 0, len(resp.Configs))
	for _, p := range resp.Configs {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		created, _ := ParseTimestamp(p.Created)
		out = append(out, status.ConfigProfile{
			Name:        p.Name,
			Hostname:    p.Hostname,
			Created:     created,
			Description: p.Description,
		})
	}
	return out, nil
}

// StealthStatus 隱身監控與指紋信息
func (c *Client) StealthStatus(ctx context.Context) (status.Value, error) {
	var s struct {
		Monitor      bool   `json:"stealth_monitor"`
		Hostname     string `json:"hostname"`
		MACAddress   string `json:"mac_address"`
		HardwareUUID string `json:"hardware_uuid"`
		Timestamp    string `json:"timestamp"`
	}
	if err := c.getJSON(ctx, "/api/stealth/status", &s); err != nil {
		return status.Value{}, err
	}

	state := status.StateInactive
	if s.Monitor {
		state = status.StateActive
	}
	return status.Value{
		Active: s.Monitor,
		State:  state,
		Details: map[string]string{
			"hostname":      s.Hostname,
			"mac_address":   s.MACAddress,
			"hardware_uuid": s.HardwareUUID,
		},
		UpdatedAt: c.stamp(s.Timestamp),
	}, nil
}

type monitorWire struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m monitorWire) check(op string) error {
	if m.Success != nil && !*m.Success {
		reason := m.Error
		if reason == "" {
			reason = m.Message
		}
		if reason == "" {
			reason = "monitor probe failed"
		}
		return errors.Backend(op, reason)
	}
	return nil
}

// MonitorProcesses 受管應用的進程數
func (c *Client) MonitorProcesses(ctx context.Context) (status.Value, error) {
	var m struct {
		monitorWire
		Windsurf int `json:"windsurf"`
		VSCode   int `json:"vscode"`
	}
	const path = "/api/monitor/processes"
	if err := c.getJSON(ctx, path, &m); err != nil {
		return status.Value{}, err
	}
	if err := m.check("GET " + path); err != nil {
		return status.Value{}, err
	}

	total := m.Windsurf + m.VSCode
	state := status.StateInactive
	if total > 0 {
		state = status.StateActive
	}
	return status.Value{
		Active: total > 0,
		State:  state,
		Count:  total,
		Details: map[string]string{
			"windsurf": strconv.Itoa(m.Windsurf),
			"vscode":   strconv.Itoa(m.VSCode),
		},
		UpdatedAt: c.now(),
	}, nil
}

// MonitorNetwork 網絡連通性 (NORMAL / OFFLINE / UNKNOWN)
func (c *Client) MonitorNetwork(ctx context.Context) (status.Value, error) {
	return c.monitorState(ctx, "/api/monitor/network")
}

// MonitorFingerprint 硬件指紋狀態 (SPOOFED / ORIGINAL)
func (c *Client) MonitorFingerprint(ctx context.Context) (status.Value, error) {
	return c.monitorState(ctx, "/api/monitor/fingerprint")
}

func (c *Client) monitorState(ctx context.Context, path string) (status.Value, error) {
	var m struct {
		monitorWire
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, path, &m); err != nil {
		return status.Value{}, err
	}
	if err := m.check("GET " + path); err != nil {
		return status.Value{}, err
	}

	state := strings.ToUpper(strings.TrimSpace(m.Status))
	if state == "" {
		state = status.StateUnknown
	}
	return status.Value{
		Active:    state == status.StateNormal || state == status.StateSpoofed,
		State:     state,
		UpdatedAt: c.now(),
	}, nil
}

// History 後端保存的變更歷史，最新在前
func (c *Client) History(ctx context.Context) ([]console.HistoryEntry, error) {
	var resp struct {
		History []struct {
			Timestamp string `json:"timestamp"`
			Message   string `json:"message"`
			Type      string `json:"type"`
		} `json:"history"`
	}
	if err := c.getJSON(ctx, "/api/history", &resp); err != nil {
		return nil, err
	}

	out := make([]console.HistoryEntry, 0, len(resp.History))
	for _, h := range resp.History {
		// 未知級別按 info 顯示
		level, _ := console.ParseLevel(h.Type)
		out = append(out, console.HistoryEntry{
			Timestamp: c.stamp(h.Timestamp),
			Message:   h.Message,
			Level:     level,
		})
	}
	return out, nil
}

type resultWire struct {
	Success bool             `json:"success"`
	Steps   []operation.Step `json:"steps"`
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Output  string           `json:"output"`
}

// RunOperation 執行一個操作，後端報告的失敗體現在 Result.Success 中
func (c *Client) RunOperation(ctx context.Context, def operation.Definition) (operation.Result, error) {
	var in any
	if len(def.Args) > 0 {
		in = def.Args
	}

	var w resultWire
	if err := c.postJSON(ctx, def.Path, in, &w); err != nil {
		return operation.Result{}, err
	}

	msg := w.Message
	if msg == "" && w.Success {
		msg = strings.TrimSpace(w.Output)
	}
	return operation.Result{
		Success: w.Success,
		Steps:   w.Steps,
		Error:   w.Error,
		Message: msg,
	}, nil
}

// Restore 恢復指定配置
func (c *Client) Restore(ctx context.Context, sub status.Subsystem, name string) (operation.Ack, error) {
	var ack operation.Ack
	body := map[string]string{"config": name}
	if err := c.postJSON(ctx, "/api/restore/"+string(sub), body, &ack); err != nil {
		return operation.Ack{}, err
	}
	return ack, nil
}

func (c *Client) stamp(raw string) time.Time {
	if ts, ok := ParseTimestamp(raw); ok {
		return ts
	}
	return c.now()
}

// 後端時間戳格式不統一
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02_15-04-05",
	"20060102_150405",
	"2006-01-02",
}

// ParseTimestamp 寬鬆解析時間戳，無時區的按本地時間處理
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, true
		}
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}
