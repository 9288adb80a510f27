package application

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/application/poller"
	domainConfig "github.com/Yat-Muk/opsdeck/internal/domain/config"
	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

type fakeAPI struct {
	mu         sync.Mutex
	calls      map[string]int
	historyErr error
	result     operation.Result
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}, result: operation.Result{Success: true}}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) StatusSummary(context.Context) (map[status.Subsystem]status.Value, error) {
	f.hit("summary")
	return map[status.Subsystem]status.Value{
		status.Windsurf: {Installed: true},
		status.VSCode:   {Installed: true},
		status.Host:     {Details: map[string]string{"hostname": "studio"}},
	}, nil
}

func (f *fakeAPI) Profiles(_ context.Context, sub status.Subsystem) ([]status.ConfigProfile, error) {
	f.hit("profiles/" + string(sub))
	return []status.ConfigProfile{{Name: "work"}}, nil
}

func (f *fakeAPI) StealthStatus(context.Context) (status.Value, error) {
	f.hit("stealth")
	return status.Value{State: status.StateActive}, nil
}

func (f *fakeAPI) MonitorProcesses(context.Context) (status.Value, error) {
	f.hit("processes")
	return status.Value{Count: 3}, nil
}

func (f *fakeAPI) MonitorNetwork(context.Context) (status.Value, error) {
	f.hit("network")
	return status.Value{State: status.StateNormal}, nil
}

func (f *fakeAPI) MonitorFingerprint(context.Context) (status.Value, error) {
	f.hit("fingerprint")
	return status.Value{}, errors.Transport("GET /api/monitor/fingerprint", stderrors.New("connection refused"))
}

func (f *fakeAPI) History(context.Context) ([]domainConsole.HistoryEntry, error) {
	f.hit("history")
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []domainConsole.HistoryEntry{
		{Message: "server started", Level: domainConsole.LevelInfo},
	}, nil
}

func (f *fakeAPI) RunOperation(_ context.Context, def operation.Definition) (operation.Result, error) {
	f.hit("run/" + def.Name)
	return f.result, nil
}

func (f *fakeAPI) Restore(_ context.Context, sub status.Subsystem, name string) (operation.Ack, error) {
	f.hit("restore/" + string(sub))
	return operation.Ack{Success: true}, nil
}

type scheduled struct {
	d   time.Duration
	msg tea.Msg
}

func newTestEngine(t *testing.T, api *fakeAPI) (*Engine, *[]scheduled) {
	t.Helper()
	var delays []scheduled
	e, err := NewEngine(domainConfig.DefaultConfig(), api,
		WithPollerOptions(poller.WithTick(NoTicks)),
		WithOrchestratorOptions(orchestrator.WithScheduler(func(d time.Duration, msg tea.Msg) tea.Cmd {
			delays = append(delays, scheduled{d, msg})
			return func() tea.Msg { return msg }
		})),
	)
	require.NoError(t, err)
	return e, &delays
}

func texts(lines []domainConsole.LogLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewEngine(nil, newFakeAPI())
	assert.True(t, errors.IsValidation(err))

	_, err = NewEngine(domainConfig.DefaultConfig(), nil)
	assert.True(t, errors.IsValidation(err))

	cfg := domainConfig.DefaultConfig()
	cfg.Operations = []operation.Definition{{Name: "broken", Path: "no-slash"}}
	_, err = NewEngine(cfg, newFakeAPI())
	assert.Error(t, err)
}

func TestEngine_Start(t *testing.T) {
	api := newFakeAPI()
	e, _ := newTestEngine(t, api)

	require.NoError(t, e.Drain(context.Background(), e.Start()))

	lines := texts(e.Lines())
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, Banner, lines[:2])
	assert.Contains(t, lines, "Error loading fingerprint monitor: connection refused")

	assert.True(t, e.Snapshot(status.Windsurf).Installed)
	assert.Equal(t, "studio", e.Snapshot(status.Host).Detail("hostname"))
	assert.Equal(t, status.StateActive, e.Snapshot(status.Stealth).State)
	assert.False(t, e.Snapshot(status.Fingerprint).Known())
	assert.Len(t, e.Profiles(status.VSCode), 1)

	require.Len(t, e.History(), 1)
	assert.Equal(t, "server started", e.History()[0].Message)
	assert.Equal(t, 1, api.count("history"))
}

func TestEngine_HistoryFailureIsQuiet(t *testing.T) {
	api := newFakeAPI()
	api.historyErr = errors.Transport("GET /api/history", stderrors.New("timeout"))
	e, _ := newTestEngine(t, api)

	e.Handle(e.loadHistory()())
	assert.Empty(t, e.History())
	assert.Empty(t, e.Lines())
}

func TestEngine_FullCleanupRefreshes(t *testing.T) {
	api := newFakeAPI()
	e, delays := newTestEngine(t, api)

	cmd, err := e.RequestOperation("windsurf-full", true)
	require.NoError(t, err)
	assert.True(t, e.Busy())
	require.NoError(t, e.Drain(context.Background(), cmd))

	assert.False(t, e.Busy())
	assert.Equal(t, operation.PhaseCompleted, e.Operation("windsurf-full").Phase)
	require.Len(t, e.History(), 1)
	assert.Equal(t, "windsurf full cleanup completed", e.History()[0].Message)

	require.Len(t, *delays, 1)
	assert.Equal(t, 2000*time.Millisecond, (*delays)[0].d)

	// 刷新走 summary 與 windsurf 配置列表，且不寫額外日誌
	assert.Equal(t, 1, api.count("summary"))
	assert.Equal(t, 1, api.count("profiles/windsurf"))
	assert.NotContains(t, texts(e.Lines()), "Status updated")
	assert.True(t, e.Snapshot(status.Windsurf).Known())
}

func TestEngine_OneShotSkipsRefresh(t *testing.T) {
	api := newFakeAPI()
	e, err := NewEngine(domainConfig.DefaultConfig(), api,
		WithPollerOptions(poller.WithTick(NoTicks)),
		WithOrchestratorOptions(orchestrator.WithScheduler(SkipDelayed)),
	)
	require.NoError(t, err)

	cmd, err := e.RequestOperation("windsurf-full", true)
	require.NoError(t, err)
	require.NoError(t, e.Drain(context.Background(), cmd))

	assert.Equal(t, operation.PhaseCompleted, e.Operation("windsurf-full").Phase)
	assert.Equal(t, 1, api.count("run/windsurf-full"))
	assert.Zero(t, api.count("summary"))
	assert.Zero(t, api.count("profiles/windsurf"))
}

func TestEngine_RestoreRefreshesImmediately(t *testing.T) {
	api := newFakeAPI()
	e, delays := newTestEngine(t, api)
	require.NoError(t, e.Drain(context.Background(), e.RequestProfiles()))
	require.Len(t, e.Profiles(status.Windsurf), 1)

	cmd, err := e.RequestRestore(status.Windsurf, "work", true)
	require.NoError(t, err)
	require.NoError(t, e.Drain(context.Background(), cmd))

	assert.Equal(t, 1, api.count("restore/windsurf"))
	assert.Empty(t, *delays)
	assert.Equal(t, 1, api.count("summary"))
	assert.Equal(t, "Restored windsurf config: work", e.History()[0].Message)
}

func TestEngine_RequestPollLogs(t *testing.T) {
	e, _ := newTestEngine(t, newFakeAPI())
	require.NoError(t, e.Drain(context.Background(), e.RequestPoll(status.Network)))

	assert.Equal(t, []string{"Checking network status...", "Status updated"}, texts(e.Lines()))
	assert.Equal(t, status.StateNormal, e.Snapshot(status.Network).State)
}

func TestEngine_Operations(t *testing.T) {
	cfg := domainConfig.DefaultConfig()
	cfg.Operations = []operation.Definition{{
		Name:      "flush-dns",
		Title:     "DNS flush",
		Subsystem: status.Host,
		Path:      "/api/tools/flush-dns",
	}}
	e, err := NewEngine(cfg, newFakeAPI())
	require.NoError(t, err)

	ops := e.Operations()
	assert.Len(t, ops, len(operation.DefaultCatalog())+1)
	assert.Equal(t, "flush-dns", ops[len(ops)-1].Name)
	assert.Equal(t, operation.PhaseIdle, e.Operation("flush-dns").Phase)
}

func TestEngine_Owns(t *testing.T) {
	e, _ := newTestEngine(t, newFakeAPI())
	assert.True(t, e.Owns(poller.TickMsg{}))
	assert.True(t, e.Owns(orchestrator.RefreshMsg{}))
	assert.True(t, e.Owns(HistoryMsg{}))
	assert.False(t, e.Owns(tea.KeyMsg{}))
	assert.Nil(t, e.Handle(tea.KeyMsg{}))
}

func TestEngine_DrainHonoursContext(t *testing.T) {
	e, _ := newTestEngine(t, newFakeAPI())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Drain(ctx, e.Start()), context.Canceled)
}
