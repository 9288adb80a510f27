package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

// Sink 輪詢器寫日誌的出口
type Sink interface {
	Log(text string, level console.Level)
}

// BackoffConfig 連續失敗時的退避參數
type BackoffConfig struct {
	Enabled    bool
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// TickFunc 定時器，默認 tea.Tick
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

type probeState struct {
	probe     Probe
	scheduled bool // 定時拉取是否仍在進行
	failures  int
	bo        *backoff.ExponentialBackOff
	nextAt    time.Time
}

type taskState struct {
	task   Task
	probes []*probeState
}

// Poller 按任務定時拉取並合併到 Store
// Handle 與各 Request 方法只能在事件循環中調用
type Poller struct {
	tasks  []*taskState
	byName map[string]*taskState

	store  *status.Store
	sink   Sink
	logger *zap.Logger

	ctx        context.Context
	tick       TickFunc
	now        func() time.Time
	backoff    BackoffConfig
	logUpdates bool
}

// Option 輪詢器選項
type Option func(*Poller)

// WithLogger 設置日誌
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l.Named("poller") }
}

// WithContext 所有拉取的父上下文
func WithContext(ctx context.Context) Option {
	return func(p *Poller) { p.ctx = ctx }
}

// WithTick 替換定時器
func WithTick(fn TickFunc) Option {
	return func(p *Poller) { p.tick = fn }
}

// WithClock 替換時鐘 (退避判斷用)
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithBackoff 啟用失敗退避
func WithBackoff(cfg BackoffConfig) Option {
	return func(p *Poller) { p.backoff = cfg }
}

// WithStatusUpdates 定時拉取成功時也寫一行日誌
func WithStatusUpdates(enabled bool) Option {
	return func(p *Poller) { p.logUpdates = enabled }
}

// New 創建輪詢器
func New(store *status.Store, sink Sink, tasks []Task, opts ...Option) *Poller {
	p := &Poller{
		byName: make(map[string]*taskState, len(tasks)),
		store:  store,
		sink:   sink,
		logger: zap.NewNop(),
		ctx:    context.Background(),
		tick:   tea.Tick,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, t := range tasks {
		ts := &taskState{task: t}
		for _, pr := range t.Probes {
			ts.probes = append(ts.probes, &probeState{probe: pr, bo: p.newBackoff()})
		}
		p.tasks = append(p.tasks, ts)
		p.byName[t.Name] = ts
	}
	return p
}

func (p *Poller) newBackoff() *backoff.ExponentialBackOff {
	if !p.backoff.Enabled {
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.backoff.Initial
	bo.MaxInterval = p.backoff.Max
	bo.Multiplier = p.backoff.Multiplier
	bo.MaxElapsedTime = 0 // 輪詢永不放棄
	bo.Reset()
	return bo
}

// Tasks 已註冊的任務
func (p *Poller) Tasks() []Task {
	out := make([]Task, 0, len(p.tasks))
	for _, ts := range p.tasks {
		out = append(out, ts.task)
	}
	return out
}

// Start 每個任務立即拉取一次，並為 Interval > 0 的任務啟動各自的定時鏈
func (p *Poller) Start() tea.Cmd {
	var cmds []tea.Cmd
	for _, ts := range p.tasks {
		for _, ps := range ts.probes {
			cmds = append(cmds, p.issue(ts.task.Name, ps, false, false))
		}
		if ts.task.Interval > 0 {
			cmds = append(cmds, p.schedule(ts.task))
		}
	}
	return tea.Batch(cmds...)
}

// Handle 處理 TickMsg / ResultMsg，其他消息返回 false
func (p *Poller) Handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case TickMsg:
		return p.onTick(msg), true
	case ResultMsg:
		p.onResult(msg)
		return nil, true
	}
	return nil, false
}

// RequestPoll 手動拉取涉及這些子系統的全部探針，不受在途檢查限制
func (p *Poller) RequestPoll(subs ...status.Subsystem) tea.Cmd {
	var names []string
	for _, sub := range subs {
		if p.covered(sub) {
			names = append(names, string(sub))
		}
	}
	if len(names) > 0 {
		p.sink.Log(fmt.Sprintf("Checking %s status...", strings.Join(names, ", ")), console.LevelInfo)
	}
	return p.poll(subs, false)
}

// covered 是否有探針寫入該子系統
func (p *Poller) covered(sub status.Subsystem) bool {
	for _, ts := range p.tasks {
		for _, ps := range ts.probes {
			if ps.probe.Covers(sub) {
				return true
			}
		}
	}
	return false
}

// Refresh 同 RequestPoll，但成功時不寫控制台日誌 (操作完成後的刷新)
func (p *Poller) Refresh(subs ...status.Subsystem) tea.Cmd {
	return p.poll(subs, true)
}

func (p *Poller) poll(subs []status.Subsystem, quiet bool) tea.Cmd {
	var cmds []tea.Cmd
	seen := make(map[*probeState]bool)
	for _, ts := range p.tasks {
		for _, ps := range ts.probes {
			if seen[ps] {
				continue
			}
			for _, sub := range subs {
				if ps.probe.Covers(sub) {
					seen[ps] = true
					cmds = append(cmds, p.issue(ts.task.Name, ps, true, quiet))
					break
				}
			}
		}
	}
	return tea.Batch(cmds...)
}

// RequestTask 手動觸發整個任務 (如按需的 profiles)
func (p *Poller) RequestTask(name string) tea.Cmd {
	ts, ok := p.byName[name]
	if !ok {
		return nil
	}
	var cmds []tea.Cmd
	for _, ps := range ts.probes {
		cmds = append(cmds, p.issue(name, ps, true, false))
	}
	return tea.Batch(cmds...)
}

func (p *Poller) schedule(t Task) tea.Cmd {
	name := t.Name
	return p.tick(t.Interval, func(at time.Time) tea.Msg {
		return TickMsg{Task: name, At: at}
	})
}

func (p *Poller) onTick(msg TickMsg) tea.Cmd {
	ts, ok := p.byName[msg.Task]
	if !ok {
		return nil
	}

	// 先重新排程，慢探針不影響下一次觸發
	cmds := []tea.Cmd{p.schedule(ts.task)}
	now := p.now()
	for _, ps := range ts.probes {
		if ps.scheduled {
			p.logger.Debug("上一次拉取仍在進行，跳過",
				zap.String("task", ts.task.Name),
				zap.String("probe", ps.probe.Name),
			)
			continue
		}
		if !ps.nextAt.IsZero() && now.Before(ps.nextAt) {
			p.logger.Debug("退避中，跳過",
				zap.String("probe", ps.probe.Name),
				zap.Time("next", ps.nextAt),
			)
			continue
		}
		cmds = append(cmds, p.issue(ts.task.Name, ps, false, false))
	}
	return tea.Batch(cmds...)
}

// issue 在事件循環中分配序號，返回真正執行遠程調用的命令
func (p *Poller) issue(task string, ps *probeState, manual, quiet bool) tea.Cmd {
	seqs := make(map[status.Target]uint64, len(ps.probe.Targets))
	for _, t := range ps.probe.Targets {
		seqs[t] = p.store.Issue(t)
	}
	if !manual {
		ps.scheduled = true
	}

	ctx := p.ctx
	probe := ps.probe
	return func() tea.Msg {
		data, err := probe.Fetch(ctx)
		return ResultMsg{
			Task:   task,
			Probe:  probe.Name,
			Seqs:   seqs,
			Data:   data,
			Err:    err,
			Manual: manual,
			Quiet:  quiet,
		}
	}
}

func (p *Poller) onResult(msg ResultMsg) {
	ts, ok := p.byName[msg.Task]
	if !ok {
		return
	}
	var ps *probeState
	for _, candidate := range ts.probes {
		if candidate.probe.Name == msg.Probe {
			ps = candidate
			break
		}
	}
	if ps == nil {
		return
	}
	if !msg.Manual {
		ps.scheduled = false
	}

	if msg.Err != nil {
		p.onFailure(ps, msg.Err)
		return
	}
	p.onSuccess(ps)

	// 配置列表的更新不單獨寫日誌
	merged := 0
	for _, target := range ps.probe.Targets {
		seq := msg.Seqs[target]
		switch target.Kind {
		case status.KindSnapshot:
			v, ok := msg.Data.Snapshots[target.Subsystem]
			if !ok {
				continue
			}
			if p.store.Merge(status.Snapshot{Subsystem: target.Subsystem, Seq: seq, Value: v}) {
				merged++
			}
		case status.KindProfiles:
			list, ok := msg.Data.Profiles[target.Subsystem]
			if !ok {
				continue
			}
			if _, dropped := status.DedupeProfiles(list); len(dropped) > 0 {
				p.sink.Log(fmt.Sprintf("Duplicate %s profiles ignored: %s",
					target.Subsystem, strings.Join(dropped, ", ")), console.LevelWarning)
			}
			p.store.MergeProfiles(target.Subsystem, seq, list)
		}
	}

	if merged == 0 {
		return
	}
	if msg.Quiet {
		return
	}
	if msg.Manual {
		p.sink.Log("Status updated", console.LevelSuccess)
	} else if p.logUpdates {
		p.sink.Log(fmt.Sprintf("%s updated", ps.probe.label()), console.LevelInfo)
	}
}

func (p *Poller) onFailure(ps *probeState, err error) {
	ps.failures++
	p.sink.Log(fmt.Sprintf("Error loading %s: %s", ps.probe.label(), errors.Reason(err)), console.LevelError)

	fields := []zap.Field{
		zap.String("probe", ps.probe.Name),
		zap.Int("failures", ps.failures),
		zap.Error(err),
	}
	if ps.bo != nil {
		wait := ps.bo.NextBackOff()
		ps.nextAt = p.now().Add(wait)
		fields = append(fields, zap.Duration("backoff", wait))
	}
	p.logger.Warn("拉取失敗", fields...)
}

func (p *Poller) onSuccess(ps *probeState) {
	if ps.failures > 0 {
		p.logger.Info("拉取恢復", zap.String("probe", ps.probe.Name), zap.Int("after_failures", ps.failures))
	}
	ps.failures = 0
	ps.nextAt = time.Time{}
	if ps.bo != nil {
		ps.bo.Reset()
	}
}
