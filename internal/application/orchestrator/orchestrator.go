package orchestrator

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/pkg/sanitizer"
)

// DefaultRefreshDelay 操作成功後刷新狀態前的等待
const DefaultRefreshDelay = 2000 * time.Millisecond

// API 操作用到的後端調用
type API interface {
	RunOperation(ctx context.Context, def operation.Definition) (operation.Result, error)
	Restore(ctx context.Context, sub status.Subsystem, name string) (operation.Ack, error)
}

// Sink 日誌與歷史出口
type Sink interface {
	Log(text string, level console.Level)
	Record(message string, level console.Level)
}

// Orchestrator 確認、啟動、單次遠程調用、渲染步驟、收尾
// 除構造外的方法只能在事件循環中調用
type Orchestrator struct {
	catalog *operation.Catalog
	api     API
	sink    Sink
	store   *status.Store
	logger  *zap.Logger

	runs map[string]*Run

	ctx          context.Context
	refreshDelay time.Duration
	after        func(d time.Duration, msg tea.Msg) tea.Cmd
	newID        func() string
	now          func() time.Time
}

// Option 選項
type Option func(*Orchestrator)

// WithLogger 設置日誌
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.Named("orchestrator") }
}

// WithContext 遠程調用的父上下文
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) { o.ctx = ctx }
}

// WithRefreshDelay 成功後刷新的延遲
func WithRefreshDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.refreshDelay = d }
}

// WithScheduler 替換延遲調度 (測試用)
func WithScheduler(after func(d time.Duration, msg tea.Msg) tea.Cmd) Option {
	return func(o *Orchestrator) { o.after = after }
}

// WithIDs 替換運行 ID 生成
func WithIDs(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithClock 替換時鐘
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New 創建編排器
func New(catalog *operation.Catalog, api API, sink Sink, store *status.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:      catalog,
		api:          api,
		sink:         sink,
		store:        store,
		logger:       zap.NewNop(),
		runs:         make(map[string]*Run),
		ctx:          context.Background(),
		refreshDelay: DefaultRefreshDelay,
		after:        tickAfter,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Catalog 可用操作
func (o *Orchestrator) Catalog() *operation.Catalog { return o.catalog }

// Run 指定操作的當前狀態，從未運行時為 idle
func (o *Orchestrator) Run(name string) Run {
	if r, ok := o.runs[name]; ok {
		return r.clone()
	}
	return Run{Name: name, Phase: operation.PhaseIdle}
}

// Busy 是否有操作正在運行
func (o *Orchestrator) Busy() bool {
	for _, r := range o.runs {
		if r.Phase == operation.PhaseRunning {
			return true
		}
	}
	return false
}

// RequestOperation 確認後啟動操作
// 未確認時什麼都不做並返回 (nil, nil)；同名操作運行中時拒絕
func (o *Orchestrator) RequestOperation(name string, confirmed bool) (tea.Cmd, error) {
	def, ok := o.catalog.Get(name)
	if !ok {
		return nil, errors.Validation(errors.ErrOperationNotFound, "unknown operation %q", name)
	}
	if !confirmed {
		return nil, nil
	}

	title := def.DisplayTitle()
	run, err := o.begin(name, title)
	if err != nil {
		return nil, err
	}

	o.sink.Log(fmt.Sprintf("Starting %s...", title), console.LevelWarning)
	if def.Notice != "" {
		o.sink.Log(def.Notice, console.LevelWarning)
	}
	o.logger.Info("操作開始", zap.String("operation", name), zap.String("run", run.ID))

	ctx := appctx.WithRunID(o.ctx, run.ID)
	id := run.ID
	return func() tea.Msg {
		res, err := o.api.RunOperation(ctx, def)
		return ResultMsg{Name: name, RunID: id, Result: res, Err: err}
	}, nil
}

// RequestRestore 確認後恢復一個已保存的配置
func (o *Orchestrator) RequestRestore(sub status.Subsystem, profile string, confirmed bool) (tea.Cmd, error) {
	if !sub.CanRestore() {
		return nil, errors.Validation(errors.ErrUnknownSubsystem, "subsystem %q has no profiles", sub)
	}
	if _, ok := status.FindProfile(o.store.Profiles(sub), profile); !ok {
		return nil, errors.Validation(errors.ErrProfileNotFound, "unknown %s profile %q", sub, profile)
	}
	if !confirmed {
		return nil, nil
	}

	name := RestoreName(sub)
	run, err := o.begin(name, fmt.Sprintf("%s restore", sub))
	if err != nil {
		return nil, err
	}

	o.sink.Log(fmt.Sprintf("Restoring %s config: %s...", sub, profile), console.LevelInfo)
	o.logger.Info("恢復配置", zap.String("subsystem", string(sub)), zap.String("profile", profile))

	ctx := appctx.WithRunID(o.ctx, run.ID)
	id := run.ID
	return func() tea.Msg {
		ack, err := o.api.Restore(ctx, sub, profile)
		return RestoreResultMsg{Subsystem: sub, Profile: profile, RunID: id, Ack: ack, Err: err}
	}, nil
}

// RestoreName 恢復操作在運行表中的鍵
func RestoreName(sub status.Subsystem) string { return "restore:" + string(sub) }

func (o *Orchestrator) begin(name, title string) (*Run, error) {
	if r, ok := o.runs[name]; ok && r.Phase == operation.PhaseRunning {
		o.sink.Log(fmt.Sprintf("%s is already running", title), console.LevelWarning)
		return nil, fmt.Errorf("%s: %w", name, errors.ErrOperationRunning)
	}
	r := &Run{
		Name:      name,
		ID:        o.newID(),
		Phase:     operation.PhaseRunning,
		StartedAt: o.now(),
	}
	o.runs[name] = r
	return r, nil
}

// Handle 處理操作結果，其他消息返回 false
func (o *Orchestrator) Handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ResultMsg:
		return o.onResult(msg), true
	case RestoreResultMsg:
		return o.onRestore(msg), true
	}
	return nil, false
}

// current 返回與消息匹配的運行，過期結果返回 nil
func (o *Orchestrator) current(name, runID string) *Run {
	r, ok := o.runs[name]
	if !ok || r.ID != runID || r.Phase != operation.PhaseRunning {
		o.logger.Debug("忽略過期結果", zap.String("operation", name), zap.String("run", runID))
		return nil
	}
	return r
}

func (o *Orchestrator) onResult(msg ResultMsg) tea.Cmd {
	r := o.current(msg.Name, msg.RunID)
	if r == nil {
		return nil
	}
	def, _ := o.catalog.Get(msg.Name)
	title := def.DisplayTitle()
	r.FinishedAt = o.now()

	if msg.Err != nil {
		reason := errors.Reason(msg.Err)
		r.Phase = operation.PhaseError
		r.Error = reason
		o.sink.Log(fmt.Sprintf("❌ Error during %s: %s", title, reason), console.LevelError)
		o.logger.Warn("操作調用失敗", zap.String("operation", msg.Name), zap.Any("error", sanitizer.Sanitize(msg.Err)))
		return nil
	}

	for _, step := range msg.Result.Steps {
		p := operation.NewProgress(step)
		r.Progress = append(r.Progress, p)
		o.sink.Log(fmt.Sprintf("%s %s: %s", p.Icon, step.Name, step.Status), step.Status.Level())
	}

	if !msg.Result.Success {
		reason := msg.Result.FailureReason()
		r.Phase = operation.PhaseFailed
		r.Error = reason
		o.sink.Log(fmt.Sprintf("❌ %s failed: %s", title, reason), console.LevelError)
		o.sink.Record(fmt.Sprintf("%s failed: %s", title, reason), console.LevelError)
		o.logger.Warn("操作失敗", zap.String("operation", msg.Name), zap.Any("reason", sanitizer.Sanitize(reason)))
		return nil
	}

	r.Phase = operation.PhaseCompleted
	o.sink.Log(fmt.Sprintf("✅ %s completed successfully", title), console.LevelSuccess)
	if def.Reminder != "" {
		o.sink.Log(def.Reminder, console.LevelWarning)
	}
	o.sink.Record(fmt.Sprintf("%s completed", title), console.LevelSuccess)
	o.applyMarks(def.Marks)
	o.logger.Info("操作完成",
		zap.String("operation", msg.Name),
		zap.Int("steps", len(msg.Result.Steps)),
		zap.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
	)

	if len(def.Refresh) == 0 {
		return nil
	}
	return o.after(o.refreshDelay, RefreshMsg{
		Operation:  msg.Name,
		Subsystems: append([]status.Subsystem(nil), def.Refresh...),
	})
}

// applyMarks 沒有輪詢端點的子系統直接寫入結果狀態
func (o *Orchestrator) applyMarks(marks []operation.Mark) {
	for _, m := range marks {
		seq := o.store.Issue(status.SnapshotOf(m.Subsystem))
		o.store.Merge(status.Snapshot{
			Subsystem: m.Subsystem,
			Seq:       seq,
			Value: status.Value{
				Active:    true,
				State:     m.State,
				UpdatedAt: o.now(),
			},
		})
	}
}

func (o *Orchestrator) onRestore(msg RestoreResultMsg) tea.Cmd {
	r := o.current(RestoreName(msg.Subsystem), msg.RunID)
	if r == nil {
		return nil
	}
	r.FinishedAt = o.now()

	if msg.Err != nil {
		r.Phase = operation.PhaseError
		r.Error = errors.Reason(msg.Err)
		o.sink.Log(fmt.Sprintf("❌ Restore failed: %s", r.Error), console.LevelError)
		return nil
	}
	if !msg.Ack.Success {
		r.Phase = operation.PhaseFailed
		r.Error = msg.Ack.Reason()
		o.sink.Log(fmt.Sprintf("❌ Restore failed: %s", r.Error), console.LevelError)
		return nil
	}

	r.Phase = operation.PhaseCompleted
	o.sink.Log("✅ Configuration restored successfully!", console.LevelSuccess)
	o.sink.Record(fmt.Sprintf("Restored %s config: %s", msg.Subsystem, msg.Profile), console.LevelSuccess)

	// 恢復後立即刷新
	sub := msg.Subsystem
	return func() tea.Msg {
		return RefreshMsg{Operation: RestoreName(sub), Subsystems: []status.Subsystem{sub, status.Host}}
	}
}
