package application

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/application/console"
	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/application/poller"
	domainConfig "github.com/Yat-Muk/opsdeck/internal/domain/config"
	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

// Banner 啟動時寫入控制台的兩行
var Banner = []string{
	"🚀 opsdeck console initialized",
	"🕵️ Stealth mode ready...",
}

// API 引擎用到的全部後端調用
type API interface {
	poller.API
	orchestrator.API
	History(ctx context.Context) ([]domainConsole.HistoryEntry, error)
}

// HistoryMsg 啟動時拉取的歷史
type HistoryMsg struct {
	Entries []domainConsole.HistoryEntry
	Err     error
}

// Engine 控制台的全部應用狀態
// Handle 與 Request 系列方法只能在同一個事件循環中調用；讀取方法可在 View 中使用
type Engine struct {
	sink   *console.Sink
	store  *status.Store
	poller *poller.Poller
	orch   *orchestrator.Orchestrator
	api    API
	logger *zap.Logger
	ctx    context.Context
}

type engineOptions struct {
	logger   *zap.Logger
	ctx      context.Context
	pollOpts []poller.Option
	orchOpts []orchestrator.Option
	sinkOpts []console.Option
}

// Option 引擎選項
type Option func(*engineOptions)

// WithLogger 設置日誌，同時傳給各組件
func WithLogger(l *zap.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithContext 所有遠程調用的父上下文
func WithContext(ctx context.Context) Option {
	return func(o *engineOptions) { o.ctx = ctx }
}

// WithPollerOptions 追加輪詢器選項
func WithPollerOptions(opts ...poller.Option) Option {
	return func(o *engineOptions) { o.pollOpts = append(o.pollOpts, opts...) }
}

// WithOrchestratorOptions 追加編排器選項
func WithOrchestratorOptions(opts ...orchestrator.Option) Option {
	return func(o *engineOptions) { o.orchOpts = append(o.orchOpts, opts...) }
}

// WithSinkOptions 追加控制台選項
func WithSinkOptions(opts ...console.Option) Option {
	return func(o *engineOptions) { o.sinkOpts = append(o.sinkOpts, opts...) }
}

// NewEngine 按配置組裝引擎
func NewEngine(cfg *domainConfig.Config, api API, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.Validation(nil, "config is required")
	}
	if api == nil {
		return nil, errors.Validation(nil, "api is required")
	}

	o := engineOptions{logger: zap.NewNop(), ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	sink := console.NewSink(cfg.Console.LogCapacity, cfg.Console.HistoryCapacity,
		append([]console.Option{console.WithLogger(o.logger)}, o.sinkOpts...)...)
	store := status.NewStore()

	tasks := poller.DefaultTasks(api, poller.Intervals{
		Status:  cfg.Poll.Status,
		Stealth: cfg.Poll.Stealth,
		Monitor: cfg.Poll.Monitor,
	})
	p := poller.New(store, sink, tasks, append([]poller.Option{
		poller.WithLogger(o.logger),
		poller.WithContext(o.ctx),
		poller.WithStatusUpdates(cfg.Poll.LogStatusUpdates),
		poller.WithBackoff(poller.BackoffConfig{
			Enabled:    cfg.Poll.Backoff.Enabled,
			Initial:    cfg.Poll.Backoff.Initial,
			Max:        cfg.Poll.Backoff.Max,
			Multiplier: cfg.Poll.Backoff.Multiplier,
		}),
	}, o.pollOpts...)...)

	orch := orchestrator.New(catalog, api, sink, store, append([]orchestrator.Option{
		orchestrator.WithLogger(o.logger),
		orchestrator.WithContext(o.ctx),
		orchestrator.WithRefreshDelay(cfg.Console.RefreshDelay),
	}, o.orchOpts...)...)

	return &Engine{
		sink:   sink,
		store:  store,
		poller: p,
		orch:   orch,
		api:    api,
		logger: o.logger.Named("engine"),
		ctx:    o.ctx,
	}, nil
}

// Start 寫入啟動橫幅，拉取歷史並啟動全部輪詢
func (e *Engine) Start() tea.Cmd {
	for _, line := range Banner {
		e.sink.Log(line, domainConsole.LevelSuccess)
	}
	return tea.Batch(e.loadHistory(), e.poller.Start())
}

func (e *Engine) loadHistory() tea.Cmd {
	ctx := e.ctx
	api := e.api
	return func() tea.Msg {
		entries, err := api.History(ctx)
		return HistoryMsg{Entries: entries, Err: err}
	}
}

// Handle 路由一條消息，不屬於引擎的消息返回 nil
func (e *Engine) Handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case HistoryMsg:
		if msg.Err != nil {
			// 只寫文件日誌
			e.logger.Warn("歷史加載失敗", zap.Error(msg.Err))
			return nil
		}
		e.sink.SeedHistory(msg.Entries)
		return nil
	case orchestrator.RefreshMsg:
		return e.poller.Refresh(msg.Subsystems...)
	}
	if cmd, ok := e.poller.Handle(msg); ok {
		return cmd
	}
	if cmd, ok := e.orch.Handle(msg); ok {
		return cmd
	}
	return nil
}

// Owns 消息是否由引擎處理
func (e *Engine) Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case HistoryMsg, orchestrator.RefreshMsg,
		poller.TickMsg, poller.ResultMsg,
		orchestrator.ResultMsg, orchestrator.RestoreResultMsg:
		return true
	}
	return false
}

// RequestPoll 手動檢查子系統狀態
func (e *Engine) RequestPoll(subs ...status.Subsystem) tea.Cmd {
	return e.poller.RequestPoll(subs...)
}

// RequestProfiles 重新拉取配置列表
func (e *Engine) RequestProfiles() tea.Cmd {
	return e.poller.RequestTask(poller.TaskProfiles)
}

// RequestOperation 確認後啟動操作
func (e *Engine) RequestOperation(name string, confirmed bool) (tea.Cmd, error) {
	return e.orch.RequestOperation(name, confirmed)
}

// RequestRestore 確認後恢復配置
func (e *Engine) RequestRestore(sub status.Subsystem, profile string, confirmed bool) (tea.Cmd, error) {
	return e.orch.RequestRestore(sub, profile, confirmed)
}

// Snapshot 子系統最新狀態
func (e *Engine) Snapshot(sub status.Subsystem) status.Value { return e.store.Get(sub) }

// Snapshots 全部已知狀態
func (e *Engine) Snapshots() map[status.Subsystem]status.Value { return e.store.All() }

// Profiles 已保存的配置
func (e *Engine) Profiles(sub status.Subsystem) []status.ConfigProfile {
	return e.store.Profiles(sub)
}

// Lines 終端日誌
func (e *Engine) Lines() []domainConsole.LogLine { return e.sink.Lines() }

// History 操作歷史
func (e *Engine) History() []domainConsole.HistoryEntry { return e.sink.History() }

// OnLine 註冊新日誌行回調
func (e *Engine) OnLine(fn func(domainConsole.LogLine)) { e.sink.OnLine(fn) }

// Operation 指定操作的運行狀態
func (e *Engine) Operation(name string) orchestrator.Run { return e.orch.Run(name) }

// Operations 全部操作定義，按目錄順序
func (e *Engine) Operations() []operation.Definition { return e.orch.Catalog().List() }

// Busy 是否有操作在運行
func (e *Engine) Busy() bool { return e.orch.Busy() }

// Drain 在當前 goroutine 中依次執行命令直到沒有後續
// 一次性的 CLI 命令使用，需配合不產生定時鏈的輪詢器
func (e *Engine) Drain(ctx context.Context, cmd tea.Cmd) error {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, e.Handle(msg))
		}
	}
	return nil
}

// NoTicks 不產生定時鏈的 TickFunc，用於一次性命令
func NoTicks(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }

// Immediate 立即投遞的調度函數
func Immediate(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// SkipDelayed 丟棄延遲消息，一次性命令在操作結束後即退出，不做事後刷新
func SkipDelayed(time.Duration, tea.Msg) tea.Cmd { return nil }
