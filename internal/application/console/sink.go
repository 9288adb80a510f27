package console

import (
	"time"

	"go.uber.org/zap"

	domain "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/pkg/bounded"
	"github.com/Yat-Muk/opsdeck/internal/pkg/logger"
)

const (
	DefaultLogCapacity     = 50
	DefaultHistoryCapacity = 20
)

// Sink 終端日誌與操作歷史的唯一寫入者
// 只在事件循環中調用，不做併發保護
type Sink struct {
	lines   *bounded.Buffer[domain.LogLine]
	history *bounded.Buffer[domain.HistoryEntry]

	logger    *zap.Logger
	now       func() time.Time
	listeners []func(domain.LogLine)
}

// Option Sink 選項
type Option func(*Sink)

// WithLogger 每行日誌同步寫入 zap (已脫敏)
func WithLogger(l *zap.Logger) Option {
	return func(s *Sink) { s.logger = l.Named("console") }
}

// WithClock 替換時鐘
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// NewSink 創建 Sink
func NewSink(logCapacity, historyCapacity int, opts ...Option) *Sink {
	s := &Sink{
		lines:   bounded.New[domain.LogLine](logCapacity, bounded.Append),
		history: bounded.New[domain.HistoryEntry](historyCapacity, bounded.Prepend),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnLine 註冊新日誌行回調 (headless 模式逐行輸出)
func (s *Sink) OnLine(fn func(domain.LogLine)) {
	s.listeners = append(s.listeners, fn)
}

// Log 追加一行終端日誌
func (s *Sink) Log(text string, level domain.Level) {
	line := domain.LogLine{Timestamp: s.now(), Text: text, Level: level}
	s.lines.Push(line)
	s.mirror(line)
	for _, fn := range s.listeners {
		fn(line)
	}
}

// Record 新增一條歷史記錄 (最新在前)
func (s *Sink) Record(message string, level domain.Level) {
	s.history.Push(domain.HistoryEntry{Timestamp: s.now(), Message: message, Level: level})
	s.logger.Info(logger.MaskSensitive(message),
		zap.String("source", "history"),
		zap.String("level", string(level)),
	)
}

// SeedHistory 用後端歷史填充，種子視為早於本地已有的記錄
func (s *Sink) SeedHistory(entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	merged := append(s.history.Items(), entries...)
	if len(merged) > s.history.Cap() {
		merged = merged[:s.history.Cap()]
	}
	s.history.Reset()
	for i := len(merged) - 1; i >= 0; i-- {
		s.history.Push(merged[i])
	}
}

// Lines 日誌副本，最舊在前
func (s *Sink) Lines() []domain.LogLine { return s.lines.Items() }

// History 歷史副本，最新在前
func (s *Sink) History() []domain.HistoryEntry { return s.history.Items() }

func (s *Sink) mirror(line domain.LogLine) {
	msg := logger.MaskSensitive(line.Text)
	fields := []zap.Field{zap.String("source", "console")}
	switch line.Level {
	case domain.LevelError:
		s.logger.Error(msg, fields...)
	case domain.LevelWarning:
		s.logger.Warn(msg, fields...)
	case domain.LevelSuccess:
		s.logger.Info(msg, append(fields, zap.Bool("success", true))...)
	default:
		s.logger.Info(msg, fields...)
	}
}
