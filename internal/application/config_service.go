package application

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/domain/config"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/pkg/inputvalidator"
)

// Snapshotter 覆蓋配置文件前保存快照
type Snapshotter interface {
	Snapshot(tag string) (string, error)
	Restore(name string) error
}

// ConfigService 配置服務
type ConfigService struct {
	repo    config.Repository
	current *config.AtomicContainer
	logger  *zap.Logger
	snaps   Snapshotter
	mu      sync.Mutex
}

// NewConfigService 創建配置服務
func NewConfigService(repo config.Repository, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigService{
		repo:    repo,
		current: config.NewAtomicContainer(config.DefaultConfig()),
		logger:  logger,
	}
}

// SetSnapshotter 啟用寫入前快照，nil 關閉
func (s *ConfigService) SetSnapshotter(snaps Snapshotter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = snaps
}

// snapshot 快照失敗只記錄，不阻止寫入
func (s *ConfigService) snapshot(tag string) {
	if s.snaps == nil {
		return
	}
	name, err := s.snaps.Snapshot(tag)
	if err != nil {
		s.logger.Warn("配置快照失敗", zap.String("tag", tag), zap.Error(err))
		return
	}
	if name != "" {
		s.logger.Info("已保存配置快照", zap.String("name", name))
	}
}

// GetConfig 從倉庫加載配置，並更新內存快照
func (s *ConfigService) GetConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.remember(cfg)
	return cfg, nil
}

// Current 最近一次加載或保存的配置 (只讀)
func (s *ConfigService) Current() *config.Config {
	return s.current.Get()
}

func (s *ConfigService) remember(cfg *config.Config) {
	s.current.Store(cfg)
}

// UpdateConfig 原子更新配置
// 邏輯：Lock -> Load -> DeepCopy -> Modify -> Validate -> Save -> Unlock
func (s *ConfigService) UpdateConfig(ctx context.Context, modifier func(*config.Config) error) error {
	return s.update(ctx, "update", modifier)
}

func (s *ConfigService) update(ctx context.Context, tag string, modifier func(*config.Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentCfg, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("加載配置失敗: %w", err)
	}

	newCfg := currentCfg.DeepCopy()

	if err := modifier(newCfg); err != nil {
		return fmt.Errorf("應用配置修改失敗: %w", err)
	}

	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("新配置驗證失敗: %w", err)
	}

	s.snapshot(tag)
	if err := s.repo.Save(ctx, newCfg); err != nil {
		return fmt.Errorf("保存配置失敗: %w", err)
	}

	s.remember(newCfg)
	s.logger.Info("配置已更新並保存")
	return nil
}

// Init 寫入默認配置，文件已存在且未指定 force 時報錯
func (s *ConfigService) Init(ctx context.Context, path string, force bool) (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("配置文件已存在: %s", path)
	}

	cfg := config.DefaultConfig()
	s.snapshot("init")
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("保存配置失敗: %w", err)
	}
	s.remember(cfg)
	s.logger.Info("已寫入默認配置", zap.String("path", path))
	return cfg, nil
}

// setters 支持 `config set` 的鍵
var setters = map[string]func(*config.Config, string) error{
	"api.base_url": func(c *config.Config, v string) error {
		if err := inputvalidator.ValidateBaseURL(v); err != nil {
			return err
		}
		c.API.BaseURL = strings.TrimRight(v, "/")
		return nil
	},
	"api.tls.ca_file": func(c *config.Config, v string) error {
		c.API.TLS.CAFile = v
		return nil
	},
	"api.tls.server_name": func(c *config.Config, v string) error {
		c.API.TLS.ServerName = v
		return nil
	},
	"api.tls.insecure_skip_verify": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.API.TLS.InsecureSkipVerify = b
		return err
	},
	"api.request_timeout":   durationSetter(func(c *config.Config) *time.Duration { return &c.API.RequestTimeout }),
	"api.operation_timeout": durationSetter(func(c *config.Config) *time.Duration { return &c.API.OperationTimeout }),
	"poll.status":           durationSetter(func(c *config.Config) *time.Duration { return &c.Poll.Status }),
	"poll.stealth":          durationSetter(func(c *config.Config) *time.Duration { return &c.Poll.Stealth }),
	"poll.monitor":          durationSetter(func(c *config.Config) *time.Duration { return &c.Poll.Monitor }),
	"poll.log_status_updates": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Poll.LogStatusUpdates = b
		return err
	},
	"poll.backoff.enabled": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Poll.Backoff.Enabled = b
		return err
	},
	"console.refresh_delay": durationSetter(func(c *config.Config) *time.Duration { return &c.Console.RefreshDelay }),
	"backup.enabled": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Backup.Enabled = b
		return err
	},
	"backup.max_files": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Backup.MaxFiles = n
		return err
	},
	"log.level": func(c *config.Config, v string) error {
		c.Log.Level = strings.ToLower(v)
		return nil
	},
}

func durationSetter(field func(*config.Config) *time.Duration) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// SettableKeys 可通過 Set 修改的鍵，已排序
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set 修改單個配置項並保存
func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return errors.Validation(nil, "unknown config key %q", key)
	}
	return s.update(ctx, key, func(c *config.Config) error {
		if err := set(c, value); err != nil {
			return errors.Validation(err, "invalid value %q for %s", value, key)
		}
		return nil
	})
}

// Rollback 用快照覆蓋配置文件；快照內容無效時回退到覆蓋前的狀態
func (s *ConfigService) Rollback(ctx context.Context, name string) (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snaps == nil {
		return nil, errors.Validation(nil, "配置快照未啟用")
	}

	before, err := s.snaps.Snapshot("rollback")
	if err != nil {
		return nil, fmt.Errorf("保存回滾前快照失敗: %w", err)
	}
	if err := s.snaps.Restore(name); err != nil {
		return nil, errors.Validation(err, "無法恢復快照 %s", name)
	}

	cfg, err := s.repo.Load(ctx)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if before != "" {
			if rerr := s.snaps.Restore(before); rerr != nil {
				s.logger.Error("回退失敗", zap.String("name", before), zap.Error(rerr))
			}
		}
		return nil, fmt.Errorf("快照 %s 不是有效配置: %w", name, err)
	}

	s.remember(cfg)
	s.logger.Info("配置已回滾", zap.String("name", name))
	return cfg, nil
}
