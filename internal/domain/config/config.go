package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

// ConfigVersionLatest 當前配置版本
const ConfigVersionLatest = 1

// Repository 配置倉庫接口
type Repository interface {
	// Load 加載配置
	Load(ctx context.Context) (*Config, error)

	// Save 保存配置
	Save(ctx context.Context, cfg *Config) error
}

// Config 主配置結構
type Config struct {
	Version    int                    `yaml:"version"`
	API        APIConfig              `yaml:"api"`
	Poll       PollConfig             `yaml:"poll"`
	Console    ConsoleConfig          `yaml:"console"`
	Log        LogConfig              `yaml:"log"`
	Backup     BackupConfig           `yaml:"backup"`
	Operations []operation.Definition `yaml:"operations,omitempty"` // 追加或按名稱覆蓋內置操作
}

// APIConfig 後端連接
type APIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`   // 狀態查詢
	OperationTimeout time.Duration `yaml:"operation_timeout"` // 清理等長時間操作
	TLS              TLSConfig     `yaml:"tls,omitempty"`
}

// TLSConfig https 後端的證書設置，留空使用系統根證書
type TLSConfig struct {
	CAFile             string `yaml:"ca_file,omitempty"`
	CertFile           string `yaml:"cert_file,omitempty"` // 雙向認證
	KeyFile            string `yaml:"key_file,omitempty"`
	ServerName         string `yaml:"server_name,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
}

// PollConfig 輪詢間隔，0 表示僅按需拉取
type PollConfig struct {
	Status           time.Duration `yaml:"status"`
	Stealth          time.Duration `yaml:"stealth"`
	Monitor          time.Duration `yaml:"monitor"`
	LogStatusUpdates bool          `yaml:"log_status_updates"` // 定時拉取成功時也寫控制台日誌
	Backoff          BackoffConfig `yaml:"backoff"`
}

// BackoffConfig 連續失敗時的退避
type BackoffConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	Multiplier float64       `yaml:"multiplier"`
}

// ConsoleConfig 控制台緩衝
type ConsoleConfig struct {
	LogCapacity     int           `yaml:"log_capacity"`
	HistoryCapacity int           `yaml:"history_capacity"`
	RefreshDelay    time.Duration `yaml:"refresh_delay"` // 操作成功後延遲刷新
}

// LogConfig 日誌配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputPath string `yaml:"output_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// BackupConfig 配置文件被覆蓋前的本地快照
type BackupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	MaxFiles int           `yaml:"max_files"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// DefaultConfig 返回默認配置
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersionLatest,
		API: APIConfig{
			BaseURL:          "http://127.0.0.1:8888",
			RequestTimeout:   10 * time.Second,
			OperationTimeout: 20 * time.Minute,
		},
		Poll: PollConfig{
			Status:  5 * time.Second,
			Stealth: 10 * time.Second,
			Monitor: 5 * time.Second,
			Backoff: BackoffConfig{
				Enabled:    false,
				Initial:    5 * time.Second,
				Max:        time.Minute,
				Multiplier: 2,
			},
		},
		Console: ConsoleConfig{
			LogCapacity:     50,
			HistoryCapacity: 20,
			RefreshDelay:    2 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			OutputPath: "",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		Backup: BackupConfig{
			Enabled:  true,
			MaxFiles: 10,
			MaxAge:   30 * 24 * time.Hour,
		},
	}
}

// Validate 驗證配置
func (c *Config) Validate() error {
	if c.Version > ConfigVersionLatest {
		return invalid("配置版本過高 (v%d)，當前程序僅支持 v%d", c.Version, ConfigVersionLatest)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("api.base_url 無效: %q", c.API.BaseURL)
	}
	if c.API.RequestTimeout <= 0 {
		return invalid("api.request_timeout 必須大於 0")
	}
	if c.API.OperationTimeout <= 0 {
		return invalid("api.operation_timeout 必須大於 0")
	}
	if t := c.API.TLS; (t.CertFile == "") != (t.KeyFile == "") {
		return invalid("api.tls.cert_file 與 api.tls.key_file 必須同時設置")
	}

	for name, d := range map[string]time.Duration{
		"status":  c.Poll.Status,
		"stealth": c.Poll.Stealth,
		"monitor": c.Poll.Monitor,
	} {
		if d < 0 {
			return invalid("poll.%s 不能為負數", name)
		}
	}
	if b := c.Poll.Backoff; b.Enabled {
		if b.Initial <= 0 || b.Max < b.Initial {
			return invalid("poll.backoff 區間無效: initial=%s max=%s", b.Initial, b.Max)
		}
		if b.Multiplier < 1 {
			return invalid("poll.backoff.multiplier 必須 >= 1")
		}
	}

	if c.Console.LogCapacity < 1 || c.Console.HistoryCapacity < 1 {
		return invalid("console 緩衝容量必須 >= 1")
	}
	if c.Console.RefreshDelay < 0 {
		return invalid("console.refresh_delay 不能為負數")
	}

	if c.Backup.MaxFiles < 0 || c.Backup.MaxAge < 0 {
		return invalid("backup 保留策略不能為負數")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level 無效: %q", c.Log.Level)
	}

	if _, err := c.Catalog(); err != nil {
		return invalid("operations: %v", err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errors.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

// Catalog 內置操作加上配置中的追加/覆蓋
func (c *Config) Catalog() (*operation.Catalog, error) {
	defs := append(operation.DefaultCatalog(), c.Operations...)
	return operation.NewCatalog(defs...)
}

// DeepCopy 深拷貝配置
// 邏輯：Marshal -> Unmarshal，保證副本與磁盤保存的行為一致
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Errorf("DeepCopy 序列化失敗 (這是一個 Bug): %w", err))
	}

	var newCfg Config
	if err := yaml.Unmarshal(data, &newCfg); err != nil {
		panic(fmt.Errorf("DeepCopy 反序列化失敗 (這是一個 Bug): %w", err))
	}

	return &newCfg
}
