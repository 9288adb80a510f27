package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

// TestDefaultConfig 測試默認配置
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Poll.Status)
	assert.Equal(t, 10*time.Second, cfg.Poll.Stealth)
	assert.Equal(t, 5*time.Second, cfg.Poll.Monitor)
	assert.Equal(t, 50, cfg.Console.LogCapacity)
	assert.Equal(t, 20, cfg.Console.HistoryCapacity)
	assert.Equal(t, 2000*time.Millisecond, cfg.Console.RefreshDelay)
	assert.False(t, cfg.Poll.Backoff.Enabled)
}

// TestValidate 測試配置驗證
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"版本過高", func(c *Config) { c.Version = 99 }},
		{"地址缺少協議", func(c *Config) { c.API.BaseURL = "127.0.0.1:8888" }},
		{"地址為空", func(c *Config) { c.API.BaseURL = "" }},
		{"請求超時為零", func(c *Config) { c.API.RequestTimeout = 0 }},
		{"操作超時為負", func(c *Config) { c.API.OperationTimeout = -time.Second }},
		{"輪詢間隔為負", func(c *Config) { c.Poll.Monitor = -time.Second }},
		{"退避區間無效", func(c *Config) {
			c.Poll.Backoff.Enabled = true
			c.Poll.Backoff.Max = time.Second
		}},
		{"退避倍數過小", func(c *Config) {
			c.Poll.Backoff.Enabled = true
			c.Poll.Backoff.Multiplier = 0.5
		}},
		{"客戶端證書缺少私鑰", func(c *Config) { c.API.TLS.CertFile = "/etc/opsdeck/client.crt" }},
		{"日誌容量為零", func(c *Config) { c.Console.LogCapacity = 0 }},
		{"備份保留為負", func(c *Config) { c.Backup.MaxFiles = -1 }},
		{"日誌級別無效", func(c *Config) { c.Log.Level = "verbose" }},
		{"操作路徑無效", func(c *Config) {
			c.Operations = []operation.Definition{{Name: "x", Path: "no-slash"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigInvalid)
		})
	}

	t.Run("輪詢間隔為零表示按需", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Poll.Stealth = 0
		assert.NoError(t, cfg.Validate())
	})
}

// TestCatalog 配置中的操作按名稱覆蓋內置定義
func TestCatalog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Operations = []operation.Definition{
		{Name: "windsurf-full", Title: "windsurf full cleanup", Path: "/api/v2/cleanup/windsurf/full"},
		{Name: "cache-purge", Title: "cache purge", Path: "/api/cache/purge"},
	}

	cat, err := cfg.Catalog()
	require.NoError(t, err)

	full, ok := cat.Get("windsurf-full")
	require.True(t, ok)
	assert.Equal(t, "/api/v2/cleanup/windsurf/full", full.Path)

	_, ok = cat.Get("cache-purge")
	assert.True(t, ok)
	assert.Equal(t, len(operation.DefaultCatalog())+1, cat.Len())
}

// TestDeepCopy 副本互不影響
func TestDeepCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Operations = []operation.Definition{
		{Name: "x", Path: "/x", Args: map[string]string{"action": "start"}},
	}

	cp := cfg.DeepCopy()
	require.NotNil(t, cp)
	assert.Equal(t, cfg.API, cp.API)
	assert.Equal(t, cfg.Poll, cp.Poll)

	cp.Operations[0].Args["action"] = "stop"
	cp.API.BaseURL = "http://other:1"
	assert.Equal(t, "start", cfg.Operations[0].Args["action"])
	assert.Equal(t, "http://127.0.0.1:8888", cfg.API.BaseURL)

	var nilCfg *Config
	assert.Nil(t, nilCfg.DeepCopy())
}

// TestYAMLDurations 時長以字符串形式讀寫
func TestYAMLDurations(t *testing.T) {
	src := []byte(`
api:
  base_url: http://10.0.0.2:8888
  request_timeout: 3s
poll:
  stealth: 30s
console:
  refresh_delay: 1500ms
`)
	cfg := DefaultConfig()
	require.NoError(t, yaml.Unmarshal(src, cfg))

	assert.Equal(t, "http://10.0.0.2:8888", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Poll.Stealth)
	assert.Equal(t, 1500*time.Millisecond, cfg.Console.RefreshDelay)
	// 未出現的字段保留默認值
	assert.Equal(t, 5*time.Second, cfg.Poll.Status)
	assert.Equal(t, 50, cfg.Console.LogCapacity)
}

// TestAtomicContainer 寫時複製更新
func TestAtomicContainer(t *testing.T) {
	c := NewAtomicContainer(DefaultConfig())
	before := c.Get()

	err := c.Update(func(cfg *Config) error {
		cfg.API.BaseURL = "http://192.168.1.10:8888"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.10:8888", c.Get().API.BaseURL)
	assert.Equal(t, "http://127.0.0.1:8888", before.API.BaseURL)

	// 驗證失敗時不替換
	err = c.Update(func(cfg *Config) error {
		cfg.API.BaseURL = "::bad::"
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, "http://192.168.1.10:8888", c.Get().API.BaseURL)
	assert.Equal(t, uint64(1), c.Generation())

	// Store 不校驗，記住磁盤上的原樣內容
	raw := DefaultConfig()
	raw.Log.Level = "verbose"
	c.Store(raw)
	assert.Equal(t, "verbose", c.Get().Log.Level)
	assert.Equal(t, uint64(2), c.Generation())

	raw.Log.Level = "debug"
	assert.Equal(t, "verbose", c.Get().Log.Level, "Store 保存的是副本")
}
