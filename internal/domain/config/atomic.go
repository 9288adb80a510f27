package config

import (
	"sync"
	"sync/atomic"
)

// AtomicContainer 當前生效配置的只讀快照，寫入時整體替換
type AtomicContainer struct {
	current atomic.Pointer[Config]
	gen     atomic.Uint64
	mu      sync.Mutex // 串行化寫入
}

// NewAtomicContainer 以 cfg 的深拷貝作為初始值
func NewAtomicContainer(cfg *Config) *AtomicContainer {
	c := &AtomicContainer{}
	c.current.Store(cfg.DeepCopy())
	return c
}

// Get 當前配置；返回值只讀，修改必須通過 Update
func (c *AtomicContainer) Get() *Config {
	return c.current.Load()
}

// Generation 每次替換加一，初始為 0
func (c *AtomicContainer) Generation() uint64 {
	return c.gen.Load()
}

// Store 直接替換為 cfg 的副本，不做校驗 (用於記住從磁盤讀到的內容)
func (c *AtomicContainer) Store(cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Store(cfg.DeepCopy())
	c.gen.Add(1)
}

// Update 在副本上修改並校驗，通過後才替換
func (c *AtomicContainer) Update(fn func(*Config) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.current.Load().DeepCopy()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}

	c.current.Store(next)
	c.gen.Add(1)
	return nil
}
