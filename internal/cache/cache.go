package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store is a small read-through cache for rendered payloads. Both backends
// hold JSON bytes so swapping them never changes what callers observe.
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.val, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (c *Memory) SetJSON(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	c.m[key] = entry{val: b, exp: time.Now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()

	return nil
}
