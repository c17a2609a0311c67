package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Memory is an in-process cache used in tests and when Redis is not
// configured. Entries expire lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (c *Memory) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Memory) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	entry := memoryEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *Memory) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// Contains reports whether key is currently cached; test helper.
func (c *Memory) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	return entry.expiresAt.IsZero() || time.Now().Before(entry.expiresAt)
}
