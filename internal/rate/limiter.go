package rate

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) (bool, time.Duration)
}

// MemoryLimiter is a fixed-window counter per key. Buckets live in an LRU so
// a flood of distinct keys cannot grow memory without bound.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *bucket]
	now     func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
	window  time.Duration
}

func NewMemory(maxKeys int) (*MemoryLimiter, error) {
	buckets, err := lru.New[string, *bucket](maxKeys)
	if err != nil {
		return nil, err
	}
	return &MemoryLimiter{buckets: buckets, now: time.Now}, nil
}

func (m *MemoryLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets.Get(key)
	if !ok || now.After(b.resetAt) || b.window != window {
		b = &bucket{count: 0, resetAt: now.Add(window), window: window}
		m.buckets.Add(key, b)
	}

	if b.count >= limit {
		return false, b.resetAt.Sub(now)
	}

	b.count++
	return true, b.resetAt.Sub(now)
}
