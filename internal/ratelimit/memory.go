package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type bucket struct {
	count       int
	windowStart time.Time
}

// Memory 是进程内的固定窗口限流器，多个实例之间不共享计数，进程重启后计数清零
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*bucket
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (m *Memory) Limit() int {
	return m.limit
}

func (m *Memory) Window() time.Duration {
	return m.window
}

func (m *Memory) Allow(_ context.Context, key string) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	// 只有超过窗口长度才重置，而不是滑动窗口
	if !ok || now.Sub(b.windowStart) > m.window {
		b = &bucket{windowStart: now}
		m.buckets[key] = b
	}

	if b.count >= m.limit {
		return &domain.RateLimitedError{RetryAfter: retryAfterSeconds(b.windowStart.Add(m.window).Sub(now))}
	}
	b.count++

	return nil
}

// Prune 清理已经过期的窗口，防止 key 越来越多
func (m *Memory) Prune() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, b := range m.buckets {
		if now.Sub(b.windowStart) > m.window {
			delete(m.buckets, key)
		}
	}
}
