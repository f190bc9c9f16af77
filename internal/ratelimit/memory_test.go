package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func newTestMemory(limit int, window time.Duration) (*Memory, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	m := NewMemory(limit, window)
	m.now = c.now
	return m, c
}

func TestMemory_FiveThenRejected(t *testing.T) {
	m, c := newTestMemory(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Allow(ctx, "user:1:1"), "call %d", i+1)
		c.t = c.t.Add(time.Second)
	}

	err := m.Allow(ctx, "user:1:1")
	var limited *domain.RateLimitedError
	require.True(t, errors.As(err, &limited))
	// 窗口从 08:00:00 开始，现在是 08:00:05
	assert.Equal(t, 55, limited.RetryAfter)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	m, _ := newTestMemory(1, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Allow(ctx, "a"))
	require.Error(t, m.Allow(ctx, "a"))
	require.NoError(t, m.Allow(ctx, "b"))
}

func TestMemory_FixedWindowReset(t *testing.T) {
	m, c := newTestMemory(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Allow(ctx, "k"))
	}

	// 恰好等于窗口长度时还没有重置
	c.t = c.t.Add(time.Minute)
	err := m.Allow(ctx, "k")
	var limited *domain.RateLimitedError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 1, limited.RetryAfter)

	c.t = c.t.Add(time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Allow(ctx, "k"))
	}
	require.Error(t, m.Allow(ctx, "k"))
}

func TestMemory_NotSliding(t *testing.T) {
	m, c := newTestMemory(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Allow(ctx, "k"))
	c.t = c.t.Add(50 * time.Second)
	require.NoError(t, m.Allow(ctx, "k"))

	// 第一次请求 61 秒后窗口整体重置，即使第二次请求才过去 11 秒
	c.t = c.t.Add(11 * time.Second)
	require.NoError(t, m.Allow(ctx, "k"))
	require.NoError(t, m.Allow(ctx, "k"))
	require.Error(t, m.Allow(ctx, "k"))
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory(5, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Allow(ctx, "shared") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}

func TestMemory_Prune(t *testing.T) {
	m, c := newTestMemory(1, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Allow(ctx, "a"))
	c.t = c.t.Add(30 * time.Second)
	require.NoError(t, m.Allow(ctx, "b"))

	c.t = c.t.Add(31 * time.Second)
	m.Prune()

	assert.NotContains(t, m.buckets, "a")
	assert.Contains(t, m.buckets, "b")
}
