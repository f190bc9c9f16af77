package ratelimit

import (
	"context"
	"math"
	"time"
)

// Limiter 是固定窗口限流器：同一个 key 在一个窗口内最多允许 Limit 次请求
// 被拒绝时返回 *domain.RateLimitedError，其中带有距离窗口重置的秒数
type Limiter interface {
	Allow(ctx context.Context, key string) error
	Limit() int
	Window() time.Duration
}

// retryAfterSeconds 向上取整，且至少为 1 秒
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return max(int(math.Ceil(d.Seconds())), 1)
}
