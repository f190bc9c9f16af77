package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// Redis 与 Memory 语义相同，但计数保存在 redis 中，可以在多个实例之间共享
type Redis struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (r *Redis) Limit() int {
	return r.limit
}

func (r *Redis) Window() time.Duration {
	return r.window
}

// Allow 与 Memory 使用同一个边界：窗口开始后恰好经过 window 时仍属于当前窗口
// 因此过期时间比窗口多 1 毫秒，计算重试时间时再减掉
func (r *Redis) Allow(ctx context.Context, key string) error {
	redisKey := r.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		// 只在窗口第一次计数时设置过期时间，过期即表示窗口重置
		pipe.Do(ctx, "pexpire", redisKey, (r.window + time.Millisecond).Milliseconds(), "NX")
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return err
	}

	if int(incr.Val()) > r.limit {
		return &domain.RateLimitedError{RetryAfter: retryAfterSeconds(ttl.Val() - time.Millisecond)}
	}

	return nil
}
