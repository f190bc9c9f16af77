package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
)

// RateLimitedError 表示请求被限流，RetryAfter 为距离窗口重置的秒数
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}
