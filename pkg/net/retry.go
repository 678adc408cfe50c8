package net

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// RetryPolicy 显式重试策略
// 把最大次数、退避函数、可重试判定从传输调用中拆出来，脱离网络即可单测
type RetryPolicy struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	Backoff           func(attempt int) time.Duration // attempt 从 1 开始
	Retryable         func(err error) bool
}

// DefaultRetryPolicy 平台发布调用的默认策略
// 共 3 次，指数退避 2^attempt 秒，单次 30 秒超时
// 只重试连接层失败：拿到 HTTP 应答（哪怕是错误状态码）不算失败，交给上层解析
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		PerAttemptTimeout: 30 * time.Second,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		Retryable: IsConnectionError,
	}
}

// IsConnectionError 判定是否为连接层错误
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Do 按策略执行 op，重试间隔按 Backoff 递增
// 退避等待期间响应 ctx 取消
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}

		err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return nil
		}

		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.Backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}
