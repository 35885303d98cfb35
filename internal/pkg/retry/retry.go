// Package retry 链上读写共用的退避重试策略：只重试可重试的错误，其余立即返回。
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     int // 含首次调用，<=1 表示不重试
}

// DefaultPolicy 默认 3 次，200ms 起步
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxAttempts:     3,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0 // 由次数控制

	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// Do 执行 fn，retryable 返回 true 的错误会按退避重试，onRetry 可为 nil。
// 退避等待期间 ctx 结束时，返回的错误同时包含最后一次 fn 的错误与 ctx 错误，便于调用方按原错误分类
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func() error, onRetry func(err error, wait time.Duration)) error {
	var lastErr error
	op := func() error {
		err := fn()
		lastErr = err
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if onRetry != nil {
		notify = func(err error, wait time.Duration) { onRetry(err, wait) }
	}
	err := backoff.RetryNotify(op, p.backOff(ctx), notify)
	if err == nil || lastErr == nil {
		return err
	}
	if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) && !errors.Is(lastErr, cerr) {
		return fmt.Errorf("%w: %w", lastErr, err)
	}
	return err
}
