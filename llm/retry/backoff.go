package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/framelens/types"
)

// Mode 名称
const (
	ModeOnce    = "once"
	ModeBackoff = "backoff"
)

// Policy 定义重试策略配置
type Policy struct {
	MaxRetries   int                                               // 最大重试次数（0 表示不重试）
	InitialDelay time.Duration                                     // 初始延迟时间（0 表示立即重试）
	MaxDelay     time.Duration                                     // 最大延迟时间
	Multiplier   float64                                           // 延迟时间倍增因子（指数退避）
	Jitter       bool                                              // 是否添加随机抖动
	Retryable    func(error) bool                                  // 可重试判定（nil 则重试所有错误）
	OnRetry      func(attempt int, err error, delay time.Duration) // 重试回调

	logger *zap.Logger
}

// Once 返回默认策略：立即重试一次，不分类错误
func Once() *Policy {
	return &Policy{MaxRetries: 1}
}

// Backoff 返回指数退避策略，只重试可重试错误
func Backoff() *Policy {
	return &Policy{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable:    types.IsRetryable,
	}
}

// ParseMode 根据配置字符串选择策略，空字符串等同于 once
func ParseMode(mode string) (*Policy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeOnce:
		return Once(), nil
	case ModeBackoff:
		return Backoff(), nil
	default:
		return nil, types.NewValidationError(fmt.Sprintf("unknown retry mode %q (want once or backoff)", mode))
	}
}

// WithLogger 返回携带日志器的策略副本
func (p *Policy) WithLogger(logger *zap.Logger) *Policy {
	cp := *p
	cp.logger = logger
	return &cp
}

// Do 执行 fn，失败时按策略重试.
// 用尽次数后返回最后一次的错误，不做包装.
func Do[T any](ctx context.Context, policy *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if policy == nil {
		policy = Once()
	}
	logger := policy.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.delay(attempt)

			logger.Debug("retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, lastErr, delay)
			}

			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
				case <-timer.C:
				}
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("retry succeeded", zap.Int("attempt", attempt))
			}
			return result, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			logger.Debug("error is not retryable", zap.Error(err))
			return zero, err
		}
	}

	logger.Warn("retries exhausted",
		zap.Int("attempts", maxRetries+1),
		zap.Error(lastErr),
	)
	return zero, lastErr
}

// delay 计算第 attempt 次重试前的等待时间
// 指数退避：delay = initial * multiplier^(attempt-1)，可选 ±25% 抖动
func (p *Policy) delay(attempt int) time.Duration {
	if p.InitialDelay <= 0 {
		return 0
	}
	multiplier := p.Multiplier
	if multiplier < 1.0 {
		multiplier = 2.0
	}
	delay := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1))

	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		jitter := delay * 0.25
		delay = delay + (rand.Float64()*2-1)*jitter
	}

	if delay < float64(p.InitialDelay) {
		delay = float64(p.InitialDelay)
	}
	return time.Duration(delay)
}
