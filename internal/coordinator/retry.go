package coordinator

import (
	"context"
	"time"

	"github.com/Utilities-tkgieng/releasectl/internal/domain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// rateLimitBackoff wraps the exponential schedule so a pending rate-limit
// hint replaces the next delay instead of stacking on top of it. The hint is
// consumed after one use.
type rateLimitBackoff struct {
	base retry.Backoff
	hint time.Duration
}

func (b *rateLimitBackoff) Next() (time.Duration, bool) {
	delay, stop := b.base.Next()
	if stop {
		return delay, true
	}
	if b.hint > 0 {
		delay = b.hint
		b.hint = 0
	}
	return delay, false
}

// withRetry applies the central retry policy to one external call. Only
// transient and rate-limited failures are retried; everything else returns
// on the first attempt. Rate limits honor the server's retry-after hint,
// capped at MaxRateLimitWait.
func (c *Coordinator) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := &rateLimitBackoff{
		base: retry.WithMaxRetries(MaxAttempts-1, retry.NewExponential(DefaultRetryDelay)),
	}
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) {
			return err
		}
		if hint := domain.RetryAfterHint(err); hint > 0 {
			wait := hint
			if wait > MaxRateLimitWait {
				wait = MaxRateLimitWait
			}
			backoff.hint = wait
			c.log.Warn("rate limited, honoring retry-after",
				zap.String("op", op),
				zap.Duration("wait", wait))
		} else {
			c.log.Warn("retrying after transient failure",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return retry.RetryableError(err)
	})
}
