package marketdata

import (
	"context"
	"time"
)

// RetryPolicy controls how throttled or failed requests are retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Multiplier grows the backoff after each attempt; 1 keeps it fixed.
	Multiplier float64
	MaxBackoff time.Duration
}

// DefaultRetryPolicy waits 30 seconds between attempts, matching the
// provider's free-tier rate window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Backoff: 30 * time.Second, Multiplier: 1}
}

// Delay returns the wait before retry number attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.Backoff)
	m := p.Multiplier
	if m <= 0 {
		m = 1
	}
	for i := 1; i < attempt; i++ {
		d *= m
	}
	delay := time.Duration(d)
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		delay = p.MaxBackoff
	}
	return delay
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
