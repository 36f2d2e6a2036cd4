package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// maxBackoff caps a single wait between attempts.
const maxBackoff = time.Minute

// RetryPolicy bounds retries of a transient operation.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff returns the wait after the given failed attempt (0-based).
	Backoff func(attempt int) time.Duration
}

// ExponentialBackoff doubles base after every attempt, capped at one minute.
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 0; i < attempt && d < maxBackoff; i++ {
			d *= 2
		}
		if d > maxBackoff {
			d = maxBackoff
		}
		return d
	}
}

// DefaultRetryPolicy returns three attempts with exponential backoff from 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: domain.DefaultMaxAttempts,
		Backoff:     ExponentialBackoff(domain.DefaultRetryDelay),
	}
}

// Do runs fn until it succeeds, the attempts are used up, or ctx is done.
// The returned error wraps domain.ErrRetriesExhausted and the last failure.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, attempts, wait, lastErr)
		if err := sleepContext(ctx, wait); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts,
		errors.Join(domain.ErrRetriesExhausted, lastErr))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
