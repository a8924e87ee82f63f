package fetcher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/josueBarretogit/manga-tui/fault"
)

// rateLimitFactor stretches the delay after a rate limiting response.
const rateLimitFactor = 4

// Policy returns how long to wait after the given failed attempt (1-based) before the next one.
type Policy func(attempt int, err error) time.Duration

// ExponentialPolicy doubles the delay after each attempt, from initial up to max.
// Rate limited responses wait four times longer, and at least as long as the server asked.
func ExponentialPolicy(initial, max time.Duration) Policy {
	return func(attempt int, err error) time.Duration {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = max
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		b.Reset()

		delay := initial
		for i := 0; i < attempt; i++ {
			delay = b.NextBackOff()
		}

		if retryAfter, ok := fault.RateLimited(err); ok {
			delay *= rateLimitFactor
			if delay < retryAfter {
				delay = retryAfter
			}
		}

		return delay
	}
}

// Retry is a bounded attempt loop configuration.
type Retry struct {
	MaxAttempts int
	Backoff     Policy
	// Sleep waits between attempts; defaults to a timer honoring ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs op until it succeeds, fails with an error that is not retryable,
// or has been attempted MaxAttempts times. Only fault.Retryable errors are retried.
func Do[T any](ctx context.Context, retry Retry, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var (
		zero T
		err  error
	)

	attempts := max(retry.MaxAttempts, 1)
	sleep := retry.Sleep
	if sleep == nil {
		sleep = wait
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		var result T
		result, err = op(ctx, attempt)
		if err == nil {
			return result, nil
		}

		if !fault.Retryable(err) || attempt == attempts {
			break
		}

		var delay time.Duration
		if retry.Backoff != nil {
			delay = retry.Backoff(attempt, err)
		}

		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}

	return zero, err
}

func wait(ctx context.Context, d time.Duration) error {
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
