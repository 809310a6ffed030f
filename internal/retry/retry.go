package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Backoff returns the delay before retry number attempt (0-based): base
// doubled per attempt, capped at max, plus up to 250ms of jitter.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > max || delay <= 0 {
		delay = max
	}

	// small jitter to avoid thundering herd
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}

// Do calls fn until it succeeds, attempts run out or ctx is done.
func Do(ctx context.Context, attempts int, base, max time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(Backoff(attempt, base, max))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("gave up after %d attempts: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
