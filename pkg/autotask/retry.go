package autotask

import (
	"context"
	"math/rand"
	"time"
)

// Default retry tuning. BaseDelay doubles per attempt and is capped at
// MaxDelay before jitter is applied.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 200 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second
	DefaultJitter     = 0.2
)

// RetryClassifier reports whether an error is worth retrying.
type RetryClassifier func(error) bool

// RetryExecutor retries a failing operation with exponential backoff.
// A persistent failure is attempted exactly MaxRetries+1 times; a
// terminal error (per Retryable) returns immediately.
type RetryExecutor struct {
	// MaxRetries is the number of re-attempts after the first call.
	MaxRetries int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Jitter is the fraction of the delay added as random noise,
	// in [0, Jitter*delay).
	Jitter float64
	// Retryable classifies errors. Defaults to IsRetryable.
	Retryable RetryClassifier
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetryExecutor creates an executor with the default cap, jitter,
// and classifier.
func NewRetryExecutor(maxRetries int, baseDelay time.Duration) *RetryExecutor {
	return &RetryExecutor{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   DefaultMaxDelay,
		Jitter:     DefaultJitter,
		Retryable:  IsRetryable,
	}
}

// Delay returns the backoff before retry number attempt (1-based),
// without jitter: BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (e *RetryExecutor) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := e.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= e.MaxDelay {
			return e.MaxDelay
		}
	}
	if e.MaxDelay > 0 && delay > e.MaxDelay {
		delay = e.MaxDelay
	}
	return delay
}

func (e *RetryExecutor) jitteredDelay(attempt int) time.Duration {
	delay := e.Delay(attempt)
	if e.Jitter <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Float64()*e.Jitter*float64(delay))
}

// Do runs fn until it succeeds, fails terminally, exhausts the retry
// budget, or ctx is done. The last error is returned unwrapped so
// callers can inspect it with errors.As.
func (e *RetryExecutor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	retryable := e.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= e.MaxRetries {
			return err
		}

		delay := e.jitteredDelay(attempt + 1)
		if e.OnRetry != nil {
			e.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
