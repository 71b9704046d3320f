package autotask_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryExecutorSucceedsFirstTry(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(3, time.Millisecond)
	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutorExhaustsBudget(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(3, time.Millisecond)
	cause := errors.New("transient")
	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 4, calls, "MaxRetries+1 invocations for a persistent failure")
}

func TestRetryExecutorRecoversMidway(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(5, time.Millisecond)
	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExecutorTerminalErrorShortCircuits(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(5, time.Millisecond)
	terminal := &autotask.APIError{StatusCode: http.StatusBadRequest, Method: "POST", Endpoint: "/Tickets"}
	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return terminal
	})

	var apiErr *autotask.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 1, calls, "terminal error must not consume retry slots")
}

func TestRetryExecutorBackoffGrowth(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(5, 100*time.Millisecond)
	executor.MaxDelay = time.Second

	assert.Equal(t, 100*time.Millisecond, executor.Delay(1))
	assert.Equal(t, 200*time.Millisecond, executor.Delay(2))
	assert.Equal(t, 400*time.Millisecond, executor.Delay(3))
	assert.Equal(t, 800*time.Millisecond, executor.Delay(4))
	assert.Equal(t, time.Second, executor.Delay(5), "capped at MaxDelay")
	assert.Equal(t, time.Second, executor.Delay(12))
}

func TestRetryExecutorContextCancelsWait(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(10, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- executor.Do(ctx, func(ctx context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestRetryExecutorCustomClassifier(t *testing.T) {
	t.Parallel()

	retryMe := errors.New("retry me")
	executor := autotask.NewRetryExecutor(3, time.Millisecond)
	executor.Retryable = func(err error) bool { return errors.Is(err, retryMe) }

	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return retryMe
		}
		return errors.New("terminal")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryExecutorOnRetryCallback(t *testing.T) {
	t.Parallel()

	executor := autotask.NewRetryExecutor(2, time.Millisecond)
	var attempts []int
	executor.OnRetry = func(attempt int, delay time.Duration, err error) {
		attempts = append(attempts, attempt)
	}

	_ = executor.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("transient")
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"plain transport error", errors.New("connection reset"), true},
		{"API 500", &autotask.APIError{StatusCode: 500}, true},
		{"API 503", &autotask.APIError{StatusCode: 503}, true},
		{"API 429", &autotask.APIError{StatusCode: 429}, true},
		{"API 404", &autotask.APIError{StatusCode: 404}, false},
		{"API 400", &autotask.APIError{StatusCode: 400}, false},
		{"API 401", &autotask.APIError{StatusCode: 401}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.retryable, autotask.IsRetryable(tt.err))
		})
	}
}
