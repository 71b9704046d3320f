package autotask_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicationKeyStable(t *testing.T) {
	t.Parallel()

	body := map[string]any{"filter": "x", "MaxRecords": 10}
	first := autotask.DeduplicationKey("POST", "/Tickets/query", body)
	second := autotask.DeduplicationKey("POST", "/Tickets/query", body)
	assert.Equal(t, first, second)

	other := autotask.DeduplicationKey("POST", "/Companies/query", body)
	assert.NotEqual(t, first, other)

	otherMethod := autotask.DeduplicationKey("GET", "/Tickets/query", body)
	assert.NotEqual(t, first, otherMethod)
}

func TestDeduplicatorCoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()

	dedup := autotask.NewDeduplicator(time.Second, nil)
	key := "test-key"

	var calls int64
	var wg sync.WaitGroup
	results := make([][]byte, 20)
	errs := make([]error, 20)

	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, owner := dedup.GetOrCreate(key, "Tickets")
			if owner {
				atomic.AddInt64(&calls, 1)
				time.Sleep(20 * time.Millisecond)
				dedup.Complete(key, entry, []byte(`{"items":[]}`), nil)
			}
			results[i], errs[i] = entry.Wait(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for i := 0; i < 20; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, `{"items":[]}`, string(results[i]))
	}
}

func TestDeduplicatorTTLExpiry(t *testing.T) {
	t.Parallel()

	dedup := autotask.NewDeduplicator(30*time.Millisecond, nil)
	key := "expiring"

	entry, owner := dedup.GetOrCreate(key, "Tickets")
	require.True(t, owner)
	dedup.Complete(key, entry, []byte("one"), nil)

	// Within the TTL the completed result is shared.
	shared, owner := dedup.GetOrCreate(key, "Tickets")
	require.False(t, owner)
	body, err := shared.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", string(body))

	time.Sleep(50 * time.Millisecond)

	_, owner = dedup.GetOrCreate(key, "Tickets")
	assert.True(t, owner, "expired entry should be replaced by a fresh owner")
}

func TestDeduplicatorPurgesFailedEntries(t *testing.T) {
	t.Parallel()

	dedup := autotask.NewDeduplicator(time.Second, nil)
	key := "failing"

	entry, owner := dedup.GetOrCreate(key, "Tickets")
	require.True(t, owner)
	dedup.Complete(key, entry, nil, errors.New("boom"))

	// The owner's waiters see the failure.
	_, err := entry.Wait(context.Background())
	require.Error(t, err)

	// The next caller gets a fresh attempt, not the cached failure.
	_, owner = dedup.GetOrCreate(key, "Tickets")
	assert.True(t, owner)
	assert.Equal(t, 1, dedup.Len())
}

func TestDeduplicatorDuplicateCountAndHook(t *testing.T) {
	t.Parallel()

	hooks := &autotask.Hooks{}
	var hits int64
	hooks.Register(func(ev autotask.Event) {
		if ev.Type == autotask.EventDedupHit {
			atomic.AddInt64(&hits, 1)
		}
	})

	dedup := autotask.NewDeduplicator(time.Second, hooks)
	entry, owner := dedup.GetOrCreate("k", "Tickets")
	require.True(t, owner)

	for i := 0; i < 3; i++ {
		dup, dupOwner := dedup.GetOrCreate("k", "Tickets")
		assert.False(t, dupOwner)
		assert.Same(t, entry, dup)
	}

	assert.Equal(t, int64(3), entry.Duplicates())
	assert.Equal(t, int64(3), atomic.LoadInt64(&hits))

	dedup.Complete("k", entry, []byte("ok"), nil)
}

func TestDedupEntryWaitHonorsContext(t *testing.T) {
	t.Parallel()

	dedup := autotask.NewDeduplicator(time.Second, nil)
	entry, owner := dedup.GetOrCreate("slow", "Tickets")
	require.True(t, owner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := entry.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Bookkeeping still completes for the abandoned waiter.
	dedup.Complete("slow", entry, []byte("late"), nil)
	body, err := entry.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", string(body))
}

func TestDeduplicatorForget(t *testing.T) {
	t.Parallel()

	dedup := autotask.NewDeduplicator(time.Second, nil)
	entry, owner := dedup.GetOrCreate("k", "Tickets")
	require.True(t, owner)
	require.Equal(t, 1, dedup.Len())

	dedup.Forget("k", entry)
	assert.Equal(t, 0, dedup.Len())

	// Forget of a superseded entry is a no-op.
	fresh, owner := dedup.GetOrCreate("k", "Tickets")
	require.True(t, owner)
	dedup.Forget("k", entry)
	assert.Equal(t, 1, dedup.Len())
	dedup.Complete("k", fresh, nil, nil)
}
