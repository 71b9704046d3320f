package autotask

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDedupTTL bounds reuse of a completed successful result. An
// in-flight entry older than the TTL is also considered stale, so a
// hung call cannot pin a key forever.
const DefaultDedupTTL = 300 * time.Millisecond

// DeduplicationKey derives the coalescing key for a request: FNV-64a
// over method, endpoint, and the canonical JSON of the request body.
// encoding/json sorts map keys, which keeps the key stable across
// callers that build equivalent bodies.
func DeduplicationKey(method, endpoint string, body any) string {
	h := fnv.New64a()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	if body != nil {
		if data, err := json.Marshal(body); err == nil {
			h.Write(data)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// DedupEntry is the shared slot for one in-flight or recently completed
// request. The owner goroutine performs the call and completes the
// entry; duplicates wait on it.
type DedupEntry struct {
	done       chan struct{}
	body       []byte
	err        error
	expiresAt  time.Time
	duplicates int64
}

// Wait blocks until the entry settles or ctx is done, returning the
// shared response body or the shared error.
func (e *DedupEntry) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.done:
		return e.body, e.err
	}
}

// Duplicates returns how many callers were coalesced onto this entry
// in addition to the owner.
func (e *DedupEntry) Duplicates() int64 {
	return atomic.LoadInt64(&e.duplicates)
}

// Deduplicator coalesces identical concurrent requests onto a single
// network call and serves completed results for a short TTL. Expired
// entries are removed lazily on lookup; there is no background sweep.
type Deduplicator struct {
	mu      sync.Mutex
	entries map[string]*DedupEntry
	ttl     time.Duration
	hooks   *Hooks
}

// NewDeduplicator creates a deduplicator. A non-positive ttl falls back
// to DefaultDedupTTL. hooks may be nil.
func NewDeduplicator(ttl time.Duration, hooks *Hooks) *Deduplicator {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &Deduplicator{
		entries: make(map[string]*DedupEntry),
		ttl:     ttl,
		hooks:   hooks,
	}
}

// GetOrCreate looks up key and registers a fresh entry when none is
// live. The returned bool is true when the caller is the owner and must
// perform the call and invoke Complete. Lookup and insert happen under
// one lock, so exactly one caller owns any given key at a time.
func (d *Deduplicator) GetOrCreate(key, endpoint string) (*DedupEntry, bool) {
	now := time.Now()

	d.mu.Lock()
	if entry, ok := d.entries[key]; ok {
		if now.Before(entry.expiresAt) {
			atomic.AddInt64(&entry.duplicates, 1)
			d.mu.Unlock()
			d.hooks.Emit(Event{Type: EventDedupHit, Endpoint: endpoint})
			return entry, false
		}
		delete(d.entries, key)
	}

	entry := &DedupEntry{
		done:      make(chan struct{}),
		expiresAt: now.Add(d.ttl),
	}
	d.entries[key] = entry
	d.mu.Unlock()
	return entry, true
}

// Complete settles an owned entry and wakes every waiter. Failed
// entries are purged immediately so the next caller for the key starts
// a fresh attempt instead of replaying the failure.
func (d *Deduplicator) Complete(key string, entry *DedupEntry, body []byte, err error) {
	entry.body = body
	entry.err = err
	close(entry.done)

	if err != nil {
		d.mu.Lock()
		if d.entries[key] == entry {
			delete(d.entries, key)
		}
		d.mu.Unlock()
	}
}

// Forget drops the entry for key if it is the given one. Waiters that
// observed a shared failure call this before retrying fresh.
func (d *Deduplicator) Forget(key string, entry *DedupEntry) {
	d.mu.Lock()
	if d.entries[key] == entry {
		delete(d.entries, key)
	}
	d.mu.Unlock()
}

// Len reports the number of tracked entries, expired ones included.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
