package autotask

import (
	"sync"
	"time"
)

// EventType identifies an optimization-layer event.
type EventType string

// Event types emitted by the optimization layer.
const (
	EventDedupHit   EventType = "dedup_hit"
	EventBatchFlush EventType = "batch_flush"
	EventRetry      EventType = "retry"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
)

// Event is a single observation. Fields are informational; observers
// must not rely on them for control flow.
type Event struct {
	Type     EventType
	Endpoint string
	// Attempt is set for retry events (1-based retry number).
	Attempt int
	// BatchSize is set for batch flush events.
	BatchSize int
	// Duration is set where a latency is meaningful (batch flushes).
	Duration time.Duration
	// Err carries the triggering error for retry events.
	Err error
}

// Observer receives optimization-layer events. Callbacks run on the
// emitting goroutine and must return quickly.
type Observer func(Event)

// Hooks fans events out to registered observers. The zero value and a
// nil *Hooks are both usable and emit nothing.
type Hooks struct {
	mu        sync.RWMutex
	observers []Observer
}

// Register adds an observer.
func (h *Hooks) Register(o Observer) {
	if h == nil || o == nil {
		return
	}
	h.mu.Lock()
	h.observers = append(h.observers, o)
	h.mu.Unlock()
}

// Emit delivers ev to every registered observer.
func (h *Hooks) Emit(ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	observers := h.observers
	h.mu.RUnlock()
	for _, o := range observers {
		o(ev)
	}
}
