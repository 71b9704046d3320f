package autotask

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Default batching tuning. A batch flushes when it reaches
// DefaultBatchMaxSize items or DefaultBatchFlushInterval after its
// first item, whichever comes first.
const (
	DefaultBatchMaxSize       = 10
	DefaultBatchFlushInterval = 10 * time.Millisecond
	DefaultBatchFlushTimeout  = 30 * time.Second
)

// BatchFetchFunc performs the combined fetch for one flush: a single
// query for all ids against endpoint, returning each found record's raw
// JSON keyed by id. Ids absent from the map are individually rejected.
type BatchFetchFunc func(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error)

// BatchConfig tunes one BatchProcessor.
type BatchConfig struct {
	// MaxSize flushes the queue when reached. Defaults to
	// DefaultBatchMaxSize.
	MaxSize int
	// FlushInterval flushes the queue this long after its first item.
	// Defaults to DefaultBatchFlushInterval.
	FlushInterval time.Duration
	// FlushTimeout bounds the combined fetch. Defaults to
	// DefaultBatchFlushTimeout.
	FlushTimeout time.Duration
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultBatchMaxSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultBatchFlushInterval
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = DefaultBatchFlushTimeout
	}
	return c
}

type batchOutcome struct {
	body []byte
	err  error
}

type batchItem struct {
	id     int64
	result chan batchOutcome
}

// BatchProcessor accumulates get-by-id requests for one endpoint and
// serves them with combined queries. Results are demultiplexed by id,
// never by position, so backend response order does not matter. Each
// item settles exactly once: the queue is swapped out atomically at
// flush time and late arrivals start the next batch.
type BatchProcessor struct {
	endpoint string
	cfg      BatchConfig
	fetch    BatchFetchFunc
	hooks    *Hooks

	mu      sync.Mutex
	queue   []*batchItem
	timer   *time.Timer
	stopped bool
	flushes sync.WaitGroup
}

// NewBatchProcessor creates a processor for endpoint. fetch must not be
// nil; hooks may be.
func NewBatchProcessor(endpoint string, cfg BatchConfig, fetch BatchFetchFunc, hooks *Hooks) *BatchProcessor {
	return &BatchProcessor{
		endpoint: endpoint,
		cfg:      cfg.withDefaults(),
		fetch:    fetch,
		hooks:    hooks,
	}
}

// Process enqueues a get-by-id request and blocks until its own result
// is demuxed out of a flush, or ctx is done. An abandoned caller's item
// is still settled by the flush; only the wait is cut short.
func (p *BatchProcessor) Process(ctx context.Context, id int64) ([]byte, error) {
	item := &batchItem{id: id, result: make(chan batchOutcome, 1)}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil, ErrBatcherStopped
	}
	p.queue = append(p.queue, item)

	switch {
	case len(p.queue) >= p.cfg.MaxSize:
		batch := p.takeQueueLocked()
		// Registered before the unlock so a concurrent Stop cannot
		// return between handing off the batch and counting its flush.
		p.flushes.Add(1)
		p.mu.Unlock()
		p.flushAsync(batch)
	case len(p.queue) == 1:
		p.timer = time.AfterFunc(p.cfg.FlushInterval, p.flushOnTimer)
		p.mu.Unlock()
	default:
		p.mu.Unlock()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-item.result:
		return out.body, out.err
	}
}

// Stop flushes pending items and waits for in-progress flushes.
// Process calls after Stop fail with ErrBatcherStopped.
func (p *BatchProcessor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	batch := p.takeQueueLocked()
	p.mu.Unlock()

	p.flush(batch)
	p.flushes.Wait()
}

// takeQueueLocked swaps out the queue and disarms the timer. Callers
// hold p.mu.
func (p *BatchProcessor) takeQueueLocked() []*batchItem {
	batch := p.queue
	p.queue = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return batch
}

func (p *BatchProcessor) flushOnTimer() {
	p.mu.Lock()
	batch := p.takeQueueLocked()
	p.mu.Unlock()
	p.flush(batch)
}

// flushAsync runs flush in the background. The caller must have added
// the flush to p.flushes while holding p.mu.
func (p *BatchProcessor) flushAsync(batch []*batchItem) {
	go func() {
		defer p.flushes.Done()
		p.flush(batch)
	}()
}

// flush issues the combined query and settles every item in enqueue
// order. A failed combined call rejects all items with the same cause.
func (p *BatchProcessor) flush(batch []*batchItem) {
	if len(batch) == 0 {
		return
	}

	ids := make([]int64, len(batch))
	for i, item := range batch {
		ids[i] = item.id
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FlushTimeout)
	defer cancel()

	start := time.Now()
	results, err := p.fetch(ctx, p.endpoint, ids)
	p.hooks.Emit(Event{
		Type:      EventBatchFlush,
		Endpoint:  p.endpoint,
		BatchSize: len(batch),
		Duration:  time.Since(start),
	})

	for _, item := range batch {
		if err != nil {
			item.result <- batchOutcome{err: err}
			continue
		}
		body, ok := results[item.id]
		if !ok {
			item.result <- batchOutcome{err: fmt.Errorf("%w: %s id %d", ErrMissingFromBatch, p.endpoint, item.id)}
			continue
		}
		item.result <- batchOutcome{body: body}
	}
}
