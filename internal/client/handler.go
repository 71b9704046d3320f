// Package client composes the optimization pipeline into a request
// handler and exposes the per-entity API clients built on it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	athttp "github.com/fieldops-io/autotask-client/internal/http"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
)

// RequestHandler routes every entity-client call through the
// optimization pipeline: filter normalization, response cache,
// deduplication, batching, and retries, in that order. All state is
// per-handler; there are no package-level singletons.
type RequestHandler struct {
	transport *athttp.Client
	logger    autotask.Logger
	hooks     *autotask.Hooks
	metrics   *autotask.MetricsCollector
	retry     *autotask.RetryExecutor
	dedup     *autotask.Deduplicator
	cache     *autotask.CacheManager

	batchCfg     autotask.BatchConfig
	batchEnabled map[string]bool

	mu       sync.Mutex
	batchers map[string]*autotask.BatchProcessor
	closed   bool
}

// NewRequestHandler wires the pipeline from config. transport must be
// ready to use.
func NewRequestHandler(transport *athttp.Client, cfg *autotask.Config) (*RequestHandler, error) {
	cache, err := autotask.NewCacheManagerFromConfig(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("building response cache: %w", err)
	}

	var metrics *autotask.MetricsCollector
	if cfg.MetricsRegisterer != nil {
		metrics = autotask.NewMetricsCollectorWithRegistry(cfg.MetricsRegisterer)
	}

	batchEnabled := make(map[string]bool, len(cfg.BatchingEnabledFor))
	for _, endpoint := range cfg.BatchingEnabledFor {
		batchEnabled[endpoint] = true
	}

	return &RequestHandler{
		transport: transport,
		logger:    cfg.Logger,
		hooks:     cfg.Hooks,
		metrics:   metrics,
		retry:     cfg.RetryExecutorFromConfig(),
		dedup:     autotask.NewDeduplicator(cfg.DedupTTL, cfg.Hooks),
		cache:     cache,
		batchCfg: autotask.BatchConfig{
			MaxSize:       cfg.BatchMaxSize,
			FlushInterval: cfg.BatchFlushInterval,
		},
		batchEnabled: batchEnabled,
		batchers:     make(map[string]*autotask.BatchProcessor),
	}, nil
}

// doWithRetry runs fn under a per-call copy of the retry executor so
// the retry callback can carry the endpoint label.
func (h *RequestHandler) doWithRetry(ctx context.Context, endpoint string, fn func(context.Context) error) error {
	executor := *h.retry
	executor.OnRetry = func(attempt int, delay time.Duration, err error) {
		h.metrics.RecordRetry(endpoint, attempt)
		h.hooks.Emit(autotask.Event{Type: autotask.EventRetry, Endpoint: endpoint, Attempt: attempt, Err: err})
		if h.logger != nil {
			h.logger.Warn("retrying request", map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  attempt,
				"delay":    delay.String(),
				"error":    err.Error(),
			})
		}
	}
	return executor.Do(ctx, fn)
}

// ExecuteRequest performs a mutating or direct call with retries and
// returns the raw response body.
func (h *RequestHandler) ExecuteRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	h.metrics.RecordRequestStart(method, path)
	defer h.metrics.RecordRequestEnd(method, path)

	if h.logger != nil {
		h.logger.Debug("executing request", map[string]interface{}{"method": method, "path": path})
	}

	start := time.Now()
	var respBody []byte
	status := 0
	err := h.doWithRetry(ctx, path, func(ctx context.Context) error {
		resp, err := h.transport.Do(ctx, &athttp.Request{Method: method, Path: path, Body: body})
		if resp != nil {
			status = resp.StatusCode
		}
		if err != nil {
			return err
		}
		respBody = resp.Body
		return nil
	})
	h.metrics.RecordRequest(method, path, status, time.Since(start))

	if err != nil {
		h.metrics.RecordError("request", method, path)
		if h.logger != nil {
			h.logger.Error("request failed", map[string]interface{}{
				"method": method,
				"path":   path,
				"error":  err.Error(),
			})
		}
		return nil, err
	}
	return respBody, nil
}

// ExecuteQueryRequest performs a query against a top-level endpoint:
// POST /{endpoint}/query with the normalized filter body, routed
// through the response cache and the deduplicator.
func (h *RequestHandler) ExecuteQueryRequest(ctx context.Context, endpoint string, params *autotask.QueryParams) ([]byte, error) {
	path := "/" + endpoint + "/query"
	body := params.Body(autotask.PageSizeKeyQuery)
	return h.executeQueryBody(ctx, endpoint, path, body)
}

// ExecuteChildQueryRequest performs a query against a child collection:
// POST /{parent}/{id}/{child}/query. These endpoints take the lowercase
// maxRecords page-size key.
func (h *RequestHandler) ExecuteChildQueryRequest(ctx context.Context, parentEndpoint string, parentID int64, child string, params *autotask.QueryParams) ([]byte, error) {
	path := fmt.Sprintf("/%s/%d/%s/query", parentEndpoint, parentID, child)
	body := params.Body(autotask.PageSizeKeyChildQuery)
	return h.executeQueryBody(ctx, parentEndpoint+"/"+child, path, body)
}

func (h *RequestHandler) executeQueryBody(ctx context.Context, endpoint, path string, body map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding query body: %w", err)
	}

	// Policy is consulted before the call; 2xx stands in for the
	// status a cacheable response would have.
	cacheKey := ""
	if h.cache != nil && h.cache.Policy().ShouldCache("QUERY", endpoint, http.StatusOK) {
		cacheKey = h.cache.Key("QUERY", endpoint, map[string]string{"body": string(encoded)})
		if cached, err := h.cache.Get(ctx, cacheKey); err == nil {
			h.metrics.RecordCacheHit(endpoint)
			h.hooks.Emit(autotask.Event{Type: autotask.EventCacheHit, Endpoint: endpoint})
			return cached, nil
		}
		h.metrics.RecordCacheMiss(endpoint)
		h.hooks.Emit(autotask.Event{Type: autotask.EventCacheMiss, Endpoint: endpoint})
	}

	key := autotask.DeduplicationKey(http.MethodPost, path, body)
	for {
		entry, owner := h.dedup.GetOrCreate(key, endpoint)
		if !owner {
			h.metrics.RecordDeduplicationHit(endpoint)
			shared, err := entry.Wait(ctx)
			if err == nil {
				return shared, nil
			}
			if ctx.Err() != nil {
				return nil, err
			}
			// The shared attempt failed. Drop the entry and compete to
			// own a fresh one instead of replaying the failure.
			h.dedup.Forget(key, entry)
			continue
		}

		respBody, err := h.ExecuteRequest(ctx, http.MethodPost, path, body)
		h.dedup.Complete(key, entry, respBody, err)
		if err != nil {
			return nil, err
		}
		if cacheKey != "" {
			_ = h.cache.Set(ctx, cacheKey, respBody)
		}
		return respBody, nil
	}
}

// GetByID fetches one record and returns its raw JSON. When batching is
// enabled for the endpoint the call is coalesced into a combined query;
// otherwise it is a direct GET through the response cache, with the
// {item} envelope unwrapped.
func (h *RequestHandler) GetByID(ctx context.Context, endpoint string, id int64) ([]byte, error) {
	if h.batchEnabled[endpoint] {
		batcher, err := h.batcherFor(endpoint)
		if err != nil {
			return nil, err
		}
		return batcher.Process(ctx, id)
	}

	cacheKey := ""
	if h.cache != nil && h.cache.Policy().ShouldCache(http.MethodGet, endpoint, http.StatusOK) {
		cacheKey = h.cache.Key(http.MethodGet, endpoint, map[string]string{"id": strconv.FormatInt(id, 10)})
		if cached, err := h.cache.Get(ctx, cacheKey); err == nil {
			h.metrics.RecordCacheHit(endpoint)
			h.hooks.Emit(autotask.Event{Type: autotask.EventCacheHit, Endpoint: endpoint})
			return cached, nil
		}
		h.metrics.RecordCacheMiss(endpoint)
		h.hooks.Emit(autotask.Event{Type: autotask.EventCacheMiss, Endpoint: endpoint})
	}

	body, err := h.ExecuteRequest(ctx, http.MethodGet, fmt.Sprintf("/%s/%d", endpoint, id), nil)
	if err != nil {
		return nil, err
	}
	item := unwrapItem(body)
	if cacheKey != "" {
		_ = h.cache.Set(ctx, cacheKey, item)
	}
	return item, nil
}

func (h *RequestHandler) batcherFor(endpoint string) (*autotask.BatchProcessor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, autotask.ErrBatcherStopped
	}
	batcher, ok := h.batchers[endpoint]
	if !ok {
		batcher = autotask.NewBatchProcessor(endpoint, h.batchCfg, h.batchFetch, h.hooks)
		h.batchers[endpoint] = batcher
	}
	return batcher, nil
}

// batchFetch serves one batch flush: a single combined query with an
// "in" clause over the ids, demuxed by each record's own id field.
func (h *RequestHandler) batchFetch(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	params := &autotask.QueryParams{
		Filter:     autotask.NewFilter().In("id", values...),
		MaxRecords: len(ids),
	}
	path := "/" + endpoint + "/query"
	body := params.Body(autotask.PageSizeKeyQuery)

	respBody, err := h.ExecuteRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("decoding batch response for %s: %w", endpoint, err)
	}

	results := make(map[int64][]byte, len(list.Items))
	for _, raw := range list.Items {
		var probe struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		results[probe.ID] = raw
	}

	h.metrics.RecordBatchFlush(endpoint, len(ids))
	return results, nil
}

// CacheStats reports response-cache counters.
func (h *RequestHandler) CacheStats() autotask.CacheStats {
	if h.cache == nil {
		return autotask.CacheStats{}
	}
	return h.cache.Stats()
}

// Close stops every batch processor, flushing pending items first.
func (h *RequestHandler) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	batchers := make([]*autotask.BatchProcessor, 0, len(h.batchers))
	for _, b := range h.batchers {
		batchers = append(batchers, b)
	}
	h.mu.Unlock()

	for _, b := range batchers {
		b.Stop()
	}
	return nil
}

// unwrapItem strips the {"item": ...} envelope from single-record
// responses. Bodies without the envelope pass through untouched.
func unwrapItem(body []byte) []byte {
	var envelope struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Item) > 0 {
		return envelope.Item
	}
	return body
}
