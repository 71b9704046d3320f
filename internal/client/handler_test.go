package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	athttp "github.com/fieldops-io/autotask-client/internal/http"
	"github.com/fieldops-io/autotask-client/pkg/autotask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, serverURL string, mutate func(*autotask.Config)) *RequestHandler {
	t.Helper()

	cfg := &autotask.Config{
		IntegrationCode: "code",
		Username:        "user@example.com",
		Secret:          "secret",
		Endpoint:        serverURL,
		MaxRetries:      1,
		BaseRetryDelay:  time.Millisecond,
		DedupTTL:        200 * time.Millisecond,
	}
	if mutate != nil {
		mutate(cfg)
	}

	transport := athttp.NewClient(serverURL, &athttp.Credentials{
		IntegrationCode: cfg.IntegrationCode,
		Username:        cfg.Username,
		Secret:          cfg.Secret,
	})
	handler, err := NewRequestHandler(transport, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = handler.Close() })
	return handler
}

func TestExecuteQueryRequestWireFormat(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/Tickets/query", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(25), body["MaxRecords"])

		clauses, ok := body["filter"].([]any)
		require.True(t, ok)
		require.Len(t, clauses, 1)
		clause := clauses[0].(map[string]any)
		assert.Equal(t, "eq", clause["op"])
		assert.Equal(t, "status", clause["field"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":       []map[string]any{{"id": 1, "title": "t"}},
			"pageDetails": map[string]any{"count": 1, "requestCount": 1},
		})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, nil)

	body, err := handler.ExecuteQueryRequest(context.Background(), "Tickets", &autotask.QueryParams{
		Filter:     map[string]any{"status": 1},
		MaxRecords: 25,
	})
	require.NoError(t, err)

	list, err := decodeList[autotask.Ticket](body)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Items[0].ID)
}

func TestExecuteQueryRequestDefaultsEmptyFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		clauses := body["filter"].([]any)
		require.Len(t, clauses, 1)
		clause := clauses[0].(map[string]any)
		assert.Equal(t, "gte", clause["op"])
		assert.Equal(t, "id", clause["field"])
		assert.Equal(t, float64(0), clause["value"])

		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, nil)
	_, err := handler.ExecuteQueryRequest(context.Background(), "Tickets", nil)
	require.NoError(t, err)
}

func TestExecuteChildQueryRequestUsesLowercasePageKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Tickets/42/Notes/query", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(10), body["maxRecords"])
		assert.NotContains(t, body, "MaxRecords")

		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, nil)
	_, err := handler.ExecuteChildQueryRequest(context.Background(), "Tickets", 42, "Notes", &autotask.QueryParams{MaxRecords: 10})
	require.NoError(t, err)
}

func TestQueryDeduplicationCoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(30 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.DedupTTL = time.Second
	})

	params := &autotask.QueryParams{Filter: map[string]any{"status": 1}}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.ExecuteQueryRequest(context.Background(), "Tickets", params)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestQueryDedupFailureGivesNextCallerFreshAttempt(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{"bad filter"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.DedupTTL = time.Second
	})

	params := &autotask.QueryParams{Filter: map[string]any{"status": 1}}

	_, err := handler.ExecuteQueryRequest(context.Background(), "Tickets", params)
	require.Error(t, err)

	var apiErr *autotask.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	// The failed entry was purged, so this is a fresh network call.
	_, err = handler.ExecuteQueryRequest(context.Background(), "Tickets", params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestQueryResponseCache(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.DedupTTL = time.Millisecond // keep dedup out of the way
		cfg.Cache = autotask.DefaultCacheConfig()
	})

	params := &autotask.QueryParams{Filter: map[string]any{"status": 1}}

	_, err := handler.ExecuteQueryRequest(context.Background(), "Tickets", params)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = handler.ExecuteQueryRequest(context.Background(), "Tickets", params)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second query should be served from cache")
	stats := handler.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGetByIDResponseCache(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, "GET", r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": 5, "title": "stuck"}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.Cache = autotask.DefaultCacheConfig()
	})

	first, err := handler.GetByID(context.Background(), "Tickets", 5)
	require.NoError(t, err)

	second, err := handler.GetByID(context.Background(), "Tickets", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "second identical GET should be served from cache")
	stats := handler.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	// A different id is a different key.
	_, err = handler.GetByID(context.Background(), "Tickets", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetByIDCacheDisabledByPolicy(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": 5}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cache := autotask.DefaultCacheConfig()
		cache.Policy = &autotask.CachingPolicy{CacheGet: false, CacheQuery: true}
		cfg.Cache = cache
	})

	_, err := handler.GetByID(context.Background(), "Tickets", 5)
	require.NoError(t, err)
	_, err = handler.GetByID(context.Background(), "Tickets", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls), "GET caching is off under this policy")
}

func TestGetByIDUnwrapsItemEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/Tickets/5", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": 5, "title": "stuck"}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, nil)

	body, err := handler.GetByID(context.Background(), "Tickets", 5)
	require.NoError(t, err)

	ticket, err := decodeEntity[autotask.Ticket](body)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ticket.ID)
	assert.Equal(t, "stuck", ticket.Title)
}

func TestGetByIDBatchesIntoCombinedQuery(t *testing.T) {
	t.Parallel()

	var queryCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/Tickets/query", r.URL.Path)
		atomic.AddInt64(&queryCalls, 1)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		clauses := body["filter"].([]any)
		require.Len(t, clauses, 1)
		clause := clauses[0].(map[string]any)
		assert.Equal(t, "in", clause["op"])
		assert.Equal(t, "id", clause["field"])

		// Respond in reverse order to prove demux is id-based.
		requested := clause["value"].([]any)
		items := make([]map[string]any, 0, len(requested))
		for i := len(requested) - 1; i >= 0; i-- {
			id := int64(requested[i].(float64))
			items = append(items, map[string]any{"id": id, "title": fmt.Sprintf("ticket-%d", id)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.BatchingEnabledFor = []string{"Tickets"}
		cfg.BatchMaxSize = 4
		cfg.BatchFlushInterval = 10 * time.Millisecond
	})

	ids := []int64{101, 7, 2048, 33}
	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, err := handler.GetByID(context.Background(), "Tickets", id)
			require.NoError(t, err)
			ticket, err := decodeEntity[autotask.Ticket](body)
			require.NoError(t, err)
			assert.Equal(t, id, ticket.ID)
			assert.Equal(t, fmt.Sprintf("ticket-%d", id), ticket.Title)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&queryCalls), "one combined query for the whole batch")
}

func TestGetByIDBatchMissingIdRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only id 1 exists.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":       []map[string]any{{"id": 1}},
			"pageDetails": map[string]any{},
		})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.BatchingEnabledFor = []string{"Tickets"}
		cfg.BatchMaxSize = 2
		cfg.BatchFlushInterval = 10 * time.Millisecond
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := handler.GetByID(context.Background(), "Tickets", 1)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := handler.GetByID(context.Background(), "Tickets", 999)
		assert.ErrorIs(t, err, autotask.ErrMissingFromBatch)
	}()
	wg.Wait()
}

func TestExecuteRequestRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{"id": 9}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.MaxRetries = 3
	})

	body, err := handler.ExecuteRequest(context.Background(), "GET", "/Tickets/9", nil)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"id":9`)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestExecuteRequestTerminalErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": []string{"invalid credentials"}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.MaxRetries = 5
	})

	_, err := handler.ExecuteRequest(context.Background(), "GET", "/Tickets/1", nil)
	require.Error(t, err)
	assert.True(t, autotask.IsUnauthorized(err))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestHandlerCloseStopsBatchers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{{"id": 1}}, "pageDetails": map[string]any{}})
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL, func(cfg *autotask.Config) {
		cfg.BatchingEnabledFor = []string{"Tickets"}
		cfg.BatchMaxSize = 50
		cfg.BatchFlushInterval = time.Hour
	})

	done := make(chan error, 1)
	go func() {
		_, err := handler.GetByID(context.Background(), "Tickets", 1)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, handler.Close())

	select {
	case err := <-done:
		require.NoError(t, err, "Close must flush pending batch items")
	case <-time.After(time.Second):
		t.Fatal("pending batch item was not flushed on Close")
	}

	_, err := handler.GetByID(context.Background(), "Tickets", 2)
	assert.ErrorIs(t, err, autotask.ErrBatcherStopped)
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected string
	}{
		{"https://webservices14.autotask.net/atservicesrest", "https://webservices14.autotask.net/atservicesrest/v1.0"},
		{"https://webservices14.autotask.net/atservicesrest/", "https://webservices14.autotask.net/atservicesrest/v1.0"},
		{"https://webservices14.autotask.net/atservicesrest/v1.0", "https://webservices14.autotask.net/atservicesrest/v1.0"},
		{"https://webservices14.autotask.net/atservicesrest/V1.0/", "https://webservices14.autotask.net/atservicesrest/V1.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeEndpoint(tt.in))
	}
}
