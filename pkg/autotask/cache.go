package autotask

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache errors.
var (
	ErrCacheDisabled     = errors.New("cache disabled")
	ErrCacheKeyNotFound  = errors.New("cache key not found")
	ErrCacheEntryExpired = errors.New("cache entry expired")
)

// DefaultCacheSize is the memory backend's default capacity.
const DefaultCacheSize = 1000

// DefaultCacheTTL is applied when a caller does not specify one.
const DefaultCacheTTL = 30 * time.Second

// CacheEntry is one stored response.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry's TTL has passed.
func (e *CacheEntry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Cache is a response cache backend. Get returns ErrCacheKeyNotFound
// for absent keys and ErrCacheEntryExpired for stale ones.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is an in-process Cache with a fixed capacity. Expired
// entries are dropped on read; Cleanup sweeps them eagerly. When full,
// the entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize
// entries. A non-positive maxSize falls back to DefaultCacheSize.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get retrieves an entry, dropping it if expired.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}
	if entry.Expired() {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}
	return entry, nil
}

// Set stores an entry, evicting the soonest-to-expire entry when the
// cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) evictLocked() {
	var victim string
	var soonest time.Time
	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(soonest) {
			victim = key
			soonest = entry.ExpiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mu.Unlock()
	return nil
}

// Has reports whether key holds a live entry.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	return ok && !entry.Expired()
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *MemoryCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheStats counts manager-level cache activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// HitRate returns hits over lookups, or 0 when nothing was looked up.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which responses are cacheable. The zero value
// caches nothing; DefaultCachingPolicy caches reads.
type CachingPolicy struct {
	// CacheGet enables caching of GET responses.
	CacheGet bool
	// CacheQuery enables caching of query (POST /query) responses.
	CacheQuery bool
	// IncludeEndpoints, when non-empty, restricts caching to these
	// endpoints.
	IncludeEndpoints []string
	// ExcludeEndpoints always bypass the cache.
	ExcludeEndpoints []string
}

// DefaultCachingPolicy caches GET and query responses for every
// endpoint.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{CacheGet: true, CacheQuery: true}
}

// ShouldCache reports whether a successful response for method and
// endpoint is cacheable. method is "GET" or "QUERY"; statusCode must be
// a 2xx.
func (p *CachingPolicy) ShouldCache(method, endpoint string, statusCode int) bool {
	if p == nil || statusCode < 200 || statusCode >= 300 {
		return false
	}
	switch method {
	case "GET":
		if !p.CacheGet {
			return false
		}
	case "QUERY":
		if !p.CacheQuery {
			return false
		}
	default:
		return false
	}

	for _, excluded := range p.ExcludeEndpoints {
		if strings.EqualFold(excluded, endpoint) {
			return false
		}
	}
	if len(p.IncludeEndpoints) > 0 {
		for _, included := range p.IncludeEndpoints {
			if strings.EqualFold(included, endpoint) {
				return true
			}
		}
		return false
	}
	return true
}

// CacheManager fronts a Cache backend with key construction, a TTL
// default, and hit/miss accounting.
type CacheManager struct {
	cache  Cache
	policy *CachingPolicy
	ttl    time.Duration

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager creates a manager over backend. A nil policy means
// DefaultCachingPolicy; a non-positive ttl means DefaultCacheTTL.
func NewCacheManager(backend Cache, policy *CachingPolicy, ttl time.Duration) *CacheManager {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{cache: backend, policy: policy, ttl: ttl}
}

// Key builds the cache key for a request: "METHOD:endpoint:params" with
// params sorted for determinism.
func (m *CacheManager) Key(method, endpoint string, params map[string]string) string {
	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteString(":")
	sb.WriteString(endpoint)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(":")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(params[k])
		}
	}
	return sb.String()
}

// Policy returns the manager's caching policy.
func (m *CacheManager) Policy() *CachingPolicy {
	return m.policy
}

// Get returns the cached body for key, or a miss error.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	if m == nil || m.cache == nil {
		return nil, ErrCacheDisabled
	}
	entry, err := m.cache.Get(ctx, key)

	m.mu.Lock()
	if err != nil {
		m.stats.Misses++
	} else {
		m.stats.Hits++
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}

// Set stores body under key with the manager's default TTL.
func (m *CacheManager) Set(ctx context.Context, key string, body []byte) error {
	return m.SetWithTTL(ctx, key, body, m.ttl)
}

// SetWithTTL stores body under key with an explicit TTL.
func (m *CacheManager) SetWithTTL(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if m == nil || m.cache == nil {
		return ErrCacheDisabled
	}
	err := m.cache.Set(ctx, key, &CacheEntry{
		Data:      body,
		ExpiresAt: time.Now().Add(ttl),
	})
	if err == nil {
		m.mu.Lock()
		m.stats.Sets++
		m.mu.Unlock()
	}
	return err
}

// Invalidate drops the entry for key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	if m == nil || m.cache == nil {
		return nil
	}
	return m.cache.Delete(ctx, key)
}

// Stats returns a snapshot of the manager's counters.
func (m *CacheManager) Stats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
