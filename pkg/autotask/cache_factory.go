package autotask

import (
	"context"
	"fmt"
	"time"
)

// CacheType selects a cache backend.
type CacheType string

const (
	// CacheTypeMemory is the in-process cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS is the shared NATS JetStream KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Type is the backend. Defaults to memory.
	Type CacheType

	// Memory cache settings, used when Type is memory.
	Memory *MemoryCacheConfig

	// NATS KV settings, required when Type is nats.
	NATS *NATSKVConfig

	// TTL is the default entry lifetime. Defaults to DefaultCacheTTL.
	TTL time.Duration

	// Policy decides which responses are cached. Defaults to
	// DefaultCachingPolicy.
	Policy *CachingPolicy
}

// MemoryCacheConfig configures the memory backend.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of entries.
	MaxSize int
}

// DefaultCacheConfig returns the memory-backed default.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:   CacheTypeMemory,
		Memory: &MemoryCacheConfig{MaxSize: DefaultCacheSize},
		TTL:    DefaultCacheTTL,
		Policy: DefaultCachingPolicy(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		maxSize := DefaultCacheSize
		if config.Memory != nil {
			maxSize = config.Memory.MaxSize
		}
		return NewMemoryCache(maxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}
		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewCacheManagerFromConfig builds the manager most callers want: a
// backend per config fronted by the configured policy and TTL. A nil
// config or CacheTypeNone returns a nil manager, which disables
// caching.
func NewCacheManagerFromConfig(config *CacheConfig) (*CacheManager, error) {
	if config == nil || config.Type == CacheTypeNone {
		return nil, nil
	}
	backend, err := NewCacheFromConfig(config)
	if err != nil {
		return nil, err
	}
	return NewCacheManager(backend, config.Policy, config.TTL), nil
}

// NoOpCache is a Cache that stores nothing.
type NoOpCache struct{}

// NewNoOpCache creates a no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always reports false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}
