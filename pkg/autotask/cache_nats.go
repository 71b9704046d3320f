package autotask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. nats://localhost:4222.
	URL string
	// Bucket is the KV bucket name. Created if absent.
	Bucket string
	// TTL applied at the bucket level. Zero keeps entries until the
	// client-side ExpiresAt lapses.
	TTL time.Duration
	// ConnectOptions are passed through to nats.Connect.
	ConnectOptions []nats.Option
}

// NATSKVCache stores cache entries in a NATS JetStream KV bucket so
// multiple client processes can share a response cache. Entries still
// carry their own ExpiresAt; a stale read is reported as expired and
// purged.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.URL == "" || config.Bucket == "" {
		return nil, ErrNATSConfigRequired
	}

	conn, err := nats.Connect(config.URL, config.ConnectOptions...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("binding KV bucket %q: %w", config.Bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// kvKey maps a cache key onto the character set NATS KV allows.
func kvKey(key string) string {
	out := []byte(key)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '/' || c == '=' || c == '.':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// Get retrieves an entry from the bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	raw, err := c.kv.Get(kvKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}
		return nil, fmt.Errorf("reading cache key %q: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw.Value(), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry %q: %w", key, err)
	}
	if entry.Expired() {
		_ = c.kv.Delete(kvKey(key))
		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}
	return &entry, nil
}

// Set stores an entry in the bucket.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}
	if _, err := c.kv.Put(kvKey(key), data); err != nil {
		return fmt.Errorf("writing cache key %q: %w", key, err)
	}
	return nil
}

// Delete removes an entry from the bucket.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(kvKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key %q: %w", key, err)
	}
	return nil
}

// Clear purges every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}
		return fmt.Errorf("listing cache keys: %w", err)
	}
	for _, key := range keys {
		if err := c.kv.Purge(key); err != nil {
			return fmt.Errorf("purging cache key %q: %w", key, err)
		}
	}
	return nil
}

// Has reports whether key holds a live entry.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	entry, err := c.Get(ctx, key)
	return err == nil && entry != nil
}

// Close closes the underlying NATS connection.
func (c *NATSKVCache) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
