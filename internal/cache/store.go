package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"projecthub/internal/observability"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultLocalEntries = 1024

// Store is a JSON cache-aside helper. It uses Redis when a client is
// configured and an expiring in-process LRU otherwise. Concurrent misses for
// the same key share one fetch.
type Store struct {
	client *redis.Client
	local  *lru.LRU[string, []byte]
	group  singleflight.Group
}

// NewStore builds a Store. client may be nil. localTTL bounds entries in the
// in-process fallback.
func NewStore(client *redis.Client, localTTL time.Duration) *Store {
	return &Store{
		client: client,
		local:  lru.NewLRU[string, []byte](defaultLocalEntries, nil, localTTL),
	}
}

// Client returns the underlying Redis client, or nil.
func (s *Store) Client() *redis.Client {
	return s.client
}

func (s *Store) layer() string {
	if s.client != nil {
		return "redis"
	}
	return "local"
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		b, ok := s.local.Get(key)
		return b, ok, nil
	}
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) set(ctx context.Context, key string, b []byte, ttl time.Duration) error {
	if s.client == nil {
		s.local.Add(key, b)
		return nil
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// GetJSON attempts to get the key and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	b, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.set(ctx, key, b, ttl)
}

// Aside reads key into dest, calling fetch on a miss and storing its result
// with ttl. Cache read and write failures degrade to calling fetch directly.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func(context.Context) (any, error)) error {
	found, err := s.GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.CacheResults.WithLabelValues(s.layer(), "hit").Inc()
		return nil
	}
	observability.CacheResults.WithLabelValues(s.layer(), "miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Followers share this result, so the leader's cancellation must not
		// fail their calls.
		ctx := context.WithoutCancel(ctx)
		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(fresh)
		if err != nil {
			return nil, err
		}
		// Best-effort store; the fetched value is still returned.
		_ = s.set(ctx, key, b, ttl)
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// Invalidate removes keys from the cache.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		s.local.Remove(key)
	}
	if s.client != nil && len(keys) > 0 {
		s.client.Del(ctx, keys...)
	}
}
