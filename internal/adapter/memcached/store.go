package memcached

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/cache"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/app/config"
)

const ioTimeout = 500 * time.Millisecond

// maxRelativeTTL is the longest expiration memcached treats as relative;
// larger values are read as unix timestamps.
const maxRelativeTTL = 30 * 24 * time.Hour

func NewClient(cfg config.MemcachedConfig) (*memcache.Client, error) {
	client := memcache.New(cfg.Addr)
	client.Timeout = ioTimeout
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to memcached at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Store is the memcached implementation of cache.Remote. The client has no
// context support, so ctx is only checked before each call.
type Store struct {
	client *memcache.Client
	prefix string
}

func NewStore(client *memcache.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, err := s.client.Get(s.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.Set(&memcache.Item{
		Key:        s.prefix + key,
		Value:      value,
		Expiration: expiration(ttl),
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.client.Delete(s.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Incr increments key, creating it at 1 when absent.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	k := s.prefix + key
	for attempt := 0; attempt < 2; attempt++ {
		n, err := s.client.Increment(k, 1)
		if err == nil {
			return int64(n), nil
		}
		if !errors.Is(err, memcache.ErrCacheMiss) {
			return 0, err
		}
		err = s.client.Add(&memcache.Item{Key: k, Value: []byte(strconv.Itoa(1))})
		if err == nil {
			return 1, nil
		}
		if !errors.Is(err, memcache.ErrNotStored) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("memcached: could not increment %s", k)
}

func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxRelativeTTL {
		ttl = maxRelativeTTL
	}
	secs := int32(ttl / time.Second)
	if secs == 0 {
		secs = 1
	}
	return secs
}
