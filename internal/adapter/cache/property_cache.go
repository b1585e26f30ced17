package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

// ErrMiss is returned by a Remote when the key is not stored.
var ErrMiss = errors.New("cache miss")

const (
	searchGenKey   = "search:gen"
	tierLocal      = "local"
	tierRemote     = "remote"
	propertyPrefix = "property:"
)

// Remote is the shared cache tier behind the in-process one.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Recorder counts lookups per tier.
type Recorder interface {
	CacheHit(tier string)
	CacheMiss(tier string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)  {}
func (nopRecorder) CacheMiss(string) {}

type Config struct {
	LocalMaxSize int64
	LocalTTL     time.Duration
	SearchTTL    time.Duration
	PropertyTTL  time.Duration
}

// PropertyCache keeps search pages and single properties in a local ccache
// in front of an optional Remote. Search entries are keyed by a generation
// counter, so bumping the counter drops every cached page at once.
type PropertyCache struct {
	local    *ccache.Cache[[]byte]
	remote   Remote
	cfg      Config
	log      logger.Logger
	recorder Recorder
	localGen atomic.Int64
}

// New builds a cache. remote may be nil, in which case only the local tier
// is used.
func New(cfg Config, remote Remote, log logger.Logger, recorder Recorder) *PropertyCache {
	if cfg.LocalMaxSize <= 0 {
		cfg.LocalMaxSize = 1000
	}
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = time.Minute
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 5 * time.Minute
	}
	if cfg.PropertyTTL <= 0 {
		cfg.PropertyTTL = 15 * time.Minute
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &PropertyCache{
		local:    ccache.New(ccache.Configure[[]byte]().MaxSize(cfg.LocalMaxSize)),
		remote:   remote,
		cfg:      cfg,
		log:      log,
		recorder: recorder,
	}
}

// GetSearch looks up a page stored under a key from SearchKey.
func (c *PropertyCache) GetSearch(ctx context.Context, key string) (*domain.PagedResult[domain.Property], bool) {
	var res domain.PagedResult[domain.Property]
	if !c.get(ctx, key, &res) {
		return nil, false
	}
	return &res, true
}

// SetSearch stores a page under key. Pass the key used for the lookup, so a
// page fetched across an invalidation lands in the retired generation.
func (c *PropertyCache) SetSearch(ctx context.Context, key string, res *domain.PagedResult[domain.Property]) {
	c.set(ctx, key, res, c.cfg.SearchTTL)
}

func (c *PropertyCache) GetProperty(ctx context.Context, id string) (*domain.Property, bool) {
	var p domain.Property
	if !c.get(ctx, propertyPrefix+id, &p) {
		return nil, false
	}
	return &p, true
}

func (c *PropertyCache) SetProperty(ctx context.Context, p *domain.Property) {
	c.set(ctx, propertyPrefix+p.ID, p, c.cfg.PropertyTTL)
}

// InvalidateProperty drops the cached property and every cached search page.
func (c *PropertyCache) InvalidateProperty(ctx context.Context, id string) error {
	key := propertyPrefix + id
	c.local.Delete(key)
	var errs []error
	if c.remote != nil {
		if err := c.remote.Delete(ctx, key); err != nil && !errors.Is(err, ErrMiss) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if err := c.InvalidateSearches(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// InvalidateSearches moves to a new search generation.
func (c *PropertyCache) InvalidateSearches(ctx context.Context) error {
	gen := c.localGen.Add(1)
	if c.remote == nil {
		c.log.Debugw("PropertyCache.InvalidateSearches: local generation bumped", "gen", gen)
		return nil
	}
	remoteGen, err := c.remote.Incr(ctx, searchGenKey)
	if err != nil {
		return fmt.Errorf("bump search generation: %w", err)
	}
	c.log.Debugw("PropertyCache.InvalidateSearches: generation bumped", "gen", remoteGen)
	return nil
}

func (c *PropertyCache) Close() {
	c.local.Stop()
}

// SearchKey hashes the canonical query under the current generation.
func (c *PropertyCache) SearchKey(ctx context.Context, q domain.SearchQuery) string {
	gen := c.generation(ctx)
	return fmt.Sprintf("search:%d:%x", gen, md5.Sum([]byte(q.Key())))
}

// generation prefers the shared counter and falls back to the local one
// when the remote tier is absent or failing.
func (c *PropertyCache) generation(ctx context.Context) int64 {
	if c.remote == nil {
		return c.localGen.Load()
	}
	raw, err := c.remote.Get(ctx, searchGenKey)
	switch {
	case errors.Is(err, ErrMiss):
		return 0
	case err != nil:
		c.log.Warnw("PropertyCache.generation: remote unavailable, using local generation", "error", err)
		return -1 - c.localGen.Load()
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		c.log.Warnw("PropertyCache.generation: malformed generation", "value", string(raw))
		return -1 - c.localGen.Load()
	}
	return gen
}

func (c *PropertyCache) get(ctx context.Context, key string, v any) bool {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		if err := json.Unmarshal(item.Value(), v); err == nil {
			c.recorder.CacheHit(tierLocal)
			return true
		}
		c.local.Delete(key)
	}
	c.recorder.CacheMiss(tierLocal)

	if c.remote == nil {
		return false
	}
	data, err := c.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warnw("PropertyCache.get: remote lookup failed", "key", key, "error", err)
		}
		c.recorder.CacheMiss(tierRemote)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.log.Warnw("PropertyCache.get: dropping undecodable entry", "key", key, "error", err)
		c.recorder.CacheMiss(tierRemote)
		return false
	}
	c.recorder.CacheHit(tierRemote)
	c.local.Set(key, data, c.cfg.LocalTTL)
	return true
}

func (c *PropertyCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Errorw("PropertyCache.set: marshal failed", "key", key, "error", err)
		return
	}
	c.local.Set(key, data, min(c.cfg.LocalTTL, ttl))
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, data, ttl); err != nil {
		c.log.Warnw("PropertyCache.set: remote store failed", "key", key, "error", err)
	}
}
