package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

const (
	keyPrefix     = "outreach:users:"
	generationKey = keyPrefix + "gen"
	cacheName     = "users"

	// DefaultTTL bounds how long a cached read may outlive a missed invalidation.
	DefaultTTL = 30 * time.Second
)

// HitRecorder receives cache hit and miss events.
type HitRecorder interface {
	RecordCacheHit(ctx context.Context, cacheName string)
	RecordCacheMiss(ctx context.Context, cacheName string)
}

// cachedUserDAO serves Count, Find and Search from redis when possible.
// Every write bumps a generation counter that is part of each read key, so
// a write invalidates all cached reads at once. Cache failures are logged
// and the call falls through to the store. A write whose bump failed leaves
// the cache bypassed until a later bump succeeds.
type cachedUserDAO struct {
	next     dao.UserDAO
	client   Client
	recorder HitRecorder
	ttl      time.Duration
	logger   *zap.Logger

	// writes counts finished writes; covered is the highest count a
	// successful bump was issued after.
	writes  atomic.Uint64
	covered atomic.Uint64
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit(context.Context, string)  {}
func (nopRecorder) RecordCacheMiss(context.Context, string) {}

// NewCachedUserDAO wraps next with a read-through cache. recorder may be nil.
func NewCachedUserDAO(next dao.UserDAO, client Client, recorder HitRecorder, ttl time.Duration, logger *zap.Logger) dao.UserDAO {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &cachedUserDAO{
		next:     next,
		client:   client,
		recorder: recorder,
		ttl:      ttl,
		logger:   logger,
	}
}

func (c *cachedUserDAO) Count(ctx context.Context, filter translator.Filter) (int64, error) {
	key, ok := c.key(ctx, "count", filter, nil)
	if ok {
		var n int64
		if c.load(ctx, key, &n) {
			return n, nil
		}
	}

	n, err := c.next.Count(ctx, filter)
	if err != nil {
		return 0, err
	}
	if ok {
		c.store(ctx, key, n)
	}
	return n, nil
}

func (c *cachedUserDAO) Find(ctx context.Context, filter translator.Filter, projection dao.Projection) ([]translator.Document, error) {
	return c.readMany(ctx, "find", filter, projection, func() ([]translator.Document, error) {
		return c.next.Find(ctx, filter, projection)
	})
}

func (c *cachedUserDAO) Search(ctx context.Context, text string, projection dao.Projection) ([]translator.Document, error) {
	return c.readMany(ctx, "search", text, projection, func() ([]translator.Document, error) {
		return c.next.Search(ctx, text, projection)
	})
}

func (c *cachedUserDAO) FindOne(ctx context.Context, filter translator.Filter, projection dao.Projection) (translator.Document, error) {
	return c.next.FindOne(ctx, filter, projection)
}

func (c *cachedUserDAO) WriteOne(ctx context.Context, doc translator.Document) error {
	defer c.invalidate(ctx)
	return c.next.WriteOne(ctx, doc)
}

func (c *cachedUserDAO) WriteMany(ctx context.Context, docs []translator.Document) error {
	defer c.invalidate(ctx)
	return c.next.WriteMany(ctx, docs)
}

func (c *cachedUserDAO) UpdateOne(ctx context.Context, filter translator.Filter, patch translator.Patch) (int64, error) {
	defer c.invalidate(ctx)
	return c.next.UpdateOne(ctx, filter, patch)
}

func (c *cachedUserDAO) DeleteOne(ctx context.Context, filter translator.Filter) (int64, error) {
	defer c.invalidate(ctx)
	return c.next.DeleteOne(ctx, filter)
}

func (c *cachedUserDAO) DeleteMany(ctx context.Context, filter translator.Filter) (int64, error) {
	defer c.invalidate(ctx)
	return c.next.DeleteMany(ctx, filter)
}

func (c *cachedUserDAO) ResetCollection(ctx context.Context) error {
	defer c.invalidate(ctx)
	return c.next.ResetCollection(ctx)
}

// MakeIndex leaves documents untouched, so cached reads stay valid
func (c *cachedUserDAO) MakeIndex(ctx context.Context) error {
	return c.next.MakeIndex(ctx)
}

func (c *cachedUserDAO) DropIndex(ctx context.Context) error {
	defer c.invalidate(ctx)
	return c.next.DropIndex(ctx)
}

func (c *cachedUserDAO) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *cachedUserDAO) readMany(ctx context.Context, op string, criteria any, projection dao.Projection, fetch func() ([]translator.Document, error)) ([]translator.Document, error) {
	key, ok := c.key(ctx, op, criteria, projection.OrDefault())
	if ok {
		var docs []translator.Document
		if c.load(ctx, key, &docs) {
			return docs, nil
		}
	}

	docs, err := fetch()
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, key, docs)
	}
	return docs, nil
}

// key derives the cache key for a read under the current generation. It
// reports false when the generation cannot be read, in which case the cache
// is bypassed.
func (c *cachedUserDAO) key(ctx context.Context, op string, criteria any, projection dao.Projection) (string, bool) {
	if seq := c.writes.Load(); c.covered.Load() < seq && !c.bump(ctx, seq) {
		return "", false
	}

	gen, err := c.client.Get(ctx, generationKey)
	if errors.Is(err, ErrMiss) {
		gen = "0"
	} else if err != nil {
		c.logger.Warn("Cache unavailable", zap.String("op", op), zap.Error(err))
		return "", false
	}

	raw, err := json.Marshal(struct {
		Criteria   any            `json:"c"`
		Projection dao.Projection `json:"p,omitempty"`
	}{criteria, projection})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, gen, op, hex.EncodeToString(sum[:16])), true
}

func (c *cachedUserDAO) load(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.recorder.RecordCacheMiss(ctx, cacheName)
		return false
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		c.logger.Warn("Cache entry corrupt", zap.String("key", key), zap.Error(err))
		c.recorder.RecordCacheMiss(ctx, cacheName)
		return false
	}
	c.recorder.RecordCacheHit(ctx, cacheName)
	return true
}

func (c *cachedUserDAO) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *cachedUserDAO) invalidate(ctx context.Context) {
	c.bump(ctx, c.writes.Add(1))
}

// bump advances the generation and marks writes up to seq as covered on
// success.
func (c *cachedUserDAO) bump(ctx context.Context, seq uint64) bool {
	gen, err := c.client.Incr(ctx, generationKey)
	if err != nil {
		c.logger.Warn("Cache invalidation failed, bypassing cache", zap.Error(err))
		return false
	}
	for {
		cur := c.covered.Load()
		if cur >= seq || c.covered.CompareAndSwap(cur, seq) {
			break
		}
	}
	c.logger.Debug("Cache generation bumped", zap.String("generation", strconv.FormatInt(gen, 10)))
	return true
}
