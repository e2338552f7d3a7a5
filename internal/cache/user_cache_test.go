package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
	"github.com/jrjohn/outreach-api/internal/testutil/mocks"
)

type hitCounter struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (h *hitCounter) RecordCacheHit(ctx context.Context, cacheName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *hitCounter) RecordCacheMiss(ctx context.Context, cacheName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func setupCache(t *testing.T) (dao.UserDAO, *mocks.MockUserDAO, *mocks.MockCacheClient, *hitCounter) {
	inner := mocks.NewMockUserDAO()
	client := mocks.NewMockCacheClient()
	counter := &hitCounter{}
	return cache.NewCachedUserDAO(inner, client, counter, 0, zaptest.NewLogger(t)), inner, client, counter
}

func TestCachedUserDAO_FindIsServedFromCache(t *testing.T) {
	userDAO, inner, _, counter := setupCache(t)
	ctx := context.Background()

	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee", "age": 30}))

	first, err := userDAO.Find(ctx, translator.Filter{"age": 30}, nil)
	require.NoError(t, err)
	second, err := userDAO.Find(ctx, translator.Filter{"age": 30}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.Calls["find"])
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 1, counter.misses)
	require.Len(t, second, 1)
	assert.Equal(t, first[0]["name"], second[0]["name"])
}

func TestCachedUserDAO_WriteInvalidates(t *testing.T) {
	userDAO, inner, _, _ := setupCache(t)
	ctx := context.Background()

	n, err := userDAO.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee"}))

	n, err = userDAO.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, inner.Calls["count"])

	_, err = userDAO.DeleteMany(ctx, nil)
	require.NoError(t, err)
	n, err = userDAO.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCachedUserDAO_SearchKeyedByText(t *testing.T) {
	userDAO, inner, _, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, userDAO.WriteMany(ctx, []translator.Document{
		{"name": "Ann Lee"},
		{"name": "Bob Stone"},
	}))

	ann, err := userDAO.Search(ctx, "ann", nil)
	require.NoError(t, err)
	bob, err := userDAO.Search(ctx, "bob", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.Calls["search"])
	assert.Equal(t, "Ann Lee", ann[0]["name"])
	assert.Equal(t, "Bob Stone", bob[0]["name"])
}

func TestCachedUserDAO_CacheFailureFallsThrough(t *testing.T) {
	userDAO, inner, client, _ := setupCache(t)
	ctx := context.Background()

	client.Err = errors.New("connection refused")

	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee"}))
	for i := 0; i < 2; i++ {
		docs, err := userDAO.Find(ctx, nil, nil)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	}
	assert.Equal(t, 2, inner.Calls["find"])
}

func TestCachedUserDAO_StoreErrorsAreNotCached(t *testing.T) {
	userDAO, inner, client, _ := setupCache(t)
	ctx := context.Background()

	inner.CountErr = errors.New("database error")
	_, err := userDAO.Count(ctx, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, client.Keys())

	inner.CountErr = nil
	n, err := userDAO.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCachedUserDAO_PassThrough(t *testing.T) {
	userDAO, inner, _, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, userDAO.ResetCollection(ctx))
	require.NoError(t, userDAO.DropIndex(ctx))
	assert.False(t, inner.HasIndex())
	require.NoError(t, userDAO.MakeIndex(ctx))
	assert.True(t, inner.HasIndex())
	require.NoError(t, userDAO.Ping(ctx))

	doc, err := userDAO.FindOne(ctx, translator.Filter{"name": "nobody"}, nil)
	require.NoError(t, err)
	assert.Nil(t, doc)

	n, err := userDAO.UpdateOne(ctx, nil, translator.Patch{"active": true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = userDAO.DeleteOne(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCachedUserDAO_FailedInvalidationBypassesCache(t *testing.T) {
	userDAO, inner, client, _ := setupCache(t)
	ctx := context.Background()
	filter := translator.Filter{"email": "ann@x.io"}

	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee", "email": "ann@x.io"}))
	_, err := userDAO.Find(ctx, filter, nil)
	require.NoError(t, err)

	client.Err = errors.New("connection reset")
	n, err := userDAO.UpdateOne(ctx, filter, translator.Patch{"active": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	client.Err = nil

	docs, err := userDAO.Find(ctx, filter, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, true, docs[0]["active"])
	assert.Equal(t, 2, inner.Calls["find"])

	// the deferred bump succeeded, so reads are cached again
	_, err = userDAO.Find(ctx, filter, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.Calls["find"])
}

func TestCachedUserDAO_StaysBypassedWhileBumpFails(t *testing.T) {
	userDAO, inner, client, _ := setupCache(t)
	ctx := context.Background()

	_, err := userDAO.Count(ctx, nil)
	require.NoError(t, err)
	gets := client.Calls["get"]

	client.Err = errors.New("connection reset")
	require.NoError(t, userDAO.WriteOne(ctx, translator.Document{"name": "Ann Lee"}))

	for i := 0; i < 2; i++ {
		n, err := userDAO.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	}
	assert.Equal(t, 3, inner.Calls["count"])
	assert.Equal(t, gets, client.Calls["get"], "reads skip the cache while the bump fails")
}

func TestCachedUserDAO_MakeIndexKeepsCache(t *testing.T) {
	userDAO, inner, client, _ := setupCache(t)
	ctx := context.Background()

	_, err := userDAO.Count(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, userDAO.MakeIndex(ctx))
	_, err = userDAO.Count(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.Calls["count"])
	assert.Zero(t, client.Calls["incr"])
}
