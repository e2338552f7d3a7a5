package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jrjohn/outreach-api/internal/cache"
)

type cacheEntry struct {
	value   string
	expires time.Time
}

func (e cacheEntry) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// MockCacheClient is an in-memory cache.Client. Setting Err makes every
// operation except Ping fail with it.
type MockCacheClient struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	Err     error
	PingErr error
	Calls   map[string]int
}

var _ cache.Client = (*MockCacheClient)(nil)

// NewMockCacheClient returns an empty client
func NewMockCacheClient() *MockCacheClient {
	return &MockCacheClient{
		entries: make(map[string]cacheEntry),
		Calls:   make(map[string]int),
	}
}

// begin locks the client and records the call
func (m *MockCacheClient) begin(op string) error {
	m.mu.Lock()
	m.Calls[op]++
	return m.Err
}

func (m *MockCacheClient) lookup(key string) (string, bool) {
	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.live(time.Now()) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *MockCacheClient) store(key, value string, ttl time.Duration) {
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *MockCacheClient) Get(_ context.Context, key string) (string, error) {
	defer m.mu.Unlock()
	if err := m.begin("get"); err != nil {
		return "", err
	}
	v, ok := m.lookup(key)
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *MockCacheClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	defer m.mu.Unlock()
	if err := m.begin("set"); err != nil {
		return err
	}
	m.store(key, value, ttl)
	return nil
}

func (m *MockCacheClient) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	defer m.mu.Unlock()
	if err := m.begin("setnx"); err != nil {
		return false, err
	}
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.store(key, value, ttl)
	return true, nil
}

// Incr keeps the key's expiry, as redis does
func (m *MockCacheClient) Incr(_ context.Context, key string) (int64, error) {
	defer m.mu.Unlock()
	if err := m.begin("incr"); err != nil {
		return 0, err
	}
	var n int64
	if v, ok := m.lookup(key); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	e := m.entries[key]
	e.value = strconv.FormatInt(n, 10)
	m.entries[key] = e
	return n, nil
}

func (m *MockCacheClient) Del(_ context.Context, keys ...string) error {
	defer m.mu.Unlock()
	if err := m.begin("del"); err != nil {
		return err
	}
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *MockCacheClient) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls["ping"]++
	return m.PingErr
}

// Keys returns the number of unexpired keys
func (m *MockCacheClient) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	n := 0
	for _, e := range m.entries {
		if e.live(now) {
			n++
		}
	}
	return n
}
