// Package testutil connects tests to the backing stores named by the
// TEST_* environment variables. Tests that need a store skip when it is
// unreachable.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	defaultMongoURI  = "mongodb://localhost:27018"
	defaultRedisAddr = "localhost:6380"

	// redisTestDB keeps test keys away from a developer's default database
	redisTestDB = 15

	connectTimeout = 5 * time.Second
)

// Env describes the stores available to tests
type Env struct {
	MongoURI string
	// MongoPrefix prefixes the per-test database names
	MongoPrefix string
	RedisAddr   string
	// RealRedis enables unit tests that talk to a live redis
	RealRedis bool
}

// LoadEnv reads the test environment
func LoadEnv() Env {
	return Env{
		MongoURI:    getenv("TEST_MONGO_URI", defaultMongoURI),
		MongoPrefix: getenv("TEST_MONGO_DB", "outreach_test"),
		RedisAddr:   getenv("TEST_REDIS_ADDR", defaultRedisAddr),
		RealRedis:   os.Getenv("TEST_USE_REAL_REDIS") == "true",
	}
}

// NewTestLogger returns a logger that writes through t
func NewTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))
}

// MongoDatabase connects to mongo and returns a database unique to the
// test. The database is dropped on cleanup.
func MongoDatabase(t *testing.T, env Env) *mongo.Database {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(env.MongoURI).
		SetServerSelectionTimeout(connectTimeout))
	if err != nil {
		t.Skipf("mongo unavailable at %s: %v", env.MongoURI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo unavailable at %s: %v", env.MongoURI, err)
	}

	db := client.Database(databaseName(env.MongoPrefix))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s: %v", db.Name(), err)
		}
		_ = client.Disconnect(ctx)
	})
	return db
}

// RedisClient connects to the redis test database and flushes it before
// and after the test
func RedisClient(t *testing.T, env Env) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: env.RedisAddr, DB: redisTestDB})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis unavailable at %s: %v", env.RedisAddr, err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		_ = client.Close()
	})
	return client
}

// SkipIfShort skips store-backed tests under -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping store-backed test in short mode")
	}
}

// databaseName stays under mongo's 64 byte database name limit
func databaseName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
