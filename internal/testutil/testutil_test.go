package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "")
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")
	t.Setenv("TEST_USE_REAL_REDIS", "true")

	env := LoadEnv()

	assert.Equal(t, defaultMongoURI, env.MongoURI)
	assert.Equal(t, "redis:6379", env.RedisAddr)
	assert.True(t, env.RealRedis)
}

func TestDatabaseName(t *testing.T) {
	a, b := databaseName("outreach_test"), databaseName("outreach_test")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "outreach_test_"))
	assert.Len(t, a, len("outreach_test_")+12)
}
