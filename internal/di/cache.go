package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/config"
)

// CacheModule provides the optional Redis client
var CacheModule = fx.Module("cache",
	fx.Provide(provideCacheClient),
)

// provideCacheClient returns nil when Redis is disabled or unreachable.
// Redis only backs best-effort features, so it never blocks startup. Once
// running, a circuit breaker stops a failing Redis from slowing requests.
func provideCacheClient(lc fx.Lifecycle, cfg *config.RedisConfig, logger *zap.Logger) cache.Client {
	if !cfg.Enabled {
		logger.Info("Redis disabled, cache and index lock are off")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	client := cache.NewRedisClient(rdb)

	if err := client.Ping(context.Background()); err != nil {
		logger.Warn("Redis unreachable, continuing without it",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Redis connection")
			return client.Close()
		},
	})

	return cache.NewBreakerClient(client, cfg.Breaker, logger)
}
