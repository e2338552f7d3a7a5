package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	mongodao "github.com/jrjohn/outreach-api/internal/domain/dao/mongo"
	"github.com/jrjohn/outreach-api/internal/domain/entity"
	"github.com/jrjohn/outreach-api/internal/seed"
	"github.com/jrjohn/outreach-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (searched in default locations when empty)")
	fixturesPath := flag.String("fixtures", "", "YAML fixtures file; the sample user is written when empty")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	cfg, log := mustLoadConfig(*configPath)
	defer log.Sync()

	users := mustLoadFixtures(*fixturesPath, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Database.URI).
		SetServerSelectionTimeout(cfg.Database.ServerSelectionTimeout))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("Error closing MongoDB connection", zap.Error(err))
		}
	}()

	log.Info("Seeding user collection",
		zap.String("database", cfg.Database.Name),
		zap.String("collection", cfg.Database.Collection),
	)

	cacheClient := mustConnectCache(ctx, &cfg.Redis, log)
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	var userDAO dao.UserDAO = mongodao.NewUserDAO(client.Database(cfg.Database.Name), cfg.Database.Collection)
	if cacheClient != nil {
		userDAO = seed.WithCache(userDAO, cacheClient, cfg.Redis.CacheTTL, log)
	}
	if err := seed.Run(ctx, userDAO, users, log); err != nil {
		log.Error("Seeding failed", zap.Error(err))
		os.Exit(1)
	}
}

func mustLoadConfig(path string) (*config.Config, *zap.Logger) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
	})
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, log
}

// mustConnectCache returns nil when redis is disabled. An enabled but
// unreachable redis is fatal: a server using it would keep serving reads
// cached before the seed.
func mustConnectCache(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) *cache.RedisClient {
	if !cfg.Enabled {
		return nil
	}
	client := cache.NewRedisClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}))
	if err := client.Ping(ctx); err != nil {
		log.Fatal("Redis unreachable, cached reads cannot be invalidated",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
	}
	return client
}

func mustLoadFixtures(path string, log *zap.Logger) []*entity.User {
	if path == "" {
		return nil
	}
	users, err := seed.LoadFile(path)
	if err != nil {
		log.Fatal("Failed to load fixtures", zap.String("path", path), zap.Error(err))
	}
	return users
}
