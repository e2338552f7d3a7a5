package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
)

// MongoDatabase holds the shared client and the configured database
type MongoDatabase struct {
	DB     *mongo.Database
	Client *mongo.Client
}

// DatabaseModule provides database dependencies
var DatabaseModule = fx.Module("database",
	fx.Provide(provideMongoDatabase),
)

func mongoClientOptions(cfg *config.DatabaseConfig, appName string, logger *zap.Logger) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URI)
	if appName != "" {
		opts.SetAppName(appName)
	}
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.SlowCommand > 0 && logger != nil {
		opts.SetMonitor(slowCommandMonitor(cfg, logger))
	}
	return opts
}

// slowCommandMonitor logs successful commands that exceed cfg.SlowCommand
// and every failed command at debug
func slowCommandMonitor(cfg *config.DatabaseConfig, logger *zap.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			if e.Duration < cfg.SlowCommand {
				return
			}
			logger.Warn("Slow MongoDB command",
				zap.String("command", e.CommandName),
				zap.String("database", e.DatabaseName),
				zap.Duration("duration", e.Duration),
			)
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			logger.Debug("MongoDB command failed",
				zap.String("command", e.CommandName),
				zap.String("database", e.DatabaseName),
				zap.Duration("duration", e.Duration),
				zap.String("failure", e.Failure),
			)
		},
	}
}

// provideMongoDatabase builds the client without waiting for the server.
// An unreachable server is logged at start and reported by /ready.
func provideMongoDatabase(lc fx.Lifecycle, cfg *config.DatabaseConfig, app *config.AppConfig, logger *zap.Logger) (*MongoDatabase, error) {
	log := logger.Named("mongo")
	client, err := mongo.Connect(context.Background(), mongoClientOptions(cfg, app.Name, log))
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, nil); err != nil {
				log.Warn("MongoDB is not reachable yet", zap.Error(err))
				return nil
			}
			log.Info("Connected to MongoDB",
				zap.String("database", cfg.Name),
				zap.String("collection", cfg.Collection),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return &MongoDatabase{DB: client.Database(cfg.Name), Client: client}, nil
}
