package di

import (
	"go.uber.org/fx"

	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/observability"
)

// ConfigModule provides configuration dependencies
var ConfigModule = fx.Module("config",
	fx.Provide(
		config.Load,
		provideAppConfig,
		provideServerConfig,
		provideDatabaseConfig,
		provideRedisConfig,
		provideIndexConfig,
		provideCORSConfig,
		provideGraphQLConfig,
		provideMetricsConfig,
		provideTracingConfig,
	),
)

func provideAppConfig(cfg *config.Config) *config.AppConfig {
	return &cfg.App
}

func provideServerConfig(cfg *config.Config) *config.ServerConfig {
	return &cfg.Server
}

func provideDatabaseConfig(cfg *config.Config) *config.DatabaseConfig {
	return &cfg.Database
}

func provideRedisConfig(cfg *config.Config) *config.RedisConfig {
	return &cfg.Redis
}

func provideIndexConfig(cfg *config.Config) *config.IndexConfig {
	return &cfg.Index
}

func provideCORSConfig(cfg *config.Config) *config.CORSConfig {
	return &cfg.CORS
}

func provideGraphQLConfig(cfg *config.Config) *config.GraphQLConfig {
	return &cfg.GraphQL
}

func provideMetricsConfig(cfg *config.Config) *observability.MetricsConfig {
	return &cfg.Metrics
}

func provideTracingConfig(cfg *config.Config) *observability.TracingConfig {
	tracing := cfg.Tracing
	if tracing.ServiceVersion == "" {
		tracing.ServiceVersion = cfg.App.Version
	}
	if tracing.Environment == "" {
		tracing.Environment = cfg.App.Environment
	}
	return &tracing
}
