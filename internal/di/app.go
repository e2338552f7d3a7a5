package di

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jrjohn/outreach-api/internal/config"
)

// AppModule aggregates all application modules
var AppModule = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	DatabaseModule,
	CacheModule,
	DAOModule,
	ServiceModule,
	ControllerModule,
	SchedulerModule,
	HTTPServerModule,
)

// Server is the full fx application: modules, startup log and fx's own
// events routed through zap
var Server = fx.Options(
	AppModule,
	fx.Invoke(LogStartup),
	fx.WithLogger(NewFxLogger),
)

// NewFxLogger logs fx lifecycle events at debug and failures at error
func NewFxLogger(logger *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
	l.UseLogLevel(zapcore.DebugLevel)
	l.UseErrorLevel(zapcore.ErrorLevel)
	return l
}

// LogStartup records what this process is serving and from where
func LogStartup(cfg *config.Config, logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("database", cfg.Database.Name),
		zap.String("collection", cfg.Database.Collection),
		zap.Bool("cache", cfg.Redis.Enabled),
		zap.Bool("index_job", cfg.Index.Enabled),
		zap.Bool("graphql", cfg.GraphQL.Enabled),
		zap.Int("port", cfg.Server.Port),
	}
	if file := cfg.ConfigFile(); file != "" {
		fields = append(fields, zap.String("config_file", file))
	}
	logger.Info("Starting user store", fields...)
}
