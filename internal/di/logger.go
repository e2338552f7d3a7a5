package di

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/pkg/logger"
)

// LoggerModule provides logging dependencies
var LoggerModule = fx.Module("logger",
	fx.Provide(provideLogger),
	fx.Invoke(watchLogLevel),
)

// LoggerResult exposes the logger and its level handle
type LoggerResult struct {
	fx.Out

	Logger *zap.Logger
	Level  zap.AtomicLevel
}

func provideLogger(cfg *config.Config) (LoggerResult, error) {
	log, level, err := logger.NewWithLevel(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
	})
	if err != nil {
		return LoggerResult{}, err
	}
	return LoggerResult{Logger: log, Level: level}, nil
}

// watchLogLevel applies log level changes from the config file without a restart
func watchLogLevel(cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) {
	watching := cfg.Watch(func(e fsnotify.Event, next *config.Config) {
		if next.Log.Level == level.Level().String() {
			return
		}
		if err := logger.SetLevel(level, next.Log.Level); err != nil {
			log.Warn("Ignoring invalid log level", zap.String("level", next.Log.Level), zap.Error(err))
			return
		}
		log.Info("Log level changed",
			zap.String("file", e.Name),
			zap.String("level", next.Log.Level),
		)
	}, func(err error) {
		log.Warn("Ignoring invalid config change", zap.Error(err))
	})

	if watching {
		log.Debug("Watching config file", zap.String("path", cfg.ConfigFile()))
	}
}
