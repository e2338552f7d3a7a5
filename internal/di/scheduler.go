package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/config"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/jobs/scheduler"
)

// SchedulerModule provides the text index maintenance job
var SchedulerModule = fx.Module("scheduler",
	fx.Provide(provideIndexScheduler),
	fx.Invoke(startIndexScheduler),
)

// provideIndexScheduler returns nil when the index job is disabled
func provideIndexScheduler(
	cfg *config.IndexConfig,
	userDAO dao.UserDAO,
	lock cache.Client,
	logger *zap.Logger,
) (*scheduler.IndexScheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	return scheduler.NewIndexScheduler(userDAO, lock, logger.Named("index"), scheduler.SchedulerConfig{
		Schedule:         cfg.Schedule,
		RunOnStart:       cfg.RunOnStart,
		Timeout:          cfg.Timeout,
		ExecutionLockTTL: cfg.LockTTL,
	})
}

func startIndexScheduler(lc fx.Lifecycle, sched *scheduler.IndexScheduler, logger *zap.Logger) {
	if sched == nil {
		logger.Info("Index scheduler disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sched.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
}
