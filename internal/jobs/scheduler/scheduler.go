package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/domain/dao"
)

// EveryTenMinutes is the default index maintenance schedule
const EveryTenMinutes = "@every 10m"

// indexLockPrefix prefixes the per-window lock keys
const indexLockPrefix = "outreach:jobs:index:execution:"

// ErrAlreadyRunning is returned by Start on a started scheduler
var ErrAlreadyRunning = errors.New("index scheduler already running")

// SchedulerConfig holds index scheduler configuration
type SchedulerConfig struct {
	Schedule   string
	RunOnStart bool
	// Timeout bounds a single MakeIndex call
	Timeout time.Duration
	// ExecutionLockTTL is the width of an execution window; at most one
	// instance sharing the lock runs per window
	ExecutionLockTTL time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Schedule:         EveryTenMinutes,
		RunOnStart:       true,
		Timeout:          30 * time.Second,
		ExecutionLockTTL: 5 * time.Minute,
	}
}

// IndexScheduler periodically re-creates the wildcard text index, which
// disappears whenever the collection is dropped out of band.
type IndexScheduler struct {
	userDAO    dao.UserDAO
	lock       cache.Client
	logger     *zap.Logger
	config     SchedulerConfig
	cron       *cron.Cron
	instanceID string
	now        func() time.Time

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
	looping bool
	runs    int
	lastErr error
}

// NewIndexScheduler validates the schedule and builds a stopped scheduler.
// lock may be nil, in which case every instance runs every tick.
func NewIndexScheduler(userDAO dao.UserDAO, lock cache.Client, logger *zap.Logger, config SchedulerConfig) (*IndexScheduler, error) {
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("invalid index schedule %q: %w", config.Schedule, err)
	}
	defaults := DefaultSchedulerConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.ExecutionLockTTL <= 0 {
		config.ExecutionLockTTL = defaults.ExecutionLockTTL
	}

	cl := cronLogger{logger: logger}
	return &IndexScheduler{
		userDAO: userDAO,
		lock:    lock,
		logger:  logger,
		config:  config,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		instanceID: uuid.NewString(),
		now:        time.Now,
	}, nil
}

// Start schedules the index job, optionally runs it once inline, then
// starts the cron loop. A Stop during the initial run leaves the loop
// unstarted.
func (s *IndexScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	id, err := s.cron.AddFunc(s.config.Schedule, s.tick)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule index job: %w", err)
	}
	s.entryID = id
	s.started = true
	s.mu.Unlock()

	s.logger.Info("Starting index scheduler",
		zap.String("instance_id", s.instanceID),
		zap.String("schedule", s.config.Schedule),
	)

	if s.config.RunOnStart {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Warn("Initial index maintenance failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.logger.Info("Index scheduler stopped during initial run")
		return nil
	}
	s.cron.Start()
	s.looping = true
	return nil
}

// Stop halts the cron loop and waits for an in-flight run or ctx
func (s *IndexScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.looping = false
	s.cron.Remove(s.entryID)
	s.entryID = 0
	s.mu.Unlock()

	s.logger.Info("Stopping index scheduler")
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *IndexScheduler) tick() {
	if err := s.RunOnce(context.Background()); err != nil {
		s.logger.Error("Index maintenance failed", zap.Error(err))
	}
}

// RunOnce ensures the text index unless another instance already did so
// in the current window. A lock error is logged and the run proceeds.
func (s *IndexScheduler) RunOnce(ctx context.Context) error {
	if s.lock != nil {
		key := s.windowKey()
		acquired, err := s.lock.SetNX(ctx, key, s.instanceID, s.config.ExecutionLockTTL)
		switch {
		case err != nil:
			s.logger.Warn("Index lock unavailable, running anyway", zap.Error(err))
		case !acquired:
			s.logger.Debug("Index already ensured in this window", zap.String("lock", key))
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := s.now()
	err := s.userDAO.MakeIndex(ctx)

	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("make text index: %w", err)
	}
	s.logger.Info("Text index ensured", zap.Duration("duration", s.now().Sub(start)))
	return nil
}

// windowKey names the lock for the execution window containing now
func (s *IndexScheduler) windowKey() string {
	window := s.now().UTC().Truncate(s.config.ExecutionLockTTL)
	return indexLockPrefix + window.Format(time.RFC3339)
}

// Runs reports how many times the index job executed and its last error
func (s *IndexScheduler) Runs() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.lastErr
}

// NextRun returns the next scheduled run, or the zero time before Start
func (s *IndexScheduler) NextRun() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
