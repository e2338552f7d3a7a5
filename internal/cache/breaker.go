package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned while the breaker short-circuits redis calls.
var ErrCircuitOpen = errors.New("cache: circuit breaker is open")

// BreakerConfig holds circuit breaker configuration
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// DefaultBreakerConfig returns default configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// BreakerClient guards a Client with a circuit breaker. After
// FailureThreshold consecutive failures every call fails fast with
// ErrCircuitOpen until OpenTimeout has passed; then a single probe decides
// whether to close again. ErrMiss counts as success.
type BreakerClient struct {
	next   Client
	config BreakerConfig
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
}

var _ Client = (*BreakerClient)(nil)

// NewBreakerClient wraps next with a circuit breaker
func NewBreakerClient(next Client, config BreakerConfig, logger *zap.Logger) *BreakerClient {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}
	return &BreakerClient{
		next:   next,
		config: config,
		logger: logger.With(zap.String("circuit_breaker", "redis")),
		state:  StateClosed,
		now:    time.Now,
	}
}

// State returns the current state
func (b *BreakerClient) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *BreakerClient) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := b.execute(func() error {
		var err error
		v, err = b.next.Get(ctx, key)
		return err
	})
	return v, err
}

func (b *BreakerClient) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return b.execute(func() error {
		return b.next.Set(ctx, key, value, expiration)
	})
}

func (b *BreakerClient) SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	var ok bool
	err := b.execute(func() error {
		var err error
		ok, err = b.next.SetNX(ctx, key, value, expiration)
		return err
	})
	return ok, err
}

func (b *BreakerClient) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	err := b.execute(func() error {
		var err error
		n, err = b.next.Incr(ctx, key)
		return err
	})
	return n, err
}

func (b *BreakerClient) Del(ctx context.Context, keys ...string) error {
	return b.execute(func() error {
		return b.next.Del(ctx, keys...)
	})
}

// Ping bypasses the breaker so health checks always see the real state
func (b *BreakerClient) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerClient) execute(fn func() error) error {
	if err := b.allowRequest(); err != nil {
		return err
	}
	err := fn()
	b.recordOutcome(err == nil || errors.Is(err, ErrMiss))
	return err
}

func (b *BreakerClient) allowRequest() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.OpenTimeout {
			return ErrCircuitOpen
		}
		b.transitionTo(StateHalfOpen)
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *BreakerClient) recordOutcome(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		b.probing = false
		if success {
			b.transitionTo(StateClosed)
		} else {
			b.transitionTo(StateOpen)
		}
	}
}

func (b *BreakerClient) transitionTo(newState State) {
	if b.state == newState {
		return
	}
	oldState := b.state
	b.state = newState
	b.failures = 0
	if newState == StateOpen {
		b.openedAt = b.now()
	}

	b.logger.Info("Circuit breaker state transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)
}
