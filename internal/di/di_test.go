package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jrjohn/outreach-api/internal/config"
	httpctrl "github.com/jrjohn/outreach-api/internal/controller/http"
	"github.com/jrjohn/outreach-api/internal/domain/service"
	"github.com/jrjohn/outreach-api/internal/observability"
	"github.com/jrjohn/outreach-api/internal/testutil/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLogStartup(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &config.Config{
		App:      config.AppConfig{Name: "outreach-api", Version: "0.0.1", Environment: "test"},
		Database: config.DatabaseConfig{Name: "Database", Collection: "users"},
		Server:   config.ServerConfig{Port: 8080},
	}

	LogStartup(cfg, zap.New(core))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "0.0.1", fields["version"])
	assert.Equal(t, "users", fields["collection"])
	assert.NotContains(t, fields, "config_file")
}

func TestNewFxLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFxLogger(zap.New(core))

	l.LogEvent(&fxevent.Invoking{FunctionName: "di.LogStartup"})
	assert.Zero(t, logs.Len(), "routine events log below info")

	l.LogEvent(&fxevent.Started{Err: errors.New("boom")})
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestProvideLogger(t *testing.T) {
	for _, development := range []bool{true, false} {
		cfg := &config.Config{Log: config.LogConfig{Level: "warn", Development: development, Encoding: "json"}}

		result, err := provideLogger(cfg)
		if err != nil {
			t.Fatalf("provideLogger() error = %v", err)
		}
		if result.Logger == nil {
			t.Fatal("provideLogger() returned nil logger")
		}
		if result.Level.Level().String() != "warn" {
			t.Errorf("level = %v, want warn", result.Level.Level())
		}
	}
}

func TestProvideTracingConfig_InheritsAppInfo(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Version: "0.0.1", Environment: "staging"},
		Tracing: observability.TracingConfig{ServiceName: "outreach-api"},
	}

	tracing := provideTracingConfig(cfg)

	if tracing.ServiceVersion != "0.0.1" {
		t.Errorf("ServiceVersion = %v, want 0.0.1", tracing.ServiceVersion)
	}
	if tracing.Environment != "staging" {
		t.Errorf("Environment = %v, want staging", tracing.Environment)
	}
	if cfg.Tracing.ServiceVersion != "" {
		t.Error("provideTracingConfig() should not mutate the loaded config")
	}
}

func TestMongoClientOptions(t *testing.T) {
	opts := mongoClientOptions(&config.DatabaseConfig{
		URI:                    "mongodb://db:27017",
		Timeout:                3 * time.Second,
		ServerSelectionTimeout: time.Second,
		MaxPoolSize:            20,
		SlowCommand:            time.Second,
	}, "outreach-api", zap.NewNop())

	if opts.Timeout == nil || *opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", opts.Timeout)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != time.Second {
		t.Errorf("ServerSelectionTimeout = %v, want 1s", opts.ServerSelectionTimeout)
	}
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "db:27017" {
		t.Errorf("Hosts = %v, want [db:27017]", opts.Hosts)
	}
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	assert.Equal(t, "outreach-api", *opts.AppName)
	assert.NotNil(t, opts.Monitor)

	bare := mongoClientOptions(&config.DatabaseConfig{URI: "mongodb://db:27017"}, "", nil)
	assert.Nil(t, bare.Monitor)
	assert.Nil(t, bare.AppName)
}

func TestProvideCacheClient_Disabled(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	client := provideCacheClient(lc, &config.RedisConfig{Enabled: false}, zap.NewNop())

	if client != nil {
		t.Error("provideCacheClient() should return nil when disabled")
	}
}

func TestProvideIndexScheduler_Disabled(t *testing.T) {
	sched, err := provideIndexScheduler(&config.IndexConfig{Enabled: false}, mocks.NewMockUserDAO(), nil, zap.NewNop())
	if err != nil {
		t.Fatalf("provideIndexScheduler() error = %v", err)
	}
	if sched != nil {
		t.Error("provideIndexScheduler() should return nil when disabled")
	}

	// A nil scheduler registers no hooks
	startIndexScheduler(fxtest.NewLifecycle(t), nil, zap.NewNop())
}

func TestProvideIndexScheduler_InvalidSchedule(t *testing.T) {
	_, err := provideIndexScheduler(&config.IndexConfig{Enabled: true, Schedule: "not a schedule"}, mocks.NewMockUserDAO(), nil, zap.NewNop())
	if err == nil {
		t.Error("provideIndexScheduler() should reject an invalid schedule")
	}
}

func TestIndexSchedulerLifecycle(t *testing.T) {
	userDAO := mocks.NewMockUserDAO()
	if err := userDAO.DropIndex(context.Background()); err != nil {
		t.Fatalf("DropIndex() error = %v", err)
	}

	sched, err := provideIndexScheduler(&config.IndexConfig{
		Enabled:    true,
		Schedule:   "@every 1h",
		RunOnStart: true,
		Timeout:    time.Second,
		LockTTL:    time.Minute,
	}, userDAO, mocks.NewMockCacheClient(), zap.NewNop())
	if err != nil {
		t.Fatalf("provideIndexScheduler() error = %v", err)
	}

	lc := fxtest.NewLifecycle(t)
	startIndexScheduler(lc, sched, zap.NewNop())
	lc.RequireStart()
	defer lc.RequireStop()

	if !userDAO.HasIndex() {
		t.Error("index should be created on start")
	}
}

func TestCorsConfig(t *testing.T) {
	cors := corsConfig(&config.CORSConfig{
		AllowOrigins:     []string{"https://app.example.com"},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	})

	if len(cors.AllowOrigins) != 1 || cors.AllowOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowOrigins = %v", cors.AllowOrigins)
	}
	if cors.AllowCredentials {
		t.Error("AllowCredentials should be false")
	}
	if cors.MaxAge != time.Hour {
		t.Errorf("MaxAge = %v, want 1h", cors.MaxAge)
	}
	if len(cors.AllowMethods) == 0 {
		t.Error("AllowMethods should keep defaults")
	}
}

func TestRegisterHTTPRoutes(t *testing.T) {
	logger := zap.NewNop()
	metrics, err := observability.NewMetricsProvider(observability.DefaultMetricsConfig(), logger)
	if err != nil {
		t.Fatalf("NewMetricsProvider() error = %v", err)
	}
	defer metrics.Shutdown(context.Background())

	userDAO := mocks.NewMockUserDAO()
	router := provideGinEngine(
		&config.AppConfig{Debug: true},
		&config.CORSConfig{},
		observability.DefaultTracingConfig(),
		metrics,
		logger,
	)
	registerHTTPRoutes(router, Controllers{
		User:   httpctrl.NewUserController(service.NewUserService(userDAO), &config.AppConfig{Version: "0.0.1"}, logger),
		Health: httpctrl.NewHealthController(userDAO, logger),
	}, metrics)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/graphql", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("status = %v, want %v", w.Code, tt.want)
			}
		})
	}
}

func TestModulesNotNil(t *testing.T) {
	tests := []struct {
		name   string
		module interface{}
	}{
		{"AppModule", AppModule},
		{"Server", Server},
		{"ConfigModule", ConfigModule},
		{"LoggerModule", LoggerModule},
		{"ObservabilityModule", ObservabilityModule},
		{"DatabaseModule", DatabaseModule},
		{"CacheModule", CacheModule},
		{"DAOModule", DAOModule},
		{"ServiceModule", ServiceModule},
		{"ControllerModule", ControllerModule},
		{"SchedulerModule", SchedulerModule},
		{"HTTPServerModule", HTTPServerModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.module == nil {
				t.Errorf("%s is nil", tt.name)
			}
		})
	}
}
