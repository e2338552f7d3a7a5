package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jrjohn/outreach-api/internal/cache"
	"github.com/jrjohn/outreach-api/internal/observability"
)

// EnvPrefix is prepended to every environment override, e.g. OUTREACH_SERVER_PORT.
const EnvPrefix = "OUTREACH"

// Config holds all application configuration
type Config struct {
	App      AppConfig                   `mapstructure:"app"`
	Server   ServerConfig                `mapstructure:"server"`
	Database DatabaseConfig              `mapstructure:"database"`
	Redis    RedisConfig                 `mapstructure:"redis"`
	Index    IndexConfig                 `mapstructure:"index"`
	Log      LogConfig                   `mapstructure:"log"`
	CORS     CORSConfig                  `mapstructure:"cors"`
	GraphQL  GraphQLConfig               `mapstructure:"graphql"`
	Metrics  observability.MetricsConfig `mapstructure:"metrics"`
	Tracing  observability.TracingConfig `mapstructure:"tracing"`

	v *viper.Viper
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port for the HTTP listener
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds MongoDB connection settings
type DatabaseConfig struct {
	URI                    string        `mapstructure:"uri"`
	Name                   string        `mapstructure:"name"`
	Collection             string        `mapstructure:"collection"`
	Timeout                time.Duration `mapstructure:"timeout"`
	ServerSelectionTimeout time.Duration `mapstructure:"server_selection_timeout"`
	MaxPoolSize            uint64        `mapstructure:"max_pool_size"`
	// SlowCommand logs driver commands slower than this at warn; 0 disables
	SlowCommand time.Duration `mapstructure:"slow_command"`
}

// RedisConfig holds Redis connection settings. Redis backs the optional
// read cache and the index job lock; both are skipped when disabled.
type RedisConfig struct {
	Enabled  bool                `mapstructure:"enabled"`
	Host     string              `mapstructure:"host"`
	Port     int                 `mapstructure:"port"`
	Password string              `mapstructure:"password"`
	DB       int                 `mapstructure:"db"`
	CacheTTL time.Duration       `mapstructure:"cache_ttl"`
	Breaker  cache.BreakerConfig `mapstructure:"breaker"`
}

// Addr returns host:port for the Redis client
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IndexConfig controls the periodic text index job
type IndexConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Schedule   string        `mapstructure:"schedule"`
	RunOnStart bool          `mapstructure:"run_on_start"`
	Timeout    time.Duration `mapstructure:"timeout"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

// LogConfig holds logger settings. Level is reloaded when the config file changes.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins     []string      `mapstructure:"allow_origins"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// GraphQLConfig controls the GraphQL endpoint
type GraphQLConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path, or searches the default locations
// for config.yaml when path is empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Set config file details
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/outreach-api/")
	}

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// MONGO_URL is accepted without the prefix
	if err := v.BindEnv("database.uri", EnvPrefix+"_DATABASE_URI", "MONGO_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database uri: %w", err)
	}

	setDefaults(v)

	// Read config file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.v = v

	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "outreach-api")
	v.SetDefault("app.version", "0.0.1")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", true)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "Database")
	v.SetDefault("database.collection", "users")
	v.SetDefault("database.timeout", 10*time.Second)
	v.SetDefault("database.server_selection_timeout", 5*time.Second)
	v.SetDefault("database.max_pool_size", 100)
	v.SetDefault("database.slow_command", 500*time.Millisecond)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 30*time.Second)
	v.SetDefault("redis.breaker.failure_threshold", 5)
	v.SetDefault("redis.breaker.open_timeout", 30*time.Second)

	// Index job defaults
	v.SetDefault("index.enabled", true)
	v.SetDefault("index.schedule", "@every 10m")
	v.SetDefault("index.run_on_start", true)
	v.SetDefault("index.timeout", 30*time.Second)
	v.SetDefault("index.lock_ttl", 5*time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
	v.SetDefault("log.encoding", "console")

	// CORS defaults
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 12*time.Hour)

	// GraphQL defaults
	v.SetDefault("graphql.enabled", true)
	v.SetDefault("graphql.path", "/graphql")

	// Observability defaults
	metrics := observability.DefaultMetricsConfig()
	v.SetDefault("metrics.enabled", metrics.Enabled)
	v.SetDefault("metrics.service_name", metrics.ServiceName)
	v.SetDefault("metrics.prometheus_path", metrics.PrometheusPath)
	v.SetDefault("metrics.runtime_metrics", metrics.RuntimeMetrics)

	tracing := observability.DefaultTracingConfig()
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.service_name", tracing.ServiceName)
	v.SetDefault("tracing.service_version", tracing.ServiceVersion)
	v.SetDefault("tracing.environment", tracing.Environment)
	v.SetDefault("tracing.exporter_type", tracing.ExporterType)
	v.SetDefault("tracing.otlp_endpoint", tracing.OTLPEndpoint)
	v.SetDefault("tracing.otlp_insecure", tracing.OTLPInsecure)
	v.SetDefault("tracing.sampling_rate", tracing.SamplingRate)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("database uri is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Collection == "" {
		return fmt.Errorf("database collection is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Index.Enabled && c.Index.Schedule == "" {
		return fmt.Errorf("index schedule is required when the index job is enabled")
	}
	if c.GraphQL.Enabled && !strings.HasPrefix(c.GraphQL.Path, "/") {
		return fmt.Errorf("graphql path must start with /")
	}
	if c.Log.Encoding != "" && c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log encoding %q must be json or console", c.Log.Encoding)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.PrometheusPath, "/") {
		return fmt.Errorf("metrics path must start with /")
	}
	return c.Tracing.Validate()
}

// ConfigFile returns the file the configuration was read from, or "" when
// only defaults and environment variables were used
func (c *Config) ConfigFile() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch re-reads the config file whenever it changes and hands the decoded
// result to onChange. Changes that fail validation are reported through
// onError and otherwise ignored. Watch is a no-op without a config file.
func (c *Config) Watch(onChange func(fsnotify.Event, *Config), onError func(error)) bool {
	if c.ConfigFile() == "" {
		return false
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		next.v = c.v
		onChange(e, next)
	})
	c.v.WatchConfig()
	return true
}
