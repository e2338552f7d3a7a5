package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	PrometheusPath string `mapstructure:"prometheus_path"`
	RuntimeMetrics bool   `mapstructure:"runtime_metrics"`
}

// DefaultMetricsConfig returns default metrics configuration
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:        true,
		ServiceName:    "outreach-api",
		PrometheusPath: "/metrics",
		RuntimeMetrics: true,
	}
}

// MetricsProvider records HTTP, store and cache metrics through OpenTelemetry
// and serves them in the Prometheus exposition format. A disabled provider
// drops every record.
type MetricsProvider struct {
	config        *MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	handler       http.Handler

	httpRequests  metric.Int64Counter
	httpDuration  metric.Float64Histogram
	httpInFlight  metric.Int64UpDownCounter
	storeOps      metric.Int64Counter
	storeDuration metric.Float64Histogram
	cacheLookups  metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(config *MetricsConfig, logger *zap.Logger) (*MetricsProvider, error) {
	mp := &MetricsProvider{config: config}
	if !config.Enabled {
		return mp, nil
	}

	registry := prometheus.NewRegistry()
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	mp.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	mp.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	if err := mp.register(mp.meterProvider.Meter(config.ServiceName)); err != nil {
		_ = mp.meterProvider.Shutdown(context.Background())
		return nil, err
	}

	logger.Info("Prometheus metrics initialized",
		zap.String("service", config.ServiceName),
		zap.String("path", config.PrometheusPath),
	)
	return mp, nil
}

func (mp *MetricsProvider) register(meter metric.Meter) error {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	mp.httpRequests = counter("http_requests_total", "Total number of HTTP requests")
	mp.httpDuration = seconds("http_request_duration_seconds", "HTTP request duration in seconds")
	mp.storeOps = counter("db_operations_total", "Total number of user store operations")
	mp.storeDuration = seconds("db_operation_duration_seconds", "User store operation duration in seconds")
	mp.cacheLookups = counter("cache_lookups_total", "User cache lookups by result")

	inFlight, err := meter.Int64UpDownCounter("http_requests_in_flight",
		metric.WithDescription("Number of HTTP requests being served"))
	errs = append(errs, err)
	mp.httpInFlight = inFlight

	return errors.Join(errs...)
}

// RecordHTTPRequest records a served HTTP request
func (mp *MetricsProvider) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	if mp.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(statusCode),
	)
	mp.httpRequests.Add(ctx, 1, attrs)
	mp.httpDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDBOperation records a user store operation
func (mp *MetricsProvider) RecordDBOperation(ctx context.Context, operation string, success bool, duration time.Duration) {
	if mp.storeOps == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrDBOperation.String(operation),
		AttrOutcome.String(outcome(success)),
	)
	mp.storeOps.Add(ctx, 1, attrs)
	mp.storeDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheHit records a cache hit
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, cacheName string) {
	mp.recordLookup(ctx, cacheName, "hit")
}

// RecordCacheMiss records a cache miss
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, cacheName string) {
	mp.recordLookup(ctx, cacheName, "miss")
}

func (mp *MetricsProvider) recordLookup(ctx context.Context, cacheName, result string) {
	if mp.cacheLookups == nil {
		return
	}
	mp.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		AttrCacheName.String(cacheName),
		AttrOutcome.String(result),
	))
}

func (mp *MetricsProvider) trackInFlight(ctx context.Context, delta int64) {
	if mp.httpInFlight == nil {
		return
	}
	mp.httpInFlight.Add(ctx, delta)
}

// Handler serves the Prometheus scrape endpoint, or 404 when disabled
func (mp *MetricsProvider) Handler() http.Handler {
	if mp.handler != nil {
		return mp.handler
	}
	return http.NotFoundHandler()
}

// Path returns the route the Prometheus handler is mounted on
func (mp *MetricsProvider) Path() string {
	return mp.config.PrometheusPath
}

// Enabled reports whether metrics are exported
func (mp *MetricsProvider) Enabled() bool {
	return mp.config.Enabled
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}
