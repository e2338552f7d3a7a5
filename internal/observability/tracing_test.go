package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "outreach-api", cfg.ServiceName)
	assert.Equal(t, ExporterStdout, cfg.ExporterType)
	assert.Equal(t, 1.0, cfg.SamplingRate)
	assert.NoError(t, cfg.Validate())
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TracingConfig)
		wantErr bool
	}{
		{"disabled ignores exporter", func(c *TracingConfig) { c.Enabled = false; c.ExporterType = "zipkin" }, false},
		{"stdout", func(c *TracingConfig) {}, false},
		{"otlp grpc", func(c *TracingConfig) { c.ExporterType = ExporterOTLPGRPC }, false},
		{"otlp without endpoint", func(c *TracingConfig) { c.ExporterType = ExporterOTLPHTTP; c.OTLPEndpoint = "" }, true},
		{"unknown exporter", func(c *TracingConfig) { c.ExporterType = "zipkin" }, true},
		{"negative rate", func(c *TracingConfig) { c.SamplingRate = -0.1 }, true},
		{"rate above one", func(c *TracingConfig) { c.SamplingRate = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTracingConfig()
			cfg.Enabled = true
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNewTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(&TracingConfig{Enabled: false, ServiceName: "test-tracing"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracingProvider_Stdout(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.ServiceVersion = "0.0.1"

	tp, err := NewTracingProvider(cfg, zap.NewNop())
	require.NoError(t, err)

	_, span := tp.Tracer().Start(context.Background(), "dao.find")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracingProvider_InvalidConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.ExporterType = "zipkin"

	_, err := NewTracingProvider(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewSampler(t *testing.T) {
	root := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		Name:          "root",
	}

	assert.Equal(t, sdktrace.RecordAndSample, newSampler(1).ShouldSample(root).Decision)
	assert.Equal(t, sdktrace.Drop, newSampler(0).ShouldSample(root).Decision)
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased")
}

func TestNewPropagator(t *testing.T) {
	fields := newPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}
