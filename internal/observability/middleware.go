package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// requestIDHeader is written by the request ID middleware before tracing runs
const requestIDHeader = "X-Request-ID"

// TracingMiddleware starts a server span per request, continuing any trace
// carried in the incoming headers. Requests for skipPaths are not traced.
func TracingMiddleware(serviceName string, skipPaths ...string) gin.HandlerFunc {
	tracer := otel.Tracer(serviceName)
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := routeOf(c)
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				AttrHTTPMethod.String(c.Request.Method),
				AttrHTTPTarget.String(c.Request.URL.Path),
				AttrHTTPRoute.String(route),
			),
		)
		defer span.End()

		if id := c.Writer.Header().Get(requestIDHeader); id != "" {
			span.SetAttributes(AttrRequestID.String(id))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(AttrHTTPStatusCode.Int(status))
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// MetricsMiddleware records request count, latency and in-flight requests
func MetricsMiddleware(mp *MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		mp.trackInFlight(ctx, 1)
		defer mp.trackInFlight(ctx, -1)

		start := time.Now()
		c.Next()

		mp.RecordHTTPRequest(ctx, c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

// routeOf returns the matched route template, keeping label cardinality
// bounded for unmatched paths
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
