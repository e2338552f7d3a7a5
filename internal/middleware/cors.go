package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows every origin, as the API is meant to be called
// from browser clients on any host
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodOptions, http.MethodHead,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", RequestIDHeader, "traceparent"},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// corsPolicy is a CORSConfig with its header values rendered once
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:      formatMaxAge(cfg.MaxAge),
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}
	return p
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin is not allowed. A wildcard reflects the caller's origin so that
// credentials keep working.
func (p *corsPolicy) allowedOrigin(origin string) string {
	if _, ok := p.origins[origin]; ok && origin != "" {
		return origin
	}
	if p.anyOrigin {
		if origin != "" {
			return origin
		}
		return "*"
	}
	return ""
}

// CORS returns a CORS middleware with the given configuration
func CORS(config CORSConfig) gin.HandlerFunc {
	p := newCORSPolicy(config)

	return func(c *gin.Context) {
		if origin := p.allowedOrigin(c.GetHeader("Origin")); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		if p.credentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", p.methods)
			c.Header("Access-Control-Allow-Headers", p.headers)
			c.Header("Access-Control-Max-Age", p.maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if p.expose != "" {
			c.Header("Access-Control-Expose-Headers", p.expose)
		}
		c.Next()
	}
}

func formatMaxAge(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}
