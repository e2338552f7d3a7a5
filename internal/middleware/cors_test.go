package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.PUT("/read-users", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})
	return router
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, http.MethodPatch)
	assert.Contains(t, cfg.AllowHeaders, RequestIDHeader)
	assert.Contains(t, cfg.ExposeHeaders, RequestIDHeader)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestCORS_AnyOrigin(t *testing.T) {
	router := corsRouter(DefaultCORSConfig())

	t.Run("reflects the origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/read-users", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/read-users", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("no origin header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/read-users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_SpecificOrigins(t *testing.T) {
	router := corsRouter(CORSConfig{
		AllowOrigins: []string{"http://allowed.com"},
		AllowMethods: []string{http.MethodPut},
	})

	tests := []struct {
		origin string
		want   string
	}{
		{"http://allowed.com", "http://allowed.com"},
		{"http://notallowed.com", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run("origin "+tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/read-users", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestFormatMaxAge(t *testing.T) {
	assert.Equal(t, "0", formatMaxAge(0))
	assert.Equal(t, "90", formatMaxAge(90*time.Second))
	assert.Equal(t, "43200", formatMaxAge(12*time.Hour))
}

func BenchmarkCORS(b *testing.B) {
	router := corsRouter(DefaultCORSConfig())
	req := httptest.NewRequest(http.MethodPut, "/read-users", nil)
	req.Header.Set("Origin", "http://example.com")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
