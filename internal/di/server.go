package di

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jrjohn/outreach-api/internal/config"
	gqlctrl "github.com/jrjohn/outreach-api/internal/controller/graphql"
	httpctrl "github.com/jrjohn/outreach-api/internal/controller/http"
	"github.com/jrjohn/outreach-api/internal/middleware"
	"github.com/jrjohn/outreach-api/internal/observability"
)

// HTTPServerModule provides HTTP server dependencies
var HTTPServerModule = fx.Module("http_server",
	fx.Provide(provideGinEngine),
	fx.Provide(provideHTTPServer),
	fx.Invoke(registerHTTPRoutes),
	fx.Invoke(startHTTPServer),
)

func corsConfig(cfg *config.CORSConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.AllowOrigins
	}
	cors.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge > 0 {
		cors.MaxAge = cfg.MaxAge
	}
	return cors
}

func provideGinEngine(
	cfg *config.AppConfig,
	corsCfg *config.CORSConfig,
	tracingCfg *observability.TracingConfig,
	metrics *observability.MetricsProvider,
	logger *zap.Logger,
) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Probes and scrapes are neither traced nor logged above debug
	probes := []string{"/health", "/ready", metrics.Path()}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(observability.TracingMiddleware(tracingCfg.ServiceName, probes...))
	router.Use(observability.MetricsMiddleware(metrics))
	router.Use(middleware.Logger(logger, probes...))
	router.Use(middleware.CORS(corsConfig(corsCfg)))

	return router
}

func provideHTTPServer(cfg *config.ServerConfig, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Controllers is a struct that holds all HTTP controllers for fx to inject
type Controllers struct {
	fx.In

	User    *httpctrl.UserController
	Health  *httpctrl.HealthController
	GraphQL *gqlctrl.Handler `optional:"true"`
}

func registerHTTPRoutes(router *gin.Engine, controllers Controllers, metrics *observability.MetricsProvider) {
	controllers.Health.RegisterRoutes(router)
	controllers.User.RegisterRoutes(router)

	if controllers.GraphQL != nil {
		controllers.GraphQL.RegisterRoutes(router)
	}

	if metrics.Enabled() {
		router.GET(metrics.Path(), gin.WrapH(metrics.Handler()))
	}
}

func startHTTPServer(lc fx.Lifecycle, server *http.Server, cfg *config.ServerConfig, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting HTTP server", zap.String("address", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			if cfg.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
				defer cancel()
			}
			return server.Shutdown(ctx)
		},
	})
}
