package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	chatapidocs "chat-api/docs/swagger"
	"chat-api/internal/config"
	"chat-api/internal/domain/conversation"
	"chat-api/internal/domain/message"
	"chat-api/internal/infrastructure/auth"
	"chat-api/internal/interfaces/httpserver/handlers"
	"chat-api/internal/interfaces/httpserver/middlewares"
	"chat-api/internal/interfaces/httpserver/routes"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg         *config.Config
	engine      *gin.Engine
	log         zerolog.Logger
	handlerProv *handlers.Provider
	routeProv   *routes.Provider
	auth        *auth.Validator
}

// New constructs the HTTP server with default middleware and routes.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	conversations conversation.Service,
	messages message.Service,
	authValidator *auth.Validator,
) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	chatapidocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Metrics())

	handlerProvider := handlers.NewProvider(conversations, messages, log)
	routeProvider := routes.NewProvider(handlerProvider)

	// Register public routes (health checks, swagger, shared reads)
	// without authentication
	registerPublicRoutes(engine, cfg, authValidator)
	routeProvider.RegisterPublic(engine)

	// Apply authentication middleware before protected routes
	if authValidator != nil {
		engine.Use(authValidator.Middleware())
	}

	// Register protected API routes
	routeProvider.Register(engine)

	return &HttpServer{
		cfg:         cfg,
		engine:      engine,
		log:         log,
		handlerProv: handlerProvider,
		routeProv:   routeProvider,
		auth:        authValidator,
	}
}

// Run starts the API and metrics listeners and handles graceful
// shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	apiServer := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    s.cfg.MetricsAddr(),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := apiServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.log.Info().Str("addr", s.cfg.MetricsAddr()).Msg("metrics server listening")
		err := metricsServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down HTTP servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		apiErr := apiServer.Shutdown(shutdownCtx)
		metricsErr := metricsServer.Shutdown(shutdownCtx)
		if apiErr != nil {
			return apiErr
		}
		return metricsErr
	})

	return g.Wait()
}

func registerPublicRoutes(engine *gin.Engine, cfg *config.Config, authValidator *auth.Validator) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/health/auth", func(c *gin.Context) {
		if authValidator == nil || authValidator.Ready() {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
	})

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
