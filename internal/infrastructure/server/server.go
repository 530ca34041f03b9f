package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/PostFrame/internal/api/http"
	"github.com/GriffinCanCode/PostFrame/internal/api/middleware"
	"github.com/GriffinCanCode/PostFrame/internal/api/web"
	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/emulator"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
	"github.com/GriffinCanCode/PostFrame/internal/view"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	handler    http.Handler
	httpServer *http.Server
	pool       *emulator.Pool
	release    func() error
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance and opens the configured store
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("Initializing PostFrame server",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	metrics := monitoring.NewMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	defer cancel()
	store, release, err := OpenStore(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}

	s, err := New(cfg, store, metrics, logger)
	if err != nil {
		_ = release()
		return nil, err
	}
	s.release = release
	return s, nil
}

// New assembles the router around an already opened store
func New(cfg *config.Config, store post.Store, metrics *monitoring.Metrics, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	views := view.NewBuilder(store, view.Config{
		ListLimit: cfg.Frames.ListLimit,
		NavLimit:  cfg.Frames.NavLimit,
		Detail: frame.Policy{
			InitialHeight: cfg.Frames.InitialHeight,
			MinHeightPx:   cfg.Frames.MinHeight,
		},
		LockVisualization: cfg.Frames.LockVisualization,
		TargetOrigin:      cfg.Frames.TargetOrigin,
		CSSFrameworkURL:   cfg.Frames.CSSFrameworkURL,
		DrawingLibraryURL: cfg.Frames.DrawingLibraryURL,
	}, view.WithLogger(logger), view.WithRecorder(metrics))

	rtCfg := emulator.DefaultConfig()
	rtCfg.Timeout = cfg.Sandbox.Timeout
	rtCfg.HostOrigin = cfg.Frames.HostOrigin
	pool, err := emulator.NewPool(rtCfg, cfg.Sandbox.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to start sandbox pool: %w", err)
	}
	logger.Info("Sandbox emulator pool ready", zap.Int("size", cfg.Sandbox.PoolSize))

	tmpl, err := web.Templates()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(monitoring.Middleware(metrics))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	router.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateCfg.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rateCfg))
	}

	handlers := api.NewHandlers(views, pool, metrics, logger, api.Options{
		StrictOrigin: cfg.Frames.StrictOrigin,
		HostOrigin:   cfg.Frames.HostOrigin,
		Settle:       cfg.Sandbox.Settle,
	})

	// Pages
	router.GET("/", handlers.Index)
	router.GET("/p/:slug", handlers.Post)
	router.StaticFS("/static", web.Static())

	// JSON views
	router.GET("/api/posts", handlers.ListPosts)
	router.GET("/api/posts/:slug", handlers.GetPost)
	router.GET("/api/posts/:slug/diagnostics", handlers.Diagnostics)

	// Operations
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var handler http.Handler = router
	if cfg.Server.Gzip {
		wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
		}
		handler = wrap(router)
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		handler: handler,
		pool:    pool,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := s.pool.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.release != nil {
		if err := s.release(); err != nil {
			s.logger.Error("Failed to close content store", zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to close content store: %w", err))
		}
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
