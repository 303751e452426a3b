package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/news-scan-ai/visual-search-gateway/internal/config"
	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/handler"
	"github.com/news-scan-ai/visual-search-gateway/internal/metrics"
	"github.com/news-scan-ai/visual-search-gateway/internal/middleware"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/internal/repository"
	"github.com/news-scan-ai/visual-search-gateway/internal/service"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const startupTimeout = 15 * time.Second

// dependencies are the optional collaborators built at startup. Nil fields
// mean the feature is disabled.
type dependencies struct {
	history   *repository.Repository
	publisher *service.MessagePublisher
	metrics   *metrics.Metrics
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	deps := dependencies{}
	if cfg.Metrics.Enabled {
		deps.metrics = metrics.New()
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	pool, err := initHistory(ctx, cfg.History)
	cancel()
	if err != nil {
		logger.Log.Fatal("Failed to initialize search history", zap.Error(err))
	}
	if pool != nil {
		defer db.Close(pool)
		deps.history = repository.New(pool)
	}

	if cfg.Events.Enabled {
		publisher, err := service.NewMessagePublisher(&cfg.Events)
		if err != nil {
			logger.Log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
		deps.publisher = publisher
		logger.Log.Info("Search events enabled",
			zap.String("exchange", cfg.Events.Exchange),
			zap.String("routingKey", cfg.Events.RoutingKey),
		)
	}

	searchService := service.NewSearchService(cfg.Search, nil, deps.metrics)
	if searchService.Mode() == models.SearchModeLive {
		if missing := cfg.Search.MissingLiveSettings(); len(missing) > 0 {
			logger.Log.Warn("Live search mode is missing settings, searches will fail until configured",
				zap.Strings("missing", missing),
			)
		}
	}

	auditService := newAuditService(deps)
	router := newRouter(cfg, searchService, auditService, deps)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("mode", string(searchService.Mode())),
			zap.Bool("history", deps.history != nil),
			zap.Bool("events", deps.publisher != nil),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("Failed to close server", zap.Error(err))
			}
			return
		}

		logger.Log.Info("Server stopped gracefully")
	}

	// Let background history writes and event publishes finish before the
	// pool and broker connection are closed by the deferred calls above.
	auditService.Wait()
}

// initHistory opens the history database when enabled. It returns a nil pool
// when history is disabled.
func initHistory(ctx context.Context, cfg config.HistoryConfig) (*pgxpool.Pool, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Log.Info("Search history enabled",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("maxConns", pool.Config().MaxConns),
	)
	return pool, nil
}

// newAuditService builds the audit service over whichever sinks are enabled.
func newAuditService(deps dependencies) *service.AuditService {
	// Interfaces stay nil when a feature is disabled.
	var (
		history service.HistoryStore
		events  service.EventPublisher
	)
	if deps.history != nil {
		history = deps.history
	}
	if deps.publisher != nil {
		events = deps.publisher
	}
	return service.NewAuditService(history, events, deps.metrics)
}

// newRouter wires the handlers onto a gin engine.
func newRouter(cfg *config.Config, searcher *service.SearchService, audit *service.AuditService, deps dependencies) *gin.Engine {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger())
	if deps.metrics != nil {
		router.Use(middleware.Metrics(deps.metrics))
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.metrics.Handler()))
	}

	var (
		historyStore handler.Pinger
		eventHealth  handler.HealthReporter
	)
	if deps.history != nil {
		historyStore = deps.history
	}
	if deps.publisher != nil {
		eventHealth = deps.publisher
	}

	healthHandler := handler.NewHealthHandler(historyStore, eventHealth, searcher.Mode())
	router.GET("/health/live", healthHandler.LivenessProbe)
	router.GET("/health/ready", healthHandler.ReadinessProbe)

	searchHandler := handler.NewSearchHandler(searcher, audit, cfg.Server.MaxUploadBytes)

	auth := middleware.NewAPIKeyAuth(cfg.Server.APIKeys)
	if !auth.Enabled() {
		logger.Log.Info("No API keys configured, /api routes are unauthenticated")
	}

	api := router.Group("/api", auth.Middleware())
	api.POST("/search", searchHandler.HandleSearch)
	if deps.history != nil {
		historyHandler := handler.NewHistoryHandler(deps.history)
		api.GET("/searches", historyHandler.ListSearches)
		api.GET("/searches/:id", historyHandler.GetSearch)
	}

	return router
}
