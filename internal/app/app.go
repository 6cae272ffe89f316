package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"divcli/internal/config"
	apierrors "divcli/internal/errors"
	"divcli/internal/infrastructure"
	"divcli/internal/marketdata"
	customMiddleware "divcli/internal/middleware"
	"divcli/internal/render"
	"divcli/internal/screening"
	"divcli/internal/services"
	handlers "divcli/internal/transport/http"
	"divcli/pkg/contracts"

	"github.com/go-chi/chi/v5"
	chirender "github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"
)

const (
	AppName = "divcli"

	// maxBodySize bounds JSON request bodies.
	maxBodySize = 1 << 20
)

// Application represents the API server container
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	Metrics  *infrastructure.Metrics
	Tracing  *infrastructure.Tracing
	Services *ServiceContainer

	listener net.Listener
}

// ServiceContainer holds the services shared by the CLI commands and the
// API server.
type ServiceContainer struct {
	Source    services.WorkbookSource
	Screening *services.ScreeningService
	Forecast  *services.ForecastService
	Portfolio *services.PortfolioService
	Health    *services.HealthService
	Renderer  *render.PNGRenderer
}

// NewProvider returns the Polygon client, or nil when no API key is
// configured.
func NewProvider(cfg config.MarketDataConfig, metrics *infrastructure.Metrics, logger *slog.Logger) marketdata.Provider {
	if cfg.APIKey == "" {
		return nil
	}

	opts := []marketdata.Option{marketdata.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, marketdata.WithRecorder(metrics))
	}
	return marketdata.NewPolygonClient(marketdata.ClientConfig{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.Timeout,
		Retry: marketdata.RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     cfg.Backoff,
			Multiplier:  1,
		},
	}, opts...)
}

// NewServices wires the services from configuration. metrics and tracer may
// be nil.
func NewServices(ctx context.Context, cfg *config.Config, paths *config.Paths, metrics *infrastructure.Metrics,
	tracer trace.Tracer, logger *slog.Logger) (*ServiceContainer, error) {
	source, err := services.NewWorkbookSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}

	var (
		observer screening.Observer
		recorder services.ForecastRecorder
	)
	if metrics != nil {
		observer = metrics
		recorder = metrics
	}

	provider := NewProvider(cfg.MarketData, metrics, logger)
	screener := services.NewScreeningService(source, observer, logger).WithTracer(tracer)

	return &ServiceContainer{
		Source:    source,
		Screening: screener,
		Forecast: services.NewForecastService(screener, provider, services.InstrumentsFromConfig(cfg.Baselines),
			recorder, cfg.MarketData.Concurrency, logger),
		Portfolio: services.NewPortfolioService(paths.Holdings, logger),
		Health:    services.NewHealthService(source, paths.OutputDir, provider != nil, logger),
		Renderer: render.NewPNGRenderer(render.Config{
			Width:    cfg.Render.Width,
			Height:   cfg.Render.Height,
			Headroom: cfg.Render.Headroom,
		}, logger),
	}, nil
}

// NewApplication creates the API server from an already loaded configuration
// and logger. A nil tracing is initialized from cfg.Tracing.
func NewApplication(ctx context.Context, cfg *config.Config, tracing *infrastructure.Tracing, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths, err := cfg.ResolvedPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	if tracing == nil {
		if tracing, err = infrastructure.InitializeTracing(cfg.Tracing, logger); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	metrics := infrastructure.NewMetrics()
	svc, err := NewServices(ctx, cfg, paths, metrics, tracing.Tracer, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:   cfg,
		Paths:    paths,
		Logger:   logger,
		Metrics:  metrics,
		Tracing:  tracing,
		Services: svc,
	}
	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Order: RequestID → RealIP → Tracing → Metrics → Logger → Recoverer → SecurityHeaders → RateLimiter
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Tracing(a.Tracing.Tracer))
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(chirender.SetContentType(chirender.ContentTypeJSON))
			a.setupAPIRoutes(r, errorHandler)
		})
	})

	// Scraped outside the group so polling stays out of request metrics.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler, maxBodySize)
	svc := a.Services

	handlers.NewHealthHandler(svc.Health, a.Logger).RegisterRoutes(r)
	handlers.NewScreenHandler(svc.Screening, services.CriteriaFromConfig(a.Config.Screening),
		validator, errorHandler, a.Logger).RegisterRoutes(r)
	handlers.NewForecastHandler(svc.Forecast, svc.Renderer,
		services.ForecastDefaults(a.Config.Forecast, a.Config.Screening.Category),
		validator, errorHandler, a.Logger).RegisterRoutes(r)
	handlers.NewPortfolioHandler(svc.Portfolio, errorHandler, a.Logger).RegisterRoutes(r)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// Start binds the listener and serves in the background. A serve failure
// cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()),
		slog.String("source", a.Services.Source.Describe()),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.Tracing.Shutdown(shutdownCtx); err != nil {
		a.Logger.WarnContext(ctx, "Tracing shutdown failed", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(ctx)
}

// performStartupHealthCheck reports services that are not ready yet. The
// server still starts; /api/v1/health/ready keeps returning 503 until they
// are.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Services.Health.ReadinessCheck(ctx)

	var warnings []string
	for name, sh := range status.Services {
		if sh.Status != "ready" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", name, sh.Message))
		}
	}
	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
