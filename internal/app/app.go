package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"stockboard/internal/config"
	"stockboard/internal/errors"
	"stockboard/internal/infrastructure"
	customMiddleware "stockboard/internal/middleware"
	"stockboard/internal/services"
	handlers "stockboard/internal/transport/http"
)

const (
	Version = "1.0.0"
	AppName = "Stockboard - Stock Price Dashboard"
)

// BuildTime is set at compile time via -ldflags.
var BuildTime = ""

// Application is the main application container.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	FrontendFS    fs.FS

	DashboardService *services.DashboardService
	HealthService    *services.HealthService

	systemMetrics *infrastructure.SystemMetricsCollector
}

// NewApplication creates a fully wired application instance.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg, frontendFS)
}

// NewApplicationWithConfig wires the application around an existing
// configuration. Used directly by tests.
func NewApplicationWithConfig(cfg *config.Config, frontendFS fs.FS) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		FrontendFS:    frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service container in dependency order.
func (a *Application) initializeServices() error {
	dashboard, err := services.NewDashboardService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard service: %w", err)
	}
	a.DashboardService = dashboard

	a.HealthService = services.NewHealthService(Version, BuildTime, dashboard, a.Logger)

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 15*time.Second)
	if err != nil {
		return fmt.Errorf("failed to initialize system metrics: %w", err)
	}
	a.systemMetrics = collector

	return nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
			r.Use(customMiddleware.BusinessMetricsMiddleware(otelMiddleware.BusinessMetrics()))
			a.DashboardService.SetMetrics(otelMiddleware.BusinessMetrics())
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	// Prometheus scrape endpoint stays outside the middleware group.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures the API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	validationMW := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
		// API panics surface as problem+json rather than the bare-text recovery.
		r.Use(errors.RecoveryMiddleware(errorHandler))
		r.Use(validationMW.ValidateRequest)

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, errorHandler)
		dashboardHandler.RegisterRoutes(r)

		datasetHandler := handlers.NewDatasetHandler(
			a.DashboardService,
			a.Config.Dashboard.MaxUploadBytes,
			a.Logger,
			errorHandler,
		)
		r.Mount("/dataset", datasetHandler.Routes())
	})
}

// setupHTMLRoutes serves the embedded single-page dashboard.
func (a *Application) setupHTMLRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("frontend filesystem not available, UI routes disabled")
		return
	}

	index := handlers.ServeIndex(a.FrontendFS)
	r.Get("/", index)
	// SPA fallback: unknown non-API paths get the page.
	r.NotFound(index)
}

// corsConfig builds the CORS policy from configuration.
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server.
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

// Run starts the server and background collectors and blocks until the
// process is interrupted or a component fails.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "http server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.systemMetrics.Start(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.systemMetrics.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}
