package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/forecasting"
	"salespulse/internal/infrastructure"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/operations"
	handlers "salespulse/internal/transport/http"
	"salespulse/pkg/contracts"
)

const (
	Version = contracts.Version
	AppName = "salespulse"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Runner        *operations.Runner
	Engine        *forecasting.Engine
}

// NewApplication wires the analysis services, router and server from cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	logger = infrastructure.WithComponent(logger, "app")

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("environment", cfg.Telemetry.Environment))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, err
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices builds the runner and engine shared by all requests.
func (a *Application) initializeServices() {
	runTracer := operations.NewRunTracer(a.OTelProviders, a.Metrics)
	a.Runner = operations.NewRunnerFromConfig(a.Config, runTracer, a.Logger)
	a.Engine = forecasting.NewEngine(operations.EngineConfig(a.Config.Forecast), a.Logger)
}

func (a *Application) tracer(name string) trace.Tracer {
	if a.OTelProviders.TracerProvider != nil {
		return a.OTelProviders.TracerProvider.Tracer(name)
	}
	return a.OTelProviders.Tracer
}

// setupRouter configures middleware and routes.
// Ordering: RequestID -> RealIP -> OTel -> Logger -> Recoverer -> headers.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.tracer(customMiddleware.TracerName), a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.DefaultSecureHeaders().Handler)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	if metricsHandler := handlers.NewMetricsHandler(a.OTelProviders); metricsHandler.Enabled() {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	a.setupAPIRoutes(r)
	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(Version, a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(
		dataprocessing.NewLoader(a.Logger),
		a.Runner,
		exporter.NewRunExporter(a.Config.Export.OutputDir, a.Logger),
		a.Config.Forecast,
		a.ErrorHandler,
		a.Logger,
	)
	forecastHandler := handlers.NewForecastHandler(a.Engine, a.Config.Forecast, a.ErrorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)

		// analysis endpoints do real work: limit their rate and body size
		r.Group(func(r chi.Router) {
			if rl := a.Config.Security.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
			}
			r.Use(customMiddleware.MaxBodySize(a.Config.Security.MaxUploadBytes))

			r.Mount("/analyze", analysisHandler.Routes())
			r.Mount("/forecast", forecastHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders: []string{customMiddleware.RequestIDHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
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

// Serve accepts connections on ln until ctx is cancelled or the server
// fails, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Server listening",
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			_ = a.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
		return a.Stop(context.Background())
	}
}

// Run listens on the configured port and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}
