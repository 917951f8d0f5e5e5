// Package server serves the web form and JSON API over echo.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/dhabedank/workflow-lens/internal/config"
	"github.com/dhabedank/workflow-lens/internal/service"
)

const instrumentationName = "github.com/dhabedank/workflow-lens/internal/server"

// Options configures a Server.
type Options struct {
	Service *service.Service
	Config  config.ServerConfig

	// Meter defaults to the global otel meter provider.
	Meter metric.Meter

	// Health adds fields to the /healthz response.
	Health func() map[string]any
}

// Server wires the service into HTTP routes.
type Server struct {
	echo    *echo.Echo
	svc     *service.Service
	cfg     config.ServerConfig
	metrics *metrics
	health  func() map[string]any
}

// New builds the echo instance and registers every route.
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("server: service is required")
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	bodyLimit := opts.Config.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "64K"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(otelecho.Middleware("workflow-lens"))

	s := &Server{
		echo:    e,
		svc:     opts.Service,
		cfg:     opts.Config,
		metrics: m,
		health:  opts.Health,
	}

	e.GET("/", s.handleIndex)
	e.POST("/generate", s.handleGenerate)
	e.GET("/api/taxonomy", s.handleTaxonomy)
	e.POST("/api/generate", s.handleAPIGenerate)
	e.GET("/healthz", s.handleHealth)

	return s, nil
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server starting")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown error")
			if cerr := server.Close(); cerr != nil {
				log.WithError(cerr).Error("server close error")
			}
			return err
		}
		log.Info("server stopped gracefully")
		return nil
	}
}
