package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpHandlers "github.com/taskmaster/tracker/internal/adapters/http"
	"github.com/taskmaster/tracker/internal/application/services"
	"github.com/taskmaster/tracker/internal/infrastructure/config"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/infrastructure/notify"
	"github.com/taskmaster/tracker/internal/infrastructure/storage"
	"github.com/taskmaster/tracker/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	backend *storage.Backend
	bus     *notify.Bus
	subs    []notify.Subscription
}

// New creates a new server instance. Services publish their change
// notifications on bus.
func New(cfg *config.Config, backend *storage.Backend, bus *notify.Bus, appLogger *logger.Logger, opts ...services.Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpHandlers.NewValidator()
	e.HTTPErrorHandler = httpHandlers.ErrorHandler(appLogger)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	opts = append([]services.Option{services.WithTimeout(cfg.Storage.Timeout)}, opts...)
	eventService := services.NewEventService(backend.Events, bus, appLogger, opts...)
	taskService := services.NewTaskService(backend.Tasks, bus, appLogger, opts...)

	s := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger.WithComponent("server"),
		backend: backend,
		bus:     bus,
	}

	s.setupMiddleware()

	if cfg.Metrics.Enabled {
		s.setupMetrics()
	}

	s.subs = append(s.subs, bus.SubscribeAll(ports.NotificationNames, func(_ context.Context, name string) {
		s.logger.Debugw("Notification published", "name", name)
	})...)

	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)
	httpHandlers.RegisterRoutes(
		s.echo.Group("/api"),
		httpHandlers.NewEventHandler(eventService),
		httpHandlers.NewTaskHandler(taskService),
	)

	return s
}

// setupMetrics configures Prometheus metrics on a registry private to this server
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()
	m := newMetrics(registry)

	s.echo.Use(m.middleware())
	s.subs = append(s.subs, s.bus.SubscribeAll(ports.NotificationNames, func(_ context.Context, name string) {
		m.notifications.WithLabelValues(name).Inc()
	})...)

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	timeout := s.config.Storage.Timeout
	if timeout <= 0 {
		timeout = services.DefaultStorageTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	if err := s.backend.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("Readiness check failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	response := map[string]interface{}{
		"status":  "ready",
		"storage": s.backend.Driver,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if stats := s.backend.Stats(); stats != nil {
		response["database"] = stats
	}
	return c.JSON(http.StatusOK, response)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address, "storage", s.backend.Driver)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server and drops its bus subscriptions
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	for _, sub := range s.subs {
		s.bus.Unsubscribe(sub)
	}
	s.subs = nil
	return s.echo.Shutdown(ctx)
}
