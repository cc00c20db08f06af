package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/justinas/alice"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

const shutdownTimeout = 15 * time.Second

// ServerConfig wires the net/http server.
type ServerConfig struct {
	Addr              string
	BasePath          string
	Routes            RouteConfig
	Handlers          *Handlers
	Assets            http.Handler
	Logger            log.Logger
	Extra             []Route
	ReadHeaderTimeout time.Duration
	// OnShutdown runs when Run starts shutting down, before waiting on open
	// connections. Use it to end long-lived streams.
	OnShutdown []func()
}

// Server serves the dashboard over net/http.
type Server struct {
	httpServer *http.Server
	logger     log.Logger
}

// NewServer builds the router, applies the middleware chain and returns a server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Handlers == nil || cfg.Handlers.Dashboard == nil {
		return nil, errors.New("httpapi: handlers with a dashboard are required")
	}
	logger := log.OrDefault(cfg.Logger)

	rt := NewRouter(cfg.Handlers.Routes(cfg.BasePath, cfg.Routes)...)
	rt.AddRoutes(cfg.Extra...)
	if cfg.Assets != nil {
		prefix := defaultRouteConfig(cfg.Routes).Assets
		if prefix != "" {
			rt.Mount(prefix, cfg.Assets)
		}
	}

	handler := alice.New(
		RecoverMiddleware(logger),
		LoggingMiddleware(logger),
	).Then(rt)

	readHeader := cfg.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = 2 * time.Second
	}
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeader,
	}
	for _, fn := range cfg.OnShutdown {
		if fn != nil {
			httpServer.RegisterOnShutdown(fn)
		}
	}
	return &Server{httpServer: httpServer, logger: logger}, nil
}

// Handler exposes the wrapped handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.httpServer.Addr).Info("dashboard server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.WithField("timeout", shutdownTimeout.String()).Info("shutting down dashboard server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("dashboard server stopped")
	return nil
}
