package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handler is an endpoint that knows where it is mounted.
type Handler interface {
	http.Handler
	Route() (method, pattern string)
}

// Options configures the HTTP listener.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// BasePath mounts every registered handler under a prefix such as "/api".
	BasePath string
	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string
}

type Server struct {
	router   chi.Router
	routes   chi.Router
	logger   *zap.Logger
	opts     Options
	handlers []Handler
}

func New(opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{"Content-Disposition", "Content-Length", middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	routes := chi.Router(r)
	if base := normalizeBasePath(opts.BasePath); base != "" {
		routes = r.Route(base, func(chi.Router) {})
	}

	return &Server{
		router:   r,
		routes:   routes,
		logger:   logger,
		opts:     opts,
		handlers: make([]Handler, 0),
	}
}

func (s *Server) RegisterHandler(h Handler) {
	method, pattern := h.Route()
	s.routes.Method(method, pattern, h)
	s.handlers = append(s.handlers, h)
	s.logger.Info("registered handler",
		zap.String("handler", fmt.Sprintf("%T", h)),
		zap.String("method", method),
		zap.String("pattern", pattern),
		zap.String("base_path", normalizeBasePath(s.opts.BasePath)))
}

// normalizeBasePath turns "api/" or "/api/" into "/api". Root yields "".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			zap.String("addr", s.opts.Addr),
			zap.Int("handlers", len(s.handlers)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
