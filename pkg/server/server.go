package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server represents the HTTP server
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	mu          sync.RWMutex
	ready       bool
}

// Option customizes a Server during construction.
type Option func(*Config)

// WithName sets the service name reported on the default route.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithVersion sets the service version reported on the default route.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithHandler registers application handlers by route path.
// Registered handlers run behind the full middleware chain.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(c *Config) {
		if c.Handlers == nil {
			c.Handlers = make(map[string]http.HandlerFunc, len(handlers))
		}
		for path, h := range handlers {
			c.Handlers[path] = h
		}
	}
}

// WithPort overrides the listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithRateLimit overrides the request rate limit and burst size.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Config) {
		c.RateLimit = limit
		c.RateLimitBurst = burst
	}
}

// New creates a server from defaults plus the given options.
func New(opts ...Option) *Server {
	cfg := parseConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewServer(cfg)
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	if config == nil {
		config = parseConfig()
	}

	s := &Server{
		config:      config,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
	}

	// Setup HTTP server
	mux := s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Handler returns the fully configured route handler.
// Useful for exercising the server in tests without binding a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetReady marks the server as ready to serve traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.SetReady(true)

	slog.Info("listening", "address", s.httpServer.Addr)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts the server and blocks until the context is canceled or the
// server fails.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("server config",
		slog.String("name", s.config.Name),
		slog.String("version", s.config.Version),
		slog.String("address", s.httpServer.Addr),
		slog.Any("rateLimit", s.config.RateLimit),
		slog.Int("rateLimitBurst", s.config.RateLimitBurst),
		slog.Int64("maxRequestBytes", s.config.MaxRequestBytes),
		slog.Duration("readTimeout", s.config.ReadTimeout),
		slog.Duration("writeTimeout", s.config.WriteTimeout),
		slog.Duration("idleTimeout", s.config.IdleTimeout),
		slog.Duration("shutdownTimeout", s.config.ShutdownTimeout),
	)

	// Use errgroup for concurrent operations
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
