package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dragonsmp/dragonsmp/internal/metrics"
	"github.com/dragonsmp/dragonsmp/internal/ratelimit"
	"github.com/dragonsmp/dragonsmp/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// DefaultAllowedOrigin is the browser origin of the front end dev server.
	DefaultAllowedOrigin = "http://localhost:5173"

	// RootMessage is the body of GET /.
	RootMessage = "Secure Backend is Running"

	// RateLimitMessage is the body of a request rejected by the rate limit.
	RateLimitMessage = "Too many requests from this IP, please try again later."
)

// Stats is the body of GET /api/stats.
type Stats struct {
	Users     int `json:"users"`
	Downloads int `json:"downloads"`
	Active    int `json:"active"`
}

// DefaultStats are the figures served when none are configured.
var DefaultStats = Stats{Users: 1500, Downloads: 4500, Active: 300}

// Config holds the server settings. Zero values select the defaults.
type Config struct {
	Port          int
	AllowedOrigin string
	Stats         Stats

	// RateLimit and RateWindow configure the /api fixed window.
	RateLimit  int
	RateWindow time.Duration

	// Registry, when set, is served at /metrics and receives HTTP metrics.
	Registry *prometheus.Registry

	Clock clockwork.Clock
}

// Server handles HTTP requests for the companion API.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store       store.Store
	cfg         Config
	echo        *echo.Echo
	limiter     *ratelimit.FixedWindow
	httpMetrics *metrics.HTTPMetrics
	httpServer  *http.Server
	addr        net.Addr
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewServer creates a new HTTP [Server] reading status records from st.
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	if cfg.Stats == (Stats{}) {
		cfg.Stats = DefaultStats
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = ratelimit.DefaultLimit
	}
	if cfg.RateWindow == 0 {
		cfg.RateWindow = ratelimit.DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	limiter, err := ratelimit.NewFixedWindow(cfg.RateLimit, cfg.RateWindow, cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	s := &Server{
		store:   st,
		cfg:     cfg,
		limiter: limiter,
		clock:   cfg.Clock,
		logger:  logger,
	}
	if cfg.Registry != nil {
		s.httpMetrics = metrics.NewHTTPMetrics(cfg.Registry)
	}

	s.echo = s.newEcho()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.addr = ln.Addr()
	s.logger.Info("http server listening", "addr", s.addr.String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}
