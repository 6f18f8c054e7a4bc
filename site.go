package dragonsmp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dragonsmp/dragonsmp/internal/metrics"
	"github.com/dragonsmp/dragonsmp/internal/poller"
	"github.com/dragonsmp/dragonsmp/internal/server"
	"github.com/dragonsmp/dragonsmp/internal/store"
)

// Site is the companion backend: it polls the server status into a store
// and serves the HTTP API.
//
// The typical lifecycle is:
//
//	site, err := dragonsmp.NewSite(dragonsmp.WithPort(3001))
//	if err != nil {
//	    slog.Error("failed to create site", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	site.Start(ctx) // blocks until context cancelled
type Site struct {
	port            int
	statusURL       string
	pollingInterval time.Duration
	requestTimeout  time.Duration
	allowedOrigin   string
	stats           Stats
	rateLimit       int
	rateWindow      time.Duration
	clock           clockwork.Clock
	registry        *prometheus.Registry
	logger          *slog.Logger
}

// NewSite creates a new [Site] with the given options.
//
// Defaults:
//   - Port: 3001
//   - Allowed origin: http://localhost:5173
//   - Rate limit: 100 requests per 15 minutes per client address
//   - Polling interval: 30 seconds
//
// Returns an error if any option is invalid.
func NewSite(opts ...Option) (*Site, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	return &Site{
		port:            cfg.port,
		statusURL:       cfg.statusURL(),
		pollingInterval: cfg.pollingInterval,
		requestTimeout:  cfg.requestTimeout,
		allowedOrigin:   cfg.allowedOrigin,
		stats:           cfg.stats,
		rateLimit:       cfg.rateLimit,
		rateWindow:      cfg.rateWindow,
		clock:           cfg.clock,
		registry:        cfg.registry,
		logger:          cfg.logger,
	}, nil
}

// Start begins polling the server status and serving the HTTP API.
//
// Start is a blocking call that runs until the provided context is
// cancelled. Returns nil on graceful shutdown. Returns an error if the HTTP
// server fails to start.
func (s *Site) Start(ctx context.Context) error {
	s.logger.Info("dragonsmp site starting",
		"port", s.port,
		"status_url", s.statusURL,
		"poll_interval", s.pollingInterval.String(),
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	statusStore := store.NewMemoryStore()

	httpServer, err := server.NewServer(statusStore, server.Config{
		Port:          s.port,
		AllowedOrigin: s.allowedOrigin,
		Stats:         s.stats,
		RateLimit:     s.rateLimit,
		RateWindow:    s.rateWindow,
		Registry:      s.registry,
		Clock:         s.clock,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := httpServer.Start(gctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	var pollMetrics *metrics.PollMetrics
	if s.registry != nil {
		pollMetrics = metrics.NewPollMetrics(s.registry)
	}

	scheduler := poller.NewScheduler(s.statusURL, s.pollingInterval, s.requestTimeout, s.clock, s.logger)
	scheduler.Start(gctx)

	g.Go(func() error {
		for result := range scheduler.Results() {
			if result.Seq != scheduler.Issued() {
				pollMetrics.Stale()
				continue
			}
			statusStore.Update(recordFromResult(result))

			// log poll results (DEBUG level for success to reduce noise)
			logAttrs := []any{
				"seq", result.Seq,
				"url", result.URL,
				"latency_ms", result.Latency.Milliseconds(),
			}
			if result.Err != nil {
				pollMetrics.Observe(metrics.PollFailure, result.Latency)
				s.logger.Warn("poll completed with error", append(logAttrs, "error", result.Err.Error())...)
			} else {
				pollMetrics.Observe(metrics.PollSuccess, result.Latency)
				pollMetrics.SetPlayers(result.Status.Players.Online)
				s.logger.Debug("poll completed", append(logAttrs, "players", result.Status.Players.Online)...)
			}
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		scheduler.Stop() // closes results channel
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("dragonsmp site stopped")
	return nil
}

// Port returns the configured HTTP port.
func (s *Site) Port() int {
	return s.port
}

// recordFromResult converts a poller result to a store record.
func recordFromResult(r poller.Result) store.StatusRecord {
	rec := store.StatusRecord{
		Seq:            r.Seq,
		CheckedAt:      r.CheckedAt,
		ResponseTimeMs: r.Latency.Milliseconds(),
	}
	if r.Err != nil {
		msg := r.Err.Error()
		rec.Error = &msg
		return rec
	}
	st := r.Status
	rec.Status = &st
	rec.UpdatedAt = r.CheckedAt
	return rec
}
