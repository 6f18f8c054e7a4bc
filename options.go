package dragonsmp

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
	"github.com/dragonsmp/dragonsmp/internal/ratelimit"
	"github.com/dragonsmp/dragonsmp/internal/server"
)

const (
	// DefaultServerAddress is the Minecraft server whose status is polled
	// and whose address the copy action places on the clipboard.
	DefaultServerAddress = "dragonsmp.shock.gg"

	// DefaultStatusAPI is the status API base URL; the server address is
	// appended to it.
	DefaultStatusAPI = mcstatus.DefaultAPI

	// DefaultFormURL is the embedded application form.
	DefaultFormURL = "https://docs.google.com/forms/d/e/1FAIpQLSdwCv4goir8J8XQ1jxoGbFdnV5MzK96DSA7PAVIhcf8EsLuAw/viewform?embedded=true"

	// DiscordURL is the community Discord invite.
	DiscordURL = "https://discord.gg/JUj7SHGdF6"

	defaultPollingInterval = 30 * time.Second
	defaultPort            = 3001
)

// config holds mutable state during Controller and Site construction.
type config struct {
	serverAddress   string
	statusAPI       string
	pollingInterval time.Duration
	requestTimeout  time.Duration
	formURL         string
	logger          *slog.Logger
	clock           clockwork.Clock
	clipboard       Clipboard
	fallback        Clipboard
	opener          LinkOpener
	stateCallbacks  []func(Snapshot)
	registry        *prometheus.Registry

	// companion service
	port          int
	allowedOrigin string
	stats         Stats
	rateLimit     int
	rateWindow    time.Duration
}

func defaultConfig() *config {
	return &config{
		serverAddress:   DefaultServerAddress,
		statusAPI:       DefaultStatusAPI,
		pollingInterval: defaultPollingInterval,
		formURL:         DefaultFormURL,
		port:            defaultPort,
		allowedOrigin:   server.DefaultAllowedOrigin,
		stats:           server.DefaultStats,
		rateLimit:       ratelimit.DefaultLimit,
		rateWindow:      ratelimit.DefaultWindow,
	}
}

// statusURL is the status document URL of the configured server.
func (cfg *config) statusURL() string {
	return mcstatus.URL(cfg.statusAPI, cfg.serverAddress)
}

// Option is a function that configures a [Controller] or [Site] during
// construction.
//
// Option implements the functional options pattern. Options return an error
// if validation fails. Options that do not concern the value being built are
// ignored: a [Controller] has no port, a [Site] has no clipboard.
type Option func(*config) error

// WithServerAddress sets the Minecraft server address that is polled and
// copied. Defaults to [DefaultServerAddress].
//
// Returns an error if the address is empty or contains a slash.
func WithServerAddress(addr string) Option {
	return func(cfg *config) error {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return errors.New("server address cannot be empty")
		}
		if strings.Contains(addr, "/") {
			return errors.New("server address must be a host or host:port")
		}
		cfg.serverAddress = addr
		return nil
	}
}

// WithStatusAPI sets the status API base URL. Defaults to [DefaultStatusAPI].
//
// Example:
//
//	c, err := dragonsmp.NewController(
//	    dragonsmp.WithStatusAPI("https://api.mcsrvstat.us/3/"),
//	)
//
// Returns an error if the URL is not absolute http(s).
func WithStatusAPI(api string) Option {
	return func(cfg *config) error {
		u, err := url.Parse(api)
		if err != nil {
			return errors.New("status API must be a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("status API must use http or https")
		}
		if u.Host == "" {
			return errors.New("status API must have a host")
		}
		cfg.statusAPI = api
		return nil
	}
}

// WithPollingInterval sets how often the server status is polled.
// Defaults to 30 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each status request. Zero, the default, leaves
// requests to the transport's own limits; a request still in flight when the
// next poll is issued is cancelled either way.
//
// Returns an error if the duration is negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errors.New("request timeout cannot be negative")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithFormURL sets the application form URL. Defaults to [DefaultFormURL].
func WithFormURL(u string) Option {
	return func(cfg *config) error {
		if u == "" {
			return errors.New("form URL cannot be empty")
		}
		cfg.formURL = u
		return nil
	}
}

// WithLogger sets a custom [slog.Logger].
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the clock driving polling, toast dismissal and delayed
// links. Tests pass a fake clock.
//
// Returns an error if the clock is nil.
func WithClock(clock clockwork.Clock) Option {
	return func(cfg *config) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clock
		return nil
	}
}

// WithClipboard sets the primary clipboard used by [Controller.Copy].
// Defaults to the system clipboard.
//
// Returns an error if the clipboard is nil.
func WithClipboard(cb Clipboard) Option {
	return func(cfg *config) error {
		if cb == nil {
			return errors.New("clipboard cannot be nil")
		}
		cfg.clipboard = cb
		return nil
	}
}

// WithFallbackClipboard sets the clipboard tried when the primary one fails.
// Defaults to an OSC 52 write to the controlling terminal.
//
// Returns an error if the clipboard is nil.
func WithFallbackClipboard(cb Clipboard) Option {
	return func(cfg *config) error {
		if cb == nil {
			return errors.New("fallback clipboard cannot be nil")
		}
		cfg.fallback = cb
		return nil
	}
}

// WithLinkOpener sets how external links are opened. Defaults to the
// system's web browser.
//
// Returns an error if the opener is nil.
func WithLinkOpener(o LinkOpener) Option {
	return func(cfg *config) error {
		if o == nil {
			return errors.New("link opener cannot be nil")
		}
		cfg.opener = o
		return nil
	}
}

// WithStateCallback registers a function called with a [Snapshot] after
// every state transition while [Controller.Run] is active.
//
// Multiple callbacks may be registered; they execute in registration order
// on a single goroutine, never while the controller's lock is held, so a
// callback may call back into the controller. Callbacks must be
// non-blocking; a slow callback causes intermediate snapshots to be skipped.
// Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithStateCallback(cb func(Snapshot)) Option {
	return func(cfg *config) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}

// WithMetrics registers Prometheus collectors on reg. A [Site] also serves
// reg at /metrics.
//
// Returns an error if the registry is nil.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(cfg *config) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithPort sets the HTTP port of the companion service. Defaults to 3001.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *config) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithAllowedOrigin sets the one browser origin allowed by CORS.
// Defaults to http://localhost:5173.
func WithAllowedOrigin(origin string) Option {
	return func(cfg *config) error {
		if origin == "" {
			return errors.New("allowed origin cannot be empty")
		}
		cfg.allowedOrigin = origin
		return nil
	}
}

// WithStats sets the figures served at /api/stats.
func WithStats(stats Stats) Option {
	return func(cfg *config) error {
		if stats.Users < 0 || stats.Downloads < 0 || stats.Active < 0 {
			return errors.New("stats cannot be negative")
		}
		cfg.stats = stats
		return nil
	}
}

// WithRateLimit sets the /api fixed window: at most requests per window for
// each client address. Defaults to 100 requests per 15 minutes.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(cfg *config) error {
		if requests <= 0 {
			return errors.New("rate limit must be positive")
		}
		if window <= 0 {
			return errors.New("rate limit window must be positive")
		}
		cfg.rateLimit = requests
		cfg.rateWindow = window
		return nil
	}
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.clock == nil {
		cfg.clock = clockwork.NewRealClock()
	}
	return cfg, nil
}
