package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dragonsmp/dragonsmp"
)

// BuildOptions converts parsed configuration into SDK options.
//
// logger and reg may be nil, in which case the SDK defaults apply and no
// metrics are registered.
func BuildOptions(cfg *Config, logger *slog.Logger, reg *prometheus.Registry) []dragonsmp.Option {
	opts := []dragonsmp.Option{
		dragonsmp.WithPort(cfg.Port),
		dragonsmp.WithAllowedOrigin(cfg.AllowedOrigin),
		dragonsmp.WithServerAddress(cfg.ServerAddress),
		dragonsmp.WithStatusAPI(cfg.StatusAPI),
		dragonsmp.WithPollingInterval(cfg.PollInterval.Duration()),
		dragonsmp.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		dragonsmp.WithRateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration()),
	}

	if cfg.FormURL != "" {
		opts = append(opts, dragonsmp.WithFormURL(cfg.FormURL))
	}
	if cfg.Stats != nil {
		opts = append(opts, dragonsmp.WithStats(dragonsmp.Stats{
			Users:     cfg.Stats.Users,
			Downloads: cfg.Stats.Downloads,
			Active:    cfg.Stats.Active,
		}))
	}
	if logger != nil {
		opts = append(opts, dragonsmp.WithLogger(logger))
	}
	if reg != nil {
		opts = append(opts, dragonsmp.WithMetrics(reg))
	}
	return opts
}
