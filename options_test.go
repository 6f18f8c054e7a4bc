package dragonsmp

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewController_Defaults(t *testing.T) {
	c, err := NewController()
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}

	if c.ServerAddress() != DefaultServerAddress {
		t.Errorf("ServerAddress() = %q, want %q", c.ServerAddress(), DefaultServerAddress)
	}
	if c.statusURL != "https://api.mcsrvstat.us/3/dragonsmp.shock.gg" {
		t.Errorf("statusURL = %q", c.statusURL)
	}
	if c.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", c.interval)
	}
	if c.timeout != 0 {
		t.Errorf("timeout = %v, want 0", c.timeout)
	}
	if c.FormURL() != DefaultFormURL {
		t.Errorf("FormURL() = %q, want default", c.FormURL())
	}
	if c.clipboard == nil || c.fallback == nil || c.opener == nil {
		t.Error("desktop integrations should default to non-nil")
	}
}

func TestWithServerAddress(t *testing.T) {
	c, err := NewController(WithServerAddress("play.example.net:25566"))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if c.statusURL != "https://api.mcsrvstat.us/3/play.example.net:25566" {
		t.Errorf("statusURL = %q", c.statusURL)
	}
}

func TestWithServerAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"path", "example.net/evil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(WithServerAddress(tt.addr)); err == nil {
				t.Errorf("NewController(WithServerAddress(%q)) expected error", tt.addr)
			}
		})
	}
}

func TestWithStatusAPI(t *testing.T) {
	c, err := NewController(WithStatusAPI("http://127.0.0.1:9999/status"), WithServerAddress("mc.local"))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if c.statusURL != "http://127.0.0.1:9999/status/mc.local" {
		t.Errorf("statusURL = %q", c.statusURL)
	}
}

func TestWithStatusAPI_Invalid(t *testing.T) {
	for _, api := range []string{"", "ftp://example.com", "not a url", "https://"} {
		if _, err := NewController(WithStatusAPI(api)); err == nil {
			t.Errorf("WithStatusAPI(%q) expected error", api)
		}
	}
}

func TestWithPollingInterval_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewController(WithPollingInterval(tt.interval))
			if err == nil {
				t.Errorf("WithPollingInterval(%v) expected error", tt.interval)
			}
		})
	}
}

func TestWithRequestTimeout(t *testing.T) {
	c, err := NewController(WithRequestTimeout(5 * time.Second))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if c.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.timeout)
	}

	if _, err := NewController(WithRequestTimeout(-time.Second)); err == nil {
		t.Error("negative timeout expected error")
	}
}

func TestWithPort_Invalid(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		if _, err := NewSite(WithPort(port)); err == nil {
			t.Errorf("WithPort(%d) expected error", port)
		}
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		site, err := NewSite(WithPort(port))
		if err != nil {
			t.Errorf("WithPort(%d) unexpected error: %v", port, err)
			continue
		}
		if site.Port() != port {
			t.Errorf("Port() = %d, want %d", site.Port(), port)
		}
	}
}

func TestNewSite_Defaults(t *testing.T) {
	site, err := NewSite()
	if err != nil {
		t.Fatalf("NewSite() error = %v", err)
	}
	if site.Port() != 3001 {
		t.Errorf("Port() = %d, want 3001", site.Port())
	}
	if site.allowedOrigin != "http://localhost:5173" {
		t.Errorf("allowedOrigin = %q", site.allowedOrigin)
	}
	if site.rateLimit != 100 || site.rateWindow != 15*time.Minute {
		t.Errorf("rate limit = %d per %v, want 100 per 15m", site.rateLimit, site.rateWindow)
	}
	if site.stats != (Stats{Users: 1500, Downloads: 4500, Active: 300}) {
		t.Errorf("stats = %+v", site.stats)
	}
}

func TestWithRateLimit_Invalid(t *testing.T) {
	if _, err := NewSite(WithRateLimit(0, time.Minute)); err == nil {
		t.Error("zero requests expected error")
	}
	if _, err := NewSite(WithRateLimit(10, 0)); err == nil {
		t.Error("zero window expected error")
	}
}

func TestWithStats_Invalid(t *testing.T) {
	if _, err := NewSite(WithStats(Stats{Users: -1})); err == nil {
		t.Error("negative stats expected error")
	}
}

func TestWithAllowedOrigin_Empty(t *testing.T) {
	if _, err := NewSite(WithAllowedOrigin("")); err == nil {
		t.Error("empty origin expected error")
	}
}

func TestNilDependencies_Rejected(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"logger", WithLogger(nil)},
		{"clock", WithClock(nil)},
		{"clipboard", WithClipboard(nil)},
		{"fallback clipboard", WithFallbackClipboard(nil)},
		{"link opener", WithLinkOpener(nil)},
		{"metrics", WithMetrics(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(tt.opt); err == nil {
				t.Errorf("nil %s expected error", tt.name)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c, err := NewController(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if c.logger != logger {
		t.Error("logger was not set correctly")
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	c, err := NewController()
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if c.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithStateCallback_NilIgnored(t *testing.T) {
	c, err := NewController(WithStateCallback(nil))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	if len(c.callbacks) != 0 {
		t.Errorf("len(callbacks) = %d, want 0", len(c.callbacks))
	}
}

func TestWithMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewController(WithMetrics(reg), WithClipboard(okClipboard()), WithFallbackClipboard(okClipboard()))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	c.Notify("a", "b")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	if !strings.Contains(strings.Join(names, ","), "dragonsmp_ui_toasts_total") {
		t.Errorf("toasts counter not registered, got %v", names)
	}
}
