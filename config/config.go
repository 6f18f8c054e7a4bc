// Package config provides file configuration for the DragonSMP binary.
//
// This package enables running the companion backend and the terminal UI
// with a configuration file, as an alternative to the programmatic SDK
// approach. YAML and TOML are supported; the format is chosen by the file
// extension.
//
// Example configuration:
//
//	port: 3001
//	allowed_origin: ${FRONTEND_URL:-http://localhost:5173}
//	server_address: dragonsmp.shock.gg
//	poll_interval: 30s
//
//	rate_limit:
//	  requests: 100
//	  window: 15m
//
//	log:
//	  level: info
//	  format: auto
//
// After parsing, the PORT, ALLOWED_ORIGIN, LOG_LEVEL and LOG_FORMAT
// environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
)

// minPollInterval is the minimum allowed polling interval.
// This keeps the public status API from being hammered by a typo.
const minPollInterval = 1 * time.Second

// Defaults applied to fields left empty.
const (
	DefaultPort          = 3001
	DefaultAllowedOrigin = "http://localhost:5173"
	DefaultServerAddress = "dragonsmp.shock.gg"
	DefaultPollInterval  = 30 * time.Second
	DefaultRateRequests  = 100
	DefaultRateWindow    = 15 * time.Minute
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "auto"
)

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config.
type Config struct {
	// Port is the HTTP server port. Defaults to 3001.
	Port int `yaml:"port" toml:"port"`

	// AllowedOrigin is the single origin allowed by CORS.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	AllowedOrigin string `yaml:"allowed_origin" toml:"allowed_origin"`

	// ServerAddress is the Minecraft server address shown and copied.
	ServerAddress string `yaml:"server_address" toml:"server_address"`

	// StatusAPI is the base URL of the status API.
	StatusAPI string `yaml:"status_api" toml:"status_api"`

	// PollInterval is the time between status polls. Defaults to 30s.
	PollInterval Duration `yaml:"poll_interval" toml:"poll_interval"`

	// RequestTimeout bounds each status request. Zero means none.
	RequestTimeout Duration `yaml:"request_timeout" toml:"request_timeout"`

	// FormURL is the staff application form.
	FormURL string `yaml:"form_url" toml:"form_url"`

	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`

	// Stats overrides the figures served at /api/stats.
	Stats *StatsConfig `yaml:"stats" toml:"stats"`

	Log LogConfig `yaml:"log" toml:"log"`
}

// RateLimitConfig limits requests per client address on /api routes.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per window. Defaults to 100.
	Requests int `yaml:"requests" toml:"requests"`

	// Window is the length of one window. Defaults to 15m.
	Window Duration `yaml:"window" toml:"window"`
}

// StatsConfig holds the community figures.
type StatsConfig struct {
	Users     int `yaml:"users" toml:"users"`
	Downloads int `yaml:"downloads" toml:"downloads"`
	Active    int `yaml:"active" toml:"active"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`

	// Format is one of auto, text, json.
	Format string `yaml:"format" toml:"format"`
}

// envOverrides are read from the environment after the file is parsed.
type envOverrides struct {
	Port          int    `env:"PORT"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
	LogLevel      string `env:"LOG_LEVEL"`
	LogFormat     string `env:"LOG_FORMAT"`
}

// Duration wraps time.Duration for YAML and TOML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadDotEnv loads environment variables from a dotenv file. Variables that
// are already set keep their value. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FormatOf returns the format implied by a file name: TOML for ".toml",
// YAML otherwise.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and parses a configuration file.
//
// An empty path yields the defaults. Environment overrides are applied in
// both cases. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil, FormatYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, FormatOf(path))
}

// Parse parses configuration data in the given format.
//
// Environment variables are expanded in the URL and address fields,
// defaults are applied, environment overrides are read and the result is
// validated.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expand substitutes environment variables in string fields.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"allowed_origin", &c.AllowedOrigin},
		{"server_address", &c.ServerAddress},
		{"status_api", &c.StatusAPI},
		{"form_url", &c.FormURL},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AllowedOrigin == "" {
		c.AllowedOrigin = DefaultAllowedOrigin
	}
	if c.ServerAddress == "" {
		c.ServerAddress = DefaultServerAddress
	}
	if c.StatusAPI == "" {
		c.StatusAPI = mcstatus.DefaultAPI
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = DefaultRateRequests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = Duration(DefaultRateWindow)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// applyEnv overrides file values with set environment variables.
func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := env.Load(&ov, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	if ov.Port != 0 {
		c.Port = ov.Port
	}
	if ov.AllowedOrigin != "" {
		c.AllowedOrigin = ov.AllowedOrigin
	}
	if ov.LogLevel != "" {
		c.Log.Level = ov.LogLevel
	}
	if ov.LogFormat != "" {
		c.Log.Format = ov.LogFormat
	}
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if err := validateHTTPURL(c.AllowedOrigin); err != nil {
		return fmt.Errorf("allowed_origin: %w", err)
	}
	if err := validateHTTPURL(c.StatusAPI); err != nil {
		return fmt.Errorf("status_api: %w", err)
	}
	if c.FormURL != "" {
		if err := validateHTTPURL(c.FormURL); err != nil {
			return fmt.Errorf("form_url: %w", err)
		}
	}

	if strings.TrimSpace(c.ServerAddress) == "" || strings.Contains(c.ServerAddress, "/") {
		return fmt.Errorf("server_address must be a host name, got %q", c.ServerAddress)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.RequestTimeout.Duration() < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout.Duration())
	}

	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must be positive, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window.Duration() < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s, got %s", c.RateLimit.Window.Duration())
	}

	if c.Stats != nil && (c.Stats.Users < 0 || c.Stats.Downloads < 0 || c.Stats.Active < 0) {
		return errors.New("stats cannot be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json, got %q", c.Log.Format)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
