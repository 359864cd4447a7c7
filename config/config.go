// Package config provides YAML configuration parsing for TelemetryBoard.
//
// This package enables running TelemetryBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Test Rig
//	port: 8080
//	fast_interval: 800ms
//	slow_interval: 15s
//	history_minutes: 30
//
//	backend:
//	  url: ${BACKEND_URL:-http://localhost:8000}
//	  timeout: 5s
//	  headers:
//	    Authorization: Token ${BACKEND_TOKEN}
//
//	gauges:
//	  speed: {min: 0, max: 100, low: 20, high: 50}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// minFastInterval keeps an accidental "1ms" from flooding the backend.
	minFastInterval = 100 * time.Millisecond
	minSlowInterval = time.Second
	maxHistory      = 1440
)

// Config is the root configuration structure for TelemetryBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "TelemetryBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	Backend BackendConfig `yaml:"backend"`

	// FastInterval is the period of the latest-snapshot loop.
	// Accepts duration strings like "800ms" or "1s". Defaults to 800ms.
	FastInterval Duration `yaml:"fast_interval"`

	// SlowInterval is the period of the history loop. Defaults to 15s.
	SlowInterval Duration `yaml:"slow_interval"`

	// HistoryMinutes is the initial history window. Defaults to 30.
	HistoryMinutes int `yaml:"history_minutes"`

	// Gauges overrides gauge ranges, keyed by "speed" or "piezo".
	Gauges map[string]GaugeConfig `yaml:"gauges"`
}

// BackendConfig defines the telemetry backend to poll.
type BackendConfig struct {
	// URL is the backend base URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// GaugeConfig sets a gauge's axis and color band breakpoints.
type GaugeConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
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
// Group 2: the ":-default" part
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return sub[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the backend URL and headers are expanded.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied for Port (8080), FastInterval (800ms),
// SlowInterval (15s) and HistoryMinutes (30).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.FastInterval == 0 {
		cfg.FastInterval = Duration(800 * time.Millisecond)
	}
	if cfg.SlowInterval == 0 {
		cfg.SlowInterval = Duration(15 * time.Second)
	}
	if cfg.HistoryMinutes == 0 {
		cfg.HistoryMinutes = 30
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.FastInterval.Duration() < minFastInterval {
		return fmt.Errorf("fast_interval must be at least %s, got %s", minFastInterval, c.FastInterval.Duration())
	}
	if c.SlowInterval.Duration() < minSlowInterval {
		return fmt.Errorf("slow_interval must be at least %s, got %s", minSlowInterval, c.SlowInterval.Duration())
	}
	if c.HistoryMinutes < 1 || c.HistoryMinutes > maxHistory {
		return fmt.Errorf("history_minutes must be between 1 and %d, got %d", maxHistory, c.HistoryMinutes)
	}

	if err := c.Backend.expandAndValidate(); err != nil {
		return err
	}

	for name, g := range c.Gauges {
		if name != "speed" && name != "piezo" {
			return fmt.Errorf("gauges[%s]: unknown gauge (expected speed or piezo)", name)
		}
		if g.Max <= g.Min {
			return fmt.Errorf("gauges[%s]: max must be greater than min", name)
		}
		if g.Low < g.Min || g.High > g.Max || g.Low > g.High {
			return fmt.Errorf("gauges[%s]: breakpoints must satisfy min <= low <= high <= max", name)
		}
	}

	return nil
}

func (b *BackendConfig) expandAndValidate() error {
	if b.URL == "" {
		return errors.New("backend: url is required")
	}
	expanded, err := expandEnvVars(b.URL)
	if err != nil {
		return fmt.Errorf("backend: url: %w", err)
	}
	b.URL = expanded

	parsedURL, err := url.Parse(b.URL)
	if err != nil {
		return fmt.Errorf("backend: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("backend: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("backend: url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range b.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("backend: headers[%s]: %w", k, err)
		}
		b.Headers[k] = expanded
	}

	if b.Timeout != 0 {
		if b.Timeout.Duration() < 0 {
			return fmt.Errorf("backend: timeout cannot be negative, got %s", b.Timeout.Duration())
		}
		if b.Timeout.Duration() < 100*time.Millisecond {
			return fmt.Errorf("backend: timeout must be at least 100ms if specified, got %s", b.Timeout.Duration())
		}
	}

	return nil
}
