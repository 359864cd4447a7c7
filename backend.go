package telemetryboard

import (
	"errors"
	"net/url"
	"time"
)

const defaultBackendTimeout = 10 * time.Second

// Backend describes the telemetry backend the dashboard polls.
//
// Backend is immutable after creation via [NewBackend]. Getters return
// copies of mutable data.
type Backend struct {
	url     string
	headers map[string]string
	timeout time.Duration
}

// URL returns the backend's base URL, e.g. http://localhost:8000.
func (b Backend) URL() string {
	return b.url
}

// Headers returns a copy of the HTTP headers sent with every request.
func (b Backend) Headers() map[string]string {
	return copyMap(b.headers)
}

// Timeout returns the per-request timeout.
// Defaults to 10 seconds if not explicitly set via [WithTimeout].
func (b Backend) Timeout() time.Duration {
	return b.timeout
}

// BackendOption configures a [Backend] during construction.
type BackendOption func(*backendConfig) error

type backendConfig struct {
	headers map[string]string
	timeout time.Duration
}

// NewBackend creates a [Backend] for the given base URL.
//
// The URL must have an http or https scheme and a host. The request paths
// (/api/latest/, /api/recent/, /api/control/relay/) are appended to it.
//
// Example:
//
//	be, err := telemetryboard.NewBackend("http://192.168.1.20:8000",
//	    telemetryboard.WithHeaders("Authorization", "Token abc"),
//	    telemetryboard.WithTimeout(2 * time.Second),
//	)
func NewBackend(rawURL string, opts ...BackendOption) (Backend, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Backend{}, errors.New("invalid URL: " + err.Error())
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Backend{}, errors.New("URL must have a scheme (http:// or https://)")
	}
	if parsed.Host == "" {
		return Backend{}, errors.New("URL must have a host")
	}

	cfg := &backendConfig{
		headers: make(map[string]string),
		timeout: defaultBackendTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Backend{}, err
		}
	}

	return Backend{
		url:     rawURL,
		headers: cfg.headers,
		timeout: cfg.timeout,
	}, nil
}

// WithHeaders adds HTTP headers sent with every backend request.
//
// Accepts variadic key-value pairs. Returns an error if an odd number of
// arguments is provided.
func WithHeaders(keyValues ...string) BackendOption {
	return func(cfg *backendConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout bounds every backend request. A fetch that times out counts as
// failed: the dashboard keeps its previous state until the next tick.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) BackendOption {
	return func(cfg *backendConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
