package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxResponseBodySize = 1 << 20 // 1MB

// backend paths, trailing slashes included as the backend routes them
const (
	latestPath  = "/api/latest/"
	recentPath  = "/api/recent/"
	controlPath = "/api/control/relay/"
)

// connection pooling limits; the dashboard talks to a single host
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Config holds the settings needed to reach the backend.
type Config struct {
	// BaseURL is the scheme and host of the backend, e.g. http://localhost:8000.
	BaseURL string

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds each request. Zero leaves the transport default (none).
	Timeout time.Duration
}

// Client is the HTTP adapter for the telemetry backend.
//
// Client never returns errors to its callers: failures are logged with their
// kind ([ErrNetwork], [ErrHTTPStatus], [ErrMalformed]) and reported as an
// absent result. Client is safe for concurrent use.
type Client struct {
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend [Client].
//
// The base URL's trailing slash is trimmed. Timeouts are applied per request
// via context rather than on the http.Client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		logger: logger,
	}
}

// FetchLatest retrieves the current telemetry snapshot.
// Returns (nil, false) on any failure.
func (c *Client) FetchLatest(ctx context.Context) (*Snapshot, bool) {
	body, err := c.do(ctx, http.MethodGet, latestPath, nil, nil)
	if err == nil {
		var snap *Snapshot
		if snap, err = DecodeSnapshot(body); err == nil {
			return snap, true
		}
	}
	c.logFailure("fetch latest failed", latestPath, err)
	return nil, false
}

// FetchRecent retrieves the merged history rows of the last windowMinutes.
// Returns (nil, false) on any failure.
func (c *Client) FetchRecent(ctx context.Context, windowMinutes int) ([]Row, bool) {
	q := url.Values{}
	q.Set("minutes", strconv.Itoa(windowMinutes))
	path := recentPath + "?" + q.Encode()

	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		var rows []Row
		if rows, err = DecodeRows(body); err == nil {
			return rows, true
		}
	}
	c.logFailure("fetch recent failed", path, err)
	return nil, false
}

// SendCommand asks the backend to switch the relays of scope on or off.
//
// The acknowledgement body must be JSON but its content is not inspected.
// Returns false on any failure.
func (c *Client) SendCommand(ctx context.Context, scope Scope, state bool) bool {
	payload, err := json.Marshal(struct {
		State bool   `json:"state"`
		Type  string `json:"type"`
	}{State: state, Type: string(scope)})
	if err != nil {
		c.logFailure("send command failed", controlPath, err)
		return false
	}

	requestID := uuid.NewString()
	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Request-ID": requestID,
	}

	body, err := c.do(ctx, http.MethodPost, controlPath, bytes.NewReader(payload), headers)
	if err == nil && !json.Valid(body) {
		err = fmt.Errorf("%w: acknowledgement is not JSON", ErrMalformed)
	}
	if err != nil {
		c.logFailure("send command failed", controlPath, err,
			"scope", scope, "state", state, "request_id", requestID)
		return false
	}

	c.logger.Debug("command acknowledged", "scope", scope, "state", state, "request_id", requestID)
	return true
}

// do performs a request and returns the (size-limited) body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, extra map[string]string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrHTTPStatus, resp.StatusCode)
	}
	return data, nil
}

func (c *Client) logFailure(msg, path string, err error, attrs ...any) {
	attrs = append([]any{
		"path", path,
		"kind", failureKind(err),
		"error", err.Error(),
	}, attrs...)
	c.logger.Warn(msg, attrs...)
}

// Close closes idle connections in the client's pool.
// Safe to call multiple times and on a nil client.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
