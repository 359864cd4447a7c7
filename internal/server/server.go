package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/command"
	"github.com/jpalmerr/telemetryboard/internal/render"
	"github.com/jpalmerr/telemetryboard/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// maxRequestBodySize limits JSON bodies of control requests.
	maxRequestBodySize = 1 << 10

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "TelemetryBoard"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Controller is the session surface the server drives on user input.
type Controller interface {
	Charts() []render.ChartDef
	SetRelay(ctx context.Context, scope backend.Scope, state bool) command.Outcome
	Window() int
	SetWindow(minutes int) error
}

// Server handles HTTP requests for the dashboard page and its API.
//
// Routes:
//   - GET /: the embedded dashboard page
//   - GET /api/layout: history chart containers and the current window
//   - GET /api/widgets: all widget states as JSON
//   - GET /api/sse: Server-Sent Events stream of widget changes
//   - POST /api/control/relay: relay command, answered with its outcome
//   - GET, POST /api/window: read or change the history window
//   - GET /api/charts/{id}.png: a history chart drawn server-side
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	ctl        Controller
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: widget board the page mirrors
//   - ctl: session receiving relay commands and window changes
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "TelemetryBoard" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, ctl Controller, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		ctl:    ctl,
		port:   port,
		assets: assets,
		title:  title,
		logger: logger,
	}
}

// Handler returns the server's request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/layout", s.handleLayout)
	mux.HandleFunc("/api/widgets", s.handleWidgets)
	mux.HandleFunc("/api/sse", s.handleSSE)
	mux.HandleFunc("/api/control/relay", s.handleRelay)
	mux.HandleFunc("/api/window", s.handleWindow)
	mux.HandleFunc("GET /api/charts/{file}", s.handleChart)

	if s.assets != nil {
		mux.HandleFunc("/", s.handleDashboard)
	}
	return mux
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
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler: s.Handler(),
		// request contexts derive from ctx so SSE handlers end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "addr", ln.Addr().String())
	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// escape to prevent XSS through the configured title
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

type layoutResponse struct {
	Charts        []render.ChartDef `json:"charts"`
	WindowMinutes int               `json:"window_minutes"`
}

// handleLayout returns the chart containers the page must create.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, layoutResponse{
		Charts:        s.ctl.Charts(),
		WindowMinutes: s.ctl.Window(),
	})
}

// handleWidgets returns all current widget states as JSON.
func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.GetAll())
}

type relayRequest struct {
	State *bool  `json:"state"`
	Type  string `json:"type"`
}

type relayResponse struct {
	Outcome string `json:"outcome"`
}

// handleRelay submits a relay command and reports its outcome.
//
// 200 acknowledged, 409 dropped (a command for the scope is pending),
// 502 failed, 400 bad request.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req relayRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.State == nil {
		http.Error(w, "missing field: state", http.StatusBadRequest)
		return
	}
	scope, err := backend.ParseScope(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome := s.ctl.SetRelay(r.Context(), scope, *req.State)

	status := http.StatusOK
	switch outcome {
	case command.Dropped:
		status = http.StatusConflict
	case command.Failed:
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, relayResponse{Outcome: outcome.String()})
}

type windowBody struct {
	Minutes int `json:"minutes"`
}

// handleWindow reads or changes the history window in minutes. A change
// applies from the next history fetch.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var body windowBody
		if err := decodeJSONBody(w, r, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.ctl.SetWindow(body.Minutes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Info("history window changed", "minutes", body.Minutes)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, windowBody{Minutes: s.ctl.Window()})
}

// handleChart draws a history chart's current figure as PNG. Charts without
// data yet answer 204.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || !s.isChart(id) {
		http.NotFound(w, r)
		return
	}

	state, found := s.store.Get(id)
	if !found || state.Figure == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	img, err := renderChartPNG(*state.Figure)
	if errors.Is(err, errNoChartData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.logger.Warn("chart render failed", "chart", id, "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(img); err != nil {
		s.logger.Error("failed to write chart response", "chart", id, "error", err)
	}
}

func (s *Server) isChart(id string) bool {
	for _, c := range s.ctl.Charts() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// handleSSE streams widget changes via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// some ResponseWriter implementations do not support deadlines
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before the initial dump so no change is lost in between;
	// the page discards states older than the revision it already has
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, state := range s.store.GetAll() {
		data, err := json.Marshal(state)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case state, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(state)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown (BaseContext)
			return
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
