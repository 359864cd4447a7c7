package telemetryboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/telemetryboard/dashboard"
	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/poller"
	"github.com/jpalmerr/telemetryboard/internal/render"
	"github.com/jpalmerr/telemetryboard/internal/server"
	"github.com/jpalmerr/telemetryboard/internal/session"
	"github.com/jpalmerr/telemetryboard/internal/store"
)

const (
	defaultFastInterval = 800 * time.Millisecond
	defaultSlowInterval = 15 * time.Second
	defaultPort         = 8080
	maxHistoryMinutes   = session.MaxWindowMinutes
)

// Board polls a telemetry backend and keeps a live dashboard of it.
//
// Board is created using [New] with functional options and started with
// [Board.Start]. The typical lifecycle is:
//
//	be, _ := telemetryboard.NewBackend("http://localhost:8000")
//	tb, err := telemetryboard.New(telemetryboard.WithBackend(be))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	tb.Start(ctx) // blocks until context cancelled
type Board struct {
	title             string
	backend           Backend
	fastInterval      time.Duration
	slowInterval      time.Duration
	port              int
	headless          bool
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)
	widgetCallbacks   []func(WidgetUpdate)

	client  *backend.Client
	widgets *store.MemoryStore
	session *session.Session
}

// New creates a new [Board] with the given options.
//
// A backend must be configured via [WithBackend]. Other options have
// defaults:
//   - Fast interval: 800 milliseconds
//   - Slow interval: 15 seconds
//   - History window: 30 minutes
//   - Port: 8080
//
// Returns an error if no backend is configured or if any option is invalid.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		fastInterval:   defaultFastInterval,
		slowInterval:   defaultSlowInterval,
		historyMinutes: session.DefaultWindowMinutes,
		port:           defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.backend == nil {
		return nil, errors.New("a backend is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	gauges, err := gaugeSpecs(cfg.gauges)
	if err != nil {
		return nil, err
	}

	tb := &Board{
		title:             cfg.title,
		backend:           *cfg.backend,
		fastInterval:      cfg.fastInterval,
		slowInterval:      cfg.slowInterval,
		port:              cfg.port,
		headless:          cfg.headless,
		logger:            logger,
		snapshotCallbacks: cfg.snapshotCallbacks,
		widgetCallbacks:   cfg.widgetCallbacks,
		widgets:           store.NewMemoryStore(),
	}

	tb.client = backend.NewClient(backend.Config{
		BaseURL: tb.backend.url,
		Headers: tb.backend.Headers(),
		Timeout: tb.backend.timeout,
	}, logger)

	tb.session, err = session.New(session.Config{
		Backend:       tb.client,
		Widgets:       tb.widgets,
		Gauges:        gauges,
		Charts:        render.DefaultCharts(),
		WindowMinutes: cfg.historyMinutes,
		OnSnapshot:    tb.dispatchSnapshot,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return tb, nil
}

// gaugeSpecs applies range overrides to the default gauges.
func gaugeSpecs(overrides map[Gauge]GaugeRange) ([]render.GaugeSpec, error) {
	specs := []render.GaugeSpec{render.SpeedGauge(), render.PiezoGauge()}
	names := []Gauge{GaugeSpeed, GaugePiezo}
	for i, name := range names {
		r, ok := overrides[name]
		if !ok {
			continue
		}
		specs[i].Min, specs[i].Max = r.Min, r.Max
		specs[i].Low, specs[i].High = r.Low, r.High
		if err := specs[i].Validate(); err != nil {
			return nil, fmt.Errorf("gauge %s: %w", name, err)
		}
	}
	return specs, nil
}

// Start begins polling the backend and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - Every widget is first shown in its waiting-for-data state
//   - The latest snapshot is fetched immediately, then every fast interval
//   - The history is fetched immediately, then every slow interval
//   - Unless headless, the dashboard is served at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (tb *Board) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	tb.logger.Info("telemetryboard starting", "backend", tb.backend.url)
	tb.logger.Info("polling configured",
		"fast_interval", tb.fastInterval.String(),
		"slow_interval", tb.slowInterval.String(),
		"history_minutes", tb.session.Window(),
	)

	// widget callbacks consume the board's change feed
	var wg sync.WaitGroup
	var changes <-chan store.WidgetState
	if len(tb.widgetCallbacks) > 0 {
		changes = tb.widgets.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range changes {
				update := toPublicWidget(w)
				for _, cb := range tb.widgetCallbacks {
					invokeCallbackSafe(cb, update, "widget callback panicked", tb.logger, "widget", update.ID)
				}
			}
		}()
	}

	tb.session.Init()

	scheduler, err := poller.NewScheduler([]poller.Loop{
		{Name: "latest", Interval: tb.fastInterval, Tick: tb.session.FastTick},
		{Name: "history", Interval: tb.slowInterval, Tick: tb.session.SlowTick},
	}, tb.logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	cleanup := func() {
		scheduler.Stop()
		if changes != nil {
			tb.widgets.Unsubscribe(changes) // closes the feed
		}
		wg.Wait()
		tb.client.Close()
	}

	if !tb.headless {
		httpServer := server.NewServer(tb.widgets, tb.session, tb.port, dashboard.Assets, tb.title, tb.logger)
		if err := httpServer.Start(ctx); err != nil {
			cleanup()
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		tb.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", tb.port))
	}

	scheduler.Start(ctx)

	<-ctx.Done()
	cleanup()
	tb.logger.Info("telemetryboard stopped")
	return nil
}

// SetRelay switches the relays of scope on or off.
//
// SetRelay blocks until the backend answers. If a command for the same scope
// is still pending the request is dropped without being sent. The scope's
// switch widget is disabled while its command is pending.
//
// Returns an error only for an unknown scope.
func (tb *Board) SetRelay(ctx context.Context, scope Scope, on bool) (CommandOutcome, error) {
	sc, err := backend.ParseScope(string(scope))
	if err != nil {
		return "", err
	}
	return toPublicOutcome(tb.session.SetRelay(ctx, sc, on)), nil
}

// SetHistoryWindow changes the history window used from the next history
// fetch on.
func (tb *Board) SetHistoryWindow(minutes int) error {
	return tb.session.SetWindow(minutes)
}

// HistoryWindow returns the current history window in minutes.
func (tb *Board) HistoryWindow() int {
	return tb.session.Window()
}

// Widgets returns the current state of every widget, ordered by id.
func (tb *Board) Widgets() []WidgetUpdate {
	states := tb.widgets.GetAll()
	out := make([]WidgetUpdate, len(states))
	for i, w := range states {
		out[i] = toPublicWidget(w)
	}
	return out
}

// Backend returns the configured backend.
func (tb *Board) Backend() Backend {
	return tb.backend
}

// Port returns the configured HTTP port for the dashboard server.
func (tb *Board) Port() int {
	return tb.port
}

// FastInterval returns the period of the latest-snapshot loop.
func (tb *Board) FastInterval() time.Duration {
	return tb.fastInterval
}

// SlowInterval returns the period of the history loop.
func (tb *Board) SlowInterval() time.Duration {
	return tb.slowInterval
}

// Title returns the configured dashboard title.
func (tb *Board) Title() string {
	return tb.title
}

func (tb *Board) dispatchSnapshot(snap backend.Snapshot) {
	if len(tb.snapshotCallbacks) == 0 {
		return
	}
	receivedAt := time.Now()
	for _, cb := range tb.snapshotCallbacks {
		// each callback gets its own copy
		public := toPublicSnapshot(snap, receivedAt)
		invokeCallbackSafe(cb, public, "snapshot callback panicked", tb.logger, "connected", public.Connected)
	}
}

// invokeCallbackSafe calls a callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe[T any](cb func(T), v T, msg string, logger *slog.Logger, attrs ...any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(msg, append([]any{"panic", r}, attrs...)...)
		}
	}()
	cb(v)
}
