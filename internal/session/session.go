// Package session holds the per-dashboard session: the render state, the
// pending command flags and the history window, and the tick functions the
// poll loops drive.
//
// Fetches run outside the session lock. Everything after a fetch returns
// (diff, render, render-state write) runs under it, so two overlapping ticks
// never interleave their renders. There is no sequencing across ticks:
// whichever fetch completes last renders last.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/command"
	"github.com/jpalmerr/telemetryboard/internal/render"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// History window bounds in minutes.
const (
	DefaultWindowMinutes = 30
	MaxWindowMinutes     = 24 * 60
)

// Backend is the subset of *backend.Client a session needs.
type Backend interface {
	command.Sender
	FetchLatest(ctx context.Context) (*backend.Snapshot, bool)
	FetchRecent(ctx context.Context, windowMinutes int) ([]backend.Row, bool)
}

// Config configures a [Session].
type Config struct {
	Backend Backend
	Widgets widget.Set
	Gauges  []render.GaugeSpec
	Charts  []render.ChartDef

	// WindowMinutes is the initial history window. Zero means
	// DefaultWindowMinutes.
	WindowMinutes int

	// OnSnapshot is called after a snapshot has been rendered.
	OnSnapshot func(backend.Snapshot)

	// OnHistory is called after history rows have been rendered.
	OnHistory func([]backend.Row)

	Logger *slog.Logger
}

// Session is one dashboard session.
type Session struct {
	backend    Backend
	renderer   *render.Renderer
	serializer *command.Serializer
	onSnapshot func(backend.Snapshot)
	onHistory  func([]backend.Row)
	logger     *slog.Logger

	window atomic.Int32

	// mu serializes every render and render-state write.
	mu sync.Mutex
}

// New creates a [Session]. Gauge specs are validated.
func New(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.Widgets == nil {
		return nil, errors.New("widget set is required")
	}
	for i, g := range cfg.Gauges {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("gauges[%d]: %w", i, err)
		}
	}
	if cfg.WindowMinutes == 0 {
		cfg.WindowMinutes = DefaultWindowMinutes
	}
	if err := validateWindow(cfg.WindowMinutes); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		backend:    cfg.Backend,
		renderer:   render.New(cfg.Widgets, cfg.Gauges, cfg.Charts),
		serializer: command.New(cfg.Backend, cfg.Widgets, logger),
		onSnapshot: cfg.OnSnapshot,
		onHistory:  cfg.OnHistory,
		logger:     logger,
	}
	s.window.Store(int32(cfg.WindowMinutes))
	return s, nil
}

// Init renders the placeholder page and enables every relay control.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renderer.Init()
	for _, scope := range backend.Scopes {
		s.serializer.Enable(scope)
	}
}

// Charts returns the history chart definitions.
func (s *Session) Charts() []render.ChartDef {
	return s.renderer.Charts()
}

// FastTick fetches the latest snapshot and renders what changed.
// A failed fetch renders nothing.
func (s *Session) FastTick(ctx context.Context) {
	snap, ok := s.backend.FetchLatest(ctx)
	if !ok {
		return
	}

	s.mu.Lock()
	regions := s.renderer.ApplyLatest(snap)
	s.mu.Unlock()

	s.logger.Debug("latest rendered", "regions", regions.String(), "connected", snap.Connected)
	if s.onSnapshot != nil {
		s.onSnapshot(*snap)
	}
}

// SlowTick fetches the history of the current window and re-renders the
// history charts. The window is read when the tick starts.
func (s *Session) SlowTick(ctx context.Context) {
	minutes := s.Window()
	rows, ok := s.backend.FetchRecent(ctx, minutes)
	if !ok {
		return
	}

	s.mu.Lock()
	rendered := s.renderer.ApplyHistory(rows)
	s.mu.Unlock()

	s.logger.Debug("history fetched", "minutes", minutes, "rows", len(rows), "rendered", rendered)
	if rendered && s.onHistory != nil {
		s.onHistory(rows)
	}
}

// SetRelay submits a relay command. It blocks until the backend answers
// unless a command for the same scope is already pending.
func (s *Session) SetRelay(ctx context.Context, scope backend.Scope, state bool) command.Outcome {
	return s.serializer.Submit(ctx, command.Request{Scope: scope, State: state})
}

// Pending reports whether a relay command for scope is in flight.
func (s *Session) Pending(scope backend.Scope) bool {
	return s.serializer.Pending(scope)
}

// Window returns the history window in minutes.
func (s *Session) Window() int {
	return int(s.window.Load())
}

// SetWindow changes the history window used by the next slow tick.
func (s *Session) SetWindow(minutes int) error {
	if err := validateWindow(minutes); err != nil {
		return err
	}
	s.window.Store(int32(minutes))
	return nil
}

func validateWindow(minutes int) error {
	if minutes < 1 || minutes > MaxWindowMinutes {
		return fmt.Errorf("history window must be between 1 and %d minutes, got %d", MaxWindowMinutes, minutes)
	}
	return nil
}
