// Package command serializes relay commands so that at most one command per
// scope is in flight.
//
// Each scope moves Idle → Pending → Idle. A submit for a Pending scope is
// dropped rather than queued: the user is expected to retry once the
// control is enabled again.
package command

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// Sender delivers a relay command to the backend.
// *backend.Client implements Sender.
type Sender interface {
	SendCommand(ctx context.Context, scope backend.Scope, state bool) bool
}

// Request is a user's request to switch the relays of a scope.
type Request struct {
	Scope backend.Scope
	State bool
}

// Outcome is the result of [Serializer.Submit].
type Outcome int

const (
	// Dropped means a command for the same scope was already pending.
	Dropped Outcome = iota
	// Acknowledged means the backend accepted the command.
	Acknowledged
	// Failed means the command was sent but not acknowledged.
	Failed
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Dropped:
		return "dropped"
	case Acknowledged:
		return "acknowledged"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ControlID returns the widget id of the switch that controls scope.
func ControlID(scope backend.Scope) string {
	switch scope {
	case backend.ScopeArduino:
		return widget.ArduinoSwitch
	case backend.ScopeNodeMCU:
		return widget.NodeMCUSwitch
	default:
		return widget.CommonSwitch
	}
}

// Serializer guarantees that no two commands for the same scope overlap.
// The scope's control is disabled exactly while its command is pending.
// Commands for different scopes run independently.
type Serializer struct {
	sender  Sender
	widgets widget.Set
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[backend.Scope]bool
}

// New creates a [Serializer] that sends through sender and toggles controls
// in widgets.
func New(sender Sender, widgets widget.Set, logger *slog.Logger) *Serializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{
		sender:  sender,
		widgets: widgets,
		logger:  logger,
		pending: make(map[backend.Scope]bool, len(backend.Scopes)),
	}
}

// Submit sends req unless a command for the same scope is pending.
//
// Submit blocks until the backend answers. Whatever the outcome, the scope
// returns to Idle and its control is re-enabled before Submit returns.
func (s *Serializer) Submit(ctx context.Context, req Request) Outcome {
	if !s.acquire(req.Scope) {
		s.logger.Debug("command dropped, scope busy", "scope", req.Scope, "state", req.State)
		return Dropped
	}
	defer s.release(req.Scope)

	if s.sender.SendCommand(ctx, req.Scope, req.State) {
		return Acknowledged
	}
	s.logger.Warn("command failed", "scope", req.Scope, "state", req.State)
	return Failed
}

// Pending reports whether a command for scope is in flight.
func (s *Serializer) Pending(scope backend.Scope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[scope]
}

// Enable shows the control of scope as enabled unless a command for scope is
// pending.
func (s *Serializer) Enable(scope backend.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending[scope] {
		s.widgets.SetDisabled(ControlID(scope), false)
	}
}

func (s *Serializer) acquire(scope backend.Scope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[scope] {
		return false
	}
	s.pending[scope] = true
	s.widgets.SetDisabled(ControlID(scope), true)
	return true
}

func (s *Serializer) release(scope backend.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[scope] = false
	s.widgets.SetDisabled(ControlID(scope), false)
}
