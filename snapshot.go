package telemetryboard

import (
	"strconv"
	"time"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/command"
	"github.com/jpalmerr/telemetryboard/internal/store"
)

// Device identifies a board reporting telemetry.
type Device string

const (
	DeviceArduino Device = "arduino"
	DeviceNodeMCU Device = "nodemcu"
)

// Readings holds the values one device reported.
// Nil pointers mean the backend did not report the value.
type Readings struct {
	IR1        *float64
	IR2        *float64
	Speed      float64
	Piezo      float64
	Relay      *bool
	PiezoRelay *bool
}

// Snapshot is one rendered view of the backend's latest telemetry.
//
// Snapshot values passed to callbacks are copies; modifying them does not
// affect the dashboard.
type Snapshot struct {
	// Connected reports whether the backend currently hears from the rig.
	Connected bool

	// DeviceIP is the NodeMCU's address, nil if unknown.
	DeviceIP *string

	Devices map[Device]Readings

	// LatencyDiff is the latency difference between the boards.
	LatencyDiff *float64

	// LastSeen is the number of seconds since the arduino last reported.
	LastSeen *float64

	// ReceivedAt is when the snapshot was fetched.
	ReceivedAt time.Time
}

// Scope selects which relays a command switches.
type Scope string

const (
	// ScopeCommon switches the relays of both boards together.
	ScopeCommon  Scope = "common"
	ScopeArduino Scope = "arduino"
	ScopeNodeMCU Scope = "nodemcu"
)

// String returns the wire name of the scope.
func (s Scope) String() string {
	return string(s)
}

// CommandOutcome is the result of [Board.SetRelay].
type CommandOutcome string

const (
	// OutcomeAcknowledged means the backend accepted the command.
	OutcomeAcknowledged CommandOutcome = "acknowledged"

	// OutcomeDropped means a command for the same scope was still pending;
	// nothing was sent.
	OutcomeDropped CommandOutcome = "dropped"

	// OutcomeFailed means the backend did not acknowledge the command.
	OutcomeFailed CommandOutcome = "failed"
)

// String returns the outcome name.
func (o CommandOutcome) String() string {
	return string(o)
}

// WidgetUpdate is the state of one dashboard widget after a change.
type WidgetUpdate struct {
	// ID is the widget id, e.g. "connection-status" or "speed".
	ID string

	Text     string
	Class    string
	Disabled bool

	// Chart is true for gauge and history chart widgets.
	Chart bool

	// GaugeColor is the bar color of a gauge widget, e.g. "#ffff00".
	GaugeColor string

	// Revision increases by one on every change of this widget.
	Revision  uint64
	UpdatedAt time.Time
}

func toPublicSnapshot(s backend.Snapshot, receivedAt time.Time) Snapshot {
	out := Snapshot{
		Connected:   s.Connected,
		DeviceIP:    copyPtr(s.DeviceIP),
		Devices:     make(map[Device]Readings, len(s.Devices)),
		LatencyDiff: copyPtr(s.LatencyDiff),
		LastSeen:    copyPtr(s.LastSeen),
		ReceivedAt:  receivedAt,
	}
	for dev, r := range s.Devices {
		out.Devices[Device(dev)] = Readings{
			IR1:        copyPtr(r.IR1),
			IR2:        copyPtr(r.IR2),
			Speed:      r.Speed,
			Piezo:      r.Piezo,
			Relay:      copyPtr(r.Relay),
			PiezoRelay: copyPtr(r.PiezoRelay),
		}
	}
	return out
}

func toPublicWidget(w store.WidgetState) WidgetUpdate {
	u := WidgetUpdate{
		ID:        w.ID,
		Text:      w.Text,
		Class:     w.Class,
		Disabled:  w.Disabled,
		Chart:     w.Figure != nil,
		Revision:  w.Revision,
		UpdatedAt: w.UpdatedAt,
	}
	if w.Figure != nil && len(w.Figure.Traces) > 0 && w.Figure.Traces[0].Gauge != nil {
		u.GaugeColor = w.Figure.Traces[0].Gauge.BarColor
		u.Text = formatGaugeValue(w.Figure.Traces[0].Value)
	}
	return u
}

func formatGaugeValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toPublicOutcome(o command.Outcome) CommandOutcome {
	switch o {
	case command.Acknowledged:
		return OutcomeAcknowledged
	case command.Dropped:
		return OutcomeDropped
	default:
		return OutcomeFailed
	}
}

// copyPtr returns a pointer to a copy of *p, or nil.
func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
