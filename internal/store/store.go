package store

import (
	"time"

	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// FigureMode says how a chart widget's figure was last applied.
type FigureMode string

const (
	// FigureRendered means the figure was created or replaced.
	FigureRendered FigureMode = "render"
	// FigureUpdated means data and config were changed in place.
	FigureUpdated FigureMode = "update"
)

// WidgetState is the stored state of one widget, shaped for JSON (REST API
// and SSE).
type WidgetState struct {
	// ID is the widget id on the page.
	ID string `json:"id"`

	// Text is the text content of readouts and banners.
	Text string `json:"text,omitempty"`

	// Class is the style class, e.g. "status-connected".
	Class string `json:"class,omitempty"`

	// Disabled applies to input controls.
	Disabled bool `json:"disabled"`

	// Figure is set for chart widgets only.
	Figure *widget.Figure `json:"figure,omitempty"`
	Mode   FigureMode     `json:"mode,omitempty"`

	// Revision increases by one on every change of this widget.
	Revision uint64 `json:"revision"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a [widget.Set] that also exposes the stored widget states.
//
// Store implementations must be safe for concurrent access. Every widget
// change is published to all subscribers.
type Store interface {
	widget.Set

	// Get returns the state of one widget.
	Get(id string) (WidgetState, bool)

	// GetAll returns all widget states ordered by id.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []WidgetState

	// Subscribe returns a channel that receives widget changes.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan WidgetState

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan WidgetState)
}
