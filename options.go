package telemetryboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title             string
	backend           *Backend
	fastInterval      time.Duration
	slowInterval      time.Duration
	historyMinutes    int
	port              int
	logger            *slog.Logger
	gauges            map[Gauge]GaugeRange
	snapshotCallbacks []func(Snapshot)
	widgetCallbacks   []func(WidgetUpdate)
	headless          bool
}

// Gauge names one of the dashboard's dial gauges.
type Gauge string

const (
	GaugeSpeed Gauge = "speed"
	GaugePiezo Gauge = "piezo"
)

// GaugeRange sets a gauge's axis and its color bands. Values below Low show
// the low color, values below High the medium color, everything else the
// high color.
type GaugeRange struct {
	Min  float64
	Max  float64
	Low  float64
	High float64
}

// Option is a function that configures a [Board] instance during construction.
//
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithBackend sets the telemetry backend to poll. Required.
func WithBackend(b Backend) Option {
	return func(cfg *boardConfig) error {
		if b.url == "" {
			return errors.New("backend must be created with NewBackend")
		}
		cfg.backend = &b
		return nil
	}
}

// WithFastInterval sets the period of the latest-snapshot loop.
// Defaults to 800 milliseconds.
//
// Ticks are not held back by slow responses: a fetch that outlives the
// interval overlaps the next one.
//
// Returns an error if the duration is zero or negative.
func WithFastInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("fast interval must be positive")
		}
		cfg.fastInterval = d
		return nil
	}
}

// WithSlowInterval sets the period of the history loop.
// Defaults to 15 seconds.
//
// Returns an error if the duration is zero or negative.
func WithSlowInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("slow interval must be positive")
		}
		cfg.slowInterval = d
		return nil
	}
}

// WithHistoryWindow sets the initial history window in minutes.
// Defaults to 30. The window can be changed while running with
// [Board.SetHistoryWindow] or from the dashboard page.
//
// Returns an error if minutes is outside 1..1440.
func WithHistoryWindow(minutes int) Option {
	return func(cfg *boardConfig) error {
		if minutes < 1 || minutes > maxHistoryMinutes {
			return fmt.Errorf("history window must be between 1 and %d minutes", maxHistoryMinutes)
		}
		cfg.historyMinutes = minutes
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
// Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
// If not specified, defaults to "TelemetryBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithGauge overrides the axis range and color bands of a gauge.
//
// Example:
//
//	tb, err := telemetryboard.New(
//	    telemetryboard.WithBackend(be),
//	    telemetryboard.WithGauge(telemetryboard.GaugeSpeed,
//	        telemetryboard.GaugeRange{Min: 0, Max: 60, Low: 15, High: 40}),
//	)
//
// Returns an error for an unknown gauge. Range consistency is checked by [New].
func WithGauge(g Gauge, r GaugeRange) Option {
	return func(cfg *boardConfig) error {
		if g != GaugeSpeed && g != GaugePiezo {
			return fmt.Errorf("unknown gauge %q (expected speed or piezo)", g)
		}
		if cfg.gauges == nil {
			cfg.gauges = make(map[Gauge]GaugeRange)
		}
		cfg.gauges[g] = r
		return nil
	}
}

// WithSnapshotCallback registers a function called after every rendered
// snapshot of the fast loop.
//
// Multiple callbacks run in registration order. Overlapping ticks may invoke
// callbacks concurrently, so callbacks must be safe for concurrent use and
// should not block. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithSnapshotCallback(cb func(Snapshot)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.snapshotCallbacks = append(cfg.snapshotCallbacks, cb)
		return nil
	}
}

// WithWidgetCallback registers a function called for every widget change.
//
// Callbacks are invoked from a single goroutine in change order. A callback
// that blocks for long makes later changes overflow the subscription buffer
// and be skipped. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithWidgetCallback(cb func(WidgetUpdate)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.widgetCallbacks = append(cfg.widgetCallbacks, cb)
		return nil
	}
}

// WithHeadless disables the HTTP dashboard server. Polling, callbacks and
// relay commands work as usual; the port is ignored.
func WithHeadless() Option {
	return func(cfg *boardConfig) error {
		cfg.headless = true
		return nil
	}
}
