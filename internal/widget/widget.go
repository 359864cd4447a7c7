package widget

import "time"

// Well-known widget ids of the dashboard page.
const (
	ConnectionStatus = "connection-status"
	DeviceIP         = "nodemcu-ip-display"
	ArduinoIR1       = "arduino_ir1"
	ArduinoIR2       = "arduino_ir2"
	NodeMCUIR1       = "nodemcu_ir1"
	NodeMCUIR2       = "nodemcu_ir2"
	LatencyDiff      = "latency_diff"
	SpeedGauge       = "speed-gauge"
	SpeedValue       = "speed"
	PiezoGauge       = "piezo-gauge"
	PiezoValue       = "piezo-value"

	CommonSwitch  = "commonSwitch"
	ArduinoSwitch = "arduinoSwitch"
	NodeMCUSwitch = "nodemcuSwitch"
)

// Set is the capability set over named widgets.
//
// Implementations must be safe for concurrent use. Calls for an id that has
// never been seen create the widget.
type Set interface {
	// SetText replaces the text content of a widget.
	SetText(id, text string)

	// SetClass replaces the style class of a widget.
	SetClass(id, class string)

	// SetDisabled enables or disables an input control.
	SetDisabled(id string, disabled bool)

	// Render creates or replaces the figure of a chart widget.
	Render(id string, fig Figure)

	// Update changes an existing figure's data and config in place.
	Update(id string, fig Figure)
}

// TraceKind selects how a trace is drawn.
type TraceKind string

const (
	KindIndicator TraceKind = "indicator"
	KindScatter   TraceKind = "scatter"
)

// Figure is the declarative configuration of a chart widget.
type Figure struct {
	Traces []Trace `json:"traces"`
	Layout Layout  `json:"layout"`
}

// Trace is a single series or indicator of a [Figure].
type Trace struct {
	Kind TraceKind `json:"kind"`
	Name string    `json:"name,omitempty"`

	// Mode is the draw mode, e.g. "gauge+number" or "lines+markers".
	Mode string `json:"mode,omitempty"`

	// Value and Suffix apply to indicator traces.
	Value  float64 `json:"value"`
	Suffix string  `json:"suffix,omitempty"`
	Gauge  *Gauge  `json:"gauge,omitempty"`

	// X and Y apply to scatter traces.
	X     []time.Time `json:"x,omitempty"`
	Y     []float64   `json:"y,omitempty"`
	Color string      `json:"color,omitempty"`
	Width float64     `json:"width,omitempty"`
}

// Gauge configures the dial of an indicator trace.
type Gauge struct {
	Range    [2]float64 `json:"range"`
	BarColor string     `json:"bar_color"`
	Steps    []Step     `json:"steps"`
}

// Step is one colored band of a gauge.
type Step struct {
	Range [2]float64 `json:"range"`
	Color string     `json:"color"`
}

// Layout holds figure-wide styling.
type Layout struct {
	Title           string `json:"title,omitempty"`
	PaperBackground string `json:"paper_bgcolor,omitempty"`
	PlotBackground  string `json:"plot_bgcolor,omitempty"`
	FontColor       string `json:"font_color,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
	Height          int    `json:"height,omitempty"`
}

// Clone returns a deep copy of the figure.
func (f Figure) Clone() Figure {
	cp := Figure{Layout: f.Layout}
	if f.Traces == nil {
		return cp
	}
	cp.Traces = make([]Trace, len(f.Traces))
	for i, tr := range f.Traces {
		c := tr
		if tr.X != nil {
			c.X = append([]time.Time(nil), tr.X...)
		}
		if tr.Y != nil {
			c.Y = append([]float64(nil), tr.Y...)
		}
		if tr.Gauge != nil {
			g := *tr.Gauge
			g.Steps = append([]Step(nil), tr.Gauge.Steps...)
			c.Gauge = &g
		}
		cp.Traces[i] = c
	}
	return cp
}
