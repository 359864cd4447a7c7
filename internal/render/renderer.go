package render

import (
	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/diff"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// connection banner text and classes
const (
	bannerConnected   = "CONNECTED"
	bannerWaiting     = "WAITING..."
	classConnected    = "status-connected"
	classDisconnected = "status-disconnected"
	deviceIPPrefix    = "NodeMCU IP: "
	deviceIPSearching = deviceIPPrefix + "Searching..."
)

// irFields maps each IR readout widget to its device and sensor.
var irFields = []struct {
	id     string
	device backend.Device
	second bool
}{
	{widget.ArduinoIR1, backend.DeviceArduino, false},
	{widget.ArduinoIR2, backend.DeviceArduino, true},
	{widget.NodeMCUIR1, backend.DeviceNodeMCU, false},
	{widget.NodeMCUIR2, backend.DeviceNodeMCU, true},
}

// Renderer maps snapshots and history rows onto widgets.
type Renderer struct {
	widgets widget.Set
	gauges  []GaugeSpec
	charts  []ChartDef

	// last is the render state: the most recently rendered snapshot. Its
	// zero value is the disconnected default the placeholder page shows.
	last backend.Snapshot
}

// New creates a [Renderer] writing to widgets.
// Gauge specs are assumed valid (see [GaugeSpec.Validate]).
func New(widgets widget.Set, gauges []GaugeSpec, charts []ChartDef) *Renderer {
	return &Renderer{
		widgets: widgets,
		gauges:  append([]GaugeSpec(nil), gauges...),
		charts:  append([]ChartDef(nil), charts...),
	}
}

// Charts returns the history chart definitions.
func (r *Renderer) Charts() []ChartDef {
	return append([]ChartDef(nil), r.charts...)
}

// Init renders every widget in its waiting-for-data state and resets the
// render state to the disconnected default.
func (r *Renderer) Init() {
	r.last = backend.Snapshot{}

	r.renderConnection(false, nil)
	for _, f := range irFields {
		r.widgets.SetText(f.id, Placeholder)
	}
	r.widgets.SetText(widget.LatencyDiff, Placeholder)

	for _, g := range r.gauges {
		r.widgets.Render(g.ID, g.Figure(g.Min))
		r.widgets.SetText(g.ValueID, g.readout(g.Min))
	}
	for _, c := range r.charts {
		r.widgets.Render(c.ID, waitingFigure())
	}
}

// ApplyLatest renders the regions that changed between the render state and
// snap, then makes snap the new render state. A nil snap (failed fetch)
// renders nothing. Returns the regions that were rendered.
func (r *Renderer) ApplyLatest(snap *backend.Snapshot) diff.Regions {
	regions := diff.Diff(r.last, snap)
	if regions.Empty() {
		return regions
	}

	if regions.Has(diff.Connection) {
		r.renderConnection(snap.Connected, snap.DeviceIP)
	}
	if regions.Has(diff.IR) {
		r.renderIR(snap)
	}
	if regions.Has(diff.Latency) {
		r.widgets.SetText(widget.LatencyDiff, formatOptional(snap.LatencyDiff))
	}
	if regions.Has(diff.Gauges) {
		r.renderGauges(snap)
	}

	r.last = *snap
	return regions
}

// ApplyHistory replaces every history chart with traces built from rows.
// Charts without a plotted series keep their current figure. An empty row
// set leaves all charts untouched. Reports whether anything was rendered.
func (r *Renderer) ApplyHistory(rows []backend.Row) bool {
	if len(rows) == 0 {
		return false
	}
	rendered := false
	for _, c := range r.charts {
		fig, ok := historyFigure(c, rows)
		if !ok {
			continue
		}
		r.widgets.Render(c.ID, fig)
		rendered = true
	}
	return rendered
}

func (r *Renderer) renderConnection(connected bool, ip *string) {
	if !connected {
		r.widgets.SetText(widget.ConnectionStatus, bannerWaiting)
		r.widgets.SetClass(widget.ConnectionStatus, classDisconnected)
		r.widgets.SetText(widget.DeviceIP, deviceIPSearching)
		return
	}

	r.widgets.SetText(widget.ConnectionStatus, bannerConnected)
	r.widgets.SetClass(widget.ConnectionStatus, classConnected)
	if ip == nil {
		r.widgets.SetText(widget.DeviceIP, deviceIPPrefix+Placeholder)
		return
	}
	r.widgets.SetText(widget.DeviceIP, deviceIPPrefix+*ip)
}

func (r *Renderer) renderIR(snap *backend.Snapshot) {
	for _, f := range irFields {
		readings := snap.Device(f.device)
		v := readings.IR1
		if f.second {
			v = readings.IR2
		}
		r.widgets.SetText(f.id, formatOptional(v))
	}
}

func (r *Renderer) renderGauges(snap *backend.Snapshot) {
	for _, g := range r.gauges {
		v := g.Metric.read(snap)
		r.widgets.Update(g.ID, g.Figure(v))
		r.widgets.SetText(g.ValueID, g.readout(v))
	}
}
