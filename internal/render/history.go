package render

import (
	"time"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// Series names the row field a history chart plots.
type Series string

const (
	SeriesSpeed Series = "speed"
	SeriesIR1   Series = "ir1"
	SeriesIR2   Series = "ir2"
	SeriesPiezo Series = "piezo"
	SeriesRelay Series = "relay"
)

// ChartKind selects how a history chart draws its rows.
type ChartKind string

const (
	// ChartTimeSeries plots one trace per source and series.
	ChartTimeSeries ChartKind = "timeseries"

	// ChartGauge shows the newest arduino value of its first series.
	ChartGauge ChartKind = "gauge"
)

// ChartDef describes one history chart container. A chart with no series
// keeps its placeholder.
type ChartDef struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Series []Series  `json:"-"`
}

// HistorySpeedGauge is the id of the history-driven speed gauge.
const HistorySpeedGauge = "history-speed-gauge"

// DefaultCharts returns the history charts of the analytics view.
func DefaultCharts() []ChartDef {
	return []ChartDef{
		{ID: "ir-comparison", Title: "IR Sensors Comparison", Kind: ChartTimeSeries, Series: []Series{SeriesIR1, SeriesIR2}},
		{ID: "speed-plot", Title: "Vehicle Speed Over Time", Kind: ChartTimeSeries, Series: []Series{SeriesSpeed}},
		{ID: "piezo-plot", Title: "Piezo Vibration Level", Kind: ChartTimeSeries, Series: []Series{SeriesPiezo}},
		{ID: "relay-states", Title: "Relay States", Kind: ChartTimeSeries, Series: []Series{SeriesRelay}},
		{ID: "latency-plot", Title: "Latency Difference", Kind: ChartTimeSeries},
		{ID: HistorySpeedGauge, Title: "Real-Time Speed Gauge", Kind: ChartGauge, Series: []Series{SeriesSpeed}},
	}
}

// historyGauge is the dial of the history speed gauge. Its range is wider
// than the live gauge's.
func historyGauge() GaugeSpec {
	g := SpeedGauge()
	g.ID = HistorySpeedGauge
	g.ValueID = ""
	g.Max = 200
	return g
}

var sourceColors = map[backend.Device]string{
	backend.DeviceArduino: "#00ff9d",
	backend.DeviceNodeMCU: "#38bdf8",
}

// value extracts the plotted field from a row.
func (s Series) value(r backend.Row) (float64, bool) {
	switch s {
	case SeriesSpeed:
		return r.Speed, true
	case SeriesIR1:
		if r.IR1 == nil {
			return 0, false
		}
		return *r.IR1, true
	case SeriesIR2:
		if r.IR2 == nil {
			return 0, false
		}
		return *r.IR2, true
	case SeriesPiezo:
		if r.Piezo == nil {
			return 0, false
		}
		return *r.Piezo, true
	case SeriesRelay:
		if r.Relay == nil {
			return 0, false
		}
		if *r.Relay {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// BuildTraces splits the merged row stream into one trace per known source
// and series, grouped by source.
//
// Each trace holds only its source's rows, in their original order. Rows of
// unknown sources, and rows that lack the plotted field, are skipped. With
// more than one series, trace names carry the series, e.g. "arduino ir2".
func BuildTraces(rows []backend.Row, series ...Series) []widget.Trace {
	traces := make([]widget.Trace, 0, len(backend.KnownDevices)*len(series))
	for _, dev := range backend.KnownDevices {
		for i, s := range series {
			name := string(dev)
			if len(series) > 1 {
				name += " " + string(s)
			}
			tr := widget.Trace{
				Kind:  widget.KindScatter,
				Name:  name,
				Mode:  "lines+markers",
				X:     []time.Time{},
				Y:     []float64{},
				Color: sourceColors[dev],
				Width: 4,
			}
			if i > 0 {
				tr.Mode = "lines"
				tr.Width = 2
			}
			for _, r := range rows {
				if r.Source != dev {
					continue
				}
				v, ok := s.value(r)
				if !ok {
					continue
				}
				tr.X = append(tr.X, r.Timestamp)
				tr.Y = append(tr.Y, v)
			}
			traces = append(traces, tr)
		}
	}
	return traces
}

// latestValue returns the series value of the newest arduino row.
func latestValue(rows []backend.Row, s Series) (float64, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Source != backend.DeviceArduino {
			continue
		}
		if v, ok := s.value(rows[i]); ok {
			return v, true
		}
	}
	return 0, false
}

// historyFigure builds the full figure of a history chart. It reports false
// when the rows hold nothing the chart can show.
func historyFigure(def ChartDef, rows []backend.Row) (widget.Figure, bool) {
	if len(def.Series) == 0 {
		return widget.Figure{}, false
	}
	if def.Kind == ChartGauge {
		v, ok := latestValue(rows, def.Series[0])
		if !ok {
			return widget.Figure{}, false
		}
		fig := historyGauge().Figure(v)
		fig.Layout.Title = def.Title
		return fig, true
	}
	return widget.Figure{
		Traces: BuildTraces(rows, def.Series...),
		Layout: widget.Layout{
			Title:           def.Title,
			PaperBackground: "rgba(0,0,0,0)",
			FontColor:       "#e2e8f0",
		},
	}, true
}
