package render

import (
	"errors"
	"fmt"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// Metric names a gauge's source value in a snapshot.
type Metric string

const (
	MetricSpeed Metric = "speed"
	MetricPiezo Metric = "piezo"
)

// read extracts the metric from the arduino readings, the only board that
// reports speed and piezo.
func (m Metric) read(snap *backend.Snapshot) float64 {
	r := snap.Device(backend.DeviceArduino)
	switch m {
	case MetricSpeed:
		return r.Speed
	case MetricPiezo:
		return r.Piezo
	default:
		return 0
	}
}

// GaugeSpec configures one gauge and its paired numeric readout.
//
// Values below Low use the first band color, values below High the second,
// and everything else the third.
type GaugeSpec struct {
	ID      string
	ValueID string
	Metric  Metric
	Suffix  string

	Min, Max  float64
	Low, High float64

	// StepColors paint the dial bands, BarColors the value bar.
	StepColors [3]string
	BarColors  [3]string

	// OneDecimal renders the readout with one decimal place instead of the
	// shortest form.
	OneDecimal bool
}

var defaultBarColors = [3]string{"#00ff00", "#ffff00", "#ff0000"}

// SpeedGauge returns the default vehicle speed gauge (km/h).
func SpeedGauge() GaugeSpec {
	return GaugeSpec{
		ID:         widget.SpeedGauge,
		ValueID:    widget.SpeedValue,
		Metric:     MetricSpeed,
		Suffix:     " km/h",
		Min:        0,
		Max:        100,
		Low:        20,
		High:       50,
		StepColors: [3]string{"darkgreen", "orange", "red"},
		BarColors:  defaultBarColors,
		OneDecimal: true,
	}
}

// PiezoGauge returns the default piezo vibration gauge (raw 10-bit ADC).
func PiezoGauge() GaugeSpec {
	return GaugeSpec{
		ID:         widget.PiezoGauge,
		ValueID:    widget.PiezoValue,
		Metric:     MetricPiezo,
		Min:        0,
		Max:        1023,
		Low:        341,
		High:       682,
		StepColors: [3]string{"darkblue", "orange", "red"},
		BarColors:  defaultBarColors,
	}
}

// Validate checks the ids and that Min <= Low <= High <= Max with Min < Max.
func (g GaugeSpec) Validate() error {
	if g.ID == "" {
		return errors.New("gauge id is required")
	}
	if g.Min >= g.Max {
		return fmt.Errorf("gauge %s: min (%g) must be less than max (%g)", g.ID, g.Min, g.Max)
	}
	if g.Low < g.Min || g.Low > g.High || g.High > g.Max {
		return fmt.Errorf("gauge %s: breakpoints must satisfy min <= low <= high <= max, got low=%g high=%g",
			g.ID, g.Low, g.High)
	}
	return nil
}

// BarColor resolves the bar color for v.
func (g GaugeSpec) BarColor(v float64) string {
	switch {
	case v < g.Low:
		return g.BarColors[0]
	case v < g.High:
		return g.BarColors[1]
	default:
		return g.BarColors[2]
	}
}

// Figure builds the gauge figure for v.
func (g GaugeSpec) Figure(v float64) widget.Figure {
	return widget.Figure{
		Traces: []widget.Trace{{
			Kind:   widget.KindIndicator,
			Mode:   "gauge+number",
			Value:  v,
			Suffix: g.Suffix,
			Gauge: &widget.Gauge{
				Range:    [2]float64{g.Min, g.Max},
				BarColor: g.BarColor(v),
				Steps: []widget.Step{
					{Range: [2]float64{g.Min, g.Low}, Color: g.StepColors[0]},
					{Range: [2]float64{g.Low, g.High}, Color: g.StepColors[1]},
					{Range: [2]float64{g.High, g.Max}, Color: g.StepColors[2]},
				},
			},
		}},
		Layout: widget.Layout{
			PaperBackground: "rgba(0,0,0,0)",
			FontColor:       "#00ffff",
			FontFamily:      "Orbitron",
			Height:          250,
		},
	}
}

// readout formats v for the paired text widget.
func (g GaugeSpec) readout(v float64) string {
	if g.OneDecimal {
		return formatOneDecimal(v)
	}
	return formatNumber(v)
}
