package widget

import (
	"testing"
	"time"
)

func TestFigure_CloneIsDeep(t *testing.T) {
	orig := Figure{
		Traces: []Trace{
			{Kind: KindScatter, X: []time.Time{time.Unix(0, 0)}, Y: []float64{1}},
			{Kind: KindIndicator, Gauge: &Gauge{BarColor: "#00ff00", Steps: []Step{{Color: "red"}}}},
		},
		Layout: Layout{Title: "t"},
	}

	cp := orig.Clone()
	cp.Traces[0].Y[0] = 99
	cp.Traces[1].Gauge.BarColor = "#ff0000"
	cp.Traces[1].Gauge.Steps[0].Color = "blue"

	if orig.Traces[0].Y[0] != 1 {
		t.Errorf("orig Y mutated to %v", orig.Traces[0].Y[0])
	}
	if orig.Traces[1].Gauge.BarColor != "#00ff00" {
		t.Errorf("orig BarColor mutated to %q", orig.Traces[1].Gauge.BarColor)
	}
	if orig.Traces[1].Gauge.Steps[0].Color != "red" {
		t.Errorf("orig step color mutated to %q", orig.Traces[1].Gauge.Steps[0].Color)
	}
}

func TestFigure_CloneEmpty(t *testing.T) {
	cp := Figure{Layout: Layout{Title: "Waiting for data..."}}.Clone()
	if cp.Traces != nil {
		t.Errorf("Traces = %v, want nil", cp.Traces)
	}
	if cp.Layout.Title != "Waiting for data..." {
		t.Errorf("Title = %q", cp.Layout.Title)
	}
}
