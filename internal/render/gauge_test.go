package render

import "testing"

func TestGaugeSpec_BarColor(t *testing.T) {
	speed := SpeedGauge()
	piezo := PiezoGauge()

	tests := []struct {
		name  string
		gauge GaugeSpec
		value float64
		want  string
	}{
		{"speed zero", speed, 0, "#00ff00"},
		{"speed just below low", speed, 19.9, "#00ff00"},
		{"speed at low", speed, 20, "#ffff00"},
		{"speed medium", speed, 49.9, "#ffff00"},
		{"speed at high", speed, 50, "#ff0000"},
		{"speed high", speed, 75, "#ff0000"},
		{"speed above range", speed, 150, "#ff0000"},
		{"piezo low", piezo, 340, "#00ff00"},
		{"piezo medium", piezo, 341, "#ffff00"},
		{"piezo high", piezo, 682, "#ff0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gauge.BarColor(tt.value); got != tt.want {
				t.Errorf("BarColor(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestGaugeSpec_Figure(t *testing.T) {
	fig := SpeedGauge().Figure(30)

	if len(fig.Traces) != 1 {
		t.Fatalf("len(Traces) = %d, want 1", len(fig.Traces))
	}
	g := fig.Traces[0].Gauge
	if g.Range != [2]float64{0, 100} {
		t.Errorf("Range = %v, want [0 100]", g.Range)
	}
	if len(g.Steps) != 3 {
		t.Fatalf("len(Steps) = %d, want 3", len(g.Steps))
	}
	if g.Steps[1].Range != [2]float64{20, 50} || g.Steps[1].Color != "orange" {
		t.Errorf("Steps[1] = %+v, want {[20 50] orange}", g.Steps[1])
	}
	if fig.Traces[0].Suffix != " km/h" {
		t.Errorf("Suffix = %q, want \" km/h\"", fig.Traces[0].Suffix)
	}
}

func TestGaugeSpec_CustomBreakpoints(t *testing.T) {
	g := SpeedGauge()
	g.Low, g.High = 40, 80

	if got := g.BarColor(75); got != "#ffff00" {
		t.Errorf("BarColor(75) = %q, want #ffff00", got)
	}
}

func TestGaugeSpec_Validate(t *testing.T) {
	if err := SpeedGauge().Validate(); err != nil {
		t.Errorf("SpeedGauge().Validate() error = %v", err)
	}
	if err := PiezoGauge().Validate(); err != nil {
		t.Errorf("PiezoGauge().Validate() error = %v", err)
	}

	bad := []func(*GaugeSpec){
		func(g *GaugeSpec) { g.ID = "" },
		func(g *GaugeSpec) { g.Min, g.Max = 10, 10 },
		func(g *GaugeSpec) { g.Low = -1 },
		func(g *GaugeSpec) { g.Low, g.High = 60, 40 },
		func(g *GaugeSpec) { g.High = 200 },
	}
	for i, mutate := range bad {
		g := SpeedGauge()
		mutate(&g)
		if err := g.Validate(); err == nil {
			t.Errorf("case %d: Validate() expected error, got nil", i)
		}
	}
}
