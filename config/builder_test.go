package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/telemetryboard"
)

func TestBuildOptions_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("backend:\n  url: http://localhost:8000\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}

	tb, err := telemetryboard.New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tb.Backend().URL() != "http://localhost:8000" {
		t.Errorf("URL() = %q", tb.Backend().URL())
	}
	if tb.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", tb.Port())
	}
	if tb.FastInterval() != 800*time.Millisecond {
		t.Errorf("FastInterval() = %v, want 800ms", tb.FastInterval())
	}
	if tb.HistoryWindow() != 30 {
		t.Errorf("HistoryWindow() = %d, want 30", tb.HistoryWindow())
	}
}

func TestBuildOptions_AllFields(t *testing.T) {
	cfg := &Config{
		Title:          "Rig",
		Port:           9191,
		FastInterval:   Duration(time.Second),
		SlowInterval:   Duration(time.Minute),
		HistoryMinutes: 90,
		Backend: BackendConfig{
			URL:     "https://telemetry.example.com",
			Timeout: Duration(3 * time.Second),
			Headers: map[string]string{"Authorization": "Token abc", "X-Rig": "7"},
		},
		Gauges: map[string]GaugeConfig{
			"speed": {Min: 0, Max: 60, Low: 15, High: 40},
		},
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	tb, err := telemetryboard.New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if tb.Title() != "Rig" {
		t.Errorf("Title() = %q, want Rig", tb.Title())
	}
	if tb.Port() != 9191 {
		t.Errorf("Port() = %d, want 9191", tb.Port())
	}
	if tb.SlowInterval() != time.Minute {
		t.Errorf("SlowInterval() = %v, want 1m", tb.SlowInterval())
	}
	if tb.HistoryWindow() != 90 {
		t.Errorf("HistoryWindow() = %d, want 90", tb.HistoryWindow())
	}
	if tb.Backend().Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", tb.Backend().Timeout())
	}
	want := map[string]string{"Authorization": "Token abc", "X-Rig": "7"}
	if got := tb.Backend().Headers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Headers() = %v, want %v", got, want)
	}
}

func TestBuildOptions_BadGaugeRejectedByNew(t *testing.T) {
	cfg := &Config{
		Port:           8080,
		FastInterval:   Duration(time.Second),
		SlowInterval:   Duration(time.Minute),
		HistoryMinutes: 30,
		Backend:        BackendConfig{URL: "http://localhost:8000"},
		Gauges: map[string]GaugeConfig{
			"piezo": {Min: 0, Max: 100, Low: 90, High: 10},
		},
	}

	opts, err := BuildOptions(cfg)
	if err != nil {
		t.Fatalf("BuildOptions() error = %v", err)
	}
	if _, err := telemetryboard.New(opts...); err == nil {
		t.Error("New() expected error for inverted breakpoints")
	}
}

func TestBuildOptions_InvalidBackendURL(t *testing.T) {
	cfg := &Config{Backend: BackendConfig{URL: "http://"}}

	_, err := BuildOptions(cfg)
	if err == nil {
		t.Fatal("BuildOptions() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "host") {
		t.Errorf("error = %q, want host error", err)
	}
}

func TestMapToKeyValuePairs_Sorted(t *testing.T) {
	got := mapToKeyValuePairs(map[string]string{"b": "2", "a": "1", "c": "3"})
	want := []string{"a", "1", "b", "2", "c", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mapToKeyValuePairs() = %v, want %v", got, want)
	}
}
