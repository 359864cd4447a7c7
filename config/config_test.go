package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
backend:
  url: http://localhost:8000
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.FastInterval.Duration() != 800*time.Millisecond {
		t.Errorf("FastInterval = %v, want 800ms", cfg.FastInterval.Duration())
	}
	if cfg.SlowInterval.Duration() != 15*time.Second {
		t.Errorf("SlowInterval = %v, want 15s", cfg.SlowInterval.Duration())
	}
	if cfg.HistoryMinutes != 30 {
		t.Errorf("HistoryMinutes = %d, want 30", cfg.HistoryMinutes)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Test Rig
port: 9090
fast_interval: 500ms
slow_interval: 1m
history_minutes: 120

backend:
  url: https://telemetry.example.com
  timeout: 2s
  headers:
    Authorization: Token abc
    X-Rig: seven

gauges:
  speed: {min: 0, max: 60, low: 15, high: 40}
  piezo:
    min: 0
    max: 512
    low: 100
    high: 300
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Test Rig" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Test Rig")
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.FastInterval.Duration() != 500*time.Millisecond {
		t.Errorf("FastInterval = %v, want 500ms", cfg.FastInterval.Duration())
	}
	if cfg.SlowInterval.Duration() != time.Minute {
		t.Errorf("SlowInterval = %v, want 1m", cfg.SlowInterval.Duration())
	}
	if cfg.HistoryMinutes != 120 {
		t.Errorf("HistoryMinutes = %d, want 120", cfg.HistoryMinutes)
	}
	if cfg.Backend.Timeout.Duration() != 2*time.Second {
		t.Errorf("Backend.Timeout = %v, want 2s", cfg.Backend.Timeout.Duration())
	}
	if cfg.Backend.Headers["X-Rig"] != "seven" {
		t.Errorf("Backend.Headers = %v", cfg.Backend.Headers)
	}
	if g := cfg.Gauges["speed"]; g.Max != 60 || g.Low != 15 || g.High != 40 {
		t.Errorf("Gauges[speed] = %+v", g)
	}
	if g := cfg.Gauges["piezo"]; g.Max != 512 || g.High != 300 {
		t.Errorf("Gauges[piezo] = %+v", g)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TB_HOST", "rig.local")
	t.Setenv("TB_TOKEN", "secret")

	yaml := `
backend:
  url: http://${TB_HOST}:8000
  headers:
    Authorization: Token ${TB_TOKEN}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Backend.URL != "http://rig.local:8000" {
		t.Errorf("URL = %q, want http://rig.local:8000", cfg.Backend.URL)
	}
	if cfg.Backend.Headers["Authorization"] != "Token secret" {
		t.Errorf("Authorization = %q, want %q", cfg.Backend.Headers["Authorization"], "Token secret")
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
backend:
  url: ${TB_UNSET_URL:-http://localhost:8000}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("URL = %q, want default", cfg.Backend.URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "in url",
			yaml: `
backend:
  url: ${TB_MISSING_URL}
`,
			wantErr: "backend: url",
		},
		{
			name: "in header",
			yaml: `
backend:
  url: http://localhost:8000
  headers:
    Authorization: ${TB_MISSING_TOKEN}
`,
			wantErr: "headers[Authorization]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "is not set") {
				t.Errorf("error = %q, want mention of unset variable", err)
			}
		})
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing backend",
			yaml:    `port: 8080`,
			wantErr: "backend: url is required",
		},
		{
			name: "no scheme",
			yaml: `
backend:
  url: localhost:8000
`,
			wantErr: "scheme",
		},
		{
			name: "ftp scheme",
			yaml: `
backend:
  url: ftp://files.example.com
`,
			wantErr: "http or https",
		},
		{
			name: "port too high",
			yaml: `
port: 70000
backend:
  url: http://localhost:8000
`,
			wantErr: "port must be between",
		},
		{
			name: "fast interval too short",
			yaml: `
fast_interval: 10ms
backend:
  url: http://localhost:8000
`,
			wantErr: "fast_interval must be at least",
		},
		{
			name: "slow interval too short",
			yaml: `
slow_interval: 500ms
backend:
  url: http://localhost:8000
`,
			wantErr: "slow_interval must be at least",
		},
		{
			name: "history too long",
			yaml: `
history_minutes: 2000
backend:
  url: http://localhost:8000
`,
			wantErr: "history_minutes must be between",
		},
		{
			name: "negative history",
			yaml: `
history_minutes: -5
backend:
  url: http://localhost:8000
`,
			wantErr: "history_minutes must be between",
		},
		{
			name: "timeout too short",
			yaml: `
backend:
  url: http://localhost:8000
  timeout: 10ms
`,
			wantErr: "timeout must be at least",
		},
		{
			name: "negative timeout",
			yaml: `
backend:
  url: http://localhost:8000
  timeout: -1s
`,
			wantErr: "timeout cannot be negative",
		},
		{
			name: "unknown gauge",
			yaml: `
backend:
  url: http://localhost:8000
gauges:
  rpm: {min: 0, max: 10, low: 2, high: 5}
`,
			wantErr: "gauges[rpm]: unknown gauge",
		},
		{
			name: "empty gauge axis",
			yaml: `
backend:
  url: http://localhost:8000
gauges:
  speed: {min: 10, max: 10, low: 10, high: 10}
`,
			wantErr: "gauges[speed]: max must be greater than min",
		},
		{
			name: "breakpoints out of order",
			yaml: `
backend:
  url: http://localhost:8000
gauges:
  piezo: {min: 0, max: 100, low: 80, high: 20}
`,
			wantErr: "gauges[piezo]: breakpoints",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("backend: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %q", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
fast_interval: fast
backend:
  url: http://localhost:8000
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %q, want invalid duration", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  url: http://localhost:8000\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_TitleEmpty(t *testing.T) {
	cfg, err := Parse([]byte("backend:\n  url: http://localhost:8000\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// empty title defaults to "TelemetryBoard" at render time
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty string", cfg.Title)
	}
}
