package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/telemetryboard/internal/backend"
	"github.com/jpalmerr/telemetryboard/internal/command"
	"github.com/jpalmerr/telemetryboard/internal/store"
	"github.com/jpalmerr/telemetryboard/internal/widget"
)

func serve(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleLayout(t *testing.T) {
	srv := newTestServer(store.NewMemoryStore(), nil, "")

	rec := serve(t, srv, http.MethodGet, "/api/layout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got struct {
		Charts []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Kind  string `json:"kind"`
		} `json:"charts"`
		WindowMinutes int `json:"window_minutes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Charts) != 6 {
		t.Fatalf("charts = %d, want 6", len(got.Charts))
	}
	if got.Charts[0].ID != "ir-comparison" || got.Charts[0].Title == "" || got.Charts[0].Kind != "timeseries" {
		t.Errorf("first chart = %+v", got.Charts[0])
	}
	if last := got.Charts[5]; last.ID != "history-speed-gauge" || last.Kind != "gauge" {
		t.Errorf("last chart = %+v, want the history speed gauge", last)
	}
	if got.WindowMinutes != 30 {
		t.Errorf("window_minutes = %d, want 30", got.WindowMinutes)
	}
}

func TestHandleWidgets(t *testing.T) {
	ms := store.NewMemoryStore()
	ms.SetText(widget.LatencyDiff, "12.5")
	ms.SetDisabled(widget.CommonSwitch, true)
	srv := newTestServer(ms, nil, "")

	rec := serve(t, srv, http.MethodGet, "/api/widgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var states []store.WidgetState
	if err := json.Unmarshal(rec.Body.Bytes(), &states); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("states = %d, want 2", len(states))
	}
	if states[0].ID != widget.CommonSwitch || !states[0].Disabled {
		t.Errorf("states[0] = %+v, want disabled commonSwitch", states[0])
	}
	if states[1].Text != "12.5" {
		t.Errorf("states[1].Text = %q, want 12.5", states[1].Text)
	}

	if rec := serve(t, srv, http.MethodPost, "/api/widgets", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestHandleRelay(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		outcome    command.Outcome
		wantStatus int
		wantSent   bool
	}{
		{"acknowledged", http.MethodPost, `{"state":true,"type":"common"}`, command.Acknowledged, http.StatusOK, true},
		{"dropped", http.MethodPost, `{"state":false,"type":"arduino"}`, command.Dropped, http.StatusConflict, true},
		{"failed", http.MethodPost, `{"state":true,"type":"nodemcu"}`, command.Failed, http.StatusBadGateway, true},
		{"unknown scope", http.MethodPost, `{"state":true,"type":"esp32"}`, command.Acknowledged, http.StatusBadRequest, false},
		{"missing state", http.MethodPost, `{"type":"common"}`, command.Acknowledged, http.StatusBadRequest, false},
		{"bad json", http.MethodPost, `{"state":`, command.Acknowledged, http.StatusBadRequest, false},
		{"unknown field", http.MethodPost, `{"state":true,"type":"common","x":1}`, command.Acknowledged, http.StatusBadRequest, false},
		{"wrong method", http.MethodGet, "", command.Acknowledged, http.StatusMethodNotAllowed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := newMockController()
			ctl.outcome = tt.outcome
			srv := NewServer(store.NewMemoryStore(), ctl, 0, nil, "", testLogger())

			rec := serve(t, srv, tt.method, "/api/control/relay", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if sent := len(ctl.requests) > 0; sent != tt.wantSent {
				t.Errorf("command sent = %v, want %v", sent, tt.wantSent)
			}
			if tt.wantSent {
				var resp relayResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Outcome != tt.outcome.String() {
					t.Errorf("outcome = %q, want %q", resp.Outcome, tt.outcome)
				}
			}
		})
	}
}

func TestHandleRelay_PassesScopeAndState(t *testing.T) {
	ctl := newMockController()
	srv := NewServer(store.NewMemoryStore(), ctl, 0, nil, "", testLogger())

	serve(t, srv, http.MethodPost, "/api/control/relay", `{"state":false,"type":"nodemcu"}`)

	if len(ctl.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(ctl.requests))
	}
	if got := ctl.requests[0]; got.Scope != backend.ScopeNodeMCU || got.State {
		t.Errorf("request = %+v, want nodemcu off", got)
	}
}

func TestHandleWindow(t *testing.T) {
	ctl := newMockController()
	srv := NewServer(store.NewMemoryStore(), ctl, 0, nil, "", testLogger())

	rec := serve(t, srv, http.MethodGet, "/api/window", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"minutes":30`) {
		t.Errorf("GET = %d %s, want 200 minutes 30", rec.Code, rec.Body.String())
	}

	rec = serve(t, srv, http.MethodPost, "/api/window", `{"minutes":5}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"minutes":5`) {
		t.Errorf("POST = %d %s, want 200 minutes 5", rec.Code, rec.Body.String())
	}
	if ctl.Window() != 5 {
		t.Errorf("Window() = %d, want 5", ctl.Window())
	}

	rec = serve(t, srv, http.MethodPost, "/api/window", `{"minutes":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid window status = %d, want 400", rec.Code)
	}
	if ctl.Window() != 5 {
		t.Errorf("Window() = %d after invalid input, want 5", ctl.Window())
	}

	rec = serve(t, srv, http.MethodDelete, "/api/window", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", rec.Code)
	}
}

func TestHandleChart(t *testing.T) {
	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	ms := store.NewMemoryStore()
	ms.Render("speed-plot", widget.Figure{
		Traces: []widget.Trace{
			{Kind: widget.KindScatter, Name: "arduino", Mode: "lines+markers", Color: "#00ff9d",
				X: []time.Time{base, base.Add(time.Second), base.Add(2 * time.Second)}, Y: []float64{1, 4, 2}},
			{Kind: widget.KindScatter, Name: "nodemcu", Color: "#38bdf8",
				X: []time.Time{base.Add(time.Second)}, Y: []float64{3}},
		},
		Layout: widget.Layout{Title: "Vehicle Speed Over Time"},
	})
	ms.Render("piezo-plot", widget.Figure{Layout: widget.Layout{Title: "Waiting for data..."}})
	srv := newTestServer(ms, nil, "")

	rec := serve(t, srv, http.MethodGet, "/api/charts/speed-plot.png", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/charts/piezo-plot.png", http.StatusNoContent},
		{"/api/charts/relay-states.png", http.StatusNoContent},
		{"/api/charts/unknown.png", http.StatusNotFound},
		{"/api/charts/speed-plot", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := serve(t, srv, http.MethodGet, tt.path, ""); rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}
