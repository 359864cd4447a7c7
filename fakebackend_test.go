package telemetryboard

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

const latestBody = `{
	"is_connected": true,
	"nodemcu_ip": "192.168.4.2",
	"arduino": {"ir1": 1, "ir2": 0, "speed": 42.5, "piezo": 120, "arduino_relay": true},
	"nodemcu": {"ir1": 0, "ir2": 1, "nodemcu_relay": false},
	"latency_diff": 8,
	"last_seen": 0.4
}`

const recentBody = `{"table_rows": [
	{"timestamp": "2025-01-02T10:00:00Z", "source": "arduino", "speed": 10, "ir1": 1, "piezo": 100},
	{"timestamp": "2025-01-02T10:00:01Z", "source": "nodemcu", "speed": 0, "ir1": 0, "nodemcu_relay": true}
]}`

// fakeBackend is an httptest server speaking the backend API.
type fakeBackend struct {
	*httptest.Server

	latestCalls  atomic.Int32
	recentCalls  atomic.Int32
	controlCalls atomic.Int32

	mu          sync.Mutex
	lastControl string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/latest/", func(w http.ResponseWriter, r *http.Request) {
		fb.latestCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, latestBody)
	})
	mux.HandleFunc("/api/recent/", func(w http.ResponseWriter, r *http.Request) {
		fb.recentCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, recentBody)
	})
	mux.HandleFunc("/api/control/relay/", func(w http.ResponseWriter, r *http.Request) {
		fb.controlCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.lastControl = string(body)
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) backend(t *testing.T) Backend {
	t.Helper()
	be, err := NewBackend(fb.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	return be
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustBackend(t *testing.T) Backend {
	t.Helper()
	be, err := NewBackend("http://localhost:8000")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	return be
}
