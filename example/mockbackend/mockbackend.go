// Package mockbackend simulates the telemetry backend of a two-board rig for
// local runs of the dashboard.
//
// The simulated Arduino reports speed, piezo and IR readings about once a
// second; the NodeMCU reports IR readings and its relay. Now and then the rig
// drops off for a few seconds so the connection banner has something to do.
package mockbackend

import (
	"encoding/json"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	sampleInterval = time.Second
	maxRows        = 2 * 24 * 60 * 60 // two rows per sample, one day
	dropoutChance  = 0.01
	dropoutLength  = 5 * time.Second
	defaultMinutes = 30
)

type row struct {
	Timestamp    string   `json:"timestamp"`
	Source       string   `json:"source"`
	Speed        float64  `json:"speed"`
	IR1          int      `json:"ir1"`
	IR2          int      `json:"ir2"`
	Piezo        *float64 `json:"piezo,omitempty"`
	ArduinoRelay *bool    `json:"arduino_relay,omitempty"`
	NodeMCURelay *bool    `json:"nodemcu_relay,omitempty"`

	at time.Time
}

// Server is a simulated telemetry backend.
type Server struct {
	logger  *slog.Logger
	now     func() time.Time
	rng     *rand.Rand
	dropout float64

	mu           sync.Mutex
	rows         []row
	lastSample   time.Time
	offlineUntil time.Time
	phase        float64
	arduinoRelay bool
	nodemcuRelay bool
}

// New creates a simulated backend.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		dropout: dropoutChance,
	}
}

// Handler returns the backend's HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/latest/", s.handleLatest)
	mux.HandleFunc("GET /api/recent/", s.handleRecent)
	mux.HandleFunc("POST /api/control/relay/", s.handleRelay)
	return mux
}

// sample appends readings for every interval elapsed since the last one.
// Caller holds mu.
func (s *Server) sample(now time.Time) {
	if s.lastSample.IsZero() {
		s.lastSample = now.Add(-sampleInterval)
	}
	for t := s.lastSample.Add(sampleInterval); !t.After(now); t = t.Add(sampleInterval) {
		s.lastSample = t
		if t.Before(s.offlineUntil) {
			continue
		}
		if s.rng.Float64() < s.dropout {
			s.offlineUntil = t.Add(dropoutLength)
			s.logger.Info("rig offline", "until", s.offlineUntil.Format(time.TimeOnly))
			continue
		}

		s.phase += 0.05
		speed := math.Round((40+35*math.Sin(s.phase)+s.rng.Float64()*5)*10) / 10
		piezo := float64(s.rng.Intn(1024))
		arduinoRelay, nodemcuRelay := s.arduinoRelay, s.nodemcuRelay
		stamp := t.UTC().Format(time.RFC3339Nano)

		s.rows = append(s.rows,
			row{Timestamp: stamp, Source: "arduino", Speed: math.Max(speed, 0), IR1: s.rng.Intn(2), IR2: s.rng.Intn(2),
				Piezo: &piezo, ArduinoRelay: &arduinoRelay, at: t},
			row{Timestamp: stamp, Source: "nodemcu", IR1: s.rng.Intn(2), IR2: s.rng.Intn(2),
				NodeMCURelay: &nodemcuRelay, at: t},
		)
	}
	if over := len(s.rows) - maxRows; over > 0 {
		s.rows = append([]row(nil), s.rows[over:]...)
	}
}

// latestBy returns the newest row of source, or nil.
func (s *Server) latestBy(source string) *row {
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].Source == source {
			return &s.rows[i]
		}
	}
	return nil
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	now := s.now()

	s.mu.Lock()
	s.sample(now)
	resp := map[string]any{
		"is_connected": !now.Before(s.offlineUntil),
		"nodemcu_ip":   nil,
		"arduino":      nil,
		"nodemcu":      nil,
		"latency_diff": nil,
		"last_seen":    nil,
	}
	if a := s.latestBy("arduino"); a != nil {
		resp["arduino"] = map[string]any{
			"ir1": a.IR1, "ir2": a.IR2, "speed": a.Speed, "piezo": a.Piezo,
			"arduino_relay": a.ArduinoRelay, "piezo_relay": *a.Piezo > 700,
		}
		resp["last_seen"] = math.Round(now.Sub(a.at).Seconds()*10) / 10
	}
	if n := s.latestBy("nodemcu"); n != nil {
		resp["nodemcu"] = map[string]any{"ir1": n.IR1, "ir2": n.IR2, "nodemcu_relay": n.NodeMCURelay}
		resp["nodemcu_ip"] = "192.168.4.2"
		resp["latency_diff"] = math.Round(s.rng.Float64()*400) / 10
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	minutes := defaultMinutes
	if v := r.URL.Query().Get("minutes"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 {
			http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		minutes = m
	}

	now := s.now()
	cutoff := now.Add(-time.Duration(minutes) * time.Minute)

	s.mu.Lock()
	s.sample(now)
	rows := make([]row, 0, len(s.rows))
	for _, rw := range s.rows {
		if !rw.at.Before(cutoff) {
			rows = append(rows, rw)
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"table_rows": rows})
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State *bool  `json:"state"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil || req.State == nil {
		http.Error(w, "body must be {\"state\": bool, \"type\": scope}", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	switch req.Type {
	case "common":
		s.arduinoRelay, s.nodemcuRelay = *req.State, *req.State
	case "arduino":
		s.arduinoRelay = *req.State
	case "nodemcu":
		s.nodemcuRelay = *req.State
	default:
		s.mu.Unlock()
		http.Error(w, "unknown relay type", http.StatusBadRequest)
		return
	}
	s.mu.Unlock()

	s.logger.Info("relay switched", "type", req.Type, "state", *req.State,
		"request_id", r.Header.Get("X-Request-ID"))
	writeJSON(w, map[string]any{"status": "ok", "type": req.Type, "state": *req.State})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
