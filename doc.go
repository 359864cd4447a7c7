// Package telemetryboard provides an embeddable live dashboard for an IoT
// telemetry rig of two boards (an Arduino and a NodeMCU) reporting through a
// telemetry backend.
//
// The board polls the backend on two fixed-period loops: a fast loop for the
// latest snapshot and a slow loop for a window of recent history. Each fetch
// is diffed against the last rendered snapshot and only the widgets whose
// data changed are redrawn. Relay commands go through a per-scope serializer
// that drops a command while another for the same scope is pending.
//
// # Quick Start
//
//	be, _ := telemetryboard.NewBackend("http://localhost:8000")
//	tb, _ := telemetryboard.New(telemetryboard.WithBackend(be))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	tb.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
//	tb, err := telemetryboard.New(
//	    telemetryboard.WithBackend(be),
//	    telemetryboard.WithFastInterval(500 * time.Millisecond),
//	    telemetryboard.WithSlowInterval(30 * time.Second),
//	    telemetryboard.WithHistoryWindow(60),
//	    telemetryboard.WithPort(9090),
//	)
//
// Polling is not held back by slow responses. Every tick runs on its own,
// so with a slow backend fetches overlap and the last one to finish wins.
//
// # Relays
//
//	outcome, err := tb.SetRelay(ctx, telemetryboard.ScopeNodeMCU, true)
//
// The outcome is [OutcomeAcknowledged], [OutcomeFailed], or [OutcomeDropped]
// when a command for the same scope was still in flight.
//
// # Architecture
//
//   - internal/backend: HTTP client for the backend's latest, recent and relay endpoints
//   - internal/diff: Snapshot differ deciding which regions to redraw
//   - internal/render: Widget renderer for gauges, readouts and history charts
//   - internal/command: Per-scope relay command serializer
//   - internal/poller: Fixed-period loop driver without backpressure
//   - internal/session: Ties one dashboard's fetch, diff and render together
//   - internal/store: In-memory widget board with pub/sub for live updates
//   - internal/server: HTTP server with REST API, Server-Sent Events and PNG charts
//   - dashboard: Embedded web UI assets
package telemetryboard
