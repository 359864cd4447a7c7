package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/telemetryboard"
	"github.com/jpalmerr/telemetryboard/example/mockbackend"
)

func main() {
	// start the simulated rig (see mockbackend)
	ln, err := net.Listen("tcp", "localhost:9999")
	if err != nil {
		slog.Error("failed to start mock backend", "error", err)
		os.Exit(1)
	}
	go func() {
		_ = http.Serve(ln, mockbackend.New(slog.Default()).Handler())
	}()

	be, err := telemetryboard.NewBackend("http://localhost:9999",
		telemetryboard.WithTimeout(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create backend", "error", err)
		os.Exit(1)
	}

	tb, err := telemetryboard.New(
		telemetryboard.WithBackend(be),
		telemetryboard.WithTitle("Test Rig"),
		telemetryboard.WithPort(8080),
		telemetryboard.WithHistoryWindow(10),
		telemetryboard.WithGauge(telemetryboard.GaugeSpeed,
			telemetryboard.GaugeRange{Min: 0, Max: 100, Low: 30, High: 70}),
		telemetryboard.WithSnapshotCallback(func(s telemetryboard.Snapshot) {
			if !s.Connected {
				slog.Warn("rig offline")
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create telemetryboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   TelemetryBoard Demo                                 ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Simulated rig on http://localhost:9999              ║")
	fmt.Println("  ║   Relay switches send commands back to it             ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tb.Start(ctx); err != nil {
		slog.Error("telemetryboard error", "error", err)
		os.Exit(1)
	}
}
