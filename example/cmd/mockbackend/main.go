// Standalone mock telemetry backend for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockbackend
//
// Then in another terminal:
//
//	go run ./cmd/telemetryboard serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/telemetryboard/example/mockbackend"
)

func main() {
	fmt.Println("Mock telemetry backend starting on :8000")
	fmt.Println("Serving /api/latest/, /api/recent/ and /api/control/relay/")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              ":8000",
		Handler:           mockbackend.New(slog.Default()).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
