// Package dashboard provides the embedded web UI of the telemetry dashboard.
//
// The page is compiled into the binary with Go's embed directive and served
// by the server package at "/".
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
//	assets/
//	  index.html    - dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
