// Package server provides the HTTP server for the dashboard page and its API.
//
// The page is a thin mirror of the widget board: it loads all widget states
// from "/api/widgets", then applies changes streamed over "/api/sse". User
// input flows back through "/api/control/relay" (relay commands) and
// "/api/window" (history window). History charts are also available as PNG
// images at "/api/charts/{id}.png", drawn with go-chart.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
