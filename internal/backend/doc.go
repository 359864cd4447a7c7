// Package backend is the HTTP adapter for the telemetry backend.
//
// This package is internal to telemetryboard. It wraps the three backend
// calls the dashboard needs:
//
//   - [Client.FetchLatest]: GET /api/latest/, decoded into a [Snapshot]
//   - [Client.FetchRecent]: GET /api/recent/?minutes=N, decoded into [Row] values
//   - [Client.SendCommand]: POST /api/control/relay/
//
// Every failure (network error, non-2xx status, malformed body) is logged and
// normalized to an absent result. Callers never see an error and nothing is
// retried; the next poll tick simply tries again.
package backend
