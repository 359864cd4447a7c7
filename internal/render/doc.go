// Package render turns telemetry into widget updates.
//
// The [Renderer] owns the render state (the last rendered snapshot) and is
// the only component that writes display content to a [widget.Set]. It
// performs no I/O of its own: snapshots and history rows are handed to it
// after the fetch has completed.
//
// A Renderer is not safe for concurrent use; the session serializes calls.
package render
