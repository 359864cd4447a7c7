// Package store holds the dashboard's widget board: the current state of
// every widget plus a publish-subscribe feed of changes.
//
// [MemoryStore] implements [widget.Set], so the renderer and the command
// serializer write straight into it. The dashboard server, the terminal view
// and SDK callbacks read from it by subscribing.
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers miss updates rather than block a render).
package store
