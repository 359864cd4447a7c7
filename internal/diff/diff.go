// Package diff decides which regions of the dashboard a new snapshot touches.
package diff

import (
	"strings"

	"github.com/jpalmerr/telemetryboard/internal/backend"
)

// Region is a portion of the dashboard that is updated as a unit.
type Region uint8

const (
	Connection Region = 1 << iota
	IR
	Latency
	Gauges
	History
)

var regionNames = []struct {
	r    Region
	name string
}{
	{Connection, "connection"},
	{IR, "ir"},
	{Latency, "latency"},
	{Gauges, "gauges"},
	{History, "history"},
}

// Regions is a set of [Region] values.
type Regions uint8

// Has reports whether r is in the set.
func (s Regions) Has(r Region) bool {
	return uint8(s)&uint8(r) != 0
}

// With returns the set with r added.
func (s Regions) With(r Region) Regions {
	return Regions(uint8(s) | uint8(r))
}

// Empty reports whether the set has no regions.
func (s Regions) Empty() bool {
	return s == 0
}

// String lists the regions, e.g. "connection|ir".
func (s Regions) String() string {
	if s.Empty() {
		return "none"
	}
	var parts []string
	for _, rn := range regionNames {
		if s.Has(rn.r) {
			parts = append(parts, rn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Diff returns the regions that must be re-rendered for current.
//
// previous is the last rendered snapshot; its zero value is the
// disconnected default. A nil current (failed fetch) yields no regions.
// The connection region is included only when the connected flag changed.
// IR, latency and gauges are always included because they are cheap to
// re-render.
func Diff(previous backend.Snapshot, current *backend.Snapshot) Regions {
	if current == nil {
		return 0
	}

	var out Regions
	if current.Connected != previous.Connected {
		out = out.With(Connection)
	}
	return out.With(IR).With(Latency).With(Gauges)
}
