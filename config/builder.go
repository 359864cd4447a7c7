package config

import (
	"sort"

	"github.com/jpalmerr/telemetryboard"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The returned options cover the backend, intervals, history window, port,
// title and gauge overrides. Callers append their own (logger, callbacks).
func BuildOptions(cfg *Config) ([]telemetryboard.Option, error) {
	be, err := buildBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	opts := []telemetryboard.Option{
		telemetryboard.WithBackend(be),
		telemetryboard.WithPort(cfg.Port),
		telemetryboard.WithFastInterval(cfg.FastInterval.Duration()),
		telemetryboard.WithSlowInterval(cfg.SlowInterval.Duration()),
		telemetryboard.WithHistoryWindow(cfg.HistoryMinutes),
	}
	if cfg.Title != "" {
		opts = append(opts, telemetryboard.WithTitle(cfg.Title))
	}

	names := make([]string, 0, len(cfg.Gauges))
	for name := range cfg.Gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := cfg.Gauges[name]
		opts = append(opts, telemetryboard.WithGauge(telemetryboard.Gauge(name), telemetryboard.GaugeRange{
			Min:  g.Min,
			Max:  g.Max,
			Low:  g.Low,
			High: g.High,
		}))
	}

	return opts, nil
}

// buildBackend converts a BackendConfig to an SDK Backend.
func buildBackend(bc BackendConfig) (telemetryboard.Backend, error) {
	var opts []telemetryboard.BackendOption

	if bc.Timeout != 0 {
		opts = append(opts, telemetryboard.WithTimeout(bc.Timeout.Duration()))
	}
	if len(bc.Headers) > 0 {
		opts = append(opts, telemetryboard.WithHeaders(mapToKeyValuePairs(bc.Headers)...))
	}

	return telemetryboard.NewBackend(bc.URL, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
