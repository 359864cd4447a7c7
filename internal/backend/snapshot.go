package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// Device identifies one of the boards reporting telemetry.
type Device string

const (
	DeviceArduino Device = "arduino"
	DeviceNodeMCU Device = "nodemcu"
)

// KnownDevices lists the data sources in display order.
var KnownDevices = []Device{DeviceArduino, DeviceNodeMCU}

// Scope is the target of a relay command.
type Scope string

const (
	ScopeCommon  Scope = "common"
	ScopeArduino Scope = "arduino"
	ScopeNodeMCU Scope = "nodemcu"
)

// Scopes lists every valid relay command scope.
var Scopes = []Scope{ScopeCommon, ScopeArduino, ScopeNodeMCU}

// ParseScope validates a wire scope name.
func ParseScope(s string) (Scope, error) {
	for _, sc := range Scopes {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown relay scope %q (expected common, arduino or nodemcu)", s)
}

// Readings holds the latest values reported by a single device.
// Nil pointers mean the backend did not report the value.
type Readings struct {
	IR1        *float64
	IR2        *float64
	Speed      float64
	Piezo      float64
	Relay      *bool
	PiezoRelay *bool
}

// Snapshot is one consistent view of backend telemetry.
//
// A Snapshot is produced fresh by every successful [Client.FetchLatest] and
// is treated as read-only afterwards; a newer snapshot replaces it wholesale.
// The zero value is the disconnected default used before the first fetch.
type Snapshot struct {
	Connected   bool
	DeviceIP    *string
	Devices     map[Device]Readings
	LatencyDiff *float64

	// LastSeen is the number of seconds since the backend last heard from
	// the arduino board.
	LastSeen *float64
}

// Device returns the readings for d, or zero readings if d did not report.
func (s Snapshot) Device(d Device) Readings {
	return s.Devices[d]
}

// Row is one entry of the merged telemetry history.
type Row struct {
	Timestamp time.Time
	Source    Device
	Speed     float64
	IR1       *float64
	IR2       *float64
	Piezo     *float64
	Relay     *bool
}

// latestWire mirrors the /api/latest/ payload. Pointers distinguish missing
// fields from zero values.
type latestWire struct {
	IsConnected *bool       `json:"is_connected"`
	NodeMCUIP   *string     `json:"nodemcu_ip"`
	Arduino     *deviceWire `json:"arduino"`
	NodeMCU     *deviceWire `json:"nodemcu"`
	LatencyDiff *float64    `json:"latency_diff"`
	LastSeen    *float64    `json:"last_seen"`
}

type deviceWire struct {
	IR1          *float64 `json:"ir1"`
	IR2          *float64 `json:"ir2"`
	Speed        *float64 `json:"speed"`
	Piezo        *float64 `json:"piezo"`
	ArduinoRelay *bool    `json:"arduino_relay"`
	PiezoRelay   *bool    `json:"piezo_relay"`
	NodeMCURelay *bool    `json:"nodemcu_relay"`
}

type recentWire struct {
	TableRows *[]rowWire `json:"table_rows"`
}

type rowWire struct {
	Timestamp    string   `json:"timestamp"`
	Source       string   `json:"source"`
	Speed        *float64 `json:"speed"`
	IR1          *float64 `json:"ir1"`
	IR2          *float64 `json:"ir2"`
	Piezo        *float64 `json:"piezo"`
	ArduinoRelay *bool    `json:"arduino_relay"`
	NodeMCURelay *bool    `json:"nodemcu_relay"`
}

// DecodeSnapshot parses a /api/latest/ body.
//
// is_connected, arduino and nodemcu are required; a body without them is
// reported as [ErrMalformed]. A missing or null speed/piezo reads as zero.
func DecodeSnapshot(body []byte) (*Snapshot, error) {
	var w latestWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case w.IsConnected == nil:
		return nil, fmt.Errorf("%w: missing is_connected", ErrMalformed)
	case w.Arduino == nil:
		return nil, fmt.Errorf("%w: missing arduino", ErrMalformed)
	case w.NodeMCU == nil:
		return nil, fmt.Errorf("%w: missing nodemcu", ErrMalformed)
	}

	arduino := w.Arduino.readings()
	arduino.Relay = w.Arduino.ArduinoRelay
	nodemcu := w.NodeMCU.readings()
	nodemcu.Relay = w.NodeMCU.NodeMCURelay

	return &Snapshot{
		Connected: *w.IsConnected,
		DeviceIP:  w.NodeMCUIP,
		Devices: map[Device]Readings{
			DeviceArduino: arduino,
			DeviceNodeMCU: nodemcu,
		},
		LatencyDiff: w.LatencyDiff,
		LastSeen:    w.LastSeen,
	}, nil
}

func (d *deviceWire) readings() Readings {
	r := Readings{
		IR1:        d.IR1,
		IR2:        d.IR2,
		PiezoRelay: d.PiezoRelay,
	}
	if d.Speed != nil {
		r.Speed = *d.Speed
	}
	if d.Piezo != nil {
		r.Piezo = *d.Piezo
	}
	return r
}

// isoLocalLayout is an ISO 8601 timestamp without a UTC offset, as written by
// a backend that stores naive datetimes.
const isoLocalLayout = "2006-01-02T15:04:05.999999999"

// parseTimestamp accepts RFC 3339 timestamps and offset-less ISO timestamps.
// The latter are read as UTC.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(isoLocalLayout, s, time.UTC)
}

// DecodeRows parses a /api/recent/ body. Row order is preserved.
func DecodeRows(body []byte) ([]Row, error) {
	var w recentWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.TableRows == nil {
		return nil, fmt.Errorf("%w: missing table_rows", ErrMalformed)
	}

	rows := make([]Row, 0, len(*w.TableRows))
	for i, rw := range *w.TableRows {
		ts, err := parseTimestamp(rw.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: table_rows[%d]: invalid timestamp %q", ErrMalformed, i, rw.Timestamp)
		}
		row := Row{
			Timestamp: ts,
			Source:    Device(rw.Source),
			IR1:       rw.IR1,
			IR2:       rw.IR2,
			Piezo:     rw.Piezo,
		}
		if rw.Speed != nil {
			row.Speed = *rw.Speed
		}
		switch row.Source {
		case DeviceArduino:
			row.Relay = rw.ArduinoRelay
		case DeviceNodeMCU:
			row.Relay = rw.NodeMCURelay
		}
		rows = append(rows, row)
	}
	return rows, nil
}
