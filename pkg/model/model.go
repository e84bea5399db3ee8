// Package model defines the data types shared by the aqimon server and the
// terminal dashboard: particulate readings, aggregation windows, and the
// reader's self-reported health, together with their JSON wire shapes.
package model

import (
	"fmt"
	"time"
)

// Window selects the server-side aggregation period for readings queries.
type Window int

const (
	WindowAll Window = iota
	WindowHour
	WindowDay
	WindowWeek
)

// String returns the lowercase wire name used in the window query parameter.
func (w Window) String() string {
	switch w {
	case WindowAll:
		return "all"
	case WindowHour:
		return "hour"
	case WindowDay:
		return "day"
	case WindowWeek:
		return "week"
	}
	return fmt.Sprintf("Window(%d)", int(w))
}

// ParseWindow converts a wire name back into a Window. Unknown names are an
// error, never a default.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "all":
		return WindowAll, nil
	case "hour":
		return WindowHour, nil
	case "day":
		return WindowDay, nil
	case "week":
		return WindowWeek, nil
	}
	return 0, fmt.Errorf("unknown window %q", s)
}

// Since returns the start of the window ending at now. The second return is
// false for WindowAll, which has no lower bound.
func (w Window) Since(now time.Time) (time.Time, bool) {
	switch w {
	case WindowHour:
		return now.Add(-time.Hour), true
	case WindowDay:
		return now.Add(-24 * time.Hour), true
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour), true
	}
	return time.Time{}, false
}

// Windows lists the selectable windows in display order.
func Windows() []Window {
	return []Window{WindowAll, WindowHour, WindowDay, WindowWeek}
}

// Reading is one observed particulate sample. T is the observation time in
// Unix milliseconds; EPA is the computed air quality index; PM25 and PM10
// are concentrations in µg/m³.
type Reading struct {
	T    int64   `json:"t"`
	EPA  float64 `json:"epa"`
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
}

// Time converts the reading's millisecond timestamp to a time.Time.
func (r Reading) Time() time.Time {
	return time.UnixMilli(r.T)
}

// IsZero reports whether the reading is the zero value.
func (r Reading) IsZero() bool {
	return r == Reading{}
}

// Series is a chronologically ordered run of readings, oldest first.
type Series []Reading

// Latest returns the last reading of the series, or the zero Reading when
// the series is empty.
func (s Series) Latest() Reading {
	if len(s) == 0 {
		return Reading{}
	}
	return s[len(s)-1]
}

// ReaderState is the sensor reader's lifecycle state.
type ReaderState int

const (
	// StateIdle means the reader is between scheduled read cycles.
	StateIdle ReaderState = iota
	// StateReading means a read cycle is in progress.
	StateReading
	// StateFailing means the most recent read cycle ended in an error.
	StateFailing
)

// String returns a human-readable name for display.
func (s ReaderState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReading:
		return "Reading"
	case StateFailing:
		return "Failing"
	}
	return fmt.Sprintf("ReaderState(%d)", int(s))
}

// WireString returns the uppercase name used on the status endpoint.
func (s ReaderState) WireString() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReading:
		return "READING"
	case StateFailing:
		return "ERRORING"
	}
	return fmt.Sprintf("ReaderState(%d)", int(s))
}

// ParseReaderState converts a status endpoint string into a ReaderState.
// Unrecognized strings are an error, never a default.
func ParseReaderState(s string) (ReaderState, error) {
	switch s {
	case "IDLE":
		return StateIdle, nil
	case "READING":
		return StateReading, nil
	case "ERRORING":
		return StateFailing, nil
	}
	return 0, fmt.Errorf("unknown reader_status %q", s)
}

// DeviceStatus is the reader's self-reported health. LastException is empty
// unless the reader has failed since its last successful cycle.
type DeviceStatus struct {
	State         ReaderState
	LastException string
}

// StatusWire is the JSON shape of the status endpoint. ReaderException is
// null when the reader has no retained failure.
type StatusWire struct {
	ReaderStatus    string  `json:"reader_status"`
	ReaderException *string `json:"reader_exception"`
}

// Wire converts the status into its JSON shape.
func (d DeviceStatus) Wire() StatusWire {
	w := StatusWire{ReaderStatus: d.State.WireString()}
	if d.LastException != "" {
		exc := d.LastException
		w.ReaderException = &exc
	}
	return w
}

// Status decodes the wire shape, rejecting unknown status strings.
func (w StatusWire) Status() (DeviceStatus, error) {
	state, err := ParseReaderState(w.ReaderStatus)
	if err != nil {
		return DeviceStatus{}, err
	}
	d := DeviceStatus{State: state}
	if w.ReaderException != nil {
		d.LastException = *w.ReaderException
	}
	return d, nil
}
