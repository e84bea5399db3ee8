package dashboard

import (
	"time"

	"github.com/inactivist/aqimon/pkg/model"
)

// Channel names one of the two polling loops. Each loop keeps its own
// timer; the two are never synchronized.
type Channel int

const (
	ChannelReadings Channel = iota
	ChannelStatus
)

func (c Channel) String() string {
	if c == ChannelStatus {
		return "status"
	}
	return "readings"
}

// Event is the closed set of messages the reconciler handles. The
// unexported marker method keeps the set closed, so the switch in
// reconcile covers every case there is.
type Event interface {
	event()
}

// TickEvent fires when a channel's poll timer elapses, or once per
// channel at startup so the first fetches go out immediately. At
// becomes the model's last observed time.
type TickEvent struct {
	Channel Channel
	At      time.Time
}

// ReadingsEvent delivers the outcome of one readings fetch. Exactly
// one of Series and Err is meaningful.
type ReadingsEvent struct {
	Series model.Series
	Err    error
}

// StatusEvent delivers the outcome of one status fetch.
type StatusEvent struct {
	Status model.DeviceStatus
	Err    error
}

// WindowEvent asks for a different time window.
type WindowEvent struct {
	Window model.Window
}

// HoverEvent replaces the hover selection with the readings under the
// pointer. An empty selection clears it.
type HoverEvent struct {
	Selection []model.Reading
}

func (TickEvent) event()     {}
func (ReadingsEvent) event() {}
func (StatusEvent) event()   {}
func (WindowEvent) event()   {}
func (HoverEvent) event()    {}
