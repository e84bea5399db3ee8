// Package reader drives a particulate sampler on a fixed schedule,
// persists each averaged reading, and tracks the device status
// reported over the API.
package reader

import (
	"context"
	"sync"
	"time"

	"github.com/inactivist/aqimon/pkg/epa"
	"github.com/inactivist/aqimon/pkg/logging"
	"github.com/inactivist/aqimon/pkg/model"
	"github.com/inactivist/aqimon/pkg/store"
)

// Reader samples on an interval and records results. It is IDLE
// between cycles, READING while a sample is in flight, and ERRORING
// after a failed cycle until the next success.
type Reader struct {
	sampler  Sampler
	store    *store.Store
	interval time.Duration
	log      *logging.Logger

	// Retention bounds how much history survives after a successful
	// append. Zero keeps everything.
	Retention time.Duration

	mu     sync.Mutex
	status model.DeviceStatus
}

// New returns an idle Reader that samples every interval once Run is
// called.
func New(sampler Sampler, st *store.Store, interval time.Duration, log *logging.Logger) *Reader {
	return &Reader{
		sampler:  sampler,
		store:    st,
		interval: interval,
		log:      log,
		status:   model.DeviceStatus{State: model.StateIdle},
	}
}

// Status reports the current reader state and the exception recorded
// by the most recent failure, if any.
func (r *Reader) Status() model.DeviceStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Run samples immediately, then on every interval tick until ctx is
// canceled.
func (r *Reader) Run(ctx context.Context) {
	r.log.Infow("reader started", "interval", r.interval)
	r.cycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Infow("reader stopped")
			return
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Reader) cycle(ctx context.Context) {
	r.setState(model.StateReading)

	sample, err := r.sampler.Sample(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Errorw("sample failed", "error", err)
		r.fail(err)
		return
	}

	now := time.Now().UTC()
	reading := model.Reading{
		T:    now.UnixMilli(),
		EPA:  epa.AQI(sample.PM25, sample.PM10),
		PM25: sample.PM25,
		PM10: sample.PM10,
	}
	if err := r.store.Append(ctx, reading); err != nil {
		r.log.Errorw("append reading failed", "error", err)
		r.fail(err)
		return
	}
	r.succeed()
	r.log.Infow("reading recorded",
		"epa", reading.EPA, "pm25", sample.PM25, "pm10", sample.PM10)

	if r.Retention > 0 {
		removed, err := r.store.Prune(ctx, now.Add(-r.Retention))
		if err != nil {
			r.log.Warnw("prune failed", "error", err)
		} else if removed > 0 {
			r.log.Debugw("pruned readings", "removed", removed)
		}
	}
}

// setState changes the state while keeping any recorded exception, so
// a retry shows READING without discarding the last error string.
func (r *Reader) setState(state model.ReaderState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.State = state
}

func (r *Reader) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = model.DeviceStatus{State: model.StateFailing, LastException: err.Error()}
}

func (r *Reader) succeed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = model.DeviceStatus{State: model.StateIdle}
}
