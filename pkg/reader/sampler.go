package reader

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/inactivist/aqimon/pkg/sds011"
)

// Sample is one particulate measurement in ug/m3.
type Sample struct {
	PM25 float64
	PM10 float64
}

// Sampler produces one Sample per call. Implementations may block for
// warmup and multi-read averaging, so they must honor ctx.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// SamplerFunc adapts a plain function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (Sample, error)

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context) (Sample, error) { return f(ctx) }

// SensorSampler reads an SDS011 sensor. Each call wakes the device,
// waits Warmup for the fan to stabilize, averages Samples consecutive
// queries spaced Gap apart, and puts the device back to sleep to
// extend the laser diode's life.
type SensorSampler struct {
	Sensor  *sds011.Sensor
	Warmup  time.Duration
	Samples int
	Gap     time.Duration
}

// Sample performs one wake, warmup, measure, sleep round.
func (s *SensorSampler) Sample(ctx context.Context) (Sample, error) {
	if err := s.Sensor.Wake(); err != nil {
		return Sample{}, fmt.Errorf("wake sensor: %w", err)
	}
	defer func() { _ = s.Sensor.Sleep() }()

	if err := sleepCtx(ctx, s.Warmup); err != nil {
		return Sample{}, err
	}

	count := s.Samples
	if count < 1 {
		count = 1
	}
	var sum Sample
	for i := 0; i < count; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, s.Gap); err != nil {
				return Sample{}, err
			}
		}
		m, err := s.Sensor.Query()
		if err != nil {
			return Sample{}, fmt.Errorf("query sensor: %w", err)
		}
		sum.PM25 += m.PM25
		sum.PM10 += m.PM10
	}
	return Sample{
		PM25: sum.PM25 / float64(count),
		PM10: sum.PM10 / float64(count),
	}, nil
}

// Simulated emits a bounded random walk. It stands in for real
// hardware during development and in the sim reader mode.
type Simulated struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pm25 float64
	pm10 float64
}

// NewSimulated seeds a simulated sampler starting near typical indoor
// air levels.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rng:  rand.New(rand.NewSource(seed)),
		pm25: 8,
		pm10: 15,
	}
}

// Sample advances the walk one step.
func (s *Simulated) Sample(ctx context.Context) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pm25 = step(s.rng, s.pm25, 0.5, 500)
	s.pm10 = step(s.rng, s.pm10, 1.0, 600)
	return Sample{PM25: s.pm25, PM10: s.pm10}, nil
}

func step(rng *rand.Rand, v, scale, max float64) float64 {
	v += (rng.Float64()*2 - 1) * scale
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return v
}

// sleepCtx waits for d or until ctx is canceled, whichever comes
// first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
