package engine

import (
	"context"
	"sync"
	"time"
)

// ThroughputDeltaThreshold is the minimum fractional change in throughput
// (relative to the previous sample) the tuner treats as a meaningful signal
// rather than noise. After an increase, capacity is raised again only if
// throughput rose by more than this fraction; after a decrease, capacity is
// lowered again unless throughput fell by more than this fraction.
const ThroughputDeltaThreshold = 0.05

// slackMargin is how far below current capacity avg_parallelism must sit
// before the tuner considers the executor to have spare capacity and steps
// parallelism down (P - slackMargin, per the control law).
const slackMargin = 2

// zeroDurationPollInterval is the wait interval used whenever the observed
// avg_duration is zero (no completed jobs yet to measure).
const zeroDurationPollInterval = 20 * time.Millisecond

// Sample is one observation of executor throughput and load, reported by a
// Sensor.
type Sample struct {
	// Throughput is completed job-seconds per wall-second over a trailing
	// window (boxed throughput): approximately min(P, offered_load).
	Throughput float64
	// AvgDuration is the mean task duration over the same window.
	AvgDuration time.Duration
	// AvgParallelism is the mean observed parallelism-at-dispatch over the
	// same window.
	AvgParallelism float64
}

// Sensor reports executor performance to the tuner. This package provides no
// implementation of its own; tests inject a fake that scripts a sequence of
// samples.
type Sensor interface {
	Sample() Sample
}

// Scaler is the subset of ManagedExecutor the tuner needs to act on.
type Scaler interface {
	Capacity() int
	SetParallelism(n int) error
}

// direction records which way the tuner last moved capacity, for the
// hysteresis-based escalation check.
type direction int

const (
	dirNone direction = iota
	dirUp
	dirDown
)

// Tuner periodically samples a Sensor and adjusts a Scaler's parallelism
// using a throughput-driven control law: the wait interval between
// decisions is derived from the observed average task duration (so the
// tuner never reacts faster than work actually completes, falling back to
// zeroDurationPollInterval before any job has completed). Every tick acts:
// if avg_parallelism trails capacity by more than slackMargin there is
// slack and the tuner steps down; otherwise it escalates or reverses its
// last move based on whether throughput actually moved by more than
// ThroughputDeltaThreshold since the last action.
type Tuner struct {
	sensor Sensor
	scaler Scaler
	min    int
	max    int

	mu             sync.Mutex
	lastThroughput float64
	lastDirection  direction
	running        bool
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

// NewTuner builds a tuner bounding capacity to [min,max].
func NewTuner(sensor Sensor, scaler Scaler, minCapacity, maxCapacity int) *Tuner {
	if minCapacity < 1 {
		minCapacity = 1
	}
	if maxCapacity < minCapacity {
		maxCapacity = minCapacity
	}
	return &Tuner{sensor: sensor, scaler: scaler, min: minCapacity, max: maxCapacity}
}

// Start begins the tuning loop in a background goroutine. Calling Start on
// an already-running Tuner is a no-op.
func (t *Tuner) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.loop(loopCtx)
}

// Stop ends the tuning loop and waits for it to exit.
func (t *Tuner) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel := t.cancel
	t.running = false
	t.mu.Unlock()

	cancel()
	t.wg.Wait()
}

func (t *Tuner) loop(ctx context.Context) {
	defer t.wg.Done()

	wait := zeroDurationPollInterval
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			wait = t.tick()
			timer.Reset(wait)
		}
	}
}

// tick runs one control-law decision and returns the wait interval to use
// before the next one. Every tick takes an action: either the executor has
// slack and steps down, or the tuner escalates/reverses its previous move
// based on the throughput delta since that move.
func (t *Tuner) tick() time.Duration {
	sample := t.sensor.Sample()
	capacity := t.scaler.Capacity()

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case sample.AvgParallelism < float64(capacity-slackMargin):
		t.decrementLocked(sample.Throughput)
	case t.lastDirection == dirNone:
		// First action ever.
		t.incrementLocked(sample.Throughput)
	case t.lastDirection == dirUp:
		if t.deltaLocked(sample.Throughput) > ThroughputDeltaThreshold {
			t.incrementLocked(sample.Throughput)
		} else {
			// Overshot: the last increase didn't pay for itself.
			t.decrementLocked(sample.Throughput)
		}
	default: // dirDown
		if t.deltaLocked(sample.Throughput) > -ThroughputDeltaThreshold {
			// Cheap: the last decrease barely cost any throughput.
			t.decrementLocked(sample.Throughput)
		} else {
			// Cut too much: give a slot back.
			t.incrementLocked(sample.Throughput)
		}
	}

	wait := 8 * sample.AvgDuration
	if wait <= 0 {
		wait = zeroDurationPollInterval
	}
	return wait
}

// deltaLocked returns the fractional change of throughput relative to the
// last recorded sample. Must be called with mu held.
func (t *Tuner) deltaLocked(throughput float64) float64 {
	if t.lastThroughput == 0 {
		return 1
	}
	return (throughput - t.lastThroughput) / t.lastThroughput
}

// incrementLocked raises capacity by one, clamped to max. Must be called
// with mu held.
func (t *Tuner) incrementLocked(throughput float64) {
	t.stepLocked(1, throughput)
}

// decrementLocked lowers capacity by one, clamped to min, but only if the
// executor's current capacity is above 1; per spec.md §4.9 step 4,
// DecrementParallelism below 1 capacity is a no-op that resets the last
// action to None rather than recording a Decrease. Must be called with mu
// held.
func (t *Tuner) decrementLocked(throughput float64) {
	if t.scaler.Capacity() <= 1 {
		t.lastThroughput = throughput
		t.lastDirection = dirNone
		return
	}
	t.stepLocked(-1, throughput)
}

// stepLocked changes capacity by delta (+1 or -1), clamped to [min,max], and
// records the resulting direction and throughput for the next tick's
// hysteresis check. Must be called with mu held.
func (t *Tuner) stepLocked(delta int, throughput float64) {
	current := t.scaler.Capacity()
	next := current + delta
	if next < t.min {
		next = t.min
	}
	if next > t.max {
		next = t.max
	}
	if next != current {
		_ = t.scaler.SetParallelism(next)
	}
	t.lastThroughput = throughput
	if delta > 0 {
		t.lastDirection = dirUp
	} else if delta < 0 {
		t.lastDirection = dirDown
	}
}
