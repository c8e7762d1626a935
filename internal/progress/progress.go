// Package progress tracks completion counts and estimated time remaining for
// a batch run. The tracker is decoupled from the concurrency engine: the
// executor reports completions, an observer renders them. Rate is a moving
// average over recently completed items and observers are notified no more
// often than a fixed interval, to keep the display stable.
package progress

import (
	"sync"
	"time"
)

// Snapshot is one point-in-time view of a run.
type Snapshot struct {
	Completed int
	Total     int
	Rate      float64 // items per second over the recent window
	ETA       time.Duration
}

// Observer receives snapshots as work completes.
type Observer func(Snapshot)

const (
	// rateWindow is how many recent completion timestamps feed the moving rate.
	rateWindow = 32
	// defaultMinInterval throttles observer notifications.
	defaultMinInterval = 250 * time.Millisecond
)

// Tracker accumulates completions. Safe for concurrent use.
type Tracker struct {
	mu          sync.Mutex
	total       int
	completed   int
	stamps      []time.Time
	observer    Observer
	minInterval time.Duration
	lastNotify  time.Time
	now         func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithObserver registers the snapshot callback.
func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observer = o }
}

// WithMinInterval overrides the notification throttle.
func WithMinInterval(d time.Duration) Option {
	return func(t *Tracker) { t.minInterval = d }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker for total items, completed of which are already
// done (resumed from a checkpoint).
func NewTracker(total, completed int, opts ...Option) *Tracker {
	t := &Tracker{
		total:       total,
		completed:   completed,
		minInterval: defaultMinInterval,
		now:         time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Done records n newly completed items and notifies the observer if the
// throttle interval has elapsed (or the run just finished).
func (t *Tracker) Done(n int) {
	t.mu.Lock()
	now := t.now()
	t.completed += n
	t.stamps = append(t.stamps, now)
	if len(t.stamps) > rateWindow {
		t.stamps = t.stamps[len(t.stamps)-rateWindow:]
	}

	notify := t.observer != nil &&
		(t.completed >= t.total || now.Sub(t.lastNotify) >= t.minInterval)
	if notify {
		t.lastNotify = now
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if notify {
		t.observer(snap)
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{Completed: t.completed, Total: t.total}
	if len(t.stamps) >= 2 {
		span := t.stamps[len(t.stamps)-1].Sub(t.stamps[0])
		if span > 0 {
			snap.Rate = float64(len(t.stamps)-1) / span.Seconds()
		}
	}
	remaining := t.total - t.completed
	if snap.Rate > 0 && remaining > 0 {
		snap.ETA = time.Duration(float64(remaining) / snap.Rate * float64(time.Second))
	}
	return snap
}
