package timing

import (
	"context"
	"time"
)

// Ticker uses time.Ticker for simple, consistent frame timing.
// Less accurate than Adaptive but simpler and good enough for most cases.
type Ticker struct {
	q        queue
	interval time.Duration
}

// NewTicker paces at fps, never faster than one tick per nanosecond.
func NewTicker(fps float64) *Ticker {
	return &Ticker{interval: max(FrameDuration(fps), time.Nanosecond)}
}

func (t *Ticker) ScheduleNextFrame(callback func()) {
	t.q.scheduleFrame(callback)
}

// Submit queues fn to run on the loop goroutine before the next frame.
func (t *Ticker) Submit(fn func()) {
	t.q.submit(fn)
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Run ticks until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.q.tick()
		}
	}
}
