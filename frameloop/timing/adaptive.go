package timing

import (
	"context"
	"log/slog"
	"time"
)

// Adaptive uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type Adaptive struct {
	q               queue
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptive(fps float64) *Adaptive {
	return &Adaptive{
		targetFrameTime: FrameDuration(fps),
		nextFrameTime:   time.Now(),
	}
}

func (a *Adaptive) ScheduleNextFrame(callback func()) {
	a.q.scheduleFrame(callback)
}

// Submit queues fn to run on the loop goroutine before the next frame.
func (a *Adaptive) Submit(fn func()) {
	a.q.submit(fn)
}

// Run paces ticks until ctx is done.
func (a *Adaptive) Run(ctx context.Context) error {
	a.Reset()
	for {
		if !a.waitForNextFrame(ctx) {
			return nil
		}
		a.q.tick()
	}
}

// Reset restarts pacing from now, useful after pauses.
func (a *Adaptive) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}

func (a *Adaptive) waitForNextFrame(ctx context.Context) bool {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime >= 2*time.Millisecond {
			timer := time.NewTimer(sleepTime - time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return false
			case <-timer.C:
			}
		}
		for time.Now().Before(a.nextFrameTime) {
			// busy-wait the last stretch for accuracy
		}
	} else if sleepTime < -5*time.Millisecond {
		a.nextFrameTime = now
	}

	if ctx.Err() != nil {
		return false
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		drift := time.Since(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction",
				"drift_ms", drift.Milliseconds(),
				"frames", a.frameCounter)
		}
	}
	return true
}
