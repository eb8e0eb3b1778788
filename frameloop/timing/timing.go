package timing

import (
	"context"
	"math"
	"sync"
	"time"
)

// DefaultFPS is the tick rate used when no positive rate is configured.
const DefaultFPS = 60.0

// FrameDuration returns the duration of a single tick at fps frames per second.
// Rates above one tick per nanosecond yield 0.
func FrameDuration(fps float64) time.Duration {
	if math.IsNaN(fps) || fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Runner is a frame scheduler that owns its pacing loop. Frame callbacks and
// submitted work run on the goroutine that calls Run.
type Runner interface {
	ScheduleNextFrame(callback func())
	Submit(fn func())
	Run(ctx context.Context) error
}

// queue holds the callbacks due on the next tick. It is safe for concurrent use.
type queue struct {
	mu     sync.Mutex
	frames []func()
	tasks  []func()
}

func (q *queue) scheduleFrame(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.frames = append(q.frames, fn)
	q.mu.Unlock()
}

func (q *queue) submit(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

func (q *queue) pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames) > 0 || len(q.tasks) > 0
}

// tick runs submitted work, then the frame callbacks that were due when the
// tick began. Anything scheduled while running waits for the next tick.
// Returns the number of frame callbacks run.
func (q *queue) tick() int {
	q.mu.Lock()
	tasks, frames := q.tasks, q.frames
	q.tasks, q.frames = nil, nil
	q.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	for _, fn := range frames {
		fn()
	}
	return len(frames)
}
