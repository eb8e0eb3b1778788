package frameloop

import (
	"log/slog"
	"math"
	"time"
)

const (
	// DefaultFPSSmoothing is the weight given to the previous FPS estimate.
	DefaultFPSSmoothing = 0.9

	// fpsRampFrames is the number of frames over which smoothing ramps in, so
	// the first estimate is not dominated by a single noisy sample.
	fpsRampFrames = 5
)

// Scheduler runs a callback once, before the next display refresh or the
// equivalent periodic tick.
type Scheduler interface {
	ScheduleNextFrame(callback func())
}

// Controller drives a self re-arming frame callback and tracks the timing of
// the running session.
//
// A Controller is not safe for concurrent use. Call its methods before the
// scheduler starts delivering frames, from listeners, or from work submitted
// to the scheduler's goroutine.
type Controller struct {
	scheduler Scheduler
	clock     Clock
	notifier  Notifier
	logger    *slog.Logger

	// session state
	running        bool
	stopRequested  bool
	restartPending bool
	startTime      time.Time
	elapsed        time.Duration
	delta          time.Duration
	frameCount     int
	fps            float64

	// settings
	fpsSmoothing float64
	minRefresh   time.Duration

	frame func()
	init  func(*Controller)
}

// Option configures a Controller in New.
type Option func(*Controller)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithNotifier replaces the default Emitter.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger pins the logger. Without it the controller logs through
// slog.Default at the time of each message.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMinRefresh sets the minimum delta an accepted frame needs.
func WithMinRefresh(d time.Duration) Option {
	return func(c *Controller) { c.SetMinRefresh(d) }
}

// WithFPSSmoothing sets the weight given to the previous FPS estimate.
func WithFPSSmoothing(coefficient float64) Option {
	return func(c *Controller) { c.SetFPSSmoothing(coefficient) }
}

// WithInit registers a function that receives the controller at the end of
// New, before any event can fire. Use it to register listeners.
func WithInit(fn func(*Controller)) Option {
	return func(c *Controller) { c.init = fn }
}

// New creates an idle Controller that advances itself through scheduler.
func New(scheduler Scheduler, opts ...Option) *Controller {
	if scheduler == nil {
		panic("frameloop: nil scheduler")
	}

	c := &Controller{
		scheduler:    scheduler,
		clock:        SystemClock,
		notifier:     NewEmitter(),
		fpsSmoothing: DefaultFPSSmoothing,
	}
	c.frame = c.animate

	for _, opt := range opts {
		opt(c)
	}

	if c.init != nil {
		c.init(c)
	}

	return c
}

// Start begins a new session. It is a no-op while a session is running.
func (c *Controller) Start() *Controller {
	if !c.running {
		c.start()
	}
	return c
}

// Stop requests the running session to end. The stop takes effect, and the
// stop event fires, on the next frame callback.
func (c *Controller) Stop() *Controller {
	if c.running {
		c.stopRequested = true
	}
	return c
}

// Restart stops the running session and starts a new one from the next frame
// callback. When idle it behaves like Start.
func (c *Controller) Restart() *Controller {
	if c.running {
		c.restartPending = true
		c.stopRequested = true
		return c
	}
	c.start()
	return c
}

// Animating reports whether a session is running, including the final frame
// before a pending stop is observed.
func (c *Controller) Animating() bool {
	return c.running
}

// Data returns the values computed by the most recent frame.
func (c *Controller) Data() Data {
	return Data{
		Time:      c.elapsed,
		DeltaTime: c.delta,
		Count:     c.frameCount,
		FPS:       c.fps,
	}
}

func (c *Controller) MinRefresh() time.Duration {
	return c.minRefresh
}

// SetMinRefresh sets the minimum frame delta for an animate event. Negative
// values are ignored.
func (c *Controller) SetMinRefresh(d time.Duration) {
	if d >= 0 {
		c.minRefresh = d
	}
}

// SetMinRefreshMillis is SetMinRefresh for fractional milliseconds. NaN,
// infinite and negative values are ignored; values beyond the Duration range
// saturate at the longest Duration.
func (c *Controller) SetMinRefreshMillis(ms float64) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return
	}
	ns := ms * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		c.minRefresh = math.MaxInt64
		return
	}
	c.minRefresh = time.Duration(ns)
}

func (c *Controller) FPSSmoothing() float64 {
	return c.fpsSmoothing
}

// SetFPSSmoothing sets the smoothing coefficient. Only finite values strictly
// between 0 and 1 are accepted.
func (c *Controller) SetFPSSmoothing(coefficient float64) {
	if math.IsNaN(coefficient) || coefficient <= 0 || coefficient >= 1 {
		return
	}
	c.fpsSmoothing = coefficient
}

// Notifier returns the notifier events are emitted through.
func (c *Controller) Notifier() Notifier {
	return c.notifier
}

// On registers a persistent listener for event.
func (c *Controller) On(event Event, listener Listener) *Controller {
	c.notifier.On(event, listener)
	return c
}

// Once registers a listener for the next occurrence of event.
func (c *Controller) Once(event Event, listener Listener) *Controller {
	c.notifier.Once(event, listener)
	return c
}

func (c *Controller) start() {
	c.running = true
	c.stopRequested = false
	c.elapsed = 0
	c.delta = 0
	c.frameCount = 0
	c.fps = 0
	c.startTime = c.clock.Now()

	c.log().Debug("Frame loop started")
	c.notifier.Emit(EventStart, c.Data())
	c.scheduler.ScheduleNextFrame(c.frame)
}

// animate is the scheduled frame callback.
func (c *Controller) animate() {
	prev := c.elapsed
	c.elapsed = c.clock.Now().Sub(c.startTime)
	c.delta = c.elapsed - prev
	c.updateFPS()

	if !c.stopRequested {
		c.scheduler.ScheduleNextFrame(c.frame)
		if c.delta >= c.minRefresh {
			c.notifier.Emit(EventAnimate, c.Data())
		} else {
			c.elapsed = prev
		}
		c.frameCount++
		return
	}

	restart := c.restartPending
	c.running = false
	c.stopRequested = false
	c.restartPending = false

	c.notifier.Emit(EventStop, c.Data())

	// a stop listener may already have started a new session
	if c.running {
		return
	}

	// the stopping frame still belongs to the finished session
	c.frameCount++
	c.log().Debug("Frame loop stopped",
		"frames", c.frameCount,
		"elapsed_ms", c.elapsed.Milliseconds(),
		"restart", restart)

	if restart {
		c.start()
	}
}

func (c *Controller) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// updateFPS folds the instantaneous rate of the current frame into the
// running average. Frames without a positive delta carry no rate and are
// skipped.
func (c *Controller) updateFPS() {
	if c.delta <= 0 {
		return
	}
	w := math.Min(1, float64(c.frameCount)/fpsRampFrames) * c.fpsSmoothing
	instant := float64(time.Second) / float64(c.delta)
	c.fps = c.fps*w + (1-w)*instant
}
