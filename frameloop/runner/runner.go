// Package runner drives a Controller and a Backend on the same scheduler.
package runner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/valerio/go-frameloop/frameloop"
	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/input"
	"github.com/valerio/go-frameloop/frameloop/input/action"
	"github.com/valerio/go-frameloop/frameloop/input/event"
	"github.com/valerio/go-frameloop/frameloop/timing"
)

const (
	// MinRefreshStep is how much one tuning key press moves the min refresh.
	MinRefreshStep = 50 * time.Millisecond

	// SmoothingStep is how much one tuning key press moves the smoothing.
	SmoothingStep = 0.05
)

// Runner pumps the backend once per scheduler tick and maps the input it
// reports onto the controller.
type Runner struct {
	scheduler timing.Runner
	backend   backend.Backend
	ctrl      *frameloop.Controller
	input     *input.Manager
	autoStart bool

	animated bool
	cancel   context.CancelFunc
	done     bool
	err      error
}

type Option func(*Runner)

// WithoutAutoStart leaves the controller idle until a LoopToggle or
// LoopRestart action arrives.
func WithoutAutoStart() Option {
	return func(r *Runner) { r.autoStart = false }
}

// WithControllerOptions forwards options to frameloop.New.
func WithControllerOptions(opts ...frameloop.Option) Option {
	return func(r *Runner) {
		r.ctrl = frameloop.New(r.scheduler, opts...)
	}
}

func New(scheduler timing.Runner, b backend.Backend, opts ...Option) *Runner {
	r := &Runner{
		scheduler: scheduler,
		backend:   b,
		input:     input.NewManager(),
		autoStart: true,
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.ctrl == nil {
		r.ctrl = frameloop.New(scheduler)
	}

	r.ctrl.On(frameloop.EventAnimate, func(frameloop.Data) { r.animated = true })
	r.setupInputHandlers()

	return r
}

// Controller returns the driven controller. Only touch it from listeners or
// work submitted to the scheduler once Run is in progress.
func (r *Runner) Controller() *frameloop.Controller {
	return r.ctrl
}

// Input returns the manager backend actions are dispatched through, so
// callers can bind extra callbacks.
func (r *Runner) Input() *input.Manager {
	return r.input
}

// Run initializes the backend and blocks until ctx is done, the backend asks
// to quit, or an update fails.
func (r *Runner) Run(ctx context.Context, config backend.Config) error {
	if err := r.backend.Init(config); err != nil {
		return err
	}
	defer func() {
		if err := r.backend.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()

	ctx, r.cancel = context.WithCancel(ctx)
	defer r.cancel()

	if r.autoStart {
		r.ctrl.Start()
	}
	r.scheduler.ScheduleNextFrame(r.pump)

	err := r.scheduler.Run(ctx)
	if r.err != nil {
		err = r.err
	}

	slog.Info("Frame loop finished", "data", r.ctrl.Data().String())
	return err
}

// Quit ends Run after the current tick.
func (r *Runner) Quit() {
	r.done = true
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) pump() {
	if r.done {
		return
	}

	frame := backend.NewFrame(r.ctrl, r.animated)
	r.animated = false

	events, err := r.backend.Update(frame)
	if err != nil {
		slog.Error("Backend update failed", "error", err)
		r.err = err
		r.Quit()
		return
	}

	r.input.TriggerAll(events)
	if r.done {
		return
	}
	r.scheduler.ScheduleNextFrame(r.pump)
}

func (r *Runner) setupInputHandlers() {
	r.input.On(action.LoopToggle, event.Press, func() {
		if r.ctrl.Animating() {
			r.ctrl.Stop()
			return
		}
		r.ctrl.Start()
	})

	r.input.On(action.LoopRestart, event.Press, func() {
		r.ctrl.Restart()
	})

	r.input.On(action.LoopQuit, event.Press, func() {
		slog.Info("Quit requested")
		r.Quit()
	})

	r.input.On(action.MinRefreshIncrease, event.Press, func() {
		r.setMinRefresh(r.ctrl.MinRefresh() + MinRefreshStep)
	})

	r.input.On(action.MinRefreshDecrease, event.Press, func() {
		r.setMinRefresh(max(0, r.ctrl.MinRefresh()-MinRefreshStep))
	})

	r.input.On(action.SmoothingIncrease, event.Press, func() {
		r.setSmoothing(r.ctrl.FPSSmoothing() + SmoothingStep)
	})

	r.input.On(action.SmoothingDecrease, event.Press, func() {
		r.setSmoothing(r.ctrl.FPSSmoothing() - SmoothingStep)
	})
}

func (r *Runner) setMinRefresh(d time.Duration) {
	r.ctrl.SetMinRefresh(d)
	slog.Debug("Min refresh changed", "min_refresh", r.ctrl.MinRefresh())
}

func (r *Runner) setSmoothing(coefficient float64) {
	// keep key presses on the 0.05 grid
	r.ctrl.SetFPSSmoothing(math.Round(coefficient*100) / 100)
	slog.Debug("FPS smoothing changed", "fps_smoothing", r.ctrl.FPSSmoothing())
}
