package backend

import (
	"log/slog"
	"time"

	"github.com/valerio/go-frameloop/frameloop"
	"github.com/valerio/go-frameloop/frameloop/input/action"
	"github.com/valerio/go-frameloop/frameloop/input/event"
)

// Backend represents an output for a running frame loop.
// Backends are responsible for:
// - Presenting each frame's loop data (terminal HUD, broker, log file, etc.)
// - Translating platform-specific input to InputEvents
// - Handling backend-specific features (snapshots, log panes)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config Config) error

	// Update is called once per scheduler tick with the latest loop state.
	// Backends should:
	// 1. Poll for platform-specific events (keyboard, signals, etc.)
	// 2. Present the frame
	// 3. Return the input events collected since the previous call
	Update(frame Frame) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title     string
	ShowDebug bool       // Backends may ignore unsupported features
	LogLevel  slog.Level // Initial level for backends that install a log handler
}

// InputEvent is an action reported by a backend
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Frame is what a backend receives on every tick.
type Frame struct {
	Data         frameloop.Data
	Animating    bool // the controller is running
	Animated     bool // an animate event fired since the previous tick
	MinRefresh   time.Duration
	FPSSmoothing float64
}

// NewFrame captures the current state of c.
func NewFrame(c *frameloop.Controller, animated bool) Frame {
	return Frame{
		Data:         c.Data(),
		Animating:    c.Animating(),
		Animated:     animated,
		MinRefresh:   c.MinRefresh(),
		FPSSmoothing: c.FPSSmoothing(),
	}
}
