package input

import "github.com/valerio/go-frameloop/frameloop/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	// Lifecycle
	"Space":  action.LoopToggle,
	"p":      action.LoopToggle, // Alternative key
	"r":      action.LoopRestart,
	"Escape": action.LoopQuit,
	"q":      action.LoopQuit,

	// Tuning
	"+": action.MinRefreshIncrease,
	"=": action.MinRefreshIncrease, // Alternative without shift
	"-": action.MinRefreshDecrease,
	"_": action.MinRefreshDecrease, // Alternative with shift
	"]": action.SmoothingIncrease,
	"[": action.SmoothingDecrease,

	// Debug
	"F9":  action.Snapshot,
	"s":   action.Snapshot,
	"F11": action.LogLevelIncrease,
	"F12": action.LogLevelDecrease,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
