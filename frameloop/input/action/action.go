package action

// Action represents input actions that can be performed on the frame loop
type Action int

const (
	// Loop lifecycle
	LoopToggle Action = iota
	LoopRestart
	LoopQuit

	// Tuning
	MinRefreshIncrease
	MinRefreshDecrease
	SmoothingIncrease
	SmoothingDecrease

	// Debug
	Snapshot
	LogLevelIncrease
	LogLevelDecrease
)

// Category groups actions by what they affect
type Category int

const (
	CategoryLifecycle Category = iota
	CategoryTuning
	CategoryDebug
)

// Info describes an action for logs and help text
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	LoopToggle:         {"Start/stop the loop", CategoryLifecycle},
	LoopRestart:        {"Restart the loop", CategoryLifecycle},
	LoopQuit:           {"Quit", CategoryLifecycle},
	MinRefreshIncrease: {"Increase min refresh", CategoryTuning},
	MinRefreshDecrease: {"Decrease min refresh", CategoryTuning},
	SmoothingIncrease:  {"Increase FPS smoothing", CategoryTuning},
	SmoothingDecrease:  {"Decrease FPS smoothing", CategoryTuning},
	Snapshot:           {"Log a data snapshot", CategoryDebug},
	LogLevelIncrease:   {"More verbose logs", CategoryDebug},
	LogLevelDecrease:   {"Less verbose logs", CategoryDebug},
}

// GetInfo returns the description and category of an action
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: "Unknown", Category: CategoryDebug}
}

func (a Action) String() string {
	return GetInfo(a).Description
}
