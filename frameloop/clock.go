package frameloop

import "time"

// Clock provides the time source for a Controller. Readings must carry a
// monotonic component so elapsed time never goes backwards on wall clock jumps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock, backed by time.Now.
var SystemClock Clock = systemClock{}
