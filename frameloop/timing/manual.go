package timing

import "context"

// Manual is a scheduler that only advances when stepped. Tests use it to
// drive frames deterministically; Run steps as fast as possible.
type Manual struct {
	q     queue
	steps int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) ScheduleNextFrame(callback func()) {
	m.q.scheduleFrame(callback)
}

// Submit queues fn to run at the start of the next step.
func (m *Manual) Submit(fn func()) {
	m.q.submit(fn)
}

// Pending reports whether a step would run anything.
func (m *Manual) Pending() bool {
	return m.q.pending()
}

// Step runs everything due and reports whether a frame callback ran.
func (m *Manual) Step() bool {
	m.steps++
	return m.q.tick() > 0
}

// Steps returns the number of Step calls so far.
func (m *Manual) Steps() int {
	return m.steps
}

// RunFrames steps until n frame callbacks ran or nothing is pending, and
// returns how many ran.
func (m *Manual) RunFrames(n int) int {
	ran := 0
	for ran < n && m.Pending() {
		if m.Step() {
			ran++
		}
	}
	return ran
}

// Run steps until ctx is done or nothing is left to run.
func (m *Manual) Run(ctx context.Context) error {
	for m.Pending() {
		if ctx.Err() != nil {
			return nil
		}
		m.Step()
	}
	return nil
}
