package frameloop

import (
	"fmt"
	"time"
)

// Data is a snapshot of the loop timing state, delivered to every listener.
type Data struct {
	Time      time.Duration // elapsed since the session started
	DeltaTime time.Duration // elapsed minus the previous frame's elapsed
	Count     int           // frames since the session started
	FPS       float64       // smoothed frames per second
}

// TimeMillis returns Time as fractional milliseconds.
func (d Data) TimeMillis() float64 {
	return millis(d.Time)
}

// DeltaMillis returns DeltaTime as fractional milliseconds.
func (d Data) DeltaMillis() float64 {
	return millis(d.DeltaTime)
}

func (d Data) String() string {
	return fmt.Sprintf("time=%.1fms delta=%.2fms count=%d fps=%.2f",
		d.TimeMillis(), d.DeltaMillis(), d.Count, d.FPS)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
