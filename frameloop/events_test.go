package frameloop_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-frameloop/frameloop"
)

func TestEmitter_Order(t *testing.T) {
	e := frameloop.NewEmitter()
	var calls []string

	e.On(frameloop.EventAnimate, func(frameloop.Data) { calls = append(calls, "first") })
	e.On(frameloop.EventAnimate, func(frameloop.Data) { calls = append(calls, "second") })
	e.On(frameloop.EventStop, func(frameloop.Data) { calls = append(calls, "stop") })

	e.Emit(frameloop.EventAnimate, frameloop.Data{})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEmitter_PassesData(t *testing.T) {
	e := frameloop.NewEmitter()
	want := frameloop.Data{Time: time.Second, DeltaTime: 16 * time.Millisecond, Count: 60, FPS: 62.5}

	var got frameloop.Data
	e.On(frameloop.EventAnimate, func(d frameloop.Data) { got = d })
	e.Emit(frameloop.EventAnimate, want)

	assert.Equal(t, want, got)
}

func TestEmitter_Once(t *testing.T) {
	e := frameloop.NewEmitter()
	once, always := 0, 0

	e.Once(frameloop.EventStart, func(frameloop.Data) { once++ })
	e.On(frameloop.EventStart, func(frameloop.Data) { always++ })
	assert.Equal(t, 2, e.ListenerCount(frameloop.EventStart))

	e.Emit(frameloop.EventStart, frameloop.Data{})
	e.Emit(frameloop.EventStart, frameloop.Data{})

	assert.Equal(t, 1, once)
	assert.Equal(t, 2, always)
	assert.Equal(t, 1, e.ListenerCount(frameloop.EventStart))
}

func TestEmitter_OnceReentrantEmit(t *testing.T) {
	e := frameloop.NewEmitter()
	calls := 0

	e.Once(frameloop.EventStop, func(frameloop.Data) {
		calls++
		e.Emit(frameloop.EventStop, frameloop.Data{})
	})
	e.Emit(frameloop.EventStop, frameloop.Data{})

	assert.Equal(t, 1, calls)
}

func TestEmitter_ListenerAddedDuringEmit(t *testing.T) {
	e := frameloop.NewEmitter()
	late := 0

	e.On(frameloop.EventAnimate, func(frameloop.Data) {
		e.On(frameloop.EventAnimate, func(frameloop.Data) { late++ })
	})

	e.Emit(frameloop.EventAnimate, frameloop.Data{})
	assert.Equal(t, 0, late, "listener added during emit must wait for the next one")

	e.Emit(frameloop.EventAnimate, frameloop.Data{})
	assert.Equal(t, 1, late)
}

func TestEmitter_RemoveAll(t *testing.T) {
	e := frameloop.NewEmitter()
	calls := 0
	e.On(frameloop.EventAnimate, func(frameloop.Data) { calls++ })

	e.RemoveAll(frameloop.EventAnimate)
	e.Emit(frameloop.EventAnimate, frameloop.Data{})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, e.ListenerCount(frameloop.EventAnimate))
}

func TestEmitter_ZeroValueAndNilListener(t *testing.T) {
	var e frameloop.Emitter

	assert.NotPanics(t, func() { e.Emit(frameloop.EventStart, frameloop.Data{}) })

	e.On(frameloop.EventStart, nil)
	assert.Equal(t, 0, e.ListenerCount(frameloop.EventStart))

	calls := 0
	e.On(frameloop.EventStart, func(frameloop.Data) { calls++ })
	e.Emit(frameloop.EventStart, frameloop.Data{})
	assert.Equal(t, 1, calls)
}

func TestEmitterImplementsNotifier(t *testing.T) {
	var _ frameloop.Notifier = (*frameloop.Emitter)(nil)
}

func TestData_Millis(t *testing.T) {
	d := frameloop.Data{Time: 1500 * time.Microsecond, DeltaTime: 16 * time.Millisecond, Count: 3, FPS: 62.5}

	assert.InDelta(t, 1.5, d.TimeMillis(), 1e-12)
	assert.InDelta(t, 16.0, d.DeltaMillis(), 1e-12)
	assert.Equal(t, "time=1.5ms delta=16.00ms count=3 fps=62.50", d.String())
}
