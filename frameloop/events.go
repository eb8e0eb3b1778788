package frameloop

// Event names a lifecycle or per-frame notification.
type Event string

const (
	EventStart   Event = "start"   // a session began
	EventAnimate Event = "animate" // an accepted frame
	EventStop    Event = "stop"    // a stop request was observed
)

// Listener receives the loop data for an event.
type Listener func(Data)

// Notifier is the publish/subscribe capability the Controller emits through.
type Notifier interface {
	On(event Event, listener Listener)
	Once(event Event, listener Listener)
	Emit(event Event, data Data)
}

type registration struct {
	listener Listener
	once     bool
}

// Emitter is the default Notifier. Listeners run synchronously in registration
// order on the emitting goroutine. It is not safe for concurrent use.
type Emitter struct {
	handlers map[Event][]registration
}

func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[Event][]registration),
	}
}

// On registers a listener that fires on every emit of event.
func (e *Emitter) On(event Event, listener Listener) {
	e.add(event, listener, false)
}

// Once registers a listener that fires on the next emit of event only.
func (e *Emitter) Once(event Event, listener Listener) {
	e.add(event, listener, true)
}

func (e *Emitter) add(event Event, listener Listener, once bool) {
	if listener == nil {
		return
	}
	if e.handlers == nil {
		e.handlers = make(map[Event][]registration)
	}
	e.handlers[event] = append(e.handlers[event], registration{listener: listener, once: once})
}

// Emit calls the listeners registered for event. Listeners added while the
// emit is in progress are not called until the next emit.
func (e *Emitter) Emit(event Event, data Data) {
	current := e.handlers[event]
	if len(current) == 0 {
		return
	}

	// once-listeners are dropped before any listener runs so that a listener
	// re-emitting the same event cannot fire them twice
	kept := make([]registration, 0, len(current))
	for _, r := range current {
		if !r.once {
			kept = append(kept, r)
		}
	}
	if len(kept) != len(current) {
		e.handlers[event] = kept
	}

	for _, r := range current {
		r.listener(data)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event Event) int {
	return len(e.handlers[event])
}

// RemoveAll drops every listener registered for event.
func (e *Emitter) RemoveAll(event Event) {
	delete(e.handlers, event)
}
