package input

import (
	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/input/action"
	"github.com/valerio/go-frameloop/frameloop/input/event"
)

// Manager handles input actions and their associated callbacks
type Manager struct {
	handlers map[action.Action]map[event.Type][]func()
	debounce *Handler
}

func NewManager() *Manager {
	return &Manager{
		handlers: make(map[action.Action]map[event.Type][]func()),
		debounce: NewHandler(),
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}

	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given input event. Returns false when the event was
// debounced or nothing is registered for it.
func (m *Manager) Trigger(evt backend.InputEvent) bool {
	if !m.debounce.ProcessEvent(evt) {
		return false
	}

	callbacks := m.handlers[evt.Action][evt.Type]
	for _, callback := range callbacks {
		callback()
	}
	return len(callbacks) > 0
}

// TriggerAll handles a batch of events in order.
func (m *Manager) TriggerAll(events []backend.InputEvent) {
	for _, evt := range events {
		m.Trigger(evt)
	}
}
