// Package events delivers engine events to front-end handlers. Dispatch is
// single pass: handlers cannot emit further events.
package events

import (
	"sync"

	"github.com/nathoo/quizshot/types"
)

// Handler reacts to one event.
type Handler func(types.Event)

// Dispatcher routes events to the handlers registered for their type.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	catchAll []Handler
}

// NewDispatcher returns a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// On registers h for events of eventType. An empty eventType matches all events.
func (d *Dispatcher) On(eventType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if eventType == "" {
		d.catchAll = append(d.catchAll, h)
		return
	}
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Dispatch calls matching handlers for each event, in event order and then
// registration order. It returns the number of handler calls made.
func (d *Dispatcher) Dispatch(evs []types.Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	calls := 0
	for _, ev := range evs {
		for _, h := range d.handlers[ev.Type] {
			h(ev)
			calls++
		}
		for _, h := range d.catchAll {
			h(ev)
			calls++
		}
	}
	return calls
}

// Has reports whether evs contains an event of eventType.
func Has(evs []types.Event, eventType string) bool {
	for _, ev := range evs {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}
