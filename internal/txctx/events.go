package txctx

import (
	abci "github.com/cometbft/cometbft/abci/types"
)

// EventManager collects the events emitted while a transaction executes.
type EventManager struct {
	events []abci.Event
}

func NewEventManager() *EventManager {
	return &EventManager{}
}

func (em *EventManager) EmitEvent(ev abci.Event) {
	em.events = append(em.events, ev)
}

// Events returns the emitted events in emission order.
func (em *EventManager) Events() []abci.Event {
	return append([]abci.Event(nil), em.events...)
}

func NewEvent(typ string, attrs ...abci.EventAttribute) abci.Event {
	return abci.Event{Type: typ, Attributes: attrs}
}

// NewAttribute returns an indexed event attribute.
func NewAttribute(key, value string) abci.EventAttribute {
	return abci.EventAttribute{Key: key, Value: value, Index: true}
}
