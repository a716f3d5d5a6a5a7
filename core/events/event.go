package events

import "loyaltyledger/core/types"

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, receipts).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

type converter interface {
	Event() *types.Event
}

// ToTypes converts a structured event into the generic payload. Events without
// a conversion are reported with their type and no attributes.
func ToTypes(evt Event) types.Event {
	if evt == nil {
		return types.Event{}
	}
	if c, ok := evt.(converter); ok {
		if out := c.Event(); out != nil {
			return *out
		}
	}
	return types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
}

// Buffer holds the events of an operation until the host decides whether the
// operation commits. Buffer is not safe for concurrent use.
type Buffer struct {
	events []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if evt == nil {
		return
	}
	b.events = append(b.events, evt)
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int { return len(b.events) }

// Drain converts and returns the buffered events, leaving the buffer empty.
func (b *Buffer) Drain() []types.Event {
	out := make([]types.Event, 0, len(b.events))
	for _, evt := range b.events {
		out = append(out, ToTypes(evt))
	}
	b.events = nil
	return out
}

// Discard drops every buffered event.
func (b *Buffer) Discard() {
	b.events = nil
}
