package grantkit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// EventKind identifies the event streams this engine listens to and emits.
type EventKind string

const (
	// EventEntityCreated fires once when a new entity record is created.
	EventEntityCreated EventKind = "entity-created"

	// EventRightsUpdated fires after owner, collaborators or visibility
	// changed on an entity; Types carries which of them did.
	EventRightsUpdated EventKind = "rights-updated"

	// EventStudyUpdated fires after the entity's study assignment changed.
	EventStudyUpdated EventKind = "study-updated"
)

// RightsUpdateType tags the sub-kind of a rights-updated event.
type RightsUpdateType string

const (
	RightsOwner         RightsUpdateType = "owner"
	RightsCollaborators RightsUpdateType = "collaborators"
	RightsVisibility    RightsUpdateType = "visibility"
)

// Event is a single occurrence published on the dispatcher.
type Event struct {
	ID     uuid.UUID
	Kind   EventKind
	Entity *Entity
	Actor  string // acting user's reference, may be empty
	Types  []RightsUpdateType
}

// NewEvent creates an event with a fresh ID.
func NewEvent(kind EventKind, entity *Entity, actor string, types ...RightsUpdateType) Event {
	return Event{
		ID:     uuid.New(),
		Kind:   kind,
		Entity: entity,
		Actor:  actor,
		Types:  types,
	}
}

// Has reports whether the event carries the given rights-update tag.
func (e Event) Has(t RightsUpdateType) bool {
	for _, candidate := range e.Types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Handler is a subscribed reaction to events of one kind.
type Handler func(ctx context.Context, event Event)

// Dispatcher is a typed event-dispatch table keyed by event kind. Handlers
// are registered explicitly at wiring time and invoked synchronously, in
// registration order, on the publisher's goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind][]Handler)}
}

// Subscribe registers a handler for one event kind.
func (d *Dispatcher) Subscribe(kind EventKind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// Publish delivers the event to every handler subscribed to its kind.
func (d *Dispatcher) Publish(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := d.handlers[event.Kind]
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
