package grantkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDispatcherDeliversInOrder verifies synchronous, registration-ordered
// delivery.
func TestDispatcherDeliversInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Subscribe(EventRightsUpdated, func(ctx context.Context, e Event) {
		order = append(order, "first")
	})
	d.Subscribe(EventRightsUpdated, func(ctx context.Context, e Event) {
		order = append(order, "second")
	})

	d.Publish(context.Background(), NewEvent(EventRightsUpdated, &Entity{Ref: "records/r1"}, "users/alice"))
	assert.Equal(t, []string{"first", "second"}, order)
}

// TestDispatcherFiltersByKind verifies handlers only see their own kind.
func TestDispatcherFiltersByKind(t *testing.T) {
	d := NewDispatcher()
	created, updated := 0, 0

	d.Subscribe(EventEntityCreated, func(ctx context.Context, e Event) { created++ })
	d.Subscribe(EventRightsUpdated, func(ctx context.Context, e Event) { updated++ })

	entity := &Entity{Ref: "records/r1"}
	d.Publish(context.Background(), NewEvent(EventEntityCreated, entity, ""))
	d.Publish(context.Background(), NewEvent(EventEntityCreated, entity, ""))
	d.Publish(context.Background(), NewEvent(EventRightsUpdated, entity, ""))

	assert.Equal(t, 2, created)
	assert.Equal(t, 1, updated)
}

// TestDispatcherNoSubscribers verifies publishing into the void is safe.
func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Publish(context.Background(), NewEvent(EventStudyUpdated, &Entity{Ref: "records/r1"}, ""))
	})
}

// TestEventHas verifies rights-update tag membership.
func TestEventHas(t *testing.T) {
	e := NewEvent(EventRightsUpdated, &Entity{Ref: "records/r1"}, "users/alice", RightsOwner, RightsCollaborators)

	assert.True(t, e.Has(RightsOwner))
	assert.True(t, e.Has(RightsCollaborators))
	assert.False(t, e.Has(RightsVisibility))
}

// TestEventIDsUnique verifies every event carries a fresh ID.
func TestEventIDsUnique(t *testing.T) {
	a := NewEvent(EventEntityCreated, nil, "")
	b := NewEvent(EventEntityCreated, nil, "")
	assert.NotEqual(t, a.ID, b.ID)
}
