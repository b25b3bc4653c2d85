package grantkit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewService tests service construction and wiring.
func TestNewService(t *testing.T) {
	svc, _, _, _ := newTestService()

	assert.NotNil(t, svc.Levels())
	assert.NotNil(t, svc.Visibilities())
	assert.NotNil(t, svc.Dispatcher())
	assert.NotNil(t, svc.Manager())
	assert.NotNil(t, svc.VisibilityManager())
	assert.NotNil(t, svc.Preferences())
}

// TestServiceCustomRegistries verifies registry options replace the
// defaults.
func TestServiceCustomRegistries(t *testing.T) {
	levels := NewLevelRegistry()
	assert.NoError(t, levels.Define(AccessLevel{Name: "audit", Rank: 35}))
	vis := NewVisibilityRegistry(levels)

	svc := NewService(NewMemDocumentStore(), NewMemGroupService(), NewMemAuthorizer(),
		WithLevelRegistry(levels),
		WithVisibilityRegistry(vis))

	assert.Same(t, levels, svc.Levels())
	assert.Same(t, vis, svc.Visibilities())
	assert.True(t, svc.Levels().Known("audit"))
}

// TestServiceWithConfig verifies the deployment config applies during
// construction.
func TestServiceWithConfig(t *testing.T) {
	enabled := true
	cfg := &Config{
		Levels:       []LevelConfig{{Name: "audit", Rank: 35, Assignable: true}},
		Visibilities: []VisibilityConfig{{Name: VisibilityOpen, Enabled: &enabled}},
	}

	svc := NewService(NewMemDocumentStore(), NewMemGroupService(), NewMemAuthorizer(),
		WithConfig(cfg))

	assert.True(t, svc.Levels().Known("audit"))
	assert.False(t, svc.Visibilities().Resolve(VisibilityOpen).Disabled)
}

// TestServiceWithConfigDefaultRegistries verifies the config option works
// against the default registries without any registry option present.
func TestServiceWithConfigDefaultRegistries(t *testing.T) {
	cfg := &Config{Levels: []LevelConfig{{Name: "audit", Rank: 35}}}

	var svc *Service
	assert.NotPanics(t, func() {
		svc = NewService(NewMemDocumentStore(), NewMemGroupService(), NewMemAuthorizer(),
			WithConfig(cfg))
	})
	assert.True(t, svc.Levels().Known("audit"))
	assert.NotNil(t, svc.Visibilities())
}

// TestServiceWithConfigOptionOrder verifies the config lands on a custom
// visibility registry even when the config option is listed first.
func TestServiceWithConfigOptionOrder(t *testing.T) {
	enabled := true
	cfg := &Config{Visibilities: []VisibilityConfig{{Name: VisibilityOpen, Enabled: &enabled}}}

	levels := NewLevelRegistry()
	vis := NewVisibilityRegistry(levels)
	svc := NewService(NewMemDocumentStore(), NewMemGroupService(), NewMemAuthorizer(),
		WithConfig(cfg),
		WithLevelRegistry(levels),
		WithVisibilityRegistry(vis))

	assert.Same(t, vis, svc.Visibilities())
	assert.False(t, vis.Resolve(VisibilityOpen).Disabled)
}

// TestServiceResolvers verifies the resolve helpers degrade safely.
func TestServiceResolvers(t *testing.T) {
	svc, _, _, _ := newTestService()

	assert.Equal(t, LevelEdit, svc.ResolveLevel(LevelEdit).Name)
	assert.Equal(t, LevelNone, svc.ResolveLevel("bogus").Name)
	assert.Equal(t, VisibilityPublic, svc.ResolveVisibility(VisibilityPublic).Name)
	assert.Equal(t, VisibilityPrivate, svc.ResolveVisibility("bogus").Name)
}

// TestServiceAccessFacades verifies the facade constructors.
func TestServiceAccessFacades(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()
	entity := &Entity{Ref: "records/r1"}

	seedOwner(store, "records/r1", "users/alice")

	access := svc.Access(entity)
	assert.Same(t, entity, access.Entity())
	assert.Equal(t, "users/alice", access.Owner(ctx).Ref)

	secure := svc.SecureAccess(entity)
	assert.Same(t, entity, secure.Entity())
	assert.False(t, secure.SetOwner(ctx, "users/eve")) // anonymous caller
}

// TestServiceFilterHelpers verifies the filtering pass-throughs.
func TestServiceFilterHelpers(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	seedVisibility(store, "records/a", VisibilityPublic)
	seedVisibility(store, "records/b", VisibilityPrivate)

	entities := []*Entity{{Ref: "records/a"}, {Ref: "records/b"}}
	threshold := svc.ResolveVisibility(VisibilityPublic)

	filtered := svc.FilterByVisibility(ctx, entities, threshold)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "records/a", filtered[0].Ref)

	it := svc.FilterIterator(ctx, NewSliceIterator(entities), threshold)
	assert.True(t, it.HasNext())
	assert.Equal(t, "records/a", it.Next().Ref)
	assert.False(t, it.HasNext())
}

// TestFireEntityCreatedSaveFailure verifies creation reports false and
// discards staged state when the final save fails.
func TestFireEntityCreatedSaveFailure(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := WithCurrentUser(context.Background(), "users/alice")
	entity := &Entity{Ref: "records/r1"}

	store.FailNextSave(errors.New("disk full"))
	assert.False(t, svc.FireEntityCreated(ctx, entity, "users/alice"))

	// Nothing staged survived.
	rights, err := store.Objects(ctx, "records/r1", ClassRights)
	assert.NoError(t, err)
	assert.Empty(t, rights)
}

// TestFireEntityCreatedNilEntity verifies the nil guard.
func TestFireEntityCreatedNilEntity(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.False(t, svc.FireEntityCreated(context.Background(), nil, "users/alice"))
}

// TestServiceExternalSubscriber verifies additional reactions can observe
// engine events through the dispatcher.
func TestServiceExternalSubscriber(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := WithCurrentUser(context.Background(), "users/alice")
	entity := &Entity{Ref: "records/r1"}

	seedOwner(store, "records/r1", "users/alice")

	var kinds []EventKind
	svc.Dispatcher().Subscribe(EventRightsUpdated, func(ctx context.Context, e Event) {
		kinds = append(kinds, e.Kind)
	})

	assert.True(t, svc.Manager().SetOwner(ctx, entity, "users/bob"))
	assert.NotEmpty(t, kinds)
	assert.Equal(t, EventRightsUpdated, kinds[0])
}
