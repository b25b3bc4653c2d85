package grantkit

import (
	"context"

	"github.com/rs/zerolog"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// newTestManager builds an AccessManager over in-memory backends, with no
// dispatcher so mutations do not trigger reactions.
func newTestManager(store *MemDocumentStore, groups *MemGroupService, auth *MemAuthorizer) *AccessManager {
	helper := NewHelper(store, zerolog.Nop())
	return NewAccessManager(helper, store, groups, auth, NewLevelRegistry(), nil, zerolog.Nop())
}

// newTestFacade builds an EntityAccess over in-memory backends, with no
// dispatcher so mutations do not trigger reactions.
func newTestFacade(store *MemDocumentStore, groups *MemGroupService, auth *MemAuthorizer, entity *Entity) *EntityAccess {
	levels := NewLevelRegistry()
	vis := NewVisibilityRegistry(levels)
	helper := NewHelper(store, zerolog.Nop())
	manager := NewAccessManager(helper, store, groups, auth, levels, nil, zerolog.Nop())
	vm := NewVisibilityManager(helper, store, vis, nil, zerolog.Nop())
	return NewEntityAccess(entity, manager, vm, levels)
}

// newTestService wires a full Service over in-memory backends.
func newTestService() (*Service, *MemDocumentStore, *MemGroupService, *MemAuthorizer) {
	store := NewMemDocumentStore()
	groups := NewMemGroupService()
	auth := NewMemAuthorizer()
	return NewService(store, groups, auth), store, groups, auth
}

// seedOwner commits an owner reference directly onto an entity document.
func seedOwner(store *MemDocumentStore, entityRef, ownerRef string) {
	ctx := context.Background()
	_ = store.SetProperty(ctx, entityRef, ClassOwner, PropOwner, ownerRef)
	_ = store.Save(ctx, entityRef, "seed owner")
}

// seedCollaborators commits collaborator records directly onto an entity
// document.
func seedCollaborators(store *MemDocumentStore, entityRef string, grants ...[2]string) {
	ctx := context.Background()
	objects := make([]PropertyBag, 0, len(grants))
	for _, g := range grants {
		objects = append(objects, PropertyBag{FieldCollaborator: g[0], FieldAccess: g[1]})
	}
	_ = store.SetObjects(ctx, entityRef, ClassCollaborator, objects)
	_ = store.Save(ctx, entityRef, "seed collaborators")
}

// seedVisibility commits a visibility name directly onto an entity document.
func seedVisibility(store *MemDocumentStore, entityRef, name string) {
	ctx := context.Background()
	_ = store.SetProperty(ctx, entityRef, ClassVisibility, PropVisibility, name)
	_ = store.Save(ctx, entityRef, "seed visibility")
}

// seedPreference commits one configuration object onto a profile document.
func seedPreference(store *MemDocumentStore, docRef, property, value string) {
	ctx := context.Background()
	existing, _ := store.Objects(ctx, docRef, ClassConfiguration)
	existing = append(existing, PropertyBag{FieldProperty: property, FieldValue: value})
	_ = store.SetObjects(ctx, docRef, ClassConfiguration, existing)
	_ = store.Save(ctx, docRef, "seed preference")
}
