package grantkit

import "context"

// EntityAccess is a per-entity view combining owner, visibility,
// collaborators and access-level queries. It is created on demand and holds
// no state of its own; everything is read from and written to the entity's
// backing document through the managers.
type EntityAccess struct {
	entity     *Entity
	manager    *AccessManager
	visibility *VisibilityManager
	levels     *LevelRegistry
}

// NewEntityAccess creates the facade for one entity.
func NewEntityAccess(entity *Entity, manager *AccessManager, visibility *VisibilityManager,
	levels *LevelRegistry) *EntityAccess {
	return &EntityAccess{
		entity:     entity,
		manager:    manager,
		visibility: visibility,
		levels:     levels,
	}
}

// Entity returns the entity this view is for.
func (a *EntityAccess) Entity() *Entity {
	return a.entity
}

// Owner returns the entity's owner slot.
func (a *EntityAccess) Owner(ctx context.Context) Owner {
	return a.manager.OwnerOf(ctx, a.entity)
}

// IsOwner reports whether the given principal holds the owner slot.
func (a *EntityAccess) IsOwner(ctx context.Context, ref string) bool {
	return a.Owner(ctx).Is(ref)
}

// SetOwner transfers ownership; see AccessManager.SetOwner.
func (a *EntityAccess) SetOwner(ctx context.Context, ref string) bool {
	return a.manager.SetOwner(ctx, a.entity, ref)
}

// Visibility returns the entity's visibility tier.
func (a *EntityAccess) Visibility(ctx context.Context) Visibility {
	return a.visibility.VisibilityOf(ctx, a.entity)
}

// SetVisibility writes the entity's visibility tier.
func (a *EntityAccess) SetVisibility(ctx context.Context, v Visibility) bool {
	return a.visibility.SetVisibility(ctx, a.entity, v)
}

// Collaborators returns the entity's explicit grants.
func (a *EntityAccess) Collaborators(ctx context.Context) []Collaborator {
	return a.manager.Collaborators(ctx, a.entity)
}

// UpdateCollaborators replaces the entity's explicit grants.
func (a *EntityAccess) UpdateCollaborators(ctx context.Context, collaborators []Collaborator) bool {
	return a.manager.SetCollaborators(ctx, a.entity, collaborators)
}

// AddCollaborator upserts a single grant.
func (a *EntityAccess) AddCollaborator(ctx context.Context, collaborator Collaborator) bool {
	return a.manager.AddCollaborator(ctx, a.entity, collaborator)
}

// RemoveCollaborator deletes a single grant.
func (a *EntityAccess) RemoveCollaborator(ctx context.Context, collaborator Collaborator) bool {
	return a.manager.RemoveCollaborator(ctx, a.entity, collaborator)
}

// Level resolves the effective access level for a caller, layering
// visibility on top of the explicit grant graph:
//
//   - an anonymous caller gets owner access only on a genuinely unowned
//     entity, and none otherwise;
//   - the owner and entity administrators get owner access;
//   - everyone else gets the greater of their explicit-grant result and the
//     visibility's default level. Visibility is a floor, never a ceiling.
func (a *EntityAccess) Level(ctx context.Context, ref string) AccessLevel {
	if ref == "" {
		if a.Owner(ctx).IsEmpty() {
			return a.levels.Resolve(LevelOwner)
		}
		return a.levels.None()
	}
	if a.IsOwner(ctx, ref) || a.manager.IsAdministrator(ctx, a.entity, ref) {
		return a.levels.Resolve(LevelOwner)
	}
	granted := a.manager.AccessLevelFor(ctx, a.entity, ref)
	floor := a.Visibility(ctx).Default
	if granted.Compare(floor) > 0 {
		return granted
	}
	return floor
}

// LevelForCurrentUser resolves the effective level for the caller carried in
// the context; an absent caller is treated as anonymous.
func (a *EntityAccess) LevelForCurrentUser(ctx context.Context) AccessLevel {
	return a.Level(ctx, CurrentUser(ctx))
}

// HasLevel reports whether the caller in the context holds at least the
// named level on the entity.
func (a *EntityAccess) HasLevel(ctx context.Context, name string) bool {
	return a.LevelForCurrentUser(ctx).AtLeast(a.levels.Resolve(name))
}
