package grantkit

import "context"

// SecureEntityAccess wraps an EntityAccess and gates every mutating call on
// the caller holding "manage" access. Failed gates return false without
// touching the underlying implementation; reads pass through ungated.
type SecureEntityAccess struct {
	inner  *EntityAccess
	levels *LevelRegistry
}

// NewSecureEntityAccess wraps the given facade.
func NewSecureEntityAccess(inner *EntityAccess, levels *LevelRegistry) *SecureEntityAccess {
	return &SecureEntityAccess{inner: inner, levels: levels}
}

// Entity returns the entity this view is for.
func (s *SecureEntityAccess) Entity() *Entity {
	return s.inner.Entity()
}

// Owner returns the entity's owner slot.
func (s *SecureEntityAccess) Owner(ctx context.Context) Owner {
	return s.inner.Owner(ctx)
}

// IsOwner reports whether the given principal holds the owner slot.
func (s *SecureEntityAccess) IsOwner(ctx context.Context, ref string) bool {
	return s.inner.IsOwner(ctx, ref)
}

// Visibility returns the entity's visibility tier.
func (s *SecureEntityAccess) Visibility(ctx context.Context) Visibility {
	return s.inner.Visibility(ctx)
}

// Collaborators returns the entity's explicit grants.
func (s *SecureEntityAccess) Collaborators(ctx context.Context) []Collaborator {
	return s.inner.Collaborators(ctx)
}

// Level resolves the effective level for a principal.
func (s *SecureEntityAccess) Level(ctx context.Context, ref string) AccessLevel {
	return s.inner.Level(ctx, ref)
}

// LevelForCurrentUser resolves the effective level for the caller in the
// context.
func (s *SecureEntityAccess) LevelForCurrentUser(ctx context.Context) AccessLevel {
	return s.inner.LevelForCurrentUser(ctx)
}

// HasLevel reports whether the caller holds at least the named level.
func (s *SecureEntityAccess) HasLevel(ctx context.Context, name string) bool {
	return s.inner.HasLevel(ctx, name)
}

// SetOwner transfers ownership if the caller may manage the entity.
func (s *SecureEntityAccess) SetOwner(ctx context.Context, ref string) bool {
	return s.canManage(ctx) && s.inner.SetOwner(ctx, ref)
}

// SetVisibility writes the visibility tier if the caller may manage the
// entity.
func (s *SecureEntityAccess) SetVisibility(ctx context.Context, v Visibility) bool {
	return s.canManage(ctx) && s.inner.SetVisibility(ctx, v)
}

// UpdateCollaborators replaces the grants if the caller may manage the
// entity.
func (s *SecureEntityAccess) UpdateCollaborators(ctx context.Context, collaborators []Collaborator) bool {
	return s.canManage(ctx) && s.inner.UpdateCollaborators(ctx, collaborators)
}

// AddCollaborator upserts a grant if the caller may manage the entity.
func (s *SecureEntityAccess) AddCollaborator(ctx context.Context, collaborator Collaborator) bool {
	return s.canManage(ctx) && s.inner.AddCollaborator(ctx, collaborator)
}

// RemoveCollaborator deletes a grant if the caller may manage the entity.
func (s *SecureEntityAccess) RemoveCollaborator(ctx context.Context, collaborator Collaborator) bool {
	return s.canManage(ctx) && s.inner.RemoveCollaborator(ctx, collaborator)
}

func (s *SecureEntityAccess) canManage(ctx context.Context) bool {
	return s.inner.HasLevel(ctx, LevelManage)
}
