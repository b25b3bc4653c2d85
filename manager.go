package grantkit

import (
	"context"

	"github.com/rs/zerolog"
)

// AccessManager resolves owner, collaborators and effective access levels
// for entities, and mutates ownership and collaborator lists while keeping
// the owner/collaborator-disjoint invariant.
//
// All mutating operations return a definite success boolean: storage and
// lookup failures are caught at the boundary, logged, and surface as false.
// Permission checks must not crash calling code mid-request.
type AccessManager struct {
	helper     *Helper
	store      DocumentStore
	groups     GroupService
	auth       Authorizer
	levels     *LevelRegistry
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewAccessManager creates an AccessManager. The dispatcher may be nil, in
// which case mutations do not emit rights-update events.
func NewAccessManager(helper *Helper, store DocumentStore, groups GroupService,
	auth Authorizer, levels *LevelRegistry, dispatcher *Dispatcher, log zerolog.Logger) *AccessManager {
	return &AccessManager{
		helper:     helper,
		store:      store,
		groups:     groups,
		auth:       auth,
		levels:     levels,
		dispatcher: dispatcher,
		log:        log,
	}
}

// AccessLevelFor computes the effective access level the principal holds on
// the entity through ownership and explicit collaborator grants, expanded
// over transitive group membership.
//
// The traversal is breadth-first over the principal-and-its-groups graph
// with an explicit queue and visited set, so cyclic group membership
// terminates. The result is the running maximum of each reachable node's
// direct level. Group lookup failures stop expanding that branch and are
// logged; partial results under-grant, never over-grant.
//
// This is a pure query with no side effects. Visibility is not considered
// here; see EntityAccess.Level for the caller-facing resolution.
func (m *AccessManager) AccessLevelFor(ctx context.Context, entity *Entity, ref string) AccessLevel {
	result := m.levels.None()
	if entity == nil || ref == "" {
		return result
	}

	// Fetch owner and collaborators once, not per visited node.
	owner := m.OwnerOf(ctx, entity)
	collaborators := m.Collaborators(ctx, entity)

	visited := make(map[string]bool)
	queue := []string{ref}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if level := m.directLevel(current, owner, collaborators); level.Compare(result) > 0 {
			result = level
		}

		parents, err := m.groups.ParentGroups(ctx, current)
		if err != nil {
			m.log.Warn().Err(err).Str("entity", entity.Ref).Str("principal", current).
				Msg("group lookup failed, not expanding branch")
			continue
		}
		for _, parent := range parents {
			if !visited[parent] {
				queue = append(queue, parent)
			}
		}
	}
	return result
}

// directLevel is the level a single node holds without group expansion:
// owner level for the owner, the granted level for a collaborator, none
// otherwise.
func (m *AccessManager) directLevel(ref string, owner Owner, collaborators []Collaborator) AccessLevel {
	if owner.Is(ref) {
		return m.levels.Resolve(LevelOwner)
	}
	for _, c := range collaborators {
		if c.Ref == ref {
			return c.Level
		}
	}
	return m.levels.None()
}

// IsAdministrator reports whether the principal holds administrative rights
// on the entity's document. Groups are never administrators; nil inputs and
// authorization failures report false.
func (m *AccessManager) IsAdministrator(ctx context.Context, entity *Entity, ref string) bool {
	if entity == nil || ref == "" {
		return false
	}
	if m.helper.IsGroup(ctx, ref) {
		return false
	}
	ok, err := m.auth.HasAdminRight(ctx, ref, entity.Ref)
	if err != nil {
		m.log.Warn().Err(err).Str("entity", entity.Ref).Str("principal", ref).
			Msg("administrator check failed")
		return false
	}
	return ok
}

// OwnerOf reads the entity's owner slot. Missing or malformed values read as
// the empty (unowned) owner.
func (m *AccessManager) OwnerOf(ctx context.Context, entity *Entity) Owner {
	if entity == nil {
		return Owner{}
	}
	return Owner{Ref: m.helper.StringProperty(ctx, entity.Ref, ClassOwner, PropOwner)}
}

// SetOwner replaces the entity's owner. A distinct previous owner is demoted
// to a manage-level collaborator rather than silently losing access, and any
// stale collaborator entry held by the new owner is removed. The whole
// sequence persists in a single save; on failure the staged changes are
// discarded and false is returned.
func (m *AccessManager) SetOwner(ctx context.Context, entity *Entity, newOwner string) bool {
	if entity == nil {
		return false
	}
	previous := m.OwnerOf(ctx, entity)

	if err := m.helper.SetStringProperty(ctx, entity.Ref, ClassOwner, PropOwner, newOwner); err != nil {
		m.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to write owner")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if !previous.IsEmpty() && previous.Ref != newOwner {
		manage := m.levels.Resolve(LevelManage)
		if !m.upsertCollaborator(ctx, entity, Collaborator{Ref: previous.Ref, Level: manage}) {
			m.store.Discard(ctx, entity.Ref)
			return false
		}
	}
	if newOwner != "" {
		if !m.deleteCollaborator(ctx, entity, newOwner) {
			m.store.Discard(ctx, entity.Ref)
			return false
		}
	}
	if err := m.store.Save(ctx, entity.Ref, "Set owner: "+newOwner); err != nil {
		m.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to save ownership change")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	m.publishRightsUpdate(ctx, entity, RightsOwner)
	return true
}

// Collaborators reads all stored collaborator records, deduplicated by
// principal keeping the highest level on conflict. Malformed records with a
// missing principal or access name are dropped. Order follows first
// appearance; callers should treat the result as a set.
func (m *AccessManager) Collaborators(ctx context.Context, entity *Entity) []Collaborator {
	if entity == nil {
		return nil
	}
	objects, err := m.store.Objects(ctx, entity.Ref, ClassCollaborator)
	if err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to read collaborators")
		return nil
	}

	index := make(map[string]int)
	collaborators := make([]Collaborator, 0, len(objects))
	for _, obj := range objects {
		ref := obj.Get(FieldCollaborator)
		accessName := obj.Get(FieldAccess)
		if ref == "" || accessName == "" {
			continue
		}
		level := m.levels.Resolve(accessName)
		if i, seen := index[ref]; seen {
			if level.Compare(collaborators[i].Level) > 0 {
				collaborators[i].Level = level
			}
			continue
		}
		index[ref] = len(collaborators)
		collaborators = append(collaborators, Collaborator{Ref: ref, Level: level})
	}
	return collaborators
}

// SetCollaborators replaces the entire stored collaborator list. Entries
// with no principal and entries matching the current owner are filtered out,
// enforcing owner/collaborator disjointness on write. Persists once.
func (m *AccessManager) SetCollaborators(ctx context.Context, entity *Entity, collaborators []Collaborator) bool {
	if entity == nil {
		return false
	}
	owner := m.OwnerOf(ctx, entity)
	objects := make([]PropertyBag, 0, len(collaborators))
	for _, c := range collaborators {
		if c.Ref == "" || owner.Is(c.Ref) {
			continue
		}
		objects = append(objects, m.collaboratorBag(c))
	}
	if err := m.store.SetObjects(ctx, entity.Ref, ClassCollaborator, objects); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to replace collaborators")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if err := m.store.Save(ctx, entity.Ref, "Updated collaborators"); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to save collaborators")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	m.publishRightsUpdate(ctx, entity, RightsCollaborators)
	return true
}

// AddCollaborator inserts or updates a single grant, matched by principal.
// An existing record for the same principal is replaced, never duplicated.
func (m *AccessManager) AddCollaborator(ctx context.Context, entity *Entity, collaborator Collaborator) bool {
	if entity == nil || collaborator.Ref == "" {
		return false
	}
	if !m.upsertCollaborator(ctx, entity, collaborator) {
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if err := m.store.Save(ctx, entity.Ref, "Added collaborator: "+collaborator.Ref); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to save collaborator")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	m.publishRightsUpdate(ctx, entity, RightsCollaborators)
	return true
}

// RemoveCollaborator deletes the grant matching the collaborator's
// principal. Removing an absent grant reports false.
func (m *AccessManager) RemoveCollaborator(ctx context.Context, entity *Entity, collaborator Collaborator) bool {
	if entity == nil || collaborator.Ref == "" {
		return false
	}
	objects, err := m.store.Objects(ctx, entity.Ref, ClassCollaborator)
	if err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to read collaborators")
		return false
	}
	remaining := make([]PropertyBag, 0, len(objects))
	removed := false
	for _, obj := range objects {
		if obj.Get(FieldCollaborator) == collaborator.Ref {
			removed = true
			continue
		}
		remaining = append(remaining, obj)
	}
	if !removed {
		return false
	}
	if err := m.store.SetObjects(ctx, entity.Ref, ClassCollaborator, remaining); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to remove collaborator")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if err := m.store.Save(ctx, entity.Ref, "Removed collaborator: "+collaborator.Ref); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to save collaborator removal")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	m.publishRightsUpdate(ctx, entity, RightsCollaborators)
	return true
}

// upsertCollaborator stages a single-record insert-or-replace without saving.
func (m *AccessManager) upsertCollaborator(ctx context.Context, entity *Entity, collaborator Collaborator) bool {
	objects, err := m.store.Objects(ctx, entity.Ref, ClassCollaborator)
	if err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to read collaborators")
		return false
	}
	replaced := false
	next := make([]PropertyBag, 0, len(objects)+1)
	for _, obj := range objects {
		if obj.Get(FieldCollaborator) == collaborator.Ref {
			if !replaced {
				next = append(next, m.collaboratorBag(collaborator))
				replaced = true
			}
			continue
		}
		next = append(next, obj)
	}
	if !replaced {
		next = append(next, m.collaboratorBag(collaborator))
	}
	if err := m.store.SetObjects(ctx, entity.Ref, ClassCollaborator, next); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to stage collaborator")
		return false
	}
	return true
}

// deleteCollaborator stages removal of any record for the principal without
// saving. A principal with no record is not an error.
func (m *AccessManager) deleteCollaborator(ctx context.Context, entity *Entity, ref string) bool {
	objects, err := m.store.Objects(ctx, entity.Ref, ClassCollaborator)
	if err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to read collaborators")
		return false
	}
	remaining := make([]PropertyBag, 0, len(objects))
	changed := false
	for _, obj := range objects {
		if obj.Get(FieldCollaborator) == ref {
			changed = true
			continue
		}
		remaining = append(remaining, obj)
	}
	if !changed {
		return true
	}
	if err := m.store.SetObjects(ctx, entity.Ref, ClassCollaborator, remaining); err != nil {
		m.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to stage collaborator removal")
		return false
	}
	return true
}

func (m *AccessManager) collaboratorBag(c Collaborator) PropertyBag {
	// A grant with no level stored degrades to the most restrictive one.
	name := c.Level.Name
	if name == "" {
		name = LevelNone
	}
	return PropertyBag{FieldCollaborator: c.Ref, FieldAccess: name}
}

func (m *AccessManager) publishRightsUpdate(ctx context.Context, entity *Entity, types ...RightsUpdateType) {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Publish(ctx, NewEvent(EventRightsUpdated, entity, CurrentUser(ctx), types...))
}
