package grantkit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Preference property names stored in ConfigurationClass objects on user
// and workgroup profile documents.
const (
	PrefDefaultOwner        = "defaultOwner"
	PrefDefaultWorkgroup    = "defaultWorkgroup"
	PrefDefaultCollaborator = "defaultCollaborator"
	PrefDefaultVisibility   = "defaultVisibility"
	PrefDefaultStudy        = "defaultStudy"
)

// PreferencesManager looks up configured permission defaults. A preference
// is searched first on the acting user's profile document, then on the
// user's workgroup profile: the explicitly chosen default workgroup when one
// is configured and still among the user's groups, otherwise the user's sole
// group when they belong to exactly one.
type PreferencesManager struct {
	helper *Helper
	store  DocumentStore
	groups GroupService
	levels *LevelRegistry
	vis    *VisibilityRegistry
	log    zerolog.Logger
}

// NewPreferencesManager creates a PreferencesManager.
func NewPreferencesManager(helper *Helper, store DocumentStore, groups GroupService,
	levels *LevelRegistry, vis *VisibilityRegistry, log zerolog.Logger) *PreferencesManager {
	return &PreferencesManager{
		helper: helper,
		store:  store,
		groups: groups,
		levels: levels,
		vis:    vis,
		log:    log,
	}
}

// DefaultOwner returns the configured default owner for records created by
// the given principal, and whether one is configured at any level.
func (p *PreferencesManager) DefaultOwner(ctx context.Context, ref string) (string, bool) {
	for _, source := range p.sourceDocuments(ctx, ref) {
		if v := p.preferenceValue(ctx, source, PrefDefaultOwner); v != "" {
			return v, true
		}
	}
	return "", false
}

// DefaultCollaborators returns the configured default grants for records
// created by the given principal. Values are stored one per configuration
// object as "ref" or "ref^level"; a missing or invalid level degrades to
// view. Duplicate refs keep the higher level.
func (p *PreferencesManager) DefaultCollaborators(ctx context.Context, ref string) []Collaborator {
	for _, source := range p.sourceDocuments(ctx, ref) {
		collaborators := p.collaboratorPreferences(ctx, source)
		if len(collaborators) > 0 {
			return collaborators
		}
	}
	return nil
}

// DefaultVisibility returns the configured default visibility, and whether a
// valid one is configured at any level.
func (p *PreferencesManager) DefaultVisibility(ctx context.Context, ref string) (Visibility, bool) {
	for _, source := range p.sourceDocuments(ctx, ref) {
		name := p.preferenceValue(ctx, source, PrefDefaultVisibility)
		if name != "" && p.vis.Known(name) {
			return p.vis.Resolve(name), true
		}
	}
	return Visibility{}, false
}

// DefaultStudy returns the configured default study assignment, and whether
// one is configured at any level.
func (p *PreferencesManager) DefaultStudy(ctx context.Context, ref string) (string, bool) {
	for _, source := range p.sourceDocuments(ctx, ref) {
		if v := p.preferenceValue(ctx, source, PrefDefaultStudy); v != "" {
			return v, true
		}
	}
	return "", false
}

// sourceDocuments resolves the profile documents to search, in order.
func (p *PreferencesManager) sourceDocuments(ctx context.Context, ref string) []string {
	if ref == "" {
		return nil
	}
	// Workgroup fallbacks only apply to users; a group's own profile is the
	// only source for records created on its behalf.
	if !p.helper.IsUser(ctx, ref) {
		return []string{ref}
	}
	sources := []string{ref}

	groups, err := p.groups.ParentGroups(ctx, ref)
	if err != nil {
		p.log.Warn().Err(err).Str("ref", ref).Msg("failed to list workgroups for preference lookup")
		return sources
	}
	if chosen := p.preferenceValue(ctx, ref, PrefDefaultWorkgroup); chosen != "" {
		// The chosen workgroup must still be one of the user's groups.
		for _, g := range groups {
			if g == chosen {
				return append(sources, chosen)
			}
		}
		return sources
	}
	if len(groups) == 1 {
		return append(sources, groups[0])
	}
	return sources
}

// preferenceValue returns the value of the first configuration object on the
// document whose property field matches, or empty string.
func (p *PreferencesManager) preferenceValue(ctx context.Context, docRef, property string) string {
	objects, err := p.store.Objects(ctx, docRef, ClassConfiguration)
	if err != nil {
		p.log.Warn().Err(err).Str("doc", docRef).Str("property", property).
			Msg("failed to read preference")
		return ""
	}
	for _, obj := range objects {
		if obj.Get(FieldProperty) == property {
			if v := strings.TrimSpace(obj.Get(FieldValue)); v != "" {
				return v
			}
		}
	}
	return ""
}

func (p *PreferencesManager) collaboratorPreferences(ctx context.Context, docRef string) []Collaborator {
	objects, err := p.store.Objects(ctx, docRef, ClassConfiguration)
	if err != nil {
		p.log.Warn().Err(err).Str("doc", docRef).Msg("failed to read default collaborators")
		return nil
	}
	view := p.levels.Resolve(LevelView)
	index := make(map[string]int)
	var collaborators []Collaborator
	for _, obj := range objects {
		if obj.Get(FieldProperty) != PrefDefaultCollaborator {
			continue
		}
		value := strings.TrimSpace(obj.Get(FieldValue))
		if value == "" {
			continue
		}
		ref, levelName, _ := strings.Cut(value, "^")
		if ref == "" {
			continue
		}
		level := p.levels.Resolve(levelName)
		if level.IsNone() {
			level = view
		}
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

// DefaultSettingsReactions populates owner, collaborators, visibility and
// study assignment from configured preferences when entities are created or
// their rights change. Every reaction is idempotent for unchanged defaults
// and no-ops cleanly when no relevant preference is configured.
type DefaultSettingsReactions struct {
	manager    *AccessManager
	visibility *VisibilityManager
	helper     *Helper
	store      DocumentStore
	prefs      *PreferencesManager
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewDefaultSettingsReactions creates the reaction set.
func NewDefaultSettingsReactions(manager *AccessManager, visibility *VisibilityManager,
	helper *Helper, store DocumentStore, prefs *PreferencesManager,
	dispatcher *Dispatcher, log zerolog.Logger) *DefaultSettingsReactions {
	return &DefaultSettingsReactions{
		manager:    manager,
		visibility: visibility,
		helper:     helper,
		store:      store,
		prefs:      prefs,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Register subscribes the reactions on the dispatcher.
func (r *DefaultSettingsReactions) Register(d *Dispatcher) {
	d.Subscribe(EventEntityCreated, r.onEntityCreated)
	d.Subscribe(EventRightsUpdated, r.onRightsUpdated)
	d.Subscribe(EventStudyUpdated, r.onStudyUpdated)
}

func (r *DefaultSettingsReactions) onEntityCreated(ctx context.Context, event Event) {
	entity, actor := event.Entity, event.Actor
	if entity == nil {
		return
	}

	// The creator owns the record provisionally until preferences decide.
	if err := r.helper.SetStringProperty(ctx, entity.Ref, ClassOwner, PropOwner, actor); err != nil {
		r.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to set provisional owner")
	}
	if defaultOwner, ok := r.prefs.DefaultOwner(ctx, actor); ok {
		// The normal ownership path demotes the provisional owner to a
		// manage collaborator and cleans up stale grants.
		r.manager.SetOwner(ctx, entity, defaultOwner)
	} else if err := r.helper.SetStringProperty(ctx, entity.Ref, ClassOwner, PropOwner, ""); err != nil {
		r.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to clear provisional owner")
	}

	r.applyDefaultCollaborators(ctx, entity, actor)
	r.applyDefaultVisibility(ctx, entity, actor)
	r.applyDefaultStudy(ctx, entity, actor, false)
}

func (r *DefaultSettingsReactions) onRightsUpdated(ctx context.Context, event Event) {
	if event.Entity == nil || !event.Has(RightsOwner) {
		return
	}
	r.applyDefaultCollaborators(ctx, event.Entity, event.Actor)
	r.applyDefaultStudy(ctx, event.Entity, event.Actor, true)
}

func (r *DefaultSettingsReactions) onStudyUpdated(ctx context.Context, event Event) {
	if event.Entity == nil {
		return
	}
	r.applyDefaultVisibility(ctx, event.Entity, event.Actor)
	r.applyDefaultStudy(ctx, event.Entity, event.Actor, true)
}

// applyDefaultCollaborators merges configured default grants into the
// entity's current grants, resolving per-principal conflicts by keeping the
// higher level. Nothing is written when the merge changes nothing.
func (r *DefaultSettingsReactions) applyDefaultCollaborators(ctx context.Context, entity *Entity, actor string) {
	defaults := r.prefs.DefaultCollaborators(ctx, actor)
	if len(defaults) == 0 {
		return
	}
	existing := r.manager.Collaborators(ctx, entity)
	merged := mergeCollaborators(existing, defaults)
	if collaboratorSetsEqual(existing, merged) {
		return
	}
	r.manager.SetCollaborators(ctx, entity, merged)
}

func (r *DefaultSettingsReactions) applyDefaultVisibility(ctx context.Context, entity *Entity, actor string) {
	defaultVis, ok := r.prefs.DefaultVisibility(ctx, actor)
	if !ok {
		return
	}
	if r.visibility.VisibilityOf(ctx, entity).Name == defaultVis.Name {
		return
	}
	r.visibility.SetVisibility(ctx, entity, defaultVis)
}

// applyDefaultStudy overwrites the study assignment when a configured
// default differs from the stored one. Rights and study change events
// persist immediately; creation leaves the write staged for the creation
// flow's save.
func (r *DefaultSettingsReactions) applyDefaultStudy(ctx context.Context, entity *Entity, actor string, persist bool) {
	defaultStudy, ok := r.prefs.DefaultStudy(ctx, actor)
	if !ok {
		return
	}
	current := r.helper.StringProperty(ctx, entity.Ref, ClassStudyBinding, PropStudy)
	if current == defaultStudy {
		return
	}
	if err := r.helper.SetStringProperty(ctx, entity.Ref, ClassStudyBinding, PropStudy, defaultStudy); err != nil {
		r.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to write default study")
		return
	}
	if persist {
		if err := r.store.Save(ctx, entity.Ref, "Set study: "+defaultStudy); err != nil {
			r.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to save study change")
			r.store.Discard(ctx, entity.Ref)
			return
		}
	}
	if r.dispatcher != nil {
		r.dispatcher.Publish(ctx, NewEvent(EventStudyUpdated, entity, actor))
	}
}

// mergeCollaborators merges defaults into existing grants, keeping the
// higher level per principal and the existing order first.
func mergeCollaborators(existing, defaults []Collaborator) []Collaborator {
	index := make(map[string]int, len(existing))
	merged := make([]Collaborator, len(existing))
	copy(merged, existing)
	for i, c := range merged {
		index[c.Ref] = i
	}
	for _, d := range defaults {
		if i, seen := index[d.Ref]; seen {
			if d.Level.Compare(merged[i].Level) > 0 {
				merged[i].Level = d.Level
			}
			continue
		}
		index[d.Ref] = len(merged)
		merged = append(merged, d)
	}
	return merged
}

func collaboratorSetsEqual(a, b []Collaborator) bool {
	if len(a) != len(b) {
		return false
	}
	byRef := make(map[string]AccessLevel, len(a))
	for _, c := range a {
		byRef[c.Ref] = c.Level
	}
	for _, c := range b {
		level, ok := byRef[c.Ref]
		if !ok || level.Rank != c.Level.Rank {
			return false
		}
	}
	return true
}
