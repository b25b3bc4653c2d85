package grantkit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// The three coarse-grained right bundles materialized on every entity
// document, from narrowest to widest.
const (
	BundleView   = "view"
	BundleEdit   = "view,edit"
	BundleDelete = "view,edit,delete"
)

var rightsBundles = []string{BundleView, BundleEdit, BundleDelete}

// Markers used in rights groups for principals that are not concrete users
// or groups.
const (
	// AllPrincipals marks a bundle granted to every authenticated principal,
	// used when the visibility default extends access to everyone.
	AllPrincipals = "@all"

	// GuestPrincipal marks a bundle granted to anonymous callers, used on
	// unowned (public) records.
	GuestPrincipal = "@guest"
)

// RightsUpdater materializes the resolved access model into three rights
// groups stored on the entity document, one per bundle, each listing the
// users and groups entitled to at least that bundle.
//
// Every recomputation clears and fully rebuilds the groups from the current
// owner, collaborators and visibility; they are never incrementally patched,
// so stale grants cannot drift in.
type RightsUpdater struct {
	manager    *AccessManager
	visibility *VisibilityManager
	helper     *Helper
	store      DocumentStore
	log        zerolog.Logger
}

// NewRightsUpdater creates a RightsUpdater.
func NewRightsUpdater(manager *AccessManager, visibility *VisibilityManager,
	helper *Helper, store DocumentStore, log zerolog.Logger) *RightsUpdater {
	return &RightsUpdater{
		manager:    manager,
		visibility: visibility,
		helper:     helper,
		store:      store,
		log:        log,
	}
}

// Register subscribes the updater to creation and rights-change events.
// Creation leaves the rebuilt groups staged for the creation flow's save;
// rights changes persist immediately.
func (u *RightsUpdater) Register(d *Dispatcher) {
	d.Subscribe(EventEntityCreated, func(ctx context.Context, event Event) {
		u.rebuild(ctx, event.Entity, false)
	})
	d.Subscribe(EventRightsUpdated, func(ctx context.Context, event Event) {
		u.rebuild(ctx, event.Entity, true)
	})
}

// Rebuild recomputes and persists the rights groups for the entity.
func (u *RightsUpdater) Rebuild(ctx context.Context, entity *Entity) bool {
	return u.rebuild(ctx, entity, true)
}

func (u *RightsUpdater) rebuild(ctx context.Context, entity *Entity, persist bool) bool {
	if entity == nil {
		return false
	}

	previous := u.previousGroups(ctx, entity)
	groups := make(map[string]*rightsGroup, len(rightsBundles))
	for _, bundle := range rightsBundles {
		groups[bundle] = &rightsGroup{bundle: bundle}
	}

	u.applyVisibility(ctx, entity, groups)
	u.applyOwner(ctx, entity, groups, previous)
	u.applyCollaborators(ctx, entity, groups)

	objects := make([]PropertyBag, 0, len(rightsBundles))
	for _, bundle := range rightsBundles {
		objects = append(objects, groups[bundle].bag())
	}
	if err := u.store.SetObjects(ctx, entity.Ref, ClassRights, objects); err != nil {
		u.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to write rights groups")
		u.store.Discard(ctx, entity.Ref)
		return false
	}
	if persist {
		if err := u.store.Save(ctx, entity.Ref, "Updated rights"); err != nil {
			u.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to save rights groups")
			u.store.Discard(ctx, entity.Ref)
			return false
		}
	}
	return true
}

// previousGroups reads the rights objects as they stood before the rebuild,
// used only to carry owner entries forward when the owner cannot be
// classified.
func (u *RightsUpdater) previousGroups(ctx context.Context, entity *Entity) map[string]PropertyBag {
	objects, err := u.store.Objects(ctx, entity.Ref, ClassRights)
	if err != nil {
		u.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to read existing rights groups")
		return nil
	}
	previous := make(map[string]PropertyBag, len(objects))
	for _, obj := range objects {
		previous[obj.Get(FieldLevels)] = obj
	}
	return previous
}

func (u *RightsUpdater) applyVisibility(ctx context.Context, entity *Entity, groups map[string]*rightsGroup) {
	defaultLevel := u.visibility.VisibilityOf(ctx, entity).Default
	switch defaultLevel.Name {
	case LevelView:
		groups[BundleView].addGroup(AllPrincipals)
	case LevelEdit:
		groups[BundleEdit].addGroup(AllPrincipals)
	}
}

func (u *RightsUpdater) applyOwner(ctx context.Context, entity *Entity, groups map[string]*rightsGroup,
	previous map[string]PropertyBag) {
	full := groups[BundleDelete]
	owner := u.manager.OwnerOf(ctx, entity)
	if owner.IsEmpty() {
		full.addUser(GuestPrincipal)
		return
	}
	switch u.helper.KindOf(ctx, owner.Ref) {
	case KindUser:
		full.addUser(owner.Ref)
	case KindGroup:
		full.addGroup(owner.Ref)
	default:
		// An unclassifiable owner keeps whatever the full bundle held
		// before, rather than dropping all delete access.
		if prev, ok := previous[BundleDelete]; ok {
			full.addUsers(prev.Get(FieldUsers))
			full.addGroups(prev.Get(FieldGroups))
		}
	}
}

func (u *RightsUpdater) applyCollaborators(ctx context.Context, entity *Entity, groups map[string]*rightsGroup) {
	for _, c := range u.manager.Collaborators(ctx, entity) {
		var target *rightsGroup
		switch c.Level.Name {
		case LevelManage, LevelOwner:
			target = groups[BundleDelete]
		case LevelEdit:
			target = groups[BundleEdit]
		case LevelView:
			target = groups[BundleView]
		default:
			continue
		}
		switch u.helper.KindOf(ctx, c.Ref) {
		case KindUser:
			target.addUser(c.Ref)
		case KindGroup:
			target.addGroup(c.Ref)
		}
	}
}

// rightsGroup accumulates the users and groups entitled to one bundle.
type rightsGroup struct {
	bundle string
	users  []string
	groups []string
}

func (g *rightsGroup) addUser(ref string) {
	g.users = appendUnique(g.users, ref)
}

func (g *rightsGroup) addGroup(ref string) {
	g.groups = appendUnique(g.groups, ref)
}

func (g *rightsGroup) addUsers(joined string) {
	for _, ref := range splitRefs(joined) {
		g.addUser(ref)
	}
}

func (g *rightsGroup) addGroups(joined string) {
	for _, ref := range splitRefs(joined) {
		g.addGroup(ref)
	}
}

func (g *rightsGroup) bag() PropertyBag {
	return PropertyBag{
		FieldLevels: g.bundle,
		FieldAllow:  "1",
		FieldUsers:  strings.Join(g.users, ","),
		FieldGroups: strings.Join(g.groups, ","),
	}
}

func appendUnique(refs []string, ref string) []string {
	for _, existing := range refs {
		if existing == ref {
			return refs
		}
	}
	return append(refs, ref)
}

func splitRefs(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	return refs
}
