package grantkit

import (
	"context"

	"github.com/rs/zerolog"
)

// VisibilityManager reads and writes the visibility tier stored on an
// entity's backing document.
type VisibilityManager struct {
	helper       *Helper
	store        DocumentStore
	visibilities *VisibilityRegistry
	dispatcher   *Dispatcher
	log          zerolog.Logger
}

// NewVisibilityManager creates a VisibilityManager. The dispatcher may be
// nil, in which case visibility changes do not emit rights-update events.
func NewVisibilityManager(helper *Helper, store DocumentStore, visibilities *VisibilityRegistry,
	dispatcher *Dispatcher, log zerolog.Logger) *VisibilityManager {
	return &VisibilityManager{
		helper:       helper,
		store:        store,
		visibilities: visibilities,
		dispatcher:   dispatcher,
		log:          log,
	}
}

// VisibilityOf reads the entity's stored visibility, resolving missing or
// invalid names to the most restrictive tier.
func (m *VisibilityManager) VisibilityOf(ctx context.Context, entity *Entity) Visibility {
	if entity == nil {
		return m.visibilities.Resolve("")
	}
	name := m.helper.StringProperty(ctx, entity.Ref, ClassVisibility, PropVisibility)
	return m.visibilities.Resolve(name)
}

// SetVisibility writes the entity's visibility. An unchanged value is a
// successful no-op that avoids a spurious document save.
func (m *VisibilityManager) SetVisibility(ctx context.Context, entity *Entity, visibility Visibility) bool {
	if entity == nil {
		return false
	}
	current := m.helper.StringProperty(ctx, entity.Ref, ClassVisibility, PropVisibility)
	if current == visibility.Name {
		return true
	}
	if err := m.helper.SetStringProperty(ctx, entity.Ref, ClassVisibility, PropVisibility, visibility.Name); err != nil {
		m.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to write visibility")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if err := m.store.Save(ctx, entity.Ref, "Set visibility: "+visibility.Name); err != nil {
		m.log.Warn().Err(err).Str("entity", entity.Ref).Msg("failed to save visibility change")
		m.store.Discard(ctx, entity.Ref)
		return false
	}
	if m.dispatcher != nil {
		m.dispatcher.Publish(ctx, NewEvent(EventRightsUpdated, entity, CurrentUser(ctx), RightsVisibility))
	}
	return true
}
