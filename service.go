package grantkit

import (
	"context"

	"github.com/rs/zerolog"
)

// Service wires the access-control engine together: registries, managers,
// default-settings reactions and the rights projection, all over one
// document store and the external group/authorization services.
type Service struct {
	store        DocumentStore
	groups       GroupService
	auth         Authorizer
	levels       *LevelRegistry
	visibilities *VisibilityRegistry
	dispatcher   *Dispatcher
	helper       *Helper
	manager      *AccessManager
	visibility   *VisibilityManager
	prefs        *PreferencesManager
	reactions    *DefaultSettingsReactions
	rights       *RightsUpdater
	cfg          *Config
	log          zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithLevelRegistry replaces the default access level registry.
func WithLevelRegistry(levels *LevelRegistry) Option {
	return func(s *Service) { s.levels = levels }
}

// WithVisibilityRegistry replaces the default visibility registry.
func WithVisibilityRegistry(vis *VisibilityRegistry) Option {
	return func(s *Service) { s.visibilities = vis }
}

// WithConfig applies a deployment config to the registries. Application is
// deferred until both registries exist, so option order does not matter.
// Invalid configs are logged and skipped; a deployment config must not
// prevent the engine from starting with safe defaults.
func WithConfig(cfg *Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// NewService creates a fully wired Service.
//
// Example:
//
//	svc := grantkit.NewService(store, groups, authorizer,
//	    grantkit.WithLogger(logger),
//	    grantkit.WithConfig(cfg))
func NewService(store DocumentStore, groups GroupService, auth Authorizer, opts ...Option) *Service {
	s := &Service{
		store:      store,
		groups:     groups,
		auth:       auth,
		levels:     NewLevelRegistry(),
		dispatcher: NewDispatcher(),
		log:        zerolog.Nop(),
	}
	// Logger and registry options run before dependent components exist.
	for _, opt := range opts {
		opt(s)
	}
	if s.visibilities == nil {
		s.visibilities = NewVisibilityRegistry(s.levels)
	}
	if s.cfg != nil {
		if err := s.cfg.Apply(s.levels, s.visibilities); err != nil {
			s.log.Error().Err(err).Msg("failed to apply deployment config")
		}
	}

	s.helper = NewHelper(store, s.log)
	s.manager = NewAccessManager(s.helper, store, groups, auth, s.levels, s.dispatcher, s.log)
	s.visibility = NewVisibilityManager(s.helper, store, s.visibilities, s.dispatcher, s.log)
	s.prefs = NewPreferencesManager(s.helper, store, groups, s.levels, s.visibilities, s.log)
	s.reactions = NewDefaultSettingsReactions(s.manager, s.visibility, s.helper, store, s.prefs, s.dispatcher, s.log)
	s.rights = NewRightsUpdater(s.manager, s.visibility, s.helper, store, s.log)

	s.reactions.Register(s.dispatcher)
	s.rights.Register(s.dispatcher)
	return s
}

// Levels returns the access level registry.
func (s *Service) Levels() *LevelRegistry {
	return s.levels
}

// Visibilities returns the visibility registry.
func (s *Service) Visibilities() *VisibilityRegistry {
	return s.visibilities
}

// Dispatcher returns the event dispatch table, for subscribing additional
// reactions or publishing external events.
func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Manager returns the underlying access manager.
func (s *Service) Manager() *AccessManager {
	return s.manager
}

// VisibilityManager returns the underlying visibility manager.
func (s *Service) VisibilityManager() *VisibilityManager {
	return s.visibility
}

// Preferences returns the preferences manager.
func (s *Service) Preferences() *PreferencesManager {
	return s.prefs
}

// Access creates the unsecured per-entity view.
func (s *Service) Access(entity *Entity) *EntityAccess {
	return NewEntityAccess(entity, s.manager, s.visibility, s.levels)
}

// SecureAccess creates the per-entity view with manage-gated mutations.
func (s *Service) SecureAccess(entity *Entity) *SecureEntityAccess {
	return NewSecureEntityAccess(s.Access(entity), s.levels)
}

// ResolveLevel resolves an access level by name, degrading to none.
func (s *Service) ResolveLevel(name string) AccessLevel {
	return s.levels.Resolve(name)
}

// ResolveVisibility resolves a visibility by name, degrading to private.
func (s *Service) ResolveVisibility(name string) Visibility {
	return s.visibilities.Resolve(name)
}

// FilterByVisibility returns the entities at least as visible as threshold.
func (s *Service) FilterByVisibility(ctx context.Context, entities []*Entity, threshold Visibility) []*Entity {
	return s.visibility.FilterByVisibility(ctx, entities, threshold)
}

// FilterIterator lazily filters an entity sequence by a visibility
// threshold.
func (s *Service) FilterIterator(ctx context.Context, source EntityIterator, threshold Visibility) EntityIterator {
	return s.visibility.FilterIterator(ctx, source, threshold)
}

// FireEntityCreated runs the creation flow for a freshly created entity:
// default-settings reactions and the initial rights projection execute
// against the staged document, then everything persists in one save.
func (s *Service) FireEntityCreated(ctx context.Context, entity *Entity, creator string) bool {
	if entity == nil {
		return false
	}
	s.dispatcher.Publish(ctx, NewEvent(EventEntityCreated, entity, creator))
	if err := s.store.Save(ctx, entity.Ref, "Initialized permissions"); err != nil {
		s.log.Error().Err(err).Str("entity", entity.Ref).Msg("failed to save initial permissions")
		s.store.Discard(ctx, entity.Ref)
		return false
	}
	return true
}
