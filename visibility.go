package grantkit

import (
	"sort"
	"strings"
	"sync"
)

// Standard visibility names.
const (
	VisibilityPrivate   = "private"
	VisibilityMatchable = "matchable"
	VisibilityPublic    = "public"
	VisibilityOpen      = "open"
)

// Visibility is a named exposure tier with a total order given by Rank.
// Each tier carries the default AccessLevel granted to every principal.
type Visibility struct {
	Name     string
	Rank     int
	Default  AccessLevel
	Disabled bool
}

// Compare returns a negative number, zero, or a positive number when v is
// more restrictive than, equal to, or more permissive than other.
func (v Visibility) Compare(other Visibility) int {
	return v.Rank - other.Rank
}

// AtLeast reports whether v is at least as permissive as other.
func (v Visibility) AtLeast(other Visibility) bool {
	return v.Rank >= other.Rank
}

// String returns the visibility name.
func (v Visibility) String() string {
	return v.Name
}

// VisibilityRegistry holds all visibility tiers known to the application.
// The set of tiers is fixed at startup; the enabled/disabled flag on each
// tier is configuration-driven and may be toggled at runtime.
type VisibilityRegistry struct {
	mu       sync.RWMutex
	byName   map[string]Visibility
	fallback Visibility
}

// NewVisibilityRegistry creates a registry pre-populated with the standard
// tiers: private (default none), matchable (default match), public (default
// view) and open (default edit, disabled until a deployment enables it).
func NewVisibilityRegistry(levels *LevelRegistry) *VisibilityRegistry {
	r := &VisibilityRegistry{byName: make(map[string]Visibility)}
	for _, v := range []Visibility{
		{Name: VisibilityPrivate, Rank: 0, Default: levels.Resolve(LevelNone)},
		{Name: VisibilityMatchable, Rank: 10, Default: levels.Resolve(LevelMatch)},
		{Name: VisibilityPublic, Rank: 20, Default: levels.Resolve(LevelView)},
		{Name: VisibilityOpen, Rank: 30, Default: levels.Resolve(LevelEdit), Disabled: true},
	} {
		r.define(v)
	}
	return r
}

// Define registers an additional visibility tier. Names and ranks must be
// unique. Intended for startup-time configuration only.
func (r *VisibilityRegistry) Define(v Visibility) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.Name) == "" {
		return NewError(ErrInvalidVisibility, "visibility name is empty")
	}
	if _, exists := r.byName[v.Name]; exists {
		return NewError(ErrInvalidVisibility, "visibility "+v.Name+" already defined")
	}
	for _, existing := range r.byName {
		if existing.Rank == v.Rank {
			return NewError(ErrInvalidVisibility, "rank conflict between "+v.Name+" and "+existing.Name)
		}
	}
	r.define(v)
	return nil
}

func (r *VisibilityRegistry) define(v Visibility) {
	r.byName[v.Name] = v
	if v.Name == VisibilityPrivate {
		r.fallback = v
	}
}

// List returns all registered tiers, enabled or not, ordered from most
// restrictive to most permissive.
func (r *VisibilityRegistry) List() []Visibility {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tiers := make([]Visibility, 0, len(r.byName))
	for _, v := range r.byName {
		tiers = append(tiers, v)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Rank < tiers[j].Rank })
	return tiers
}

// ListEnabled returns the tiers available in this deployment, ordered from
// most restrictive to most permissive.
func (r *VisibilityRegistry) ListEnabled() []Visibility {
	all := r.List()
	enabled := make([]Visibility, 0, len(all))
	for _, v := range all {
		if !v.Disabled {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

// Resolve returns the tier registered under name. Blank or unknown names
// resolve to the most restrictive tier ("private"); records stored with a
// disabled tier still resolve to it, so existing data keeps its meaning.
func (r *VisibilityRegistry) Resolve(name string) Visibility {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.byName[strings.TrimSpace(name)]; ok {
		return v
	}
	return r.fallback
}

// Known reports whether a tier with the given name is registered.
func (r *VisibilityRegistry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// SetEnabled toggles a tier's availability. Unknown names are ignored and
// reported as false.
func (r *VisibilityRegistry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return false
	}
	v.Disabled = !enabled
	r.byName[v.Name] = v
	return true
}
