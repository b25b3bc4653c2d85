package grantkit

import (
	"sort"
	"strings"
	"sync"
)

// Standard access level names.
const (
	LevelNone   = "none"
	LevelMatch  = "match"
	LevelView   = "view"
	LevelEdit   = "edit"
	LevelManage = "manage"
	LevelOwner  = "owner"
)

// AccessLevel is a named permission tier with a total order given by Rank.
// Levels are value types; two levels with the same name are interchangeable.
type AccessLevel struct {
	Name       string
	Rank       int
	Assignable bool
}

// Compare returns a negative number, zero, or a positive number when l is
// ordered before, equal to, or after other.
func (l AccessLevel) Compare(other AccessLevel) int {
	return l.Rank - other.Rank
}

// AtLeast reports whether l grants at least as much access as other.
func (l AccessLevel) AtLeast(other AccessLevel) bool {
	return l.Rank >= other.Rank
}

// IsNone reports whether this is the no-access level.
func (l AccessLevel) IsNone() bool {
	return l.Name == LevelNone
}

// String returns the level name.
func (l AccessLevel) String() string {
	return l.Name
}

// LevelRegistry holds all access levels known to the application.
// It is populated at startup and should be treated as immutable after
// initialization.
type LevelRegistry struct {
	mu      sync.RWMutex
	byName  map[string]AccessLevel
	none    AccessLevel
	highest AccessLevel
}

// NewLevelRegistry creates a registry pre-populated with the standard levels:
// none < match < view < edit < manage < owner, of which view, edit and
// manage are assignable to collaborators.
func NewLevelRegistry() *LevelRegistry {
	r := &LevelRegistry{byName: make(map[string]AccessLevel)}
	for _, l := range []AccessLevel{
		{Name: LevelNone, Rank: 0},
		{Name: LevelMatch, Rank: 10},
		{Name: LevelView, Rank: 20, Assignable: true},
		{Name: LevelEdit, Rank: 30, Assignable: true},
		{Name: LevelManage, Rank: 40, Assignable: true},
		{Name: LevelOwner, Rank: 50},
	} {
		r.define(l)
	}
	return r
}

// Define registers an additional access level. Ranks must be unique; a level
// with a duplicate name or rank is rejected. Intended for startup-time
// configuration only.
func (r *LevelRegistry) Define(level AccessLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(level.Name) == "" {
		return NewError(ErrInvalidLevel, "level name is empty")
	}
	if _, exists := r.byName[level.Name]; exists {
		return NewError(ErrInvalidLevel, "level "+level.Name+" already defined")
	}
	for _, existing := range r.byName {
		if existing.Rank == level.Rank {
			return NewError(ErrInvalidLevel, "rank conflict between "+level.Name+" and "+existing.Name)
		}
	}
	r.define(level)
	return nil
}

func (r *LevelRegistry) define(level AccessLevel) {
	r.byName[level.Name] = level
	if level.Name == LevelNone {
		r.none = level
	}
	if level.Rank > r.highest.Rank {
		r.highest = level
	}
}

// List returns all registered levels ordered by increasing rank.
func (r *LevelRegistry) List() []AccessLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	levels := make([]AccessLevel, 0, len(r.byName))
	for _, l := range r.byName {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Rank < levels[j].Rank })
	return levels
}

// ListAssignable returns the levels end users may grant to collaborators,
// ordered by increasing rank.
func (r *LevelRegistry) ListAssignable() []AccessLevel {
	all := r.List()
	assignable := make([]AccessLevel, 0, len(all))
	for _, l := range all {
		if l.Assignable {
			assignable = append(assignable, l)
		}
	}
	return assignable
}

// Resolve returns the level registered under name. Blank or unknown names
// resolve to the "none" level: malformed stored data must degrade to the
// safest interpretation, never fail loudly.
func (r *LevelRegistry) Resolve(name string) AccessLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.byName[strings.TrimSpace(name)]; ok {
		return l
	}
	return r.none
}

// Known reports whether a level with the given name is registered.
func (r *LevelRegistry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// None returns the no-access level.
func (r *LevelRegistry) None() AccessLevel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.none
}
