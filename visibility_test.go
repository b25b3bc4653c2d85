package grantkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVisibilityRegistryStandardTiers verifies the pre-populated tier set.
func TestVisibilityRegistryStandardTiers(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	tiers := r.List()
	assert.Len(t, tiers, 4)
	assert.Equal(t, VisibilityPrivate, tiers[0].Name)
	assert.Equal(t, VisibilityMatchable, tiers[1].Name)
	assert.Equal(t, VisibilityPublic, tiers[2].Name)
	assert.Equal(t, VisibilityOpen, tiers[3].Name)
}

// TestVisibilityRegistryDefaultLevels verifies the default level each tier
// grants.
func TestVisibilityRegistryDefaultLevels(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	assert.Equal(t, LevelNone, r.Resolve(VisibilityPrivate).Default.Name)
	assert.Equal(t, LevelMatch, r.Resolve(VisibilityMatchable).Default.Name)
	assert.Equal(t, LevelView, r.Resolve(VisibilityPublic).Default.Name)
	assert.Equal(t, LevelEdit, r.Resolve(VisibilityOpen).Default.Name)
}

// TestVisibilityRegistryOpenDisabledByDefault verifies the open tier ships
// disabled and is excluded from the enabled listing.
func TestVisibilityRegistryOpenDisabledByDefault(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	assert.True(t, r.Resolve(VisibilityOpen).Disabled)

	enabled := r.ListEnabled()
	assert.Len(t, enabled, 3)
	for _, v := range enabled {
		assert.NotEqual(t, VisibilityOpen, v.Name)
	}
}

// TestVisibilityRegistryResolveDisabled verifies that records stored with a
// disabled tier still resolve to it.
func TestVisibilityRegistryResolveDisabled(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	open := r.Resolve(VisibilityOpen)
	assert.Equal(t, VisibilityOpen, open.Name)
	assert.Equal(t, LevelEdit, open.Default.Name)
}

// TestVisibilityRegistryResolveUnknown verifies degradation to private.
func TestVisibilityRegistryResolveUnknown(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	assert.Equal(t, VisibilityPrivate, r.Resolve("").Name)
	assert.Equal(t, VisibilityPrivate, r.Resolve("unheard-of").Name)
	assert.Equal(t, VisibilityPublic, r.Resolve(" public ").Name)
}

// TestVisibilityRegistrySetEnabled verifies runtime toggling.
func TestVisibilityRegistrySetEnabled(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	assert.True(t, r.SetEnabled(VisibilityOpen, true))
	assert.False(t, r.Resolve(VisibilityOpen).Disabled)
	assert.Len(t, r.ListEnabled(), 4)

	assert.True(t, r.SetEnabled(VisibilityMatchable, false))
	assert.True(t, r.Resolve(VisibilityMatchable).Disabled)

	assert.False(t, r.SetEnabled("unheard-of", true))
}

// TestVisibilityRegistryDefine verifies startup-time extension.
func TestVisibilityRegistryDefine(t *testing.T) {
	levels := NewLevelRegistry()
	r := NewVisibilityRegistry(levels)

	err := r.Define(Visibility{Name: "consortium", Rank: 25, Default: levels.Resolve(LevelView)})
	assert.NoError(t, err)
	assert.Equal(t, 25, r.Resolve("consortium").Rank)
	assert.Len(t, r.List(), 5)
}

// TestVisibilityRegistryDefineRejectsConflicts verifies name and rank
// uniqueness.
func TestVisibilityRegistryDefineRejectsConflicts(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	err := r.Define(Visibility{Name: VisibilityPublic, Rank: 99})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	err = r.Define(Visibility{Name: "duplicate-rank", Rank: 20})
	assert.Error(t, err)

	err = r.Define(Visibility{Name: "", Rank: 99})
	assert.Error(t, err)
}

// TestVisibilityCompare verifies tier ordering helpers.
func TestVisibilityCompare(t *testing.T) {
	r := NewVisibilityRegistry(NewLevelRegistry())

	private := r.Resolve(VisibilityPrivate)
	public := r.Resolve(VisibilityPublic)

	assert.Negative(t, private.Compare(public))
	assert.True(t, public.AtLeast(private))
	assert.False(t, private.AtLeast(public))
	assert.Equal(t, "public", public.String())
}
