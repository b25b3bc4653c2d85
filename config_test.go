package grantkit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseConfig verifies YAML parsing.
func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
levels:
  - name: audit
    rank: 35
    assignable: true
visibilities:
  - name: open
    enabled: true
  - name: consortium
    rank: 25
    default: view
    enabled: true
`))
	require.NoError(t, err)
	require.Len(t, cfg.Levels, 1)
	require.Len(t, cfg.Visibilities, 2)

	assert.Equal(t, "audit", cfg.Levels[0].Name)
	assert.Equal(t, 35, cfg.Levels[0].Rank)
	assert.True(t, cfg.Levels[0].Assignable)

	require.NotNil(t, cfg.Visibilities[0].Enabled)
	assert.True(t, *cfg.Visibilities[0].Enabled)
	assert.Equal(t, "view", cfg.Visibilities[1].Default)
}

// TestParseConfigInvalid verifies malformed YAML is rejected.
func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig([]byte("levels: {not a list"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestLoadConfig verifies reading from a file.
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels:\n  - name: audit\n    rank: 35\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Levels, 1)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestConfigApply verifies applying a config to the registries.
func TestConfigApply(t *testing.T) {
	levels := NewLevelRegistry()
	vis := NewVisibilityRegistry(levels)

	cfg, err := ParseConfig([]byte(`
levels:
  - name: audit
    rank: 35
    assignable: true
visibilities:
  - name: open
    enabled: true
  - name: consortium
    rank: 25
    default: view
    enabled: true
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Apply(levels, vis))

	assert.True(t, levels.Known("audit"))
	assert.Equal(t, 35, levels.Resolve("audit").Rank)

	// Existing tier toggled, new tier defined.
	assert.False(t, vis.Resolve(VisibilityOpen).Disabled)
	assert.True(t, vis.Known("consortium"))
	assert.Equal(t, LevelView, vis.Resolve("consortium").Default.Name)
	assert.False(t, vis.Resolve("consortium").Disabled)
}

// TestConfigApplyDisabledTier verifies a new tier can ship disabled.
func TestConfigApplyDisabledTier(t *testing.T) {
	levels := NewLevelRegistry()
	vis := NewVisibilityRegistry(levels)

	enabled := false
	cfg := &Config{Visibilities: []VisibilityConfig{
		{Name: "restricted", Rank: 5, Default: LevelNone, Enabled: &enabled},
	}}
	require.NoError(t, cfg.Apply(levels, vis))

	assert.True(t, vis.Known("restricted"))
	assert.True(t, vis.Resolve("restricted").Disabled)
}

// TestConfigApplyConflicts verifies registry validation surfaces through
// Apply.
func TestConfigApplyConflicts(t *testing.T) {
	levels := NewLevelRegistry()
	vis := NewVisibilityRegistry(levels)

	cfg := &Config{Levels: []LevelConfig{{Name: LevelView, Rank: 99}}}
	assert.Error(t, cfg.Apply(levels, vis))

	cfg = &Config{Visibilities: []VisibilityConfig{{Name: "clash", Rank: 20}}}
	assert.Error(t, cfg.Apply(levels, vis))
}
