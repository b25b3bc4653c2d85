package grantkit

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the deployment configuration for the registries: extra access
// levels, extra visibility tiers, and per-deployment enabling of tiers.
//
// Example:
//
//	levels:
//	  - name: audit
//	    rank: 35
//	    assignable: true
//	visibilities:
//	  - name: open
//	    enabled: true
//	  - name: consortium
//	    rank: 25
//	    default: view
//	    enabled: true
type Config struct {
	Levels       []LevelConfig      `yaml:"levels"`
	Visibilities []VisibilityConfig `yaml:"visibilities"`
}

// LevelConfig defines one additional access level.
type LevelConfig struct {
	Name       string `yaml:"name"`
	Rank       int    `yaml:"rank"`
	Assignable bool   `yaml:"assignable"`
}

// VisibilityConfig defines a new visibility tier, or toggles an existing one
// when only name and enabled are given.
type VisibilityConfig struct {
	Name    string `yaml:"name"`
	Rank    int    `yaml:"rank"`
	Default string `yaml:"default"`
	Enabled *bool  `yaml:"enabled"`
}

// ParseConfig parses a YAML deployment config.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewError(ErrInvalidConfig, err.Error())
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML deployment config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrInvalidConfig, err.Error())
	}
	return ParseConfig(data)
}

// Apply installs the config into the registries: new levels and tiers are
// defined, known tiers have their enabled flag updated. The first error
// stops application.
func (c *Config) Apply(levels *LevelRegistry, visibilities *VisibilityRegistry) error {
	for _, lc := range c.Levels {
		if err := levels.Define(AccessLevel{Name: lc.Name, Rank: lc.Rank, Assignable: lc.Assignable}); err != nil {
			return err
		}
	}
	for _, vc := range c.Visibilities {
		if visibilities.Known(vc.Name) {
			if vc.Enabled != nil {
				visibilities.SetEnabled(vc.Name, *vc.Enabled)
			}
			continue
		}
		disabled := vc.Enabled != nil && !*vc.Enabled
		v := Visibility{
			Name:     vc.Name,
			Rank:     vc.Rank,
			Default:  levels.Resolve(vc.Default),
			Disabled: disabled,
		}
		if err := visibilities.Define(v); err != nil {
			return err
		}
	}
	return nil
}
