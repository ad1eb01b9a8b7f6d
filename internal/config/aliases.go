package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PinnedAlias forces an alias to resolve to a designated brand key even when
// a textual collision would point elsewhere. Pins are an explicit priority
// list: earlier entries win over later ones, and every pin wins over aliases
// derived from snapshot data.
type PinnedAlias struct {
	Alias string `yaml:"alias"`
	Brand string `yaml:"brand"`
}

// AliasConfig configures alias-table construction for one caller.
type AliasConfig struct {
	// OwnBrands lists the caller's tracked brand keys, in scope-priority order.
	OwnBrands []string `yaml:"own_brands"`

	// Pins is the protected alias list applied on top of derived aliases.
	Pins []PinnedAlias `yaml:"pins"`

	// CategoryKeywordBoosts adds intent-score points for domain vocabulary,
	// keyed by category id, then intent name, then keyword.
	CategoryKeywordBoosts map[string]map[string][]string `yaml:"category_keyword_boosts"`
}

// DefaultAliasConfig returns an empty-pin configuration; callers normally load
// a real one from disk.
func DefaultAliasConfig() AliasConfig {
	return AliasConfig{}
}

// LoadAliasConfig reads the alias/pins YAML file.
func LoadAliasConfig(path string) (AliasConfig, error) {
	var cfg AliasConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read alias config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse alias YAML: %w", err)
	}
	return cfg, nil
}
