package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Thresholds holds every fixed heuristic constant used by the analyzers and
// the mart builder. Values are configuration, not learned.
type Thresholds struct {
	// TrendGrowth is the MoM growth magnitude above which a history window is
	// tagged up or down instead of flat.
	TrendGrowth float64 `yaml:"trend_growth"` // Default: 0.08

	// ConcentrationTopSKUShare triggers concentration risk when the top SKU
	// holds at least this revenue share.
	ConcentrationTopSKUShare float64 `yaml:"concentration_top_sku_share"` // Default: 0.55

	// OpportunitySegmentShare is the minimum segment revenue share for an
	// opportunity signal.
	OpportunitySegmentShare float64 `yaml:"opportunity_segment_share"` // Default: 0.20

	// OpportunityOwnShareCeiling is the own-brand share below which a large
	// segment counts as an opportunity.
	OpportunityOwnShareCeiling float64 `yaml:"opportunity_own_share_ceiling"` // Default: 0.05

	// Archetype percentile cut points (nearest-rank, 0..1).
	ArchetypeASPHigh       float64 `yaml:"archetype_asp_high"`        // Default: 0.70
	ArchetypeASPLow        float64 `yaml:"archetype_asp_low"`         // Default: 0.30
	ArchetypeUnitShareHigh float64 `yaml:"archetype_unit_share_high"` // Default: 0.60
	ArchetypeUnitShareLow  float64 `yaml:"archetype_unit_share_low"`  // Default: 0.40
	ArchetypeRevenueFactor float64 `yaml:"archetype_revenue_factor"`  // Default: 0.70 (x median)

	// MartCacheTTLSeconds bounds how long a built mart is served before rebuild.
	MartCacheTTLSeconds int `yaml:"mart_cache_ttl_seconds"` // Default: 180

	// MaxBullets caps the bullet list in any single answer.
	MaxBullets int `yaml:"max_bullets"` // Default: 6

	// MaxWarnings caps carried-over data-quality warnings after de-duplication.
	MaxWarnings int `yaml:"max_warnings"` // Default: 5
}

// DefaultThresholds returns the shipped heuristic constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TrendGrowth:                0.08,
		ConcentrationTopSKUShare:   0.55,
		OpportunitySegmentShare:    0.20,
		OpportunityOwnShareCeiling: 0.05,
		ArchetypeASPHigh:           0.70,
		ArchetypeASPLow:            0.30,
		ArchetypeUnitShareHigh:     0.60,
		ArchetypeUnitShareLow:      0.40,
		ArchetypeRevenueFactor:     0.70,
		MartCacheTTLSeconds:        180,
		MaxBullets:                 6,
		MaxWarnings:                5,
	}
}

// MartCacheTTL returns the cache TTL as a duration.
func (t Thresholds) MartCacheTTL() time.Duration {
	return time.Duration(t.MartCacheTTLSeconds) * time.Second
}

// LoadThresholds reads a thresholds YAML file. Missing fields keep their
// defaults rather than zeroing out.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds config: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds YAML: %w", err)
	}
	return t, nil
}
