package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 0.08, th.TrendGrowth)
	assert.Equal(t, 0.55, th.ConcentrationTopSKUShare)
	assert.Equal(t, 180*time.Second, th.MartCacheTTL())
	assert.Equal(t, 6, th.MaxBullets)
}

func TestLoadThresholdsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trend_growth: 0.12\nmax_bullets: 4\n"), 0o644))

	th, err := LoadThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, 0.12, th.TrendGrowth)
	assert.Equal(t, 4, th.MaxBullets)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.55, th.ConcentrationTopSKUShare)
	assert.Equal(t, 5, th.MaxWarnings)
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	th, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	// The defaults still come back so callers can degrade gracefully.
	assert.Equal(t, 0.08, th.TrendGrowth)
}

func TestLoadAliasConfig(t *testing.T) {
	raw := `
own_brands:
  - innova
pins:
  - alias: innova
    brand: innova
category_keyword_boosts:
  dmm:
    feature_analysis:
      - true rms
`
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadAliasConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"innova"}, cfg.OwnBrands)
	require.Len(t, cfg.Pins, 1)
	assert.Equal(t, "innova", cfg.Pins[0].Alias)
	assert.Equal(t, []string{"true rms"}, cfg.CategoryKeywordBoosts["dmm"]["feature_analysis"])
}

func TestLoadAliasConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("own_brands: {broken"), 0o644))

	_, err := LoadAliasConfig(path)
	assert.Error(t, err)
}
