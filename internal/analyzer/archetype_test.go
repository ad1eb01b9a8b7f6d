package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 2.0, percentile(values, 0.5))
	assert.Equal(t, 3.0, percentile(values, 0.7))
	assert.Equal(t, 4.0, percentile(values, 1))
	assert.Equal(t, 0.0, percentile(nil, 0.5))
}

// archetypeMart builds one snapshot with a clearly premium brand, a clearly
// high-volume discount brand, and one in the middle.
func archetypeMart(t *testing.T) *mart.Mart {
	t.Helper()
	date := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	series := []snapshot.Snapshot{
		{
			CategoryID:   "gauges",
			Date:         date,
			TotalRevenue: 150000,
			TotalUnits:   1600,
			Brands: []snapshot.BrandTotal{
				{Brand: "apex", Name: "Apex Instruments", Revenue: 50000, Units: 100, Share: 0.3333},
				{Brand: "bulkco", Name: "BulkCo", Revenue: 50000, Units: 1000, Share: 0.3333},
				{Brand: "midline", Name: "Midline", Revenue: 50000, Units: 500, Share: 0.3333},
			},
		},
	}
	b := mart.NewBuilder(config.AliasConfig{}, config.DefaultThresholds())
	m, ok := b.Build(series, "gauges", date)
	require.True(t, ok)
	return m
}

func TestClassifyArchetypes(t *testing.T) {
	m := archetypeMart(t)
	got := ClassifyArchetypes(m, config.DefaultThresholds())

	assert.Equal(t, ArchetypePriceLed, got["apex"], "ASP $500 on thin volume")
	assert.Equal(t, ArchetypeVolumeLed, got["bulkco"], "ASP $50 on heavy volume")
	assert.Equal(t, ArchetypeBalanced, got["midline"])
}

func TestClassifyArchetypesTotal(t *testing.T) {
	// Every brand in the mart gets exactly one archetype.
	m := testMart(t)
	got := ClassifyArchetypes(m, config.DefaultThresholds())

	require.Len(t, got, len(m.Brands))
	for key, a := range got {
		assert.Contains(t, []Archetype{ArchetypePriceLed, ArchetypeVolumeLed, ArchetypeBalanced}, a, key)
	}
}

func TestClassifyArchetypesEmptyMart(t *testing.T) {
	date := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	series := []snapshot.Snapshot{{CategoryID: "empty", Date: date}}
	b := mart.NewBuilder(config.AliasConfig{}, config.DefaultThresholds())
	m, ok := b.Build(series, "empty", date)
	require.True(t, ok)

	assert.Empty(t, ClassifyArchetypes(m, config.DefaultThresholds()))
}

func TestAnalyzeBrandArchetypeScoped(t *testing.T) {
	in := Input{
		Mart:       archetypeMart(t),
		Scope:      query.Scope{Mode: query.ScopeExplicitBrand, Brands: []string{"apex"}},
		Thresholds: config.DefaultThresholds(),
	}

	f := AnalyzeBrandArchetype(in)
	assert.Equal(t, ArchetypePriceLed, f.SalesArchetype)
	assert.Contains(t, f.Answer, "Apex Instruments")
	assert.Contains(t, f.Answer, "price-led")
}

func TestAnalyzeBrandArchetypeMarketMix(t *testing.T) {
	// An explicit scope on an absent brand leaves no scoped brand, which
	// falls back to the market-wide archetype mix.
	in := Input{
		Mart:       archetypeMart(t),
		Scope:      query.Scope{Mode: query.ScopeExplicitBrand, Brands: []string{"ghost"}},
		Thresholds: config.DefaultThresholds(),
	}

	f := AnalyzeBrandArchetype(in)
	assert.Contains(t, f.Answer, "1 price-led")
	assert.Contains(t, f.Answer, "1 volume-led")
	assert.Contains(t, f.Answer, "1 balanced")
}
