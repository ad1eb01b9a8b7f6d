package answer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/analyzer"
	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

func testMart(t *testing.T) *mart.Mart {
	t.Helper()
	date := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	series := []snapshot.Snapshot{
		{
			CategoryID:   "obd",
			Date:         date,
			TotalRevenue: 126000,
			TotalUnits:   1050,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 76000, Units: 630, Share: 0.6032},
				{Brand: "ancel", Name: "Ancel", Revenue: 50000, Units: 420, Share: 0.3968},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 120, Revenue: 76000, Units: 630, Rating: 4.2},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 80, Revenue: 30000, Units: 320, Rating: 4.8},
				{ASIN: "B03TOPDON3", Title: "Topdon TopScan Lite", Brand: "Topdon", Type: "scanner", Price: 95, Revenue: 20000, Units: 120, Rating: 4.7},
			},
			QualityIssues: []string{"dup warning", "dup warning", "units estimated for 2 listings"},
		},
	}
	b := mart.NewBuilder(config.AliasConfig{}, config.DefaultThresholds())
	m, ok := b.Build(series, "obd", date)
	require.True(t, ok)
	return m
}

func TestAssemblePassesConfidenceThrough(t *testing.T) {
	a := NewAssembler(config.DefaultThresholds())
	m := testMart(t)

	f := analyzer.Finding{Answer: "answer", Confidence: 0.42, Bullets: []string{"b1"}}
	resp := a.Assemble(m, query.Parsed{Intent: query.IntentMarketSize}, query.Scope{Mode: query.ScopeAllBrands}, query.Entities{}, f, nil)

	require.NotNil(t, resp.Confidence)
	assert.InDelta(t, 0.42, *resp.Confidence, 0.0001)
	assert.Equal(t, "answer", resp.Answer)
	assert.Equal(t, "market_size", resp.Intent)
	assert.False(t, resp.Clarification)
	assert.NotEmpty(t, resp.SuggestedQuestions)
}

func TestAssembleDeduplicatesAndCapsWarnings(t *testing.T) {
	a := NewAssembler(config.DefaultThresholds())
	m := testMart(t)

	resp := a.Assemble(m, query.Parsed{}, query.Scope{Mode: query.ScopeAllBrands}, query.Entities{}, analyzer.Finding{}, nil)
	assert.Equal(t, []string{"dup warning", "units estimated for 2 listings"}, resp.Warnings)
}

func TestCapWarningsLimit(t *testing.T) {
	got := capWarnings([]string{"a", "b", "c", "d", "", "a"}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestAssembleClarification(t *testing.T) {
	a := NewAssembler(config.DefaultThresholds())
	m := testMart(t)

	clar := &analyzer.Clarification{Question: "Which product?", Options: []string{"b01innova1", "b02ancel22"}}
	resp := a.AssembleClarification(m, query.Parsed{Intent: query.IntentProductTrend}, clar, nil)

	assert.True(t, resp.Clarification)
	assert.Equal(t, "Which product?", resp.Answer)
	assert.Equal(t, []string{"b01innova1", "b02ancel22"}, resp.Options)
	assert.Nil(t, resp.Confidence)
}

func TestAssembleUnknown(t *testing.T) {
	a := NewAssembler(config.DefaultThresholds())
	m := testMart(t)

	resp := a.AssembleUnknown(m, nil)
	assert.Equal(t, "unknown", resp.Intent)
	require.NotNil(t, resp.Confidence)
	assert.InDelta(t, 0.1, *resp.Confidence, 0.0001)
	assert.NotEmpty(t, resp.SuggestedQuestions)
}

func TestBuildProactiveConcentrationAlert(t *testing.T) {
	m := testMart(t)

	// Market-wide scope still reports the concentration alert; the top
	// SKU holds 60% of revenue.
	got := BuildProactive(m, query.Scope{Mode: query.ScopeAllBrands}, config.DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, "Single-SKU concentration", got[0].Title)
	assert.Equal(t, "alert", got[0].Severity)
}

func TestBuildProactiveScopedSignals(t *testing.T) {
	m := testMart(t)

	// Innova's 4.2 rating trails rivals' 4.75, and the reader segment is
	// 23.8% of revenue with no Innova share.
	got := BuildProactive(m, query.Scope{Mode: query.ScopeOwnBrands, Brands: []string{"innova"}}, config.DefaultThresholds())
	require.Len(t, got, 3)
	assert.Equal(t, "Single-SKU concentration", got[0].Title)
	assert.Equal(t, "Rating gap", got[1].Title)
	assert.Equal(t, "Segment blind spot", got[2].Title)
	assert.Contains(t, got[2].Detail, "reader")
}
