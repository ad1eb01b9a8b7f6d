package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/query"
)

func TestRouteCoversEveryIntent(t *testing.T) {
	intents := []query.Intent{
		query.IntentFastestGrowth, query.IntentRankMover, query.IntentTypeGrowth,
		query.IntentGrowthDriver, query.IntentProductHistory, query.IntentBrandArchetype,
		query.IntentPriceVsVolume, query.IntentCompetitor, query.IntentProductTrend,
		query.IntentBrandHealth, query.IntentMarketShift, query.IntentCompetitiveGaps,
		query.IntentFeatureAnalysis, query.IntentRisk, query.IntentConcentration,
		query.IntentOpportunity, query.IntentTypeMix, query.IntentPriceVolumeTradeoff,
		query.IntentTopProducts, query.IntentMarketLeader, query.IntentMarketSize,
	}
	e := query.Entities{ASINs: []string{"b01innova1"}}
	for _, intent := range intents {
		_, _, ok := Route(query.Parsed{Intent: intent}, e)
		assert.True(t, ok, string(intent))
	}
}

func TestRouteUnknownIntent(t *testing.T) {
	_, _, ok := Route(query.Parsed{Intent: query.IntentUnknown}, query.Entities{})
	assert.False(t, ok)
}

func TestRouteClarifiesMissingProduct(t *testing.T) {
	id, clar, ok := Route(query.Parsed{Intent: query.IntentProductTrend}, query.Entities{})
	require.True(t, ok)
	assert.Equal(t, ProductTrend, id)
	require.NotNil(t, clar)
	assert.Contains(t, clar.Question, "Which product")
	assert.Empty(t, clar.Options)
}

func TestRouteClarifiesAmbiguousProduct(t *testing.T) {
	e := query.Entities{ASINs: []string{"b01innova1", "b02ancel22"}}
	_, clar, ok := Route(query.Parsed{Intent: query.IntentProductHistory}, e)
	require.True(t, ok)
	require.NotNil(t, clar)
	assert.Equal(t, []string{"b01innova1", "b02ancel22"}, clar.Options)
}

func TestRouteUniqueProductPassesGate(t *testing.T) {
	e := query.Entities{ASINs: []string{"b01innova1"}}
	id, clar, ok := Route(query.Parsed{Intent: query.IntentCompetitor}, e)
	require.True(t, ok)
	assert.Nil(t, clar)
	assert.Equal(t, ProductCompetitor, id)
}

func TestRouteBrandCompetitorReroutes(t *testing.T) {
	// "Who competes with Ancel" is a gaps question, not a product match.
	e := query.Entities{Brands: []string{"ancel"}}
	id, clar, ok := Route(query.Parsed{Intent: query.IntentCompetitor}, e)
	require.True(t, ok)
	assert.Nil(t, clar)
	assert.Equal(t, CompetitiveGaps, id)
}

func TestRunDispatchesEveryID(t *testing.T) {
	in := testInput(t)
	in.Entities = query.Entities{ASINs: []string{"b01innova1"}}

	for _, id := range All {
		f := Run(id, in)
		assert.NotEmpty(t, f.Answer, string(id))
		assert.GreaterOrEqual(t, f.Confidence, 0.0, string(id))
		assert.LessOrEqual(t, f.Confidence, 1.0, string(id))
	}
}

func TestRunUnknownIDPanics(t *testing.T) {
	assert.Panics(t, func() { Run(ID("no_such_analyzer"), testInput(t)) })
}
