package analyzer

import (
	"fmt"

	"github.com/shelfsight/shelfsight/internal/query"
)

// ID identifies one analyzer routine. The set is closed: routing is a total
// function from parsed intent to ID, and the dispatch table is checked
// exhaustive at package init.
type ID string

const (
	FastestGrowth       ID = "fastest_growth"
	FastestRankMover    ID = "fastest_rank_mover"
	TypeGrowth          ID = "type_growth"
	GrowthDriver        ID = "growth_driver"
	ASINHistory         ID = "asin_history"
	BrandArchetype      ID = "brand_archetype"
	PriceVsVolume       ID = "price_vs_volume_explainer"
	ProductCompetitor   ID = "product_competitor"
	ProductTrend        ID = "product_trend"
	BrandHealth         ID = "brand_health"
	MarketShift         ID = "market_shift"
	CompetitiveGaps     ID = "competitive_gaps"
	RiskSignal          ID = "risk_signal"
	MarketConcentration ID = "market_concentration"
	OpportunitySignal   ID = "opportunity_signal"
	ProductTypeMix      ID = "product_type_mix"
	PriceVolumeTradeoff ID = "price_volume_tradeoff"
	TopProducts         ID = "top_products"
	MarketLeader        ID = "market_leader"
	MarketSize          ID = "market_size"
)

// All lists every analyzer ID. Routing and dispatch are validated against it.
var All = []ID{
	FastestGrowth, FastestRankMover, TypeGrowth, GrowthDriver, ASINHistory,
	BrandArchetype, PriceVsVolume, ProductCompetitor, ProductTrend, BrandHealth,
	MarketShift, CompetitiveGaps, RiskSignal, MarketConcentration,
	OpportunitySignal, ProductTypeMix, PriceVolumeTradeoff, TopProducts,
	MarketLeader, MarketSize,
}

// handlers is the dispatch table. Adding an ID to All without a handler here
// is caught by the init check below.
var handlers = map[ID]Func{
	FastestGrowth:       AnalyzeFastestGrowth,
	FastestRankMover:    AnalyzeRankMover,
	TypeGrowth:          AnalyzeTypeGrowth,
	GrowthDriver:        AnalyzeGrowthDriver,
	ASINHistory:         AnalyzeProductHistory,
	BrandArchetype:      AnalyzeBrandArchetype,
	PriceVsVolume:       AnalyzePriceVsVolume,
	ProductCompetitor:   AnalyzeProductCompetitor,
	ProductTrend:        AnalyzeProductTrend,
	BrandHealth:         AnalyzeBrandHealth,
	MarketShift:         AnalyzeMarketShift,
	CompetitiveGaps:     AnalyzeCompetitiveGaps,
	RiskSignal:          AnalyzeRisk,
	MarketConcentration: AnalyzeConcentration,
	OpportunitySignal:   AnalyzeOpportunity,
	ProductTypeMix:      AnalyzeTypeMix,
	PriceVolumeTradeoff: AnalyzePriceVolumeTradeoff,
	TopProducts:         AnalyzeTopProducts,
	MarketLeader:        AnalyzeMarketLeader,
	MarketSize:          AnalyzeMarketSize,
}

func init() {
	for _, id := range All {
		if handlers[id] == nil {
			panic(fmt.Sprintf("analyzer: no handler registered for %s", id))
		}
	}
	if len(handlers) != len(All) {
		panic("analyzer: handler table and ID list disagree")
	}
}

// intentToAnalyzer routes parser intents. Several intents share an analyzer.
var intentToAnalyzer = map[query.Intent]ID{
	query.IntentFastestGrowth:       FastestGrowth,
	query.IntentRankMover:           FastestRankMover,
	query.IntentTypeGrowth:          TypeGrowth,
	query.IntentGrowthDriver:        GrowthDriver,
	query.IntentProductHistory:      ASINHistory,
	query.IntentBrandArchetype:      BrandArchetype,
	query.IntentPriceVsVolume:       PriceVsVolume,
	query.IntentCompetitor:          ProductCompetitor,
	query.IntentProductTrend:        ProductTrend,
	query.IntentBrandHealth:         BrandHealth,
	query.IntentMarketShift:         MarketShift,
	query.IntentCompetitiveGaps:     CompetitiveGaps,
	query.IntentFeatureAnalysis:     CompetitiveGaps,
	query.IntentRisk:                RiskSignal,
	query.IntentConcentration:       MarketConcentration,
	query.IntentOpportunity:         OpportunitySignal,
	query.IntentTypeMix:             ProductTypeMix,
	query.IntentPriceVolumeTradeoff: PriceVolumeTradeoff,
	query.IntentTopProducts:         TopProducts,
	query.IntentMarketLeader:        MarketLeader,
	query.IntentMarketSize:          MarketSize,
}

// needsUniqueProduct lists analyzers that require exactly one resolved ASIN.
var needsUniqueProduct = map[ID]bool{
	ASINHistory:       true,
	ProductTrend:      true,
	ProductCompetitor: true,
}

// Clarification is the one response shape that short-circuits analyzer
// execution: the question needs a unique product target the resolver could
// not pin down.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Route maps a parsed query plus resolved entities to an analyzer ID.
// ok is false for an unroutable intent. A non-nil Clarification means the
// caller must ask back instead of running any analyzer; this is the only
// branch that can short-circuit execution.
func Route(parsed query.Parsed, entities query.Entities) (id ID, clar *Clarification, ok bool) {
	id, ok = intentToAnalyzer[parsed.Intent]
	if !ok {
		return "", nil, false
	}

	// A competitor question about a brand rather than a product stays at
	// brand level and never needs the product gate.
	if id == ProductCompetitor && len(entities.ASINs) == 0 && len(entities.Brands) > 0 {
		return CompetitiveGaps, nil, true
	}

	if needsUniqueProduct[id] {
		switch n := len(entities.ASINs); {
		case n == 0:
			return id, &Clarification{
				Question: "Which product do you mean? Name an ASIN or a model (for example \"Innova 5610\").",
			}, true
		case n > 1:
			opts := make([]string, 0, len(entities.ASINs))
			for _, a := range entities.ASINs {
				opts = append(opts, a)
			}
			return id, &Clarification{
				Question: "Your question matches more than one product. Which one should I analyze?",
				Options:  opts,
			}, true
		}
	}
	return id, nil, true
}

// Run executes one analyzer by ID. Callers must only pass IDs returned by
// Route; an unknown ID is a programmer error.
func Run(id ID, in Input) Finding {
	h, ok := handlers[id]
	if !ok {
		panic(fmt.Sprintf("analyzer: unknown id %s", id))
	}
	return h(in)
}
