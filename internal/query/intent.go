package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// Intent is the closed set of question shapes the parser can detect.
type Intent string

const (
	IntentUnknown             Intent = "unknown"
	IntentFastestGrowth       Intent = "fastest_growth"
	IntentRankMover           Intent = "fastest_rank_mover"
	IntentTypeGrowth          Intent = "type_growth"
	IntentGrowthDriver        Intent = "growth_driver"
	IntentProductHistory      Intent = "asin_history"
	IntentBrandArchetype      Intent = "brand_archetype"
	IntentPriceVsVolume       Intent = "price_vs_volume_explainer"
	IntentCompetitor          Intent = "product_competitor"
	IntentProductTrend        Intent = "product_trend"
	IntentBrandHealth         Intent = "brand_health"
	IntentMarketShift         Intent = "market_shift"
	IntentCompetitiveGaps     Intent = "competitive_gaps"
	IntentFeatureAnalysis     Intent = "feature_analysis"
	IntentRisk                Intent = "risk_signal"
	IntentConcentration       Intent = "market_concentration"
	IntentOpportunity         Intent = "opportunity_signal"
	IntentTypeMix             Intent = "product_type_mix"
	IntentPriceVolumeTradeoff Intent = "price_volume_tradeoff"
	IntentTopProducts         Intent = "top_products"
	IntentMarketLeader        Intent = "market_leader"
	IntentMarketSize          Intent = "market_size"
)

// Metric is the ranking metric a question asks about.
type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricUnits   Metric = "units"
)

// GrowthWindow selects the comparison base for growth math.
type GrowthWindow string

const (
	WindowMoM  GrowthWindow = "mom"
	WindowYoY  GrowthWindow = "yoy"
	WindowBoth GrowthWindow = "both"
)

// Level is the target granularity of a question.
type Level string

const (
	LevelMarket Level = "market"
	LevelBrand  Level = "brand"
	LevelType   Level = "type"
	LevelASIN   Level = "asin"
)

// Plan is the execution plan extracted alongside the intent.
type Plan struct {
	Metric     Metric       `json:"metric"`
	Window     GrowthWindow `json:"window"`
	Level      Level        `json:"level"`
	TypeScope  string       `json:"type_scope,omitempty"`
	RankTarget int          `json:"rank_target,omitempty"`
}

// Parsed is the full result of query understanding over raw text.
type Parsed struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Plan       Plan    `json:"plan"`
}

// intentKeywords drives the base keyword scoring. A matched keyword adds one
// point when it is five characters or shorter, two points otherwise.
var intentKeywords = map[Intent][]string{
	IntentFastestGrowth:       {"fastest", "growing", "growth", "grew", "gaining", "momentum", "mover", "hottest", "rising"},
	IntentRankMover:           {"rank", "ranking", "climbed", "jumped", "moved", "position", "leaderboard", "dropped"},
	IntentTypeGrowth:          {"type", "segment", "category", "growing segment"},
	IntentGrowthDriver:        {"driver", "driving", "driven", "because", "why", "decompose", "explain growth", "contribution"},
	IntentProductHistory:      {"history", "historical", "over time", "past months", "timeline", "track record"},
	IntentBrandArchetype:      {"archetype", "positioning", "premium", "budget", "price led", "volume led", "strategy"},
	IntentPriceVsVolume:       {"price or volume", "price vs volume", "asp", "pricing effect", "volume effect"},
	IntentCompetitor:          {"competitor", "competitors", "rival", "rivals", "versus", "against", "compare", "competes", "competition"},
	IntentProductTrend:        {"trend", "trending", "trajectory", "direction", "doing lately"},
	IntentBrandHealth:         {"health", "healthy", "performing", "performance", "how are we", "how is"},
	IntentMarketShift:         {"shift", "shifting", "changed", "changing", "dynamics", "landscape"},
	IntentCompetitiveGaps:     {"gap", "gaps", "missing", "weakness", "weaknesses", "lacking", "behind"},
	IntentFeatureAnalysis:     {"feature", "features", "spec", "specs", "capability"},
	IntentRisk:                {"risk", "risks", "threat", "threats", "worried", "worry", "danger", "exposed", "vulnerable"},
	IntentConcentration:       {"concentration", "concentrated", "dependence", "dependent", "reliance", "diversified"},
	IntentOpportunity:         {"opportunity", "opportunities", "whitespace", "untapped", "expand", "enter"},
	IntentTypeMix:             {"mix", "breakdown", "composition", "split", "distribution"},
	IntentPriceVolumeTradeoff: {"tradeoff", "trade off", "elasticity", "raise price", "lower price", "cut price"},
	IntentTopProducts:         {"top products", "best sellers", "bestsellers", "top asins", "top skus", "best selling"},
	IntentMarketLeader:        {"leader", "leading", "biggest brand", "largest brand", "number one", "dominates", "dominant"},
	IntentMarketSize:          {"market size", "total revenue", "how big", "overall market", "total units", "total sales"},
}

// bonusRule adds a large fixed bonus for phrasings the flat keyword lists
// under-weight.
type bonusRule struct {
	re     *regexp.Regexp
	intent Intent
	points float64
}

var bonusRules = []bonusRule{
	{regexp.MustCompile(`what should i be (worried|concerned) about`), IntentRisk, 6},
	{regexp.MustCompile(`(biggest|main|top) (competitor|rival)`), IntentCompetitor, 6},
	{regexp.MustCompile(`fastest[ -]growing`), IntentFastestGrowth, 6},
	{regexp.MustCompile(`who (is|'s) (winning|on top|number one)`), IntentMarketLeader, 6},
	{regexp.MustCompile(`how (big|large) is (the|this) market`), IntentMarketSize, 6},
	{regexp.MustCompile(`price.{0,12}volume|volume.{0,12}price`), IntentPriceVsVolume, 4},
	{regexp.MustCompile(`where (should|could|can) (i|we) (expand|grow|play)`), IntentOpportunity, 6},
	{regexp.MustCompile(`(moved|climbed|fell|dropped) (up|down )?(the )?(rank|leaderboard)`), IntentRankMover, 5},
	{regexp.MustCompile(`what('s| is) driving`), IntentGrowthDriver, 6},
}

// Parser converts a raw question into a Parsed record. Parsing is a pure
// function: the same text and category always yields the same result.
type Parser struct {
	// boosts adds category-specific points per intent keyword, keyed by
	// category id then intent name.
	boosts map[string]map[string][]string
}

// NewParser creates a parser with optional category keyword boosts.
func NewParser(boosts map[string]map[string][]string) *Parser {
	return &Parser{boosts: boosts}
}

// Parse scores every intent against the question and returns the winner with
// confidence top/(top+runnerUp). A zero top score yields IntentUnknown with
// confidence zero.
func (p *Parser) Parse(message, categoryID string) Parsed {
	text := snapshot.NormalizeKey(message)

	scores := make(map[Intent]float64)
	for intent, keywords := range intentKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				if len(kw) <= 5 {
					scores[intent]++
				} else {
					scores[intent] += 2
				}
			}
		}
	}
	for _, rule := range bonusRules {
		if rule.re.MatchString(text) {
			scores[rule.intent] += rule.points
		}
	}
	if catBoosts, ok := p.boosts[categoryID]; ok {
		for intentName, keywords := range catBoosts {
			for _, kw := range keywords {
				if strings.Contains(text, snapshot.NormalizeKey(kw)) {
					scores[Intent(intentName)] += 2
				}
			}
		}
	}

	intent, confidence := winner(scores)
	return Parsed{
		Intent:     intent,
		Confidence: confidence,
		Plan:       extractPlan(text, intent),
	}
}

// winner picks the top-scoring intent deterministically: score descending,
// then intent name ascending so ties never depend on map order.
func winner(scores map[Intent]float64) (Intent, float64) {
	if len(scores) == 0 {
		return IntentUnknown, 0
	}
	intents := make([]Intent, 0, len(scores))
	for it := range scores {
		intents = append(intents, it)
	}
	sort.Slice(intents, func(i, j int) bool {
		if scores[intents[i]] != scores[intents[j]] {
			return scores[intents[i]] > scores[intents[j]]
		}
		return intents[i] < intents[j]
	})

	top := scores[intents[0]]
	if top == 0 {
		return IntentUnknown, 0
	}
	var runnerUp float64
	if len(intents) > 1 {
		runnerUp = scores[intents[1]]
	}
	confidence := top / (top + runnerUp)
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return intents[0], confidence
}

var (
	rankTargetRe = regexp.MustCompile(`(?:top|rank|#)\s*(\d+)`)
	typeScopeRe  = regexp.MustCompile(`(?:in|for|among) (?:the )?([a-z][a-z0-9 ]{2,30}?) (?:type|segment|category)`)
)

func extractPlan(text string, intent Intent) Plan {
	plan := Plan{Metric: MetricRevenue, Window: WindowMoM, Level: LevelMarket}

	if strings.Contains(text, "units") || strings.Contains(text, "unit sales") ||
		strings.Contains(text, "volume") || strings.Contains(text, "quantity") {
		plan.Metric = MetricUnits
	}

	yoy := strings.Contains(text, "yoy") || strings.Contains(text, "year over year") ||
		strings.Contains(text, "vs last year") || strings.Contains(text, "year ago") ||
		strings.Contains(text, "annual")
	mom := strings.Contains(text, "mom") || strings.Contains(text, "month over month") ||
		strings.Contains(text, "vs last month") || strings.Contains(text, "this month")
	switch {
	case yoy && mom, strings.Contains(text, "overall growth"):
		plan.Window = WindowBoth
	case yoy:
		plan.Window = WindowYoY
	}

	switch {
	case strings.Contains(text, "asin") || strings.Contains(text, "product") ||
		strings.Contains(text, "model") || strings.Contains(text, "sku"):
		plan.Level = LevelASIN
	case strings.Contains(text, "brand"):
		plan.Level = LevelBrand
	case strings.Contains(text, "type") || strings.Contains(text, "segment"):
		plan.Level = LevelType
	}

	// Some intents imply a level regardless of wording.
	switch intent {
	case IntentProductHistory, IntentProductTrend, IntentCompetitor, IntentGrowthDriver:
		plan.Level = LevelASIN
	case IntentTypeGrowth, IntentTypeMix:
		plan.Level = LevelType
	case IntentBrandArchetype, IntentBrandHealth:
		if plan.Level == LevelMarket {
			plan.Level = LevelBrand
		}
	}

	if m := typeScopeRe.FindStringSubmatch(text); m != nil {
		plan.TypeScope = strings.TrimSpace(m[1])
	}
	if m := rankTargetRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			plan.RankTarget = n
		}
	}
	return plan
}
