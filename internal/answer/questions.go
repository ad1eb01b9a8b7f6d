package answer

import (
	"github.com/shelfsight/shelfsight/internal/query"
)

// suggestedByIntent keys fixed follow-up question sets by intent. The lists
// are static copy, never generated.
var suggestedByIntent = map[query.Intent][]string{
	query.IntentFastestGrowth: {
		"What is driving that growth, price or volume?",
		"Which brand moved the most in the rankings?",
		"How concentrated is this market?",
	},
	query.IntentRankMover: {
		"Who is the fastest-growing brand this month?",
		"How has the market shifted since last month?",
	},
	query.IntentGrowthDriver: {
		"Which products contributed most to the change?",
		"Is the category price-sensitive?",
	},
	query.IntentCompetitor: {
		"How is that competitor trending?",
		"Where are my competitive gaps?",
	},
	query.IntentRisk: {
		"How concentrated is this market?",
		"Which segments am I missing?",
	},
	query.IntentMarketLeader: {
		"Who is the fastest-growing brand this month?",
		"What archetype does the leader sell on?",
	},
	query.IntentMarketSize: {
		"What is the product type mix?",
		"Who leads this market?",
	},
}

// defaultSuggestions is the generic set used for unknown or unlisted intents.
var defaultSuggestions = []string{
	"Who is the fastest-growing brand this month?",
	"Who leads this market?",
	"What should I be worried about?",
	"Where are the biggest opportunities?",
}

// SuggestQuestions returns the fixed follow-up list for an intent.
func SuggestQuestions(intent query.Intent) []string {
	if qs, ok := suggestedByIntent[intent]; ok {
		return qs
	}
	return defaultSuggestions
}
