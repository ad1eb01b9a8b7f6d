package answer

import (
	"github.com/shelfsight/shelfsight/internal/analyzer"
)

// TraceStep records one pipeline stage's outcome for the analysis trace.
type TraceStep struct {
	Step   string `json:"step"`
	Status string `json:"status"` // "ok" | "partial"
}

// EntityRefs surfaces what the question resolved to.
type EntityRefs struct {
	Brands []string `json:"brands"`
	ASINs  []string `json:"asins"`
}

// ProactiveSuggestion is one "watch this next" item derived from mart-wide
// signals rather than from the question asked.
type ProactiveSuggestion struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Severity string `json:"severity"` // "info" | "watch" | "alert"
}

// ChatResponse is the full wire contract returned to the UI layer.
type ChatResponse struct {
	Intent             string                `json:"intent"`
	Answer             string                `json:"answer"`
	Bullets            []string              `json:"bullets"`
	Evidence           []analyzer.Evidence   `json:"evidence"`
	Proactive          []ProactiveSuggestion `json:"proactive"`
	SuggestedQuestions []string              `json:"suggestedQuestions"`
	Warnings           []string              `json:"warnings"`

	Confidence  *float64            `json:"confidence,omitempty"`
	Assumptions []string            `json:"assumptions,omitempty"`
	Citations   []analyzer.Citation `json:"citations,omitempty"`

	AnalysisTrace []TraceStep `json:"analysisTrace,omitempty"`
	Entities      *EntityRefs `json:"entities,omitempty"`

	HistoricalWindow string                 `json:"historicalWindow,omitempty"`
	SalesArchetype   string                 `json:"salesArchetype,omitempty"`
	TopContributors  []analyzer.Contributor `json:"topContributors,omitempty"`

	// Clarification marks a response that asks back instead of answering.
	Clarification bool     `json:"clarification,omitempty"`
	Options       []string `json:"options,omitempty"`

	TraceID string `json:"traceId,omitempty"`
}
