package answer

import (
	"github.com/shelfsight/shelfsight/internal/analyzer"
	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
)

// Assembler merges analyzer findings with proactive suggestions, suggested
// questions, and carried data-quality warnings into the final response
// contract. Analyzer confidence is passed through, never recomputed.
type Assembler struct {
	thresholds config.Thresholds
}

// NewAssembler creates an assembler.
func NewAssembler(th config.Thresholds) *Assembler {
	return &Assembler{thresholds: th}
}

// Assemble builds the response for a completed analyzer run.
func (a *Assembler) Assemble(m *mart.Mart, parsed query.Parsed, scope query.Scope, entities query.Entities, f analyzer.Finding, trace []TraceStep) *ChatResponse {
	conf := f.Confidence
	resp := &ChatResponse{
		Intent:             string(parsed.Intent),
		Answer:             f.Answer,
		Bullets:            f.Bullets,
		Evidence:           f.Evidence,
		Proactive:          BuildProactive(m, scope, a.thresholds),
		SuggestedQuestions: SuggestQuestions(parsed.Intent),
		Warnings:           capWarnings(m.Warnings, a.thresholds.MaxWarnings),
		Confidence:         &conf,
		Assumptions:        f.Assumptions,
		Citations:          f.Citations,
		AnalysisTrace:      trace,
		Entities:           &EntityRefs{Brands: entities.Brands, ASINs: entities.ASINs},
		HistoricalWindow:   string(f.HistoricalWindow),
		SalesArchetype:     string(f.SalesArchetype),
		TopContributors:    f.TopContributors,
	}
	return resp
}

// AssembleClarification builds the ask-back response for an ambiguous
// product target.
func (a *Assembler) AssembleClarification(m *mart.Mart, parsed query.Parsed, clar *analyzer.Clarification, trace []TraceStep) *ChatResponse {
	return &ChatResponse{
		Intent:             string(parsed.Intent),
		Answer:             clar.Question,
		Clarification:      true,
		Options:            clar.Options,
		SuggestedQuestions: SuggestQuestions(parsed.Intent),
		Warnings:           capWarnings(m.Warnings, a.thresholds.MaxWarnings),
		AnalysisTrace:      trace,
	}
}

// AssembleUnknown builds the fixed low-confidence fallback for an
// unroutable intent.
func (a *Assembler) AssembleUnknown(m *mart.Mart, trace []TraceStep) *ChatResponse {
	conf := 0.1
	return &ChatResponse{
		Intent:             string(query.IntentUnknown),
		Answer:             "I couldn't map that question to an analysis I know how to run. Try one of the suggestions below.",
		SuggestedQuestions: defaultSuggestions,
		Warnings:           capWarnings(m.Warnings, a.thresholds.MaxWarnings),
		Confidence:         &conf,
		AnalysisTrace:      trace,
	}
}

// capWarnings de-duplicates and caps carried warnings.
func capWarnings(warnings []string, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
