package analyzer

import (
	"time"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
)

// Evidence is one label/value pair backing an answer.
type Evidence struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Citation names the metric, source table, and snapshot month a number came
// from.
type Citation struct {
	Metric   string `json:"metric"`
	Source   string `json:"source"`
	Snapshot string `json:"snapshot"`
}

// Archetype classifies a brand's sales posture.
type Archetype string

const (
	ArchetypePriceLed  Archetype = "price_led"
	ArchetypeVolumeLed Archetype = "volume_led"
	ArchetypeBalanced  Archetype = "balanced"
)

// Contributor is one product's line in a top-contributors breakdown.
type Contributor struct {
	ASIN    string  `json:"asin"`
	Title   string  `json:"title"`
	Revenue float64 `json:"revenue"`
	Units   float64 `json:"units"`
	Trend   string  `json:"trend"`
}

// Finding is one analyzer's structured result. Constructed fresh per request
// and never cached; confidence is a heuristic in [0,1], not a statistical
// measure.
type Finding struct {
	Answer      string     `json:"answer"`
	Bullets     []string   `json:"bullets,omitempty"`
	Evidence    []Evidence `json:"evidence,omitempty"`
	Confidence  float64    `json:"confidence"`
	Assumptions []string   `json:"assumptions,omitempty"`
	Citations   []Citation `json:"citations,omitempty"`

	HistoricalWindow mart.Window   `json:"historical_window,omitempty"`
	SalesArchetype   Archetype     `json:"sales_archetype,omitempty"`
	TopContributors  []Contributor `json:"top_contributors,omitempty"`

	// Partial marks a finding computed from degraded data; the assembler
	// reports it in the analysis trace.
	Partial bool `json:"partial,omitempty"`
}

// Input is everything an analyzer may read. Analyzers are pure functions of
// it and never mutate the mart.
type Input struct {
	Mart       *mart.Mart
	Scope      query.Scope
	Entities   query.Entities
	Plan       query.Plan
	Thresholds config.Thresholds
}

// Func is one analyzer routine.
type Func func(in Input) Finding

func (in Input) cite(metric, source string) Citation {
	return Citation{Metric: metric, Source: source, Snapshot: monthLabel(in.Mart.Date)}
}

func monthLabel(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// scopedBrands returns the brands the computation is restricted to, in mart
// rank order for ScopeAllBrands and in scope order otherwise.
func (in Input) scopedBrands() []*mart.BrandStats {
	if in.Scope.Mode == query.ScopeAllBrands {
		return in.Mart.OrderedBrands()
	}
	var out []*mart.BrandStats
	for _, key := range in.Scope.Brands {
		if b, ok := in.Mart.Brand(key); ok {
			out = append(out, b)
		}
	}
	return out
}

// scopedProducts returns the indexed products within scope, in revenue-rank
// order.
func (in Input) scopedProducts() []*mart.IndexedProduct {
	var out []*mart.IndexedProduct
	for _, p := range in.Mart.OrderedProducts() {
		if in.Scope.Includes(p.Brand) {
			out = append(out, p)
		}
	}
	return out
}

func capBullets(bullets []string, limit int) []string {
	if limit > 0 && len(bullets) > limit {
		return bullets[:limit]
	}
	return bullets
}
