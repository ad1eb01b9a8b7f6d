package analyzer

import (
	"fmt"

	"github.com/shelfsight/shelfsight/internal/mart"
)

// AnalyzeProductHistory walks the resolved product's full snapshot history.
// The router guarantees exactly one resolved ASIN before dispatching here.
func AnalyzeProductHistory(in Input) Finding {
	p, ok := in.Mart.Product(in.Entities.ASINs[0])
	if !ok {
		return Finding{
			Answer:     "The requested product is not in this month's snapshot.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("asin_history", "top_products")},
		}
	}

	first := p.History[0]
	last := p.History[len(p.History)-1]
	f := Finding{
		Answer: fmt.Sprintf("%s has %d months of history: revenue %s in %s, %s now, currently ranked #%d by revenue.",
			p.Title, len(p.History), fmtUSD(first.Revenue), monthLabel(first.Date), fmtUSD(last.Revenue), p.RankRevenue),
		Confidence:       0.85,
		HistoricalWindow: mart.WindowAll,
		Assumptions: []string{
			"History covers only months the product actually appeared in; gaps are not interpolated.",
		},
		Citations: []Citation{in.cite("asin_history", "top_products")},
		Evidence: []Evidence{
			{Label: "months tracked", Value: fmt.Sprintf("%d", len(p.History))},
			{Label: "first seen", Value: monthLabel(first.Date)},
			{Label: "revenue rank now", Value: fmt.Sprintf("#%d", p.RankRevenue)},
		},
	}
	start := len(p.History) - in.Thresholds.MaxBullets
	if start < 0 {
		start = 0
	}
	for _, h := range p.History[start:] {
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %s revenue, %s units, rank #%d",
			monthLabel(h.Date), fmtUSD(h.Revenue), fmtCount(h.Units), h.RankRevenue))
	}
	return f
}

// AnalyzeProductTrend reads the resolved product's window summaries and tags
// its trajectory. The router guarantees exactly one resolved ASIN.
func AnalyzeProductTrend(in Input) Finding {
	p, ok := in.Mart.Product(in.Entities.ASINs[0])
	if !ok {
		return Finding{
			Answer:     "The requested product is not in this month's snapshot.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("product_trend", "top_products")},
		}
	}

	w3 := p.Windows[mart.Window3M]
	w12 := p.Windows[mart.Window12M]

	f := Finding{
		Answer: fmt.Sprintf("%s is trending %s over the last 3 months (%s over 12 months).",
			p.Title, w3.Trend, w12.Trend),
		Confidence:       trendConfidence(w3),
		HistoricalWindow: mart.Window3M,
		Bullets: []string{
			fmt.Sprintf("3-month revenue %s, trend %s", fmtUSD(w3.Revenue), w3.Trend),
			fmt.Sprintf("12-month revenue %s, trend %s", fmtUSD(w12.Revenue), w12.Trend),
			fmt.Sprintf("Current price %s, rating %.1f (%d reviews)", fmtUSD(p.Price), p.Rating, p.Reviews),
		},
		Evidence: []Evidence{
			{Label: "3m trend", Value: string(w3.Trend)},
			{Label: "12m trend", Value: string(w12.Trend)},
		},
		Assumptions: []string{
			"Trend tags use the configured growth threshold against the preceding same-size window.",
		},
		Citations: []Citation{in.cite("trend", "rank_series")},
	}
	if w3.WindowGrowth != nil {
		f.Evidence = append(f.Evidence, Evidence{Label: "3m vs prior 3m", Value: fmtPct(*w3.WindowGrowth)})
	}
	return f
}

func trendConfidence(w mart.WindowSummary) float64 {
	switch {
	case w.Points >= 3:
		return 0.85
	case w.Points == 2:
		return 0.65
	default:
		return 0.45
	}
}
