package analyzer

import (
	"fmt"

	"github.com/shelfsight/shelfsight/internal/mart"
)

// AnalyzeBrandHealth summarizes one or more brands' standing: share, rank
// movement, trend, and product coverage.
func AnalyzeBrandHealth(in Input) Finding {
	scoped := in.scopedBrands()
	if len(scoped) == 0 {
		return Finding{
			Answer:      "No brand is in scope for a health read; name a brand or configure your own brands.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Brand health needs at least one brand in scope."},
			Citations:   []Citation{in.cite("brand_health", "brand_totals")},
		}
	}

	b := scoped[0]
	w3 := b.Windows[mart.Window3M]

	rankNote := "rank unchanged"
	if in.Mart.Previous != nil {
		if prev, ok := b.PointAt(in.Mart.Previous.Date); ok && prev.Rank != 0 && b.Rank != 0 && prev.Rank != b.Rank {
			rankNote = fmt.Sprintf("rank moved #%d → #%d", prev.Rank, b.Rank)
		}
	}

	f := Finding{
		Answer: fmt.Sprintf("%s holds %s revenue share at rank #%d with a %s 3-month trend.",
			b.Name, fmtShare(b.Share), b.Rank, w3.Trend),
		Confidence:       0.8,
		HistoricalWindow: mart.Window3M,
		Bullets: []string{
			fmt.Sprintf("Revenue %s, units %s this month", fmtUSD(b.Revenue), fmtCount(b.Units)),
			fmt.Sprintf("ASP %s", fmtUSD(b.ASP())),
			rankNote,
			fmt.Sprintf("%d tracked products in this category", len(in.Mart.ByBrand[b.Key])),
		},
		Evidence: []Evidence{
			{Label: "revenue share", Value: fmtShare(b.Share)},
			{Label: "rank", Value: fmt.Sprintf("#%d", b.Rank)},
			{Label: "3m trend", Value: string(w3.Trend)},
		},
		Citations: []Citation{
			in.cite("brand_health", "brand_totals"),
			in.cite("trend", "rank_series"),
		},
	}
	for _, other := range scoped[1:] {
		if len(f.Bullets) >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %s share, rank #%d, 3m trend %s",
			other.Name, fmtShare(other.Share), other.Rank, other.Windows[mart.Window3M].Trend))
	}
	f.Bullets = capBullets(f.Bullets, in.Thresholds.MaxBullets)
	return f
}
