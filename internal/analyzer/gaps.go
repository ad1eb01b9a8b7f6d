package analyzer

import (
	"fmt"
	"sort"

	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// segmentShare computes each product type's revenue share and, within it, the
// scoped brands' share of that segment.
type segmentShare struct {
	Type       string
	Revenue    float64
	Share      float64 // of category revenue
	ScopeShare float64 // scoped brands' share within the segment
}

func segmentShares(in Input) []segmentShare {
	m := in.Mart
	if m.Current.TotalRevenue == 0 {
		return nil
	}

	// Prefer explicit breakdown rows; fall back to aggregating products.
	if len(m.Current.TypeBreakdown) > 0 {
		var out []segmentShare
		for _, row := range m.Current.TypeBreakdown {
			if row.PriceScope != "" {
				continue
			}
			s := segmentShare{Type: row.Type, Revenue: row.Revenue, Share: row.Revenue / m.Current.TotalRevenue}
			s.ScopeShare = scopeShareOfType(in, row.Type, row.Revenue)
			out = append(out, s)
		}
		if len(out) > 0 {
			return out
		}
	}

	byType := make(map[string]float64)
	var order []string
	for _, p := range m.OrderedProducts() {
		if p.Type == "" {
			continue
		}
		if _, seen := byType[p.Type]; !seen {
			order = append(order, p.Type)
		}
		byType[p.Type] += p.Revenue
	}
	var out []segmentShare
	for _, typ := range order {
		s := segmentShare{Type: typ, Revenue: byType[typ], Share: byType[typ] / m.Current.TotalRevenue}
		s.ScopeShare = scopeShareOfType(in, typ, byType[typ])
		out = append(out, s)
	}
	return out
}

func scopeShareOfType(in Input, typ string, segmentRevenue float64) float64 {
	if segmentRevenue == 0 || in.Scope.Mode == query.ScopeAllBrands {
		return 0
	}
	var own float64
	for _, p := range in.Mart.OrderedProducts() {
		if p.Type == typ && in.Scope.Includes(p.Brand) {
			own += p.Revenue
		}
	}
	return own / segmentRevenue
}

// AnalyzeCompetitiveGaps finds segments and attributes where the scoped
// brands trail the category.
func AnalyzeCompetitiveGaps(in Input) Finding {
	scoped := in.scopedBrands()
	if len(scoped) == 0 {
		return Finding{
			Answer:      "Gap analysis needs a brand in scope; name a brand or configure your own brands.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Competitive gaps are measured for a specific brand set."},
			Citations:   []Citation{in.cite("competitive_gaps", "type_breakdown")},
		}
	}

	var bullets []string
	segments := segmentShares(in)
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Share > segments[j].Share })
	var weakest *segmentShare
	for i := range segments {
		s := &segments[i]
		if s.Share >= 0.10 && s.ScopeShare < 0.10 {
			if weakest == nil || s.Share > weakest.Share {
				weakest = s
			}
			bullets = append(bullets, fmt.Sprintf("%s is %s of the market but only %s of it is yours",
				s.Type, fmtShare(s.Share), fmtShare(s.ScopeShare)))
		}
	}

	// Rating gap against the category's best-rated rivals.
	var ownRating, rivalRating float64
	var ownN, rivalN int
	for _, p := range in.Mart.OrderedProducts() {
		if p.Rating == 0 {
			continue
		}
		if in.Scope.Includes(p.Brand) {
			ownRating += p.Rating
			ownN++
		} else {
			rivalRating += p.Rating
			rivalN++
		}
	}
	if ownN > 0 && rivalN > 0 {
		own := ownRating / float64(ownN)
		rival := rivalRating / float64(rivalN)
		if rival-own >= 0.2 {
			bullets = append(bullets, fmt.Sprintf("Average rating %.1f trails rivals' %.1f", own, rival))
		}
	}

	name := scoped[0].Name
	if len(bullets) == 0 {
		return Finding{
			Answer:     fmt.Sprintf("No material segment or rating gap shows up for %s this month.", name),
			Confidence: 0.7,
			Citations:  []Citation{in.cite("competitive_gaps", "type_breakdown")},
		}
	}
	f := Finding{
		Answer:      fmt.Sprintf("%s shows %d competitive gap(s), the largest in segment coverage.", name, len(bullets)),
		Bullets:     capBullets(bullets, in.Thresholds.MaxBullets),
		Confidence:  0.75,
		Assumptions: []string{"Gap thresholds are fixed heuristics over this month's snapshot."},
		Citations: []Citation{
			in.cite("competitive_gaps", "type_breakdown"),
			in.cite("rating_gap", "top_products"),
		},
	}
	if weakest != nil {
		f.Evidence = append(f.Evidence,
			Evidence{Label: "weakest segment", Value: weakest.Type},
			Evidence{Label: "segment share", Value: fmtShare(weakest.Share)},
		)
	}
	return f
}

// AnalyzeOpportunity flags large segments where the scoped brands barely
// participate: segment at or above the configured share of category revenue
// with own share below the ceiling.
func AnalyzeOpportunity(in Input) Finding {
	segments := segmentShares(in)
	if len(segments) == 0 {
		return Finding{
			Answer:      "No type breakdown is available, so segment opportunities cannot be sized.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Opportunity sizing needs per-type revenue."},
			Citations:   []Citation{in.cite("opportunity", "type_breakdown")},
		}
	}

	var hits []segmentShare
	for _, s := range segments {
		if s.Share >= in.Thresholds.OpportunitySegmentShare && s.ScopeShare < in.Thresholds.OpportunityOwnShareCeiling {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 {
		return Finding{
			Answer: fmt.Sprintf("No segment clears the opportunity bar (at least %s of revenue with under %s own share).",
				fmtShare(in.Thresholds.OpportunitySegmentShare), fmtShare(in.Thresholds.OpportunityOwnShareCeiling)),
			Confidence: 0.7,
			Citations:  []Citation{in.cite("opportunity", "type_breakdown")},
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Revenue > hits[j].Revenue })

	best := hits[0]
	f := Finding{
		Answer: fmt.Sprintf("%s is a %s segment (%s of the market) where your share is only %s.",
			best.Type, fmtUSD(best.Revenue), fmtShare(best.Share), fmtShare(best.ScopeShare)),
		Confidence: 0.75,
		Evidence: []Evidence{
			{Label: "segment", Value: best.Type},
			{Label: "segment revenue", Value: fmtUSD(best.Revenue)},
			{Label: "own share of segment", Value: fmtShare(best.ScopeShare)},
		},
		Assumptions: []string{"Opportunity thresholds are fixed heuristics, not learned."},
		Citations:   []Citation{in.cite("opportunity", "type_breakdown")},
	}
	for i, s := range hits {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %s market share, own share %s",
			s.Type, fmtShare(s.Share), fmtShare(s.ScopeShare)))
	}
	return f
}

// AnalyzeRisk aggregates the mart's risk signals: SKU concentration, negative
// trends, rank slippage, and carried data-quality issues.
func AnalyzeRisk(in Input) Finding {
	m := in.Mart
	var bullets []string

	if products := m.OrderedProducts(); len(products) > 0 && m.Current.TotalRevenue > 0 {
		topShare := products[0].Revenue / m.Current.TotalRevenue
		if topShare >= in.Thresholds.ConcentrationTopSKUShare {
			bullets = append(bullets, fmt.Sprintf("Revenue concentration: %s alone is %s of the category",
				products[0].Title, fmtShare(topShare)))
		}
	}

	scoped := in.scopedBrands()
	for _, b := range scoped {
		if b.Windows[mart.Window3M].Trend == mart.TrendDown {
			bullets = append(bullets, fmt.Sprintf("%s's 3-month revenue trend is down", b.Name))
		}
		if m.Previous != nil {
			if prev, ok := b.PointAt(m.Previous.Date); ok && b.Rank > prev.Rank && prev.Rank != 0 {
				bullets = append(bullets, fmt.Sprintf("%s slipped from rank #%d to #%d", b.Name, prev.Rank, b.Rank))
			}
		}
	}

	for i, w := range m.Warnings {
		if i >= 2 {
			break
		}
		bullets = append(bullets, "Data quality: "+w)
	}

	if len(bullets) == 0 {
		return Finding{
			Answer:     "Nothing crosses a risk threshold this month.",
			Confidence: 0.7,
			Citations:  []Citation{in.cite("risk_signal", "brand_totals")},
		}
	}
	return Finding{
		Answer:      fmt.Sprintf("%d risk signal(s) warrant attention this month.", len(bullets)),
		Bullets:     capBullets(bullets, in.Thresholds.MaxBullets),
		Confidence:  0.75,
		Assumptions: []string{"Risk thresholds are fixed heuristics over this month's snapshot."},
		Citations: []Citation{
			in.cite("risk_signal", "brand_totals"),
			in.cite("concentration", "top_products"),
		},
	}
}

// AnalyzeTypeMix breaks the category down by product type.
func AnalyzeTypeMix(in Input) Finding {
	segments := segmentShares(in)
	if len(segments) == 0 {
		return Finding{
			Answer:      "No product-type information is available in this snapshot.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"The mix view needs type breakdown rows or typed products."},
			Citations:   []Citation{in.cite("type_mix", "type_breakdown")},
		}
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Revenue > segments[j].Revenue })

	top := segments[0]
	f := Finding{
		Answer: fmt.Sprintf("%s is the largest segment at %s of category revenue, across %d segments total.",
			top.Type, fmtShare(top.Share), len(segments)),
		Confidence: 0.85,
		Evidence: []Evidence{
			{Label: "largest segment", Value: top.Type},
			{Label: "segment count", Value: fmt.Sprintf("%d", len(segments))},
		},
		Citations: []Citation{in.cite("type_mix", "type_breakdown")},
	}
	for i, s := range segments {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %s (%s)", s.Type, fmtUSD(s.Revenue), fmtShare(s.Share)))
	}
	if in.Plan.TypeScope != "" {
		for _, s := range segments {
			if snapshot.NormalizeKey(s.Type) == snapshot.NormalizeKey(in.Plan.TypeScope) {
				f.Evidence = append(f.Evidence, Evidence{
					Label: s.Type + " share", Value: fmtShare(s.Share),
				})
			}
		}
	}
	return f
}
