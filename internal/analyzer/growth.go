package analyzer

import (
	"fmt"
	"sort"

	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// growthValue computes the requested-window growth for one candidate. MoM and
// YoY are each nil when their base is zero or absent; "both" averages the two
// non-nil values and never implicitly zeroes a missing one.
func growthValue(current float64, prev, year *float64, w query.GrowthWindow) *float64 {
	var mom, yoy *float64
	if prev != nil {
		mom = mart.Ratio(current, *prev)
	}
	if year != nil {
		yoy = mart.Ratio(current, *year)
	}
	switch w {
	case query.WindowMoM:
		return mom
	case query.WindowYoY:
		return yoy
	default:
		if mom != nil && yoy != nil {
			v := (*mom + *yoy) / 2
			return &v
		}
		if mom != nil {
			return mom
		}
		return yoy
	}
}

// growthCandidate is one ranked entry in a fastest-growth computation.
type growthCandidate struct {
	key     string
	label   string
	current float64
	growth  *float64
}

// rankByGrowth orders candidates by growth descending. Candidates without a
// computable growth are excluded; ties keep their incoming order.
func rankByGrowth(cands []growthCandidate) []growthCandidate {
	var ranked []growthCandidate
	for _, c := range cands {
		if c.growth != nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].growth > *ranked[j].growth
	})
	return ranked
}

func windowLabel(w query.GrowthWindow) string {
	switch w {
	case query.WindowYoY:
		return "YoY"
	case query.WindowBoth:
		return "avg of MoM and YoY"
	default:
		return "MoM"
	}
}

func metricLabel(m query.Metric) string {
	if m == query.MetricUnits {
		return "units"
	}
	return "revenue"
}

// AnalyzeFastestGrowth ranks the in-scope brands (or products, when the plan
// targets ASIN level) by growth over the requested window.
func AnalyzeFastestGrowth(in Input) Finding {
	if in.Plan.Level == query.LevelASIN {
		return fastestGrowingProducts(in)
	}
	return fastestGrowingBrands(in)
}

func fastestGrowingBrands(in Input) Finding {
	m := in.Mart
	var cands []growthCandidate
	for _, b := range in.scopedBrands() {
		current := brandMetric(b.Revenue, b.Units, in.Plan.Metric)
		prev := brandPointMetric(b, m.Previous, in.Plan.Metric)
		year := brandPointMetric(b, m.YearAgo, in.Plan.Metric)
		cands = append(cands, growthCandidate{
			key:     b.Key,
			label:   b.Name,
			current: current,
			growth:  growthValue(current, prev, year, in.Plan.Window),
		})
	}
	return growthFinding(in, cands, "brand", "brand_totals")
}

func fastestGrowingProducts(in Input) Finding {
	m := in.Mart
	var cands []growthCandidate
	for _, p := range in.scopedProducts() {
		current := brandMetric(p.Revenue, p.Units, in.Plan.Metric)
		var prev, year *float64
		if m.Previous != nil {
			if pt, ok := p.PointAt(m.Previous.Date); ok {
				v := brandMetric(pt.Revenue, pt.Units, in.Plan.Metric)
				prev = &v
			}
		}
		if m.YearAgo != nil {
			if pt, ok := p.PointAt(m.YearAgo.Date); ok {
				v := brandMetric(pt.Revenue, pt.Units, in.Plan.Metric)
				year = &v
			}
		}
		cands = append(cands, growthCandidate{
			key:     p.ASIN,
			label:   fmt.Sprintf("%s (%s)", p.Title, p.RawASIN),
			current: current,
			growth:  growthValue(current, prev, year, in.Plan.Window),
		})
	}
	return growthFinding(in, cands, "product", "top_products")
}

func growthFinding(in Input, cands []growthCandidate, level, source string) Finding {
	ranked := rankByGrowth(cands)
	metric := metricLabel(in.Plan.Metric)
	window := windowLabel(in.Plan.Window)

	if len(ranked) == 0 {
		return Finding{
			Answer:     fmt.Sprintf("No %s has enough history to compute %s %s growth yet.", level, window, metric),
			Confidence: 0.3,
			Partial:    true,
			Assumptions: []string{
				"Growth needs the comparison month present in the snapshot series; nothing qualified.",
			},
			Citations: []Citation{in.cite(metric+"_growth", source)},
		}
	}

	top := ranked[0]
	f := Finding{
		Answer: fmt.Sprintf("%s is the fastest-growing %s this month at %s %s (%s) growth.",
			top.label, level, fmtPct(*top.growth), window, metric),
		Confidence:       growthConfidence(in, len(cands), len(ranked)),
		HistoricalWindow: mart.Window1M,
		Citations: []Citation{
			in.cite(metric+"_growth", source),
		},
		Assumptions: []string{
			fmt.Sprintf("Growth is %s change in %s; candidates without the comparison month are excluded.", window, metric),
		},
	}
	for i, c := range ranked {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%d. %s: %s growth, %s %s now",
			i+1, c.label, fmtPct(*c.growth), formatMetric(c.current, in.Plan.Metric), metric))
	}
	f.Evidence = append(f.Evidence,
		Evidence{Label: "fastest " + level, Value: top.label},
		Evidence{Label: window + " growth", Value: fmtPct(*top.growth)},
		Evidence{Label: "ranked candidates", Value: fmt.Sprintf("%d of %d", len(ranked), len(cands))},
	)
	return f
}

func growthConfidence(in Input, total, ranked int) float64 {
	if total == 0 {
		return 0.3
	}
	conf := 0.85 * float64(ranked) / float64(total)
	if in.Plan.Window != query.WindowMoM && in.Mart.YearAgo == nil {
		conf -= 0.15
	}
	if conf < 0.3 {
		conf = 0.3
	}
	return conf
}

func brandMetric(revenue, units float64, m query.Metric) float64 {
	if m == query.MetricUnits {
		return units
	}
	return revenue
}

func formatMetric(v float64, m query.Metric) string {
	if m == query.MetricUnits {
		return fmtCount(v)
	}
	return fmtUSD(v)
}

func brandPointMetric(b *mart.BrandStats, snap *snapshot.Snapshot, m query.Metric) *float64 {
	if snap == nil {
		return nil
	}
	pt, ok := b.PointAt(snap.Date)
	if !ok {
		return nil
	}
	v := brandMetric(pt.Revenue, pt.Units, m)
	return &v
}

// AnalyzeTypeGrowth ranks product types by growth using the snapshot type
// breakdown rows.
func AnalyzeTypeGrowth(in Input) Finding {
	m := in.Mart
	var cands []growthCandidate
	for _, row := range m.Current.TypeBreakdown {
		if in.Plan.TypeScope != "" && snapshot.NormalizeKey(row.Type) != snapshot.NormalizeKey(in.Plan.TypeScope) {
			continue
		}
		current := brandMetric(row.Revenue, row.Units, in.Plan.Metric)
		prev := typeMetricAt(m.Previous, row.Type, row.PriceScope, in.Plan.Metric)
		year := typeMetricAt(m.YearAgo, row.Type, row.PriceScope, in.Plan.Metric)
		label := row.Type
		if row.PriceScope != "" {
			label += " (" + row.PriceScope + ")"
		}
		cands = append(cands, growthCandidate{
			key:     row.Type,
			label:   label,
			current: current,
			growth:  growthValue(current, prev, year, in.Plan.Window),
		})
	}
	if len(cands) == 0 {
		return Finding{
			Answer:      "This category's snapshots carry no type breakdown, so type growth cannot be computed.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Type growth requires type breakdown rows in the snapshot."},
			Citations:   []Citation{in.cite("type_growth", "type_breakdown")},
		}
	}
	return growthFinding(in, cands, "type", "type_breakdown")
}

func typeMetricAt(snap *snapshot.Snapshot, typ, priceScope string, m query.Metric) *float64 {
	if snap == nil {
		return nil
	}
	for _, row := range snap.TypeBreakdown {
		if row.Type == typ && row.PriceScope == priceScope {
			v := brandMetric(row.Revenue, row.Units, m)
			return &v
		}
	}
	return nil
}
