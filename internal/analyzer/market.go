package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
)

// AnalyzeMarketSize reports the category's current totals and growth.
func AnalyzeMarketSize(in Input) Finding {
	m := in.Mart
	f := Finding{
		Answer: fmt.Sprintf("This category did %s across %s units in %s.",
			fmtUSD(m.Current.TotalRevenue), fmtCount(m.Current.TotalUnits), monthLabel(m.Date)),
		Confidence: 0.9,
		Evidence: []Evidence{
			{Label: "total revenue", Value: fmtUSD(m.Current.TotalRevenue)},
			{Label: "total units", Value: fmtCount(m.Current.TotalUnits)},
			{Label: "tracked brands", Value: fmt.Sprintf("%d", len(m.Brands))},
		},
		Citations: []Citation{in.cite("market_size", "snapshot_totals")},
	}
	if m.Previous != nil {
		if g := mart.Ratio(m.Current.TotalRevenue, m.Previous.TotalRevenue); g != nil {
			f.Bullets = append(f.Bullets, fmt.Sprintf("MoM revenue growth %s", fmtPct(*g)))
		}
	}
	if m.YearAgo != nil {
		if g := mart.Ratio(m.Current.TotalRevenue, m.YearAgo.TotalRevenue); g != nil {
			f.Bullets = append(f.Bullets, fmt.Sprintf("YoY revenue growth %s", fmtPct(*g)))
		}
	} else {
		f.Assumptions = append(f.Assumptions, "No snapshot exists exactly twelve months back, so YoY is unavailable.")
	}
	return f
}

// AnalyzeMarketLeader names the top brand by the requested metric.
func AnalyzeMarketLeader(in Input) Finding {
	brands := in.Mart.OrderedBrands()
	if len(brands) == 0 {
		return Finding{
			Answer:     "This snapshot carries no brand totals.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("market_leader", "brand_totals")},
		}
	}

	leader := brands[0]
	f := Finding{
		Answer: fmt.Sprintf("%s leads the category with %s revenue (%s share) at rank #1.",
			leader.Name, fmtUSD(leader.Revenue), fmtShare(leader.Share)),
		Confidence: 0.9,
		Evidence: []Evidence{
			{Label: "leader", Value: leader.Name},
			{Label: "revenue share", Value: fmtShare(leader.Share)},
		},
		Citations: []Citation{in.cite("market_leader", "brand_totals")},
	}
	for i, b := range brands {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%d. %s: %s revenue, %s share",
			b.Rank, b.Name, fmtUSD(b.Revenue), fmtShare(b.Share)))
	}
	return f
}

// AnalyzeTopProducts lists the leading products by the requested metric.
func AnalyzeTopProducts(in Input) Finding {
	products := in.scopedProducts()
	if in.Plan.Metric == query.MetricUnits {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].RankUnits < products[j].RankUnits
		})
	}
	if len(products) == 0 {
		return Finding{
			Answer:     "No products are in scope this month.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("top_products", "top_products")},
		}
	}

	limit := in.Plan.RankTarget
	if limit <= 0 || limit > in.Thresholds.MaxBullets {
		limit = in.Thresholds.MaxBullets
	}
	top := products[0]
	f := Finding{
		Answer: fmt.Sprintf("%s by %s is the top product this month at %s revenue.",
			top.Title, top.BrandName, fmtUSD(top.Revenue)),
		Confidence: 0.9,
		Citations:  []Citation{in.cite("top_products", "top_products")},
		Evidence: []Evidence{
			{Label: "top product", Value: fmt.Sprintf("%s (%s)", top.Title, top.RawASIN)},
			{Label: "revenue", Value: fmtUSD(top.Revenue)},
		},
	}
	for i, p := range products {
		if i >= limit {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%d. %s by %s: %s revenue, %s units",
			i+1, p.Title, p.BrandName, fmtUSD(p.Revenue), fmtCount(p.Units)))
		f.TopContributors = append(f.TopContributors, Contributor{
			ASIN:    p.RawASIN,
			Title:   p.Title,
			Revenue: p.Revenue,
			Units:   p.Units,
			Trend:   string(p.Windows[mart.Window3M].Trend),
		})
	}
	return f
}

// AnalyzeMarketShift surfaces the biggest share changes since last month.
func AnalyzeMarketShift(in Input) Finding {
	m := in.Mart
	if m.Previous == nil {
		return Finding{
			Answer:      "Only one month of data exists, so market shifts cannot be measured yet.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Shift detection needs at least two consecutive snapshots."},
			Citations:   []Citation{in.cite("share_shift", "brand_totals")},
		}
	}

	type shift struct {
		name  string
		delta float64
		now   float64
	}
	var shifts []shift
	for _, b := range m.OrderedBrands() {
		prev, ok := b.PointAt(m.Previous.Date)
		if !ok {
			continue
		}
		shifts = append(shifts, shift{name: b.Name, delta: b.Share - prev.Share, now: b.Share})
	}
	sort.SliceStable(shifts, func(i, j int) bool {
		return math.Abs(shifts[i].delta) > math.Abs(shifts[j].delta)
	})
	if len(shifts) == 0 {
		return Finding{
			Answer:     "No brand appears in both months, so share shifts cannot be measured.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("share_shift", "brand_totals")},
		}
	}

	top := shifts[0]
	verb := "gained"
	if top.delta < 0 {
		verb = "lost"
	}
	f := Finding{
		Answer: fmt.Sprintf("The biggest shift this month: %s %s %.1f points of revenue share.",
			top.name, verb, math.Abs(top.delta)*100),
		Confidence:       0.8,
		HistoricalWindow: mart.Window1M,
		Citations:        []Citation{in.cite("share_shift", "brand_totals")},
		Evidence: []Evidence{
			{Label: "biggest mover", Value: top.name},
			{Label: "share change", Value: fmt.Sprintf("%+.1f pts", top.delta*100)},
		},
	}
	for i, s := range shifts {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%s: %+.1f pts, now %s", s.name, s.delta*100, fmtShare(s.now)))
	}
	return f
}

// AnalyzeConcentration measures how much of the market the top SKU and top
// brands hold, flagging risk at the configured top-SKU share threshold.
func AnalyzeConcentration(in Input) Finding {
	m := in.Mart
	products := m.OrderedProducts()
	if len(products) == 0 || m.Current.TotalRevenue == 0 {
		return Finding{
			Answer:     "No product revenue is available to measure concentration.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("concentration", "top_products")},
		}
	}

	topSKU := products[0]
	topSKUShare := topSKU.Revenue / m.Current.TotalRevenue

	var top3Brands float64
	for i, b := range m.OrderedBrands() {
		if i >= 3 {
			break
		}
		top3Brands += b.Share
	}

	answer := fmt.Sprintf("The top SKU holds %s of category revenue; the top 3 brands hold %s.",
		fmtShare(topSKUShare), fmtShare(top3Brands))
	if topSKUShare >= in.Thresholds.ConcentrationTopSKUShare {
		answer = fmt.Sprintf("Concentration risk: a single SKU (%s) holds %s of category revenue, above the %s alert line.",
			topSKU.Title, fmtShare(topSKUShare), fmtShare(in.Thresholds.ConcentrationTopSKUShare))
	}
	return Finding{
		Answer:     answer,
		Confidence: 0.85,
		Bullets: []string{
			fmt.Sprintf("Top SKU: %s by %s at %s revenue", topSKU.Title, topSKU.BrandName, fmtUSD(topSKU.Revenue)),
			fmt.Sprintf("Top 3 brand share: %s", fmtShare(top3Brands)),
		},
		Evidence: []Evidence{
			{Label: "top SKU share", Value: fmtShare(topSKUShare)},
			{Label: "alert threshold", Value: fmtShare(in.Thresholds.ConcentrationTopSKUShare)},
		},
		Assumptions: []string{"Concentration thresholds are fixed heuristics, not learned."},
		Citations:   []Citation{in.cite("concentration", "top_products")},
	}
}
