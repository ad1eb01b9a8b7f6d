package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
)

// bridge is a price/volume decomposition of a revenue change between two
// months. The classic bridge ignores the ASP cross term, so UnitEffect plus
// PriceEffect only approximates the actual revenue delta; every finding built
// from it states that assumption.
type bridge struct {
	label       string
	prevRevenue float64
	currRevenue float64
	prevUnits   float64
	currUnits   float64
	unitEffect  float64
	priceEffect float64
	primary     string // "price" | "volume"
	computable  bool
}

func computeBridge(label string, prevRevenue, prevUnits, currRevenue, currUnits float64) bridge {
	b := bridge{
		label:       label,
		prevRevenue: prevRevenue,
		currRevenue: currRevenue,
		prevUnits:   prevUnits,
		currUnits:   currUnits,
	}
	if prevUnits == 0 || currUnits == 0 {
		return b
	}
	prevASP := prevRevenue / prevUnits
	currASP := currRevenue / currUnits
	b.unitEffect = (currUnits - prevUnits) * prevASP
	b.priceEffect = currUnits * (currASP - prevASP)
	b.primary = "volume"
	if math.Abs(b.priceEffect) > math.Abs(b.unitEffect) {
		b.primary = "price"
	}
	b.computable = true
	return b
}

// scopeBridge aggregates the in-scope brands into one bridge against the
// previous month.
func scopeBridge(in Input) (bridge, bool) {
	m := in.Mart
	if m.Previous == nil {
		return bridge{}, false
	}
	// Market-wide scope reads the snapshot totals directly rather than
	// summing brand totals, so rows outside the brand list still count.
	if in.Scope.Mode == query.ScopeAllBrands || len(in.scopedBrands()) == 0 {
		br := computeBridge("the market",
			m.Previous.TotalRevenue, m.Previous.TotalUnits,
			m.Current.TotalRevenue, m.Current.TotalUnits)
		return br, br.computable
	}
	var prevRevenue, prevUnits, currRevenue, currUnits float64
	var label string
	for _, b := range in.scopedBrands() {
		currRevenue += b.Revenue
		currUnits += b.Units
		if pt, ok := b.PointAt(m.Previous.Date); ok {
			prevRevenue += pt.Revenue
			prevUnits += pt.Units
		}
		if label == "" {
			label = b.Name
		} else {
			label = "the selected brands"
		}
	}
	br := computeBridge(label, prevRevenue, prevUnits, currRevenue, currUnits)
	return br, br.computable
}

// AnalyzeGrowthDriver decomposes the scope's revenue change into unit and
// price effects and names the primary driver.
func AnalyzeGrowthDriver(in Input) Finding {
	m := in.Mart

	// A uniquely resolved product gets its own bridge.
	if len(in.Entities.ASINs) == 1 {
		if p, ok := m.Product(in.Entities.ASINs[0]); ok && m.Previous != nil {
			if prev, hit := p.PointAt(m.Previous.Date); hit {
				br := computeBridge(p.Title, prev.Revenue, prev.Units, p.Revenue, p.Units)
				if br.computable {
					return bridgeFinding(in, br, "top_products")
				}
			}
		}
	}

	br, ok := scopeBridge(in)
	if !ok {
		return Finding{
			Answer:      "Growth cannot be decomposed: the previous month's units or revenue are missing.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"The price/volume bridge needs non-zero units in both months."},
			Citations:   []Citation{in.cite("growth_driver", "brand_totals")},
		}
	}
	f := bridgeFinding(in, br, "brand_totals")
	f.TopContributors = topContributors(in)
	return f
}

func bridgeFinding(in Input, br bridge, source string) Finding {
	actual := br.currRevenue - br.prevRevenue
	total := br.unitEffect + br.priceEffect

	f := Finding{
		Answer: fmt.Sprintf("%s's revenue change of %s was primarily %s-driven (%s from %s, %s from units sold).",
			br.label, fmtSigned(actual), br.primary,
			fmtSigned(br.priceEffect), "pricing", fmtSigned(br.unitEffect)),
		Confidence: 0.85,
		Bullets: []string{
			fmt.Sprintf("Unit effect: %s (units %s → %s)", fmtSigned(br.unitEffect), fmtCount(br.prevUnits), fmtCount(br.currUnits)),
			fmt.Sprintf("Price effect: %s (ASP %s → %s)", fmtSigned(br.priceEffect),
				fmtUSD(br.prevRevenue/br.prevUnits), fmtUSD(br.currRevenue/br.currUnits)),
			fmt.Sprintf("Bridge total %s vs actual delta %s", fmtSigned(total), fmtSigned(actual)),
		},
		Evidence: []Evidence{
			{Label: "primary driver", Value: br.primary},
			{Label: "unit effect", Value: fmtSigned(br.unitEffect)},
			{Label: "price effect", Value: fmtSigned(br.priceEffect)},
		},
		Assumptions: []string{
			"The price/volume bridge ignores the ASP cross term, so effects only approximate the actual delta.",
		},
		Citations: []Citation{
			in.cite("unit_effect", source),
			in.cite("price_effect", source),
		},
	}
	return f
}

// topContributors ranks the in-scope products by absolute MoM revenue change.
func topContributors(in Input) []Contributor {
	type contrib struct {
		c     Contributor
		delta float64
	}
	var list []contrib
	for _, p := range in.scopedProducts() {
		if p.Deltas.Revenue == nil {
			continue
		}
		trend := string(p.Windows[mart.Window3M].Trend)
		list = append(list, contrib{
			c: Contributor{
				ASIN:    p.RawASIN,
				Title:   p.Title,
				Revenue: p.Revenue,
				Units:   p.Units,
				Trend:   trend,
			},
			delta: math.Abs(*p.Deltas.Revenue),
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].delta > list[j].delta })
	var out []Contributor
	for i, c := range list {
		if i >= 3 {
			break
		}
		out = append(out, c.c)
	}
	return out
}

// AnalyzePriceVsVolume explains whether the scope's trajectory is a pricing
// story or a volume story, using the same bridge as the growth driver.
func AnalyzePriceVsVolume(in Input) Finding {
	br, ok := scopeBridge(in)
	if !ok {
		return Finding{
			Answer:      "Price versus volume cannot be separated: the previous month's data is incomplete.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"The price/volume bridge needs non-zero units in both months."},
			Citations:   []Citation{in.cite("price_vs_volume", "brand_totals")},
		}
	}

	prevASP := br.prevRevenue / br.prevUnits
	currASP := br.currRevenue / br.currUnits
	story := "a volume story: units moved more than price did"
	if br.primary == "price" {
		story = "a pricing story: average selling price moved more than unit demand"
	}
	return Finding{
		Answer: fmt.Sprintf("%s's result this month is %s.", br.label, story),
		Bullets: []string{
			fmt.Sprintf("ASP moved %s → %s", fmtUSD(prevASP), fmtUSD(currASP)),
			fmt.Sprintf("Units moved %s → %s", fmtCount(br.prevUnits), fmtCount(br.currUnits)),
			fmt.Sprintf("Price effect %s vs unit effect %s", fmtSigned(br.priceEffect), fmtSigned(br.unitEffect)),
		},
		Evidence: []Evidence{
			{Label: "primary driver", Value: br.primary},
			{Label: "ASP change", Value: fmtSigned(currASP - prevASP)},
		},
		Confidence: 0.8,
		Assumptions: []string{
			"The price/volume bridge ignores the ASP cross term, so effects only approximate the actual delta.",
		},
		Citations: []Citation{in.cite("price_vs_volume", "brand_totals")},
	}
}

// AnalyzePriceVolumeTradeoff looks across in-scope products for the
// relationship between price moves and unit moves.
func AnalyzePriceVolumeTradeoff(in Input) Finding {
	var raisedLost, raisedGained, cutLost, cutGained int
	for _, p := range in.scopedProducts() {
		if p.Deltas.Price == nil || p.Deltas.Units == nil {
			continue
		}
		switch {
		case *p.Deltas.Price > 0 && *p.Deltas.Units < 0:
			raisedLost++
		case *p.Deltas.Price > 0:
			raisedGained++
		case *p.Deltas.Price < 0 && *p.Deltas.Units < 0:
			cutLost++
		case *p.Deltas.Price < 0:
			cutGained++
		}
	}
	observed := raisedLost + raisedGained + cutLost + cutGained
	if observed == 0 {
		return Finding{
			Answer:      "No product changed price month over month, so the price-volume tradeoff cannot be observed.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"The tradeoff read needs products with both a price and a units delta."},
			Citations:   []Citation{in.cite("price_volume_tradeoff", "top_products")},
		}
	}

	sensitive := raisedLost + cutGained
	answer := "Demand here looks price-sensitive: price moves mostly pushed units the opposite way."
	if sensitive*2 < observed {
		answer = "Demand here looks price-tolerant: most price moves did not push units the opposite way."
	}
	return Finding{
		Answer: answer,
		Bullets: []string{
			fmt.Sprintf("%d products raised price and lost units", raisedLost),
			fmt.Sprintf("%d products raised price and held or gained units", raisedGained),
			fmt.Sprintf("%d products cut price and gained units", cutGained),
			fmt.Sprintf("%d products cut price and still lost units", cutLost),
		},
		Evidence: []Evidence{
			{Label: "products with price moves", Value: fmt.Sprintf("%d", observed)},
			{Label: "inverse price-unit moves", Value: fmt.Sprintf("%d", sensitive)},
		},
		Confidence:  0.7,
		Assumptions: []string{"Single-month co-movement, not a controlled elasticity estimate."},
		Citations:   []Citation{in.cite("price_volume_tradeoff", "top_products")},
	}
}
