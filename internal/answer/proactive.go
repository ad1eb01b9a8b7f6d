package answer

import (
	"fmt"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
)

// BuildProactive derives "watch this next" suggestions from mart-wide
// signals: revenue concentration, rating gaps against rivals, and large
// segments the scoped brands barely cover. It ignores the question asked.
func BuildProactive(m *mart.Mart, scope query.Scope, th config.Thresholds) []ProactiveSuggestion {
	var out []ProactiveSuggestion

	if products := m.OrderedProducts(); len(products) > 0 && m.Current.TotalRevenue > 0 {
		topShare := products[0].Revenue / m.Current.TotalRevenue
		if topShare >= th.ConcentrationTopSKUShare {
			out = append(out, ProactiveSuggestion{
				Title:    "Single-SKU concentration",
				Detail:   fmt.Sprintf("%s alone is %.0f%% of category revenue.", products[0].Title, topShare*100),
				Severity: "alert",
			})
		}
	}

	if scope.Mode != query.ScopeAllBrands {
		if gap, own, rival := ratingGap(m, scope); gap >= 0.2 {
			out = append(out, ProactiveSuggestion{
				Title:    "Rating gap",
				Detail:   fmt.Sprintf("Your average rating %.1f trails rivals' %.1f.", own, rival),
				Severity: "watch",
			})
		}
		for _, s := range blindSpots(m, scope, th) {
			out = append(out, s)
		}
	}

	// Keep the set small; the UI shows at most three.
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func ratingGap(m *mart.Mart, scope query.Scope) (gap, own, rival float64) {
	var ownSum, rivalSum float64
	var ownN, rivalN int
	for _, p := range m.OrderedProducts() {
		if p.Rating == 0 {
			continue
		}
		if scope.Includes(p.Brand) {
			ownSum += p.Rating
			ownN++
		} else {
			rivalSum += p.Rating
			rivalN++
		}
	}
	if ownN == 0 || rivalN == 0 {
		return 0, 0, 0
	}
	own = ownSum / float64(ownN)
	rival = rivalSum / float64(rivalN)
	return rival - own, own, rival
}

func blindSpots(m *mart.Mart, scope query.Scope, th config.Thresholds) []ProactiveSuggestion {
	if m.Current.TotalRevenue == 0 {
		return nil
	}
	segRevenue := make(map[string]float64)
	ownRevenue := make(map[string]float64)
	var order []string
	for _, p := range m.OrderedProducts() {
		if p.Type == "" {
			continue
		}
		if _, seen := segRevenue[p.Type]; !seen {
			order = append(order, p.Type)
		}
		segRevenue[p.Type] += p.Revenue
		if scope.Includes(p.Brand) {
			ownRevenue[p.Type] += p.Revenue
		}
	}
	var out []ProactiveSuggestion
	for _, typ := range order {
		share := segRevenue[typ] / m.Current.TotalRevenue
		ownShare := 0.0
		if segRevenue[typ] > 0 {
			ownShare = ownRevenue[typ] / segRevenue[typ]
		}
		if share >= th.OpportunitySegmentShare && ownShare < th.OpportunityOwnShareCeiling {
			out = append(out, ProactiveSuggestion{
				Title:    "Segment blind spot",
				Detail:   fmt.Sprintf("%s is %.0f%% of the market; you hold %.1f%% of it.", typ, share*100, ownShare*100),
				Severity: "watch",
			})
		}
	}
	return out
}
