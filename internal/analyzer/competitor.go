package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/shelfsight/shelfsight/internal/mart"
)

// rivalCandidate is one scored competitor match.
type rivalCandidate struct {
	Product  *mart.IndexedProduct
	Score    float64 // 0..1
	Evidence []string
}

// FindCompetitors scores every other product in the mart against the target
// by price proximity, rating proximity, and type match, returning candidates
// ranked best first. The scoring weights are fixed: price 0.5, type 0.3,
// rating 0.2.
func FindCompetitors(m *mart.Mart, target *mart.IndexedProduct, limit int) []rivalCandidate {
	var out []rivalCandidate
	for _, p := range m.OrderedProducts() {
		if p.ASIN == target.ASIN || p.Brand == target.Brand {
			continue
		}
		c := scoreRival(target, p)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func scoreRival(target, p *mart.IndexedProduct) rivalCandidate {
	c := rivalCandidate{Product: p}

	priceScore := 0.0
	if target.Price > 0 && p.Price > 0 {
		gap := math.Abs(p.Price-target.Price) / target.Price
		priceScore = 1 - gap
		if priceScore < 0 {
			priceScore = 0
		}
		c.Evidence = append(c.Evidence,
			fmt.Sprintf("priced %s vs target %s (%.0f%% apart)", fmtUSD(p.Price), fmtUSD(target.Price), gap*100))
	}

	typeScore := 0.0
	if target.Type != "" && p.Type == target.Type {
		typeScore = 1
		c.Evidence = append(c.Evidence, fmt.Sprintf("same product type (%s)", p.Type))
	} else if p.Type != "" && target.Type != "" {
		c.Evidence = append(c.Evidence, fmt.Sprintf("different type (%s vs %s)", p.Type, target.Type))
	}

	ratingScore := 0.0
	if target.Rating > 0 && p.Rating > 0 {
		ratingScore = 1 - math.Abs(p.Rating-target.Rating)/5
		c.Evidence = append(c.Evidence,
			fmt.Sprintf("rated %.1f vs target %.1f", p.Rating, target.Rating))
	}

	c.Score = 0.5*priceScore + 0.3*typeScore + 0.2*ratingScore
	return c
}

// AnalyzeProductCompetitor names the closest rival to the resolved product.
// The router guarantees exactly one resolved ASIN before dispatching here.
func AnalyzeProductCompetitor(in Input) Finding {
	target, ok := in.Mart.Product(in.Entities.ASINs[0])
	if !ok {
		return Finding{
			Answer:     "The requested product is not in this month's snapshot.",
			Confidence: 0.3,
			Partial:    true,
			Citations:  []Citation{in.cite("competitor_match", "top_products")},
		}
	}

	rivals := FindCompetitors(in.Mart, target, in.Thresholds.MaxBullets)
	if len(rivals) == 0 {
		return Finding{
			Answer:      fmt.Sprintf("No rival to %s could be scored: every other listing shares its brand or lacks data.", target.Title),
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Competitor matching skips same-brand listings."},
			Citations:   []Citation{in.cite("competitor_match", "top_products")},
		}
	}

	best := rivals[0]
	f := Finding{
		Answer: fmt.Sprintf("%s's closest competitor is %s by %s (match score %.2f).",
			target.Title, best.Product.Title, best.Product.BrandName, best.Score),
		Confidence:  0.4 + 0.5*best.Score,
		Assumptions: []string{"Proximity scoring weighs price 50%, type 30%, rating 20%."},
		Citations: []Citation{
			in.cite("competitor_match", "top_products"),
		},
		Evidence: []Evidence{
			{Label: "closest rival", Value: fmt.Sprintf("%s (%s)", best.Product.Title, best.Product.RawASIN)},
			{Label: "match score", Value: fmt.Sprintf("%.2f", best.Score)},
		},
	}
	for i, r := range rivals {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		detail := ""
		if len(r.Evidence) > 0 {
			detail = ": " + r.Evidence[0]
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%d. %s by %s (%.2f)%s",
			i+1, r.Product.Title, r.Product.BrandName, r.Score, detail))
	}
	return f
}
