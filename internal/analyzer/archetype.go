package analyzer

import (
	"fmt"
	"sort"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
)

// percentile returns the nearest-rank percentile of values: the element at
// index floor((n-1)*p) of the ascending sort. Not interpolated.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// ClassifyArchetypes assigns every brand in the mart exactly one archetype.
// A brand is price-led when its ASP sits in the top percentile band while its
// unit share sits in the bottom band and its revenue share still clears the
// median floor; volume-led is the mirrored condition; everything else is
// balanced.
func ClassifyArchetypes(m *mart.Mart, th config.Thresholds) map[string]Archetype {
	brands := m.OrderedBrands()
	if len(brands) == 0 {
		return map[string]Archetype{}
	}

	var totalUnits float64
	for _, b := range brands {
		totalUnits += b.Units
	}

	asps := make([]float64, 0, len(brands))
	unitShares := make([]float64, 0, len(brands))
	revShares := make([]float64, 0, len(brands))
	unitShareOf := make(map[string]float64, len(brands))
	for _, b := range brands {
		asps = append(asps, b.ASP())
		us := 0.0
		if totalUnits > 0 {
			us = b.Units / totalUnits
		}
		unitShareOf[b.Key] = us
		unitShares = append(unitShares, us)
		revShares = append(revShares, b.Share)
	}

	aspHigh := percentile(asps, th.ArchetypeASPHigh)
	aspLow := percentile(asps, th.ArchetypeASPLow)
	unitHigh := percentile(unitShares, th.ArchetypeUnitShareHigh)
	unitLow := percentile(unitShares, th.ArchetypeUnitShareLow)
	revFloor := th.ArchetypeRevenueFactor * percentile(revShares, 0.5)

	out := make(map[string]Archetype, len(brands))
	for _, b := range brands {
		us := unitShareOf[b.Key]
		switch {
		case b.ASP() >= aspHigh && us <= unitLow && b.Share >= revFloor:
			out[b.Key] = ArchetypePriceLed
		case b.ASP() <= aspLow && us >= unitHigh && b.Share >= revFloor:
			out[b.Key] = ArchetypeVolumeLed
		default:
			out[b.Key] = ArchetypeBalanced
		}
	}
	return out
}

// AnalyzeBrandArchetype reports the archetype of the scoped brand, or the
// full market's archetype mix when no brand is in scope.
func AnalyzeBrandArchetype(in Input) Finding {
	archetypes := ClassifyArchetypes(in.Mart, in.Thresholds)
	scoped := in.scopedBrands()

	if len(scoped) > 0 {
		b := scoped[0]
		arch := archetypes[b.Key]
		f := Finding{
			Answer:         fmt.Sprintf("%s sells on a %s model.", b.Name, archetypeLabel(arch)),
			SalesArchetype: arch,
			Confidence:     0.8,
			Bullets: []string{
				fmt.Sprintf("ASP %s vs market median positioning", fmtUSD(b.ASP())),
				fmt.Sprintf("Revenue share %s, rank #%d", fmtShare(b.Share), b.Rank),
			},
			Evidence: []Evidence{
				{Label: "archetype", Value: string(arch)},
				{Label: "ASP", Value: fmtUSD(b.ASP())},
				{Label: "revenue share", Value: fmtShare(b.Share)},
			},
			Assumptions: []string{
				"Archetypes compare ASP and share percentiles across this category's brands only.",
			},
			Citations: []Citation{in.cite("sales_archetype", "brand_totals")},
		}
		return f
	}

	counts := map[Archetype]int{}
	for _, a := range archetypes {
		counts[a]++
	}
	return Finding{
		Answer: fmt.Sprintf("This market splits into %d price-led, %d volume-led, and %d balanced brands.",
			counts[ArchetypePriceLed], counts[ArchetypeVolumeLed], counts[ArchetypeBalanced]),
		Confidence: 0.75,
		Evidence: []Evidence{
			{Label: "price-led brands", Value: fmt.Sprintf("%d", counts[ArchetypePriceLed])},
			{Label: "volume-led brands", Value: fmt.Sprintf("%d", counts[ArchetypeVolumeLed])},
			{Label: "balanced brands", Value: fmt.Sprintf("%d", counts[ArchetypeBalanced])},
		},
		Assumptions: []string{
			"Archetypes compare ASP and share percentiles across this category's brands only.",
		},
		Citations: []Citation{in.cite("sales_archetype", "brand_totals")},
	}
}

func archetypeLabel(a Archetype) string {
	switch a {
	case ArchetypePriceLed:
		return "price-led (premium pricing, selective volume)"
	case ArchetypeVolumeLed:
		return "volume-led (low price, high unit throughput)"
	default:
		return "balanced"
	}
}
