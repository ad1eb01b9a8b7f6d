package snapshot

import (
	"strings"
	"time"
)

// Snapshot is one calendar month's fully aggregated market state for a
// category. Snapshots are immutable once handed to the engine; the mart
// builder never writes back into them.
type Snapshot struct {
	CategoryID   string    `json:"category_id"`
	Date         time.Time `json:"date"` // first day of the month, UTC
	TotalRevenue float64   `json:"total_revenue"`
	TotalUnits   float64   `json:"total_units"`

	// Brands is ordered by revenue descending as produced by the ETL.
	Brands []BrandTotal `json:"brands"`

	// TopByRevenue and TopByUnits are the top-N product lists. The same ASIN
	// may appear in both with different fields populated.
	TopByRevenue []ProductRow `json:"top_by_revenue"`
	TopByUnits   []ProductRow `json:"top_by_units,omitempty"`

	// BrandListings holds optional per-brand listing sheets keyed by brand key.
	BrandListings map[string][]ProductRow `json:"brand_listings,omitempty"`

	// TypeBreakdown holds optional type/price-scope rows.
	TypeBreakdown []TypeScopeRow `json:"type_breakdown,omitempty"`

	// Rolling12 holds optional rolling twelve-month brand rankings.
	Rolling12 []RollingRank `json:"rolling_12,omitempty"`

	// QualityIssues lists data problems surfaced by the provider. They are
	// carried through as warnings and never block analysis.
	QualityIssues []string `json:"quality_issues,omitempty"`
}

// BrandTotal is one brand's aggregate line within a snapshot.
type BrandTotal struct {
	Brand   string  `json:"brand"`
	Name    string  `json:"name,omitempty"` // display name, may differ from key
	Revenue float64 `json:"revenue"`
	Units   float64 `json:"units"`
	Share   float64 `json:"share"` // 0..1 revenue share
}

// ProductRow is one product line from any snapshot source sheet. Fields that
// a given source does not carry are zero-valued.
type ProductRow struct {
	ASIN    string  `json:"asin"`
	Title   string  `json:"title"`
	Brand   string  `json:"brand"`
	Type    string  `json:"type,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Revenue float64 `json:"revenue,omitempty"`
	Units   float64 `json:"units,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
	Reviews int     `json:"reviews,omitempty"`
}

// TypeScopeRow is one product-type (optionally price-banded) aggregate.
type TypeScopeRow struct {
	Type       string  `json:"type"`
	PriceScope string  `json:"price_scope,omitempty"`
	Revenue    float64 `json:"revenue"`
	Units      float64 `json:"units"`
	Share      float64 `json:"share"`
}

// RollingRank is one brand's trailing twelve-month ranking entry.
type RollingRank struct {
	Brand   string  `json:"brand"`
	Rank    int     `json:"rank"`
	Revenue float64 `json:"revenue"`
}

// NormalizeASIN lower-cases an ASIN and strips every non-alphanumeric rune.
// The result is the product identity key used throughout the mart.
func NormalizeASIN(asin string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(asin)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKey lower-cases and trims a brand key or alias, collapsing inner
// whitespace runs to single spaces.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MonthKey formats a snapshot date as the canonical YYYY-MM cache key part.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.UTC().Year() == b.UTC().Year() && a.UTC().Month() == b.UTC().Month()
}
