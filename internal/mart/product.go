package mart

import (
	"time"
)

// HistoryPoint is one ASIN's state at one snapshot date. Points exist only
// for snapshots the ASIN actually appeared in; gaps are never interpolated.
type HistoryPoint struct {
	Date        time.Time `json:"date"`
	Revenue     float64   `json:"revenue"`
	Units       float64   `json:"units"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	Reviews     int       `json:"reviews"`
	RankRevenue int       `json:"rank_revenue"` // 1-based, dense within the snapshot
	RankUnits   int       `json:"rank_units"`
}

// ProductDeltas holds pre-computed month-over-month changes. A nil field
// means the ASIN was absent from the previous snapshot, or the previous
// value was zero where a ratio is involved.
type ProductDeltas struct {
	Revenue *float64 `json:"revenue,omitempty"`
	Units   *float64 `json:"units,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
}

// IndexedProduct is one ASIN's current-month view plus its full history.
// Rebuilt from scratch on every mart build, never mutated incrementally.
type IndexedProduct struct {
	ASIN      string `json:"asin"` // normalized identity key
	RawASIN   string `json:"raw_asin"`
	Title     string `json:"title"`
	Brand     string `json:"brand"` // normalized brand key
	BrandName string `json:"brand_name"`
	Type      string `json:"type,omitempty"`

	Price   float64 `json:"price"`
	Revenue float64 `json:"revenue"`
	Units   float64 `json:"units"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`

	RankRevenue int `json:"rank_revenue"`
	RankUnits   int `json:"rank_units"`

	History []HistoryPoint          `json:"history"`
	Deltas  ProductDeltas           `json:"deltas"`
	Windows map[Window]WindowSummary `json:"windows"`
}

// ASP returns the product's current average selling price, zero-safe.
func (p *IndexedProduct) ASP() float64 {
	if p.Units == 0 {
		return 0
	}
	return p.Revenue / p.Units
}

// PointAt returns the history point for a given month, if any.
func (p *IndexedProduct) PointAt(date time.Time) (HistoryPoint, bool) {
	for _, h := range p.History {
		if sameMonth(h.Date, date) {
			return h, true
		}
	}
	return HistoryPoint{}, false
}

// BrandPoint is one brand's aggregate state at one snapshot date.
type BrandPoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
	Units   float64   `json:"units"`
	Share   float64   `json:"share"`
	Rank    int       `json:"rank"` // revenue rank, 1-based dense
}

// BrandStats is one brand's current-month aggregates, rank series, and
// history windows within the mart.
type BrandStats struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Units   float64 `json:"units"`
	Share   float64 `json:"share"`
	Rank    int     `json:"rank"`

	History []BrandPoint             `json:"history"`
	Windows map[Window]WindowSummary `json:"windows"`
}

// ASP returns the brand's current average selling price, zero-safe.
func (b *BrandStats) ASP() float64 {
	if b.Units == 0 {
		return 0
	}
	return b.Revenue / b.Units
}

// PointAt returns the brand history point for a given month, if any.
func (b *BrandStats) PointAt(date time.Time) (BrandPoint, bool) {
	for _, h := range b.History {
		if sameMonth(h.Date, date) {
			return h, true
		}
	}
	return BrandPoint{}, false
}

func sameMonth(a, b time.Time) bool {
	return a.UTC().Year() == b.UTC().Year() && a.UTC().Month() == b.UTC().Month()
}
