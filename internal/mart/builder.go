package mart

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// Mart is the rebuilt, indexed, query-optimized view of one category at one
// snapshot date. Every analyzer reads from it; nothing writes to it after
// Build returns.
type Mart struct {
	CategoryID string
	Date       time.Time

	Current  *snapshot.Snapshot
	Previous *snapshot.Snapshot // prior chronological snapshot, may be nil
	YearAgo  *snapshot.Snapshot // snapshot exactly 12 months earlier, may be nil

	Products     map[string]*IndexedProduct // by normalized ASIN
	ProductOrder []string                   // revenue-rank order, deterministic iteration
	ByBrand      map[string][]*IndexedProduct

	Brands     map[string]*BrandStats
	BrandOrder []string // revenue-rank order

	Aliases *AliasTable

	Warnings []string // de-duplicated data-quality issues from the series
}

// Key builds the cache key for a mart request.
func Key(categoryID string, date time.Time) string {
	return categoryID + ":" + snapshot.MonthKey(date)
}

// Product returns the indexed product for a normalized ASIN.
func (m *Mart) Product(asin string) (*IndexedProduct, bool) {
	p, ok := m.Products[asin]
	return p, ok
}

// Brand returns the brand stats for a normalized brand key.
func (m *Mart) Brand(key string) (*BrandStats, bool) {
	b, ok := m.Brands[key]
	return b, ok
}

// OrderedProducts returns the products in revenue-rank order.
func (m *Mart) OrderedProducts() []*IndexedProduct {
	out := make([]*IndexedProduct, 0, len(m.ProductOrder))
	for _, asin := range m.ProductOrder {
		out = append(out, m.Products[asin])
	}
	return out
}

// OrderedBrands returns the brands in revenue-rank order.
func (m *Mart) OrderedBrands() []*BrandStats {
	out := make([]*BrandStats, 0, len(m.BrandOrder))
	for _, key := range m.BrandOrder {
		out = append(out, m.Brands[key])
	}
	return out
}

// Builder turns a snapshot series into marts. It holds only configuration;
// every Build call is a pure function of its inputs.
type Builder struct {
	aliasCfg   config.AliasConfig
	thresholds config.Thresholds
}

// NewBuilder creates a mart builder.
func NewBuilder(aliasCfg config.AliasConfig, thresholds config.Thresholds) *Builder {
	return &Builder{aliasCfg: aliasCfg, thresholds: thresholds}
}

// Build constructs the mart for the snapshot matching target's month. The
// second return is false when the series has no snapshot for that month;
// callers cache the negative too.
func (b *Builder) Build(series []snapshot.Snapshot, categoryID string, target time.Time) (*Mart, bool) {
	idx := -1
	for i := range series {
		if snapshot.SameMonth(series[i].Date, target) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	upTo := series[:idx+1]
	current := &series[idx]

	m := &Mart{
		CategoryID: categoryID,
		Date:       current.Date,
		Current:    current,
		Products:   make(map[string]*IndexedProduct),
		ByBrand:    make(map[string][]*IndexedProduct),
		Brands:     make(map[string]*BrandStats),
	}
	if idx > 0 {
		m.Previous = &series[idx-1]
	}
	for i := range upTo {
		if snapshot.SameMonth(upTo[i].Date, target.AddDate(-1, 0, 0)) {
			m.YearAgo = &upTo[i]
		}
	}

	b.indexProducts(m, upTo)
	b.indexBrands(m, upTo)
	m.Aliases = buildAliasTable(m.OrderedBrands(), m.OrderedProducts(), b.aliasCfg)
	m.Warnings = collectWarnings(upTo)

	log.Debug().
		Str("category", categoryID).
		Str("month", snapshot.MonthKey(m.Date)).
		Int("products", len(m.Products)).
		Int("brands", len(m.Brands)).
		Msg("Mart built")
	return m, true
}

// brandKeyLookup maps both brand keys and normalized display names back to
// the canonical brand key, across every snapshot in the window. Product rows
// sometimes carry the display name where brand totals carry the key.
func brandKeyLookup(upTo []snapshot.Snapshot) map[string]string {
	keys := make(map[string]string)
	for i := range upTo {
		for _, bt := range upTo[i].Brands {
			key := snapshot.NormalizeKey(bt.Brand)
			if key == "" {
				continue
			}
			if _, exists := keys[key]; !exists {
				keys[key] = key
			}
			if name := snapshot.NormalizeKey(bt.Name); name != "" {
				if _, exists := keys[name]; !exists {
					keys[name] = key
				}
			}
		}
	}
	return keys
}

// canonicalBrandKey resolves a product row's brand field to the brand-total
// key when one matches, else falls back to the normalized field itself.
func canonicalBrandKey(brand string, keys map[string]string) string {
	norm := snapshot.NormalizeKey(brand)
	if key, ok := keys[norm]; ok {
		return key
	}
	return norm
}

// rankedRow is one merged product row plus its two ranks within a snapshot.
type rankedRow struct {
	row         snapshot.ProductRow
	rankRevenue int
	rankUnits   int
}

// indexProducts merges the target snapshot's product sources, then replays
// the same merge across every earlier snapshot to rebuild each product's
// history and per-date ranks.
func (b *Builder) indexProducts(m *Mart, upTo []snapshot.Snapshot) {
	// One merged+ranked view per snapshot in the window.
	merged := make([]map[string]rankedRow, len(upTo))
	for i := range upTo {
		merged[i] = mergeSnapshot(&upTo[i])
	}

	keys := brandKeyLookup(upTo)

	targetRows := merged[len(upTo)-1]
	order := mergeOrder(m.Current)

	for _, asin := range order {
		rr := targetRows[asin]
		p := &IndexedProduct{
			ASIN:        asin,
			RawASIN:     rr.row.ASIN,
			Title:       rr.row.Title,
			Brand:       canonicalBrandKey(rr.row.Brand, keys),
			BrandName:   rr.row.Brand,
			Type:        rr.row.Type,
			Price:       rr.row.Price,
			Revenue:     rr.row.Revenue,
			Units:       rr.row.Units,
			Rating:      rr.row.Rating,
			Reviews:     rr.row.Reviews,
			RankRevenue: rr.rankRevenue,
			RankUnits:   rr.rankUnits,
		}

		for i := range upTo {
			hr, ok := merged[i][asin]
			if !ok {
				continue
			}
			p.History = append(p.History, HistoryPoint{
				Date:        upTo[i].Date,
				Revenue:     hr.row.Revenue,
				Units:       hr.row.Units,
				Price:       hr.row.Price,
				Rating:      hr.row.Rating,
				Reviews:     hr.row.Reviews,
				RankRevenue: hr.rankRevenue,
				RankUnits:   hr.rankUnits,
			})
		}

		p.Deltas = productDeltas(p, m.Previous)
		p.Windows = computeWindows(productSeries(p), m.Date, b.thresholds.TrendGrowth)

		m.Products[asin] = p
		m.ProductOrder = append(m.ProductOrder, asin)
		if p.Brand != "" {
			m.ByBrand[p.Brand] = append(m.ByBrand[p.Brand], p)
		}
	}

	sort.SliceStable(m.ProductOrder, func(i, j int) bool {
		return m.Products[m.ProductOrder[i]].RankRevenue < m.Products[m.ProductOrder[j]].RankRevenue
	})
}

// mergeSnapshot merges every product-row source within one snapshot into a
// de-duplicated, doubly-ranked map keyed by normalized ASIN.
func mergeSnapshot(s *snapshot.Snapshot) map[string]rankedRow {
	order := mergeOrder(s)
	rows := mergeRows(s)

	byRevenue := make([]string, len(order))
	copy(byRevenue, order)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return rows[byRevenue[i]].Revenue > rows[byRevenue[j]].Revenue
	})
	byUnits := make([]string, len(order))
	copy(byUnits, order)
	sort.SliceStable(byUnits, func(i, j int) bool {
		return rows[byUnits[i]].Units > rows[byUnits[j]].Units
	})

	out := make(map[string]rankedRow, len(order))
	for _, asin := range order {
		out[asin] = rankedRow{row: rows[asin]}
	}
	for i, asin := range byRevenue {
		rr := out[asin]
		rr.rankRevenue = i + 1
		out[asin] = rr
	}
	for i, asin := range byUnits {
		rr := out[asin]
		rr.rankUnits = i + 1
		out[asin] = rr
	}
	return out
}

// mergeOrder returns the first-seen ASIN order across a snapshot's sources.
// Brand listing sheets are visited in sorted brand-key order so the merge is
// deterministic.
func mergeOrder(s *snapshot.Snapshot) []string {
	seen := make(map[string]bool)
	var order []string
	add := func(rows []snapshot.ProductRow) {
		for _, r := range rows {
			asin := snapshot.NormalizeASIN(r.ASIN)
			if asin == "" || seen[asin] {
				continue
			}
			seen[asin] = true
			order = append(order, asin)
		}
	}
	add(s.TopByRevenue)
	add(s.TopByUnits)
	for _, brand := range sortedListingKeys(s) {
		add(s.BrandListings[brand])
	}
	return order
}

func mergeRows(s *snapshot.Snapshot) map[string]snapshot.ProductRow {
	rows := make(map[string]snapshot.ProductRow)
	merge := func(src []snapshot.ProductRow) {
		for _, r := range src {
			asin := snapshot.NormalizeASIN(r.ASIN)
			if asin == "" {
				continue
			}
			if existing, ok := rows[asin]; ok {
				rows[asin] = mergeRow(existing, r)
			} else {
				rows[asin] = r
			}
		}
	}
	merge(s.TopByRevenue)
	merge(s.TopByUnits)
	for _, brand := range sortedListingKeys(s) {
		merge(s.BrandListings[brand])
	}
	return rows
}

func sortedListingKeys(s *snapshot.Snapshot) []string {
	keys := make([]string, 0, len(s.BrandListings))
	for k := range s.BrandListings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mergeRow combines two source rows for the same ASIN field by field. The row
// with the larger revenue (units as tie-break) is preferred, but a populated
// field from the other row always beats an empty one, so sparse sources never
// erase data.
func mergeRow(a, b snapshot.ProductRow) snapshot.ProductRow {
	base, other := a, b
	if b.Revenue > a.Revenue || (b.Revenue == a.Revenue && b.Units > a.Units) {
		base, other = b, a
	}
	if base.Title == "" {
		base.Title = other.Title
	}
	if base.Brand == "" {
		base.Brand = other.Brand
	}
	if base.Type == "" {
		base.Type = other.Type
	}
	if base.Price == 0 {
		base.Price = other.Price
	}
	if base.Revenue == 0 {
		base.Revenue = other.Revenue
	}
	if base.Units == 0 {
		base.Units = other.Units
	}
	if base.Rating == 0 {
		base.Rating = other.Rating
	}
	if base.Reviews == 0 {
		base.Reviews = other.Reviews
	}
	return base
}

func productDeltas(p *IndexedProduct, previous *snapshot.Snapshot) ProductDeltas {
	var d ProductDeltas
	if previous == nil {
		return d
	}
	prev, ok := p.PointAt(previous.Date)
	if !ok {
		return d
	}
	rev := p.Revenue - prev.Revenue
	units := p.Units - prev.Units
	d.Revenue = &rev
	d.Units = &units
	if prev.Price > 0 && p.Price > 0 {
		price := p.Price - prev.Price
		d.Price = &price
	}
	if prev.Rating > 0 && p.Rating > 0 {
		rating := p.Rating - prev.Rating
		d.Rating = &rating
	}
	return d
}

func productSeries(p *IndexedProduct) []seriesPoint {
	out := make([]seriesPoint, 0, len(p.History))
	for _, h := range p.History {
		out = append(out, seriesPoint{Date: h.Date, Revenue: h.Revenue, Units: h.Units, Rating: h.Rating})
	}
	return out
}

// indexBrands builds per-brand aggregates, rank history, and windows from the
// brand-totals rows of every snapshot in the window.
func (b *Builder) indexBrands(m *Mart, upTo []snapshot.Snapshot) {
	type brandAt struct {
		point BrandPoint
		name  string
	}
	history := make(map[string][]brandAt)
	var keyOrder []string
	seen := make(map[string]bool)

	for i := range upTo {
		ranked := rankBrandTotals(upTo[i].Brands)
		for _, rt := range ranked {
			key := snapshot.NormalizeKey(rt.total.Brand)
			if key == "" {
				continue
			}
			if !seen[key] {
				seen[key] = true
				keyOrder = append(keyOrder, key)
			}
			history[key] = append(history[key], brandAt{
				name: displayName(rt.total),
				point: BrandPoint{
					Date:    upTo[i].Date,
					Revenue: rt.total.Revenue,
					Units:   rt.total.Units,
					Share:   rt.total.Share,
					Rank:    rt.rank,
				},
			})
		}
	}

	for _, key := range keyOrder {
		pts := history[key]
		last := pts[len(pts)-1]

		bs := &BrandStats{Key: key, Name: last.name}
		for _, p := range pts {
			bs.History = append(bs.History, p.point)
		}
		if cur, ok := bs.PointAt(m.Date); ok {
			bs.Revenue = cur.Revenue
			bs.Units = cur.Units
			bs.Share = cur.Share
			bs.Rank = cur.Rank
		}
		series := make([]seriesPoint, 0, len(bs.History))
		for _, p := range bs.History {
			series = append(series, seriesPoint{Date: p.Date, Revenue: p.Revenue, Units: p.Units})
		}
		bs.Windows = computeWindows(series, m.Date, b.thresholds.TrendGrowth)
		m.Brands[key] = bs
	}

	// Current-month brands in rank order first, then historical-only brands.
	for _, rt := range rankBrandTotals(m.Current.Brands) {
		key := snapshot.NormalizeKey(rt.total.Brand)
		if _, ok := m.Brands[key]; ok {
			m.BrandOrder = append(m.BrandOrder, key)
		}
	}
	inCurrent := make(map[string]bool, len(m.BrandOrder))
	for _, k := range m.BrandOrder {
		inCurrent[k] = true
	}
	for _, key := range keyOrder {
		if !inCurrent[key] {
			m.BrandOrder = append(m.BrandOrder, key)
		}
	}
}

type rankedTotal struct {
	total snapshot.BrandTotal
	rank  int
}

// rankBrandTotals assigns dense 1-based revenue ranks via stable sort.
func rankBrandTotals(totals []snapshot.BrandTotal) []rankedTotal {
	out := make([]rankedTotal, len(totals))
	for i, t := range totals {
		out[i] = rankedTotal{total: t}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].total.Revenue > out[j].total.Revenue
	})
	for i := range out {
		out[i].rank = i + 1
	}
	return out
}

func displayName(t snapshot.BrandTotal) string {
	if t.Name != "" {
		return t.Name
	}
	return t.Brand
}

// collectWarnings de-duplicates quality issues across the series, newest
// snapshot first.
func collectWarnings(upTo []snapshot.Snapshot) []string {
	seen := make(map[string]bool)
	var out []string
	for i := len(upTo) - 1; i >= 0; i-- {
		for _, w := range upTo[i].QualityIssues {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
