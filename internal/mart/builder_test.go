package mart

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func testSeries() []snapshot.Snapshot {
	return []snapshot.Snapshot{
		{
			CategoryID:   "obd",
			Date:         month(2024, time.February),
			TotalRevenue: 80000,
			TotalUnits:   900,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 50000, Units: 500, Share: 0.625},
				{Brand: "ancel", Name: "Ancel", Revenue: 30000, Units: 400, Share: 0.375},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 100, Revenue: 50000, Units: 500, Rating: 4.6, Reviews: 900},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 75, Revenue: 30000, Units: 400, Rating: 4.4, Reviews: 700},
			},
		},
		{
			CategoryID:   "obd",
			Date:         month(2025, time.January),
			TotalRevenue: 100000,
			TotalUnits:   1000,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 60000, Units: 550, Share: 0.60},
				{Brand: "ancel", Name: "Ancel", Revenue: 25000, Units: 300, Share: 0.25},
				{Brand: "topdon", Name: "Topdon", Revenue: 15000, Units: 150, Share: 0.15},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 100, Revenue: 60000, Units: 550, Rating: 4.6, Reviews: 1000},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 80, Revenue: 25000, Units: 300, Rating: 4.4, Reviews: 800},
				{ASIN: "B03TOPDON3", Title: "Topdon TopScan Lite", Brand: "Topdon", Type: "scanner", Price: 95, Revenue: 15000, Units: 150, Rating: 4.5, Reviews: 300},
			},
			QualityIssues: []string{"units estimated for 2 listings"},
		},
		{
			CategoryID:   "obd",
			Date:         month(2025, time.February),
			TotalRevenue: 126000,
			TotalUnits:   1150,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 63000, Units: 525, Share: 0.50},
				{Brand: "ancel", Name: "Ancel", Revenue: 36000, Units: 450, Share: 0.2857},
				{Brand: "topdon", Name: "Topdon", Revenue: 27000, Units: 175, Share: 0.2143},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 120, Revenue: 63000, Units: 525, Rating: 4.6, Reviews: 1100},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 80, Revenue: 36000, Units: 450, Rating: 4.5, Reviews: 900},
				{ASIN: "B03TOPDON3", Title: "Topdon TopScan Lite", Brand: "Topdon", Type: "scanner", Price: 95, Revenue: 27000, Units: 175, Rating: 4.5, Reviews: 420},
			},
			TopByUnits: []snapshot.ProductRow{
				// Sparse source: carries units and reviews only.
				{ASIN: "B02ANCEL22", Title: "", Brand: "", Units: 450, Reviews: 905},
			},
			QualityIssues: []string{"units estimated for 2 listings"},
		},
	}
}

func testBuilder() *Builder {
	return NewBuilder(config.AliasConfig{
		OwnBrands: []string{"innova"},
		Pins: []config.PinnedAlias{
			{Alias: "innova", Brand: "innova"},
		},
	}, config.DefaultThresholds())
}

func TestBuildDeterministic(t *testing.T) {
	b := testBuilder()
	m1, ok1 := b.Build(testSeries(), "obd", month(2025, time.February))
	m2, ok2 := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, m1, m2)
}

func TestBuildMissingMonth(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.June))
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestRankDensity(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	products := m.OrderedProducts()
	byRevenue := make([]*IndexedProduct, len(products))
	copy(byRevenue, products)
	sort.SliceStable(byRevenue, func(i, j int) bool { return byRevenue[i].Revenue > byRevenue[j].Revenue })
	for i, p := range byRevenue {
		assert.Equal(t, i+1, p.RankRevenue, "revenue rank for %s", p.ASIN)
	}

	byUnits := make([]*IndexedProduct, len(products))
	copy(byUnits, products)
	sort.SliceStable(byUnits, func(i, j int) bool { return byUnits[i].Units > byUnits[j].Units })
	for i, p := range byUnits {
		assert.Equal(t, i+1, p.RankUnits, "units rank for %s", p.ASIN)
	}
}

func TestMergePrefersPopulatedFields(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	// The sparse top-by-units row must not erase the revenue row's fields.
	p, found := m.Product("b02ancel22")
	require.True(t, found)
	assert.Equal(t, "Ancel AD410 Reader", p.Title)
	assert.Equal(t, 36000.0, p.Revenue)
	assert.Equal(t, 80.0, p.Price)
	assert.Equal(t, 900, p.Reviews)
}

func TestHistoryHasNoInterpolation(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	// Topdon entered in 2025-01: exactly two points, no synthetic 2024 entry.
	p, found := m.Product("b03topdon3")
	require.True(t, found)
	require.Len(t, p.History, 2)
	assert.Equal(t, month(2025, time.January), p.History[0].Date)
	assert.Equal(t, month(2025, time.February), p.History[1].Date)
}

func TestYearAgoExactMatchOnly(t *testing.T) {
	b := testBuilder()

	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)
	require.NotNil(t, m.YearAgo)
	assert.Equal(t, month(2024, time.February), m.YearAgo.Date)

	// January 2025 has no January 2024 snapshot: no year-ago, never the
	// nearest neighbour.
	m, ok = b.Build(testSeries(), "obd", month(2025, time.January))
	require.True(t, ok)
	assert.Nil(t, m.YearAgo)
}

func TestBrandRankSeries(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	ancel, found := m.Brand("ancel")
	require.True(t, found)
	assert.Equal(t, 2, ancel.Rank)
	prev, ok := ancel.PointAt(month(2025, time.January))
	require.True(t, ok)
	assert.Equal(t, 2, prev.Rank)

	topdon, found := m.Brand("topdon")
	require.True(t, found)
	assert.Equal(t, 3, topdon.Rank)
}

func TestWarningsDeduplicated(t *testing.T) {
	b := testBuilder()
	m, ok := b.Build(testSeries(), "obd", month(2025, time.February))
	require.True(t, ok)

	// The same issue appears in two snapshots but is carried once.
	assert.Equal(t, []string{"units estimated for 2 listings"}, m.Warnings)
}
