package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// testSeries builds three snapshots: the target month, the month before, and
// the month exactly one year back. Brand totals sum to the snapshot totals so
// market-level and aggregated-brand math agree.
func testSeries() []snapshot.Snapshot {
	return []snapshot.Snapshot{
		{
			CategoryID:   "obd",
			Date:         time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			TotalRevenue: 90000,
			TotalUnits:   900,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 50000, Units: 500, Share: 0.5556},
				{Brand: "ancel", Name: "Ancel", Revenue: 40000, Units: 400, Share: 0.4444},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 95, Revenue: 50000, Units: 500, Rating: 4.6},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 85, Revenue: 40000, Units: 400, Rating: 4.4},
			},
		},
		{
			CategoryID:   "obd",
			Date:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			TotalRevenue: 100000,
			TotalUnits:   1000,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 60000, Units: 600, Share: 0.60},
				{Brand: "ancel", Name: "Ancel", Revenue: 40000, Units: 400, Share: 0.40},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 100, Revenue: 60000, Units: 600, Rating: 4.6},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 85, Revenue: 35000, Units: 300, Rating: 4.5},
				{ASIN: "B03TOPDON3", Title: "Topdon TopScan Lite", Brand: "Topdon", Type: "scanner", Price: 90, Revenue: 13500, Units: 150, Rating: 4.5},
			},
		},
		{
			CategoryID:   "obd",
			Date:         time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			TotalRevenue: 126000,
			TotalUnits:   1050,
			Brands: []snapshot.BrandTotal{
				{Brand: "innova", Name: "Innova Electronics", Revenue: 76000, Units: 630, Share: 0.6032},
				{Brand: "ancel", Name: "Ancel", Revenue: 50000, Units: 420, Share: 0.3968},
			},
			TopByRevenue: []snapshot.ProductRow{
				{ASIN: "B01INNOVA1", Title: "Innova 5610 Scanner", Brand: "Innova Electronics", Type: "scanner", Price: 120, Revenue: 76000, Units: 630, Rating: 4.6},
				{ASIN: "B02ANCEL22", Title: "Ancel AD410 Reader", Brand: "Ancel", Type: "reader", Price: 80, Revenue: 30000, Units: 320, Rating: 4.5},
				{ASIN: "B03TOPDON3", Title: "Topdon TopScan Lite", Brand: "Topdon", Type: "scanner", Price: 95, Revenue: 20000, Units: 120, Rating: 4.5},
			},
		},
	}
}

func testMart(t *testing.T) *mart.Mart {
	t.Helper()
	b := mart.NewBuilder(config.AliasConfig{OwnBrands: []string{"innova"}}, config.DefaultThresholds())
	m, ok := b.Build(testSeries(), "obd", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	return m
}

// testInput wires a market-wide input over the standard fixture.
func testInput(t *testing.T) Input {
	t.Helper()
	return Input{
		Mart:       testMart(t),
		Scope:      query.Scope{Mode: query.ScopeAllBrands},
		Plan:       query.Plan{Metric: query.MetricRevenue, Window: query.WindowMoM, Level: query.LevelMarket},
		Thresholds: config.DefaultThresholds(),
	}
}
