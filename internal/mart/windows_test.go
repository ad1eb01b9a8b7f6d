package mart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioNilSafety(t *testing.T) {
	assert.Nil(t, Ratio(100, 0), "zero base must yield nil, never Inf")

	g := Ratio(126, 100)
	require.NotNil(t, g)
	assert.InDelta(t, 0.26, *g, 1e-9)

	g = Ratio(80, 100)
	require.NotNil(t, g)
	assert.InDelta(t, -0.20, *g, 1e-9)
}

func TestWindowTrendTagging(t *testing.T) {
	target := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	pts := func(revs ...float64) []seriesPoint {
		out := make([]seriesPoint, len(revs))
		for i, r := range revs {
			out[i] = seriesPoint{
				Date:    target.AddDate(0, i-len(revs)+1, 0),
				Revenue: r,
				Units:   10,
			}
		}
		return out
	}

	tests := []struct {
		name string
		revs []float64
		want Trend
	}{
		{"clear growth", []float64{100, 100, 100, 150, 160, 170}, TrendUp},
		{"clear decline", []float64{200, 200, 200, 100, 100, 100}, TrendDown},
		{"within threshold", []float64{100, 100, 100, 102, 101, 103}, TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summarizeWindow(pts(tt.revs...), target, Window3M, 0.08)
			assert.Equal(t, tt.want, s.Trend)
		})
	}
}

func TestWindowAggregation(t *testing.T) {
	target := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	points := []seriesPoint{
		{Date: target.AddDate(0, -2, 0), Revenue: 1000, Units: 10, Rating: 4.0},
		{Date: target.AddDate(0, -1, 0), Revenue: 2000, Units: 20, Rating: 4.4},
		{Date: target, Revenue: 3000, Units: 30, Rating: 4.8},
	}

	s := summarizeWindow(points, target, Window3M, 0.08)
	assert.Equal(t, 6000.0, s.Revenue)
	assert.Equal(t, 60.0, s.Units)
	assert.Equal(t, 100.0, s.ASP)
	assert.InDelta(t, 4.4, s.AvgRating, 1e-9)
	assert.Equal(t, 3, s.Points)

	require.NotNil(t, s.MoMGrowth)
	assert.InDelta(t, 0.5, *s.MoMGrowth, 1e-9)

	// Nothing precedes the window: no window-over-window growth.
	assert.Nil(t, s.WindowGrowth)
}

func TestWindowOverWindowGrowth(t *testing.T) {
	target := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	var points []seriesPoint
	for i := -5; i <= 0; i++ {
		rev := 1000.0
		if i >= -2 {
			rev = 2000.0
		}
		points = append(points, seriesPoint{Date: target.AddDate(0, i, 0), Revenue: rev, Units: 1})
	}

	s := summarizeWindow(points, target, Window3M, 0.08)
	require.NotNil(t, s.WindowGrowth)
	assert.InDelta(t, 1.0, *s.WindowGrowth, 1e-9) // 6000 vs 3000
	assert.Equal(t, TrendUp, s.Trend)
}

func TestAllWindowCoversEverything(t *testing.T) {
	target := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	points := []seriesPoint{
		{Date: target.AddDate(-2, 0, 0), Revenue: 500, Units: 5},
		{Date: target, Revenue: 1500, Units: 15},
	}
	s := summarizeWindow(points, target, WindowAll, 0.08)
	assert.Equal(t, 2000.0, s.Revenue)
	assert.Nil(t, s.WindowGrowth)
}
