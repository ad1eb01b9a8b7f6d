package mart

import (
	"time"
)

// Window identifies a trailing history window size.
type Window string

const (
	Window1M  Window = "1m"
	Window3M  Window = "3m"
	Window6M  Window = "6m"
	Window12M Window = "12m"
	WindowAll Window = "all"
)

// AllWindows lists every window size a mart build computes.
var AllWindows = []Window{Window1M, Window3M, Window6M, Window12M, WindowAll}

// Months returns the window length in months, or 0 for all-time.
func (w Window) Months() int {
	switch w {
	case Window1M:
		return 1
	case Window3M:
		return 3
	case Window6M:
		return 6
	case Window12M:
		return 12
	default:
		return 0
	}
}

// Trend tags a window's direction against the configured growth threshold.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// WindowSummary aggregates a trailing window of history points. Growth fields
// are nil when the comparison base is zero or absent, never Inf or NaN.
type WindowSummary struct {
	Window       Window   `json:"window"`
	Revenue      float64  `json:"revenue"`
	Units        float64  `json:"units"`
	ASP          float64  `json:"asp"`
	AvgRating    float64  `json:"avg_rating"`
	MoMGrowth    *float64 `json:"mom_growth,omitempty"`    // last point vs point before it
	WindowGrowth *float64 `json:"window_growth,omitempty"` // window vs preceding same-size window
	Trend        Trend    `json:"trend"`
	Points       int      `json:"points"`
}

// seriesPoint is the minimal shape windows are computed over, shared by
// product and brand histories.
type seriesPoint struct {
	Date    time.Time
	Revenue float64
	Units   float64
	Rating  float64
}

// Ratio returns (current-previous)/previous, or nil when previous is zero.
// Every growth number in the mart and the analyzers flows through here so the
// nil-safety rule holds everywhere.
func Ratio(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := (current - previous) / previous
	return &v
}

// computeWindows builds every window summary for one chronological series.
// target is the mart's snapshot date; points after it never occur because the
// builder replays only up to the target.
func computeWindows(points []seriesPoint, target time.Time, trendThreshold float64) map[Window]WindowSummary {
	out := make(map[Window]WindowSummary, len(AllWindows))
	for _, w := range AllWindows {
		out[w] = summarizeWindow(points, target, w, trendThreshold)
	}
	return out
}

func summarizeWindow(points []seriesPoint, target time.Time, w Window, trendThreshold float64) WindowSummary {
	in, before := splitWindow(points, target, w)

	s := WindowSummary{Window: w, Trend: TrendFlat, Points: len(in)}
	var ratingSum float64
	var rated int
	for _, p := range in {
		s.Revenue += p.Revenue
		s.Units += p.Units
		if p.Rating > 0 {
			ratingSum += p.Rating
			rated++
		}
	}
	if s.Units > 0 {
		s.ASP = s.Revenue / s.Units
	}
	if rated > 0 {
		s.AvgRating = ratingSum / float64(rated)
	}

	if n := len(points); n >= 2 {
		s.MoMGrowth = Ratio(points[n-1].Revenue, points[n-2].Revenue)
	}

	if w != WindowAll && len(before) > 0 {
		var prevRevenue float64
		for _, p := range before {
			prevRevenue += p.Revenue
		}
		s.WindowGrowth = Ratio(s.Revenue, prevRevenue)
	}

	growth := s.WindowGrowth
	if growth == nil {
		growth = s.MoMGrowth
	}
	if growth != nil {
		switch {
		case *growth >= trendThreshold:
			s.Trend = TrendUp
		case *growth <= -trendThreshold:
			s.Trend = TrendDown
		}
	}
	return s
}

// splitWindow partitions a series into the trailing window ending at target
// and the same-size window immediately before it. For WindowAll the whole
// series is in-window and nothing precedes it.
func splitWindow(points []seriesPoint, target time.Time, w Window) (in, before []seriesPoint) {
	if w == WindowAll {
		return points, nil
	}
	months := w.Months()
	start := monthsBefore(target, months-1)
	prevStart := monthsBefore(target, 2*months-1)
	for _, p := range points {
		switch {
		case !p.Date.Before(start):
			in = append(in, p)
		case !p.Date.Before(prevStart):
			before = append(before, p)
		}
	}
	return in, before
}

// monthsBefore returns the first instant of the month n months before t.
func monthsBefore(t time.Time, n int) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}
