package analyzer

import (
	"fmt"
	"math"
)

// fmtUSD renders a dollar amount compactly: $950, $12.5K, $1.2M.
func fmtUSD(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// fmtCount renders a unit count compactly.
func fmtCount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// fmtPct renders a growth ratio as a signed percentage.
func fmtPct(ratio float64) string {
	return fmt.Sprintf("%+.1f%%", ratio*100)
}

// fmtShare renders a 0..1 share as a plain percentage.
func fmtShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// fmtSigned renders a signed dollar delta.
func fmtSigned(v float64) string {
	if v >= 0 {
		return "+" + fmtUSD(v)
	}
	return "-" + fmtUSD(-v)
}
