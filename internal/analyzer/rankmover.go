package analyzer

import (
	"fmt"
	"sort"

	"github.com/shelfsight/shelfsight/internal/query"
)

// rankMove is one candidate's leaderboard movement. Delta is previous rank
// minus current rank, so positive means improved.
type rankMove struct {
	label    string
	current  int
	previous int
	delta    int
}

// AnalyzeRankMover finds the biggest leaderboard climber over the last month.
// A candidate new to the leaderboard has no previous rank and cannot move by
// this definition, so it is excluded.
func AnalyzeRankMover(in Input) Finding {
	var moves []rankMove
	var excluded int

	if in.Plan.Level == query.LevelASIN {
		for _, p := range in.scopedProducts() {
			if in.Mart.Previous == nil {
				excluded++
				continue
			}
			prev, ok := p.PointAt(in.Mart.Previous.Date)
			if !ok {
				excluded++
				continue
			}
			cur, prevRank := p.RankRevenue, prev.RankRevenue
			if in.Plan.Metric == query.MetricUnits {
				cur, prevRank = p.RankUnits, prev.RankUnits
			}
			if cur == 0 || prevRank == 0 {
				excluded++
				continue
			}
			moves = append(moves, rankMove{
				label:    fmt.Sprintf("%s (%s)", p.Title, p.RawASIN),
				current:  cur,
				previous: prevRank,
				delta:    prevRank - cur,
			})
		}
	} else {
		for _, b := range in.scopedBrands() {
			if in.Mart.Previous == nil {
				excluded++
				continue
			}
			prev, ok := b.PointAt(in.Mart.Previous.Date)
			if !ok || b.Rank == 0 || prev.Rank == 0 {
				excluded++
				continue
			}
			moves = append(moves, rankMove{
				label:    b.Name,
				current:  b.Rank,
				previous: prev.Rank,
				delta:    prev.Rank - b.Rank,
			})
		}
	}

	if len(moves) == 0 {
		return Finding{
			Answer:      "No candidate has ranks in both months, so rank movement cannot be computed.",
			Confidence:  0.3,
			Partial:     true,
			Assumptions: []string{"Rank movement needs a rank in both the current and previous month."},
			Citations:   []Citation{in.cite("rank_delta", "rank_series")},
		}
	}

	sort.SliceStable(moves, func(i, j int) bool { return moves[i].delta > moves[j].delta })
	top := moves[0]

	direction := "climbed"
	if top.delta < 0 {
		direction = "slipped"
	}
	f := Finding{
		Answer: fmt.Sprintf("%s %s the most, moving from #%d to #%d (%+d positions).",
			top.label, direction, top.previous, top.current, top.delta),
		Confidence:       0.8,
		HistoricalWindow: "1m",
		Assumptions: []string{
			"Movement is previous rank minus current rank; newcomers to the leaderboard are excluded.",
		},
		Citations: []Citation{in.cite("rank_delta", "rank_series")},
		Evidence: []Evidence{
			{Label: "biggest mover", Value: top.label},
			{Label: "rank change", Value: fmt.Sprintf("#%d → #%d", top.previous, top.current)},
			{Label: "excluded newcomers", Value: fmt.Sprintf("%d", excluded)},
		},
	}
	for i, mv := range moves {
		if i >= in.Thresholds.MaxBullets {
			break
		}
		f.Bullets = append(f.Bullets, fmt.Sprintf("%d. %s: #%d → #%d (%+d)",
			i+1, mv.label, mv.previous, mv.current, mv.delta))
	}
	return f
}
