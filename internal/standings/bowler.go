package standings

import (
	"slices"

	"github.com/tenpin/leaguebook/internal/domain"
)

// seriesLength is the number of games summed for a high series.
const seriesLength = 3

// BowlerStats aggregates a bowler's full score history. With no scores the
// average falls back to the starting average.
func BowlerStats(b domain.Bowler, scores []domain.Score, rules domain.HandicapRules) domain.BowlerWithStats {
	stats := domain.BowlerWithStats{Bowler: b, GamesPlayed: len(scores)}

	pins := make([]int, 0, len(scores))
	for _, s := range scores {
		stats.TotalPins += s.Score
		stats.HighGame = max(stats.HighGame, s.Score)
		pins = append(pins, s.Score)
	}

	if stats.GamesPlayed > 0 {
		stats.Average = float64(stats.TotalPins) / float64(stats.GamesPlayed)
	} else {
		stats.Average = b.StartingAverage
	}
	stats.Handicap = CalculateHandicap(stats.Average, rules)
	stats.HighSeries = highSeries(pins, stats.TotalPins)
	return stats
}

// highSeries is the sum of the three best games by value, not the three most
// recent. Fewer than three games count in full.
func highSeries(pins []int, total int) int {
	if len(pins) < seriesLength {
		return total
	}
	sorted := slices.Clone(pins)
	slices.Sort(sorted)
	slices.Reverse(sorted)
	sum := 0
	for _, p := range sorted[:seriesLength] {
		sum += p
	}
	return sum
}
