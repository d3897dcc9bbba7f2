// Package standings derives handicaps, bowler and team statistics and ranked
// standings from raw score rows. Nothing here is cached between calls.
package standings

import (
	"math"

	"github.com/tenpin/leaguebook/internal/domain"
)

// CalculateHandicap turns an average into handicap pins. Bowlers at or above
// the basis get none; the result never exceeds rules.Max.
func CalculateHandicap(average float64, rules domain.HandicapRules) int {
	if !rules.Enabled {
		return 0
	}
	diff := float64(rules.Basis) - average
	if diff <= 0 {
		return 0
	}
	hcp := int(math.Floor(diff * float64(rules.Percentage) / 100))
	return min(hcp, rules.Max)
}
