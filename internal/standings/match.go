package standings

import (
	"github.com/tenpin/leaguebook/internal/domain"
)

// Outcome is a team's series result in one match.
type Outcome int

const (
	Tie Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "tie"
	}
}

// Line is one score row with the handicap that applies to it.
type Line struct {
	GameNumber int
	Pins       int
	Handicap   int
}

func (l Line) total() int { return l.Pins + l.Handicap }

// MatchResult is what one side earned from a completed match.
type MatchResult struct {
	Points  float64
	Outcome Outcome
}

// ScoreMatch scores one completed match from the point of view of the team
// owning own. Both slices must be in the order the rows were recorded.
func ScoreMatch(ps domain.PointSystem, gamesPerSession int, own, opp []Line) MatchResult {
	switch sys := ps.(type) {
	case domain.SimpleSystem:
		return scoreSimple(sys, own, opp)
	case domain.MatchupSystem:
		return scoreMatchup(sys, gamesPerSession, own, opp)
	default:
		return scoreMatchup(domain.DefaultMatchupSystem(), gamesPerSession, own, opp)
	}
}

func scoreSimple(sys domain.SimpleSystem, own, opp []Line) MatchResult {
	ownTotal, oppTotal := 0, 0
	for _, l := range own {
		ownTotal += l.total()
	}
	for _, l := range opp {
		oppTotal += l.total()
	}

	switch {
	case ownTotal > oppTotal:
		return MatchResult{Points: sys.PointsPerWin, Outcome: Win}
	case ownTotal < oppTotal:
		return MatchResult{Points: sys.PointsPerLoss, Outcome: Loss}
	default:
		return MatchResult{Points: sys.PointsPerTie, Outcome: Tie}
	}
}

// scoreMatchup pairs bowlers by position within each game number. Rows with
// a game number outside 1..gamesPerSession earn no points.
func scoreMatchup(sys domain.MatchupSystem, gamesPerSession int, own, opp []Line) MatchResult {
	ownByGame := groupByGame(own, gamesPerSession)
	oppByGame := groupByGame(opp, gamesPerSession)

	var res MatchResult
	ownSeries, oppSeries := 0, 0
	for g := 1; g <= gamesPerSession; g++ {
		mine, theirs := ownByGame[g], oppByGame[g]
		ownGame, oppGame := 0, 0

		for pos := 0; pos < max(len(mine), len(theirs)); pos++ {
			switch {
			case pos < len(mine) && pos < len(theirs):
				ownGame += mine[pos].total()
				oppGame += theirs[pos].total()
				if mine[pos].total() > theirs[pos].total() {
					res.Points += sys.PointsPerIndividualGame
				}
			case pos < len(mine):
				// Vacant opposing slot forfeits the individual point.
				ownGame += mine[pos].total()
				res.Points += sys.PointsPerIndividualGame
			default:
				oppGame += theirs[pos].total()
			}
		}

		if ownGame > oppGame {
			res.Points += sys.PointsPerTeamGame
		}
		ownSeries += ownGame
		oppSeries += oppGame
	}

	switch {
	case ownSeries > oppSeries:
		res.Points += sys.PointsPerTeamSeries
		res.Outcome = Win
	case ownSeries < oppSeries:
		res.Outcome = Loss
	default:
		res.Outcome = Tie
	}
	return res
}

func groupByGame(lines []Line, gamesPerSession int) map[int][]Line {
	out := make(map[int][]Line, gamesPerSession)
	for _, l := range lines {
		if l.GameNumber < 1 || l.GameNumber > gamesPerSession {
			continue
		}
		out[l.GameNumber] = append(out[l.GameNumber], l)
	}
	return out
}
