package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tenpin/leaguebook/internal/domain"
)

func TestScoreMatch_Simple(t *testing.T) {
	sys := domain.SimpleSystem{PointsPerWin: 2, PointsPerTie: 1, PointsPerLoss: 0}
	teamA := []Line{{1, 200, 0}, {2, 200, 0}, {3, 200, 0}}
	teamB := []Line{{1, 190, 0}, {2, 200, 0}, {3, 190, 0}}

	a := ScoreMatch(sys, 3, teamA, teamB)
	b := ScoreMatch(sys, 3, teamB, teamA)
	assert.Equal(t, MatchResult{Points: 2, Outcome: Win}, a)
	assert.Equal(t, MatchResult{Points: 0, Outcome: Loss}, b)

	tie := ScoreMatch(sys, 3, teamA, teamA)
	assert.Equal(t, MatchResult{Points: 1, Outcome: Tie}, tie)
}

func TestScoreMatch_SimpleCountsHandicapAndAllRows(t *testing.T) {
	sys := domain.SimpleSystem{PointsPerWin: 3, PointsPerTie: 1, PointsPerLoss: 0}
	// Game number 9 is outside the session but still counts in the simple total.
	own := []Line{{1, 150, 30}, {9, 10, 0}}
	opp := []Line{{1, 185, 0}}
	assert.Equal(t, MatchResult{Points: 3, Outcome: Win}, ScoreMatch(sys, 3, own, opp))
}

func TestScoreMatch_Matchup(t *testing.T) {
	sys := domain.MatchupSystem{PointsPerIndividualGame: 1, PointsPerTeamGame: 2, PointsPerTeamSeries: 5}

	tests := []struct {
		name     string
		games    int
		own, opp []Line
		want     MatchResult
	}{
		{
			name:  "position pairing by recorded order",
			games: 1,
			// own[0] (210) meets opp[0] (200), own[1] (150) meets opp[1] (180).
			own:  []Line{{1, 210, 0}, {1, 150, 0}},
			opp:  []Line{{1, 200, 0}, {1, 180, 0}},
			want: MatchResult{Points: 1, Outcome: Loss},
		},
		{
			name:  "handicap decides the individual point",
			games: 1,
			own:   []Line{{1, 180, 25}},
			opp:   []Line{{1, 200, 0}},
			want:  MatchResult{Points: 1 + 2 + 5, Outcome: Win},
		},
		{
			name:  "vacant opposing slot forfeits",
			games: 1,
			own:   []Line{{1, 100, 0}, {1, 100, 0}},
			opp:   []Line{{1, 250, 0}},
			want:  MatchResult{Points: 1, Outcome: Loss},
		},
		{
			name:  "own vacancy earns nothing",
			games: 1,
			own:   []Line{{1, 200, 0}},
			opp:   []Line{{1, 150, 0}, {1, 100, 0}},
			want:  MatchResult{Points: 1, Outcome: Loss},
		},
		{
			name:  "equal series is a tie with no series points",
			games: 2,
			own:   []Line{{1, 200, 0}, {2, 150, 0}},
			opp:   []Line{{1, 150, 0}, {2, 200, 0}},
			want:  MatchResult{Points: 1 + 2, Outcome: Tie},
		},
		{
			name:  "equal individual scores earn no point",
			games: 1,
			own:   []Line{{1, 180, 0}},
			opp:   []Line{{1, 180, 0}},
			want:  MatchResult{Points: 0, Outcome: Tie},
		},
		{
			name:  "out of range game numbers are ignored",
			games: 1,
			own:   []Line{{1, 150, 0}, {2, 300, 0}},
			opp:   []Line{{1, 160, 0}},
			want:  MatchResult{Points: 0, Outcome: Loss},
		},
		{
			name:  "empty sheet is a tie",
			games: 3,
			want:  MatchResult{Points: 0, Outcome: Tie},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMatch(sys, tt.games, tt.own, tt.opp))
		})
	}
}

func TestScoreMatch_NilSystemUsesDefaultMatchup(t *testing.T) {
	own := []Line{{1, 200, 0}}
	opp := []Line{{1, 100, 0}}
	// 1 individual + 1 team game + 2 series
	assert.Equal(t, MatchResult{Points: 4, Outcome: Win}, ScoreMatch(nil, 1, own, opp))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "win", Win.String())
	assert.Equal(t, "loss", Loss.String())
	assert.Equal(t, "tie", Tie.String())
}
