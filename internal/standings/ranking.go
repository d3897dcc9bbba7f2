package standings

import (
	"cmp"
	"slices"

	"github.com/tenpin/leaguebook/internal/domain"
)

// RankTeams orders teams by points, then by pin total (scratch plus handicap
// when enabled), both descending. Equal teams keep their input order and get
// consecutive ranks.
func RankTeams(teams []domain.TeamWithStats, useHandicap bool) []domain.StandingsEntry {
	entries := make([]domain.StandingsEntry, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, domain.StandingsEntry{
			Team:          t,
			ScratchTotal:  t.TotalPins,
			HandicapTotal: t.HandicapPins,
			Points:        t.TotalPoints,
		})
	}

	pinTotal := func(e domain.StandingsEntry) int {
		if useHandicap {
			return e.ScratchTotal + e.HandicapTotal
		}
		return e.ScratchTotal
	}
	slices.SortStableFunc(entries, func(a, b domain.StandingsEntry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(pinTotal(b), pinTotal(a))
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankBowlers sorts bowlers by average, highest first. Display order is the rank.
func RankBowlers(bowlers []domain.BowlerWithStats) []domain.BowlerWithStats {
	out := slices.Clone(bowlers)
	slices.SortStableFunc(out, func(a, b domain.BowlerWithStats) int {
		return cmp.Compare(b.Average, a.Average)
	})
	return out
}

// SortTeamsByPoints orders team records by points, highest first.
func SortTeamsByPoints(teams []domain.TeamWithStats) []domain.TeamWithStats {
	out := slices.Clone(teams)
	slices.SortStableFunc(out, func(a, b domain.TeamWithStats) int {
		return cmp.Compare(b.TotalPoints, a.TotalPoints)
	})
	return out
}
