package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
)

// MergeScoreSheet matches extracted rows to the bowlers of a game and turns
// them into score inputs. Names match case- and space-insensitively, falling
// back to a unique prefix in either direction. Each bowler matches at most
// one row; games past gamesPerSession are dropped.
func MergeScoreSheet(gameID uuid.UUID, sheet domain.ScoreSheetExtraction, roster []domain.Bowler, gamesPerSession int) domain.ScoreSheetMerge {
	merge := domain.ScoreSheetMerge{
		GameID:         gameID,
		Scores:         []domain.ScoreInput{},
		UnmatchedNames: []string{},
		LowConfidence:  []string{},
	}

	claimed := make(map[uuid.UUID]bool, len(roster))
	for _, row := range sheet.Scores {
		if row.Confidence == domain.ConfidenceLow || !row.Confidence.Valid() {
			merge.LowConfidence = append(merge.LowConfidence, row.BowlerName)
		}

		bowler := matchBowler(row.BowlerName, roster)
		if bowler == nil || claimed[bowler.ID] {
			merge.UnmatchedNames = append(merge.UnmatchedNames, row.BowlerName)
			continue
		}
		claimed[bowler.ID] = true

		for i, g := range row.Games() {
			if g == nil || i+1 > gamesPerSession {
				continue
			}
			merge.Scores = append(merge.Scores, domain.ScoreInput{
				BowlerID:   bowler.ID,
				TeamID:     bowler.TeamID,
				GameNumber: i + 1,
				Score:      *g,
			})
		}
	}
	return merge
}

func matchBowler(name string, roster []domain.Bowler) *domain.Bowler {
	want := normalizeName(name)
	if want == "" {
		return nil
	}

	var prefix []int
	for i := range roster {
		have := normalizeName(roster[i].Name)
		if have == want {
			return &roster[i]
		}
		if strings.HasPrefix(have, want) || strings.HasPrefix(want, have) {
			prefix = append(prefix, i)
		}
	}
	if len(prefix) == 1 {
		return &roster[prefix[0]]
	}
	return nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
