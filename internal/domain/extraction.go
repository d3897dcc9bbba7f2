package domain

import "github.com/google/uuid"

// Confidence is the extraction model's self-reported legibility label.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the known labels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// ExtractedBowler is one roster line read from a photo.
type ExtractedBowler struct {
	Name            string     `json:"name"`
	StartingAverage float64    `json:"startingAverage"`
	Confidence      Confidence `json:"confidence"`
}

// RosterExtraction is the roster read from a team sheet photo.
type RosterExtraction struct {
	TeamName string            `json:"teamName,omitempty"`
	Bowlers  []ExtractedBowler `json:"bowlers"`
}

// ExtractedScoreRow is one bowler's line on a score sheet photo. Games that
// were not legible or not bowled are nil.
type ExtractedScoreRow struct {
	BowlerName string     `json:"bowlerName"`
	Game1      *int       `json:"game1,omitempty"`
	Game2      *int       `json:"game2,omitempty"`
	Game3      *int       `json:"game3,omitempty"`
	Confidence Confidence `json:"confidence"`
}

// Games returns the per-game values indexed by game number minus one.
func (r ExtractedScoreRow) Games() []*int {
	return []*int{r.Game1, r.Game2, r.Game3}
}

// ScoreSheetExtraction is the score sheet read from a photo.
type ScoreSheetExtraction struct {
	Scores []ExtractedScoreRow `json:"scores"`
}

// ScoreSheetMerge is the result of matching an extracted sheet to a game's
// rosters. Scores is ready to submit; the caller decides whether to.
type ScoreSheetMerge struct {
	GameID         uuid.UUID    `json:"game_id"`
	Scores         []ScoreInput `json:"scores"`
	UnmatchedNames []string     `json:"unmatched_names"`
	LowConfidence  []string     `json:"low_confidence"`
}
