package domain

// BowlerWithStats is a bowler plus figures derived from their score history.
type BowlerWithStats struct {
	Bowler
	GamesPlayed int     `json:"games_played"`
	TotalPins   int     `json:"total_pins"`
	Average     float64 `json:"average"`
	Handicap    int     `json:"handicap"`
	HighGame    int     `json:"high_game"`
	HighSeries  int     `json:"high_series"`
}

// TeamWithStats is a team plus its record over completed games.
type TeamWithStats struct {
	Team
	Bowlers      []BowlerWithStats `json:"bowlers"`
	TotalPoints  float64           `json:"total_points"`
	Wins         int               `json:"wins"`
	Losses       int               `json:"losses"`
	Ties         int               `json:"ties"`
	TotalPins    int               `json:"total_pins"`
	HandicapPins int               `json:"handicap_pins"`
	GamesPlayed  int               `json:"games_played"`
}

// StandingsEntry is one ranked row of the team standings.
type StandingsEntry struct {
	Rank          int           `json:"rank"`
	Team          TeamWithStats `json:"team"`
	ScratchTotal  int           `json:"scratch_total"`
	HandicapTotal int           `json:"handicap_total"`
	Points        float64       `json:"points"`
}
