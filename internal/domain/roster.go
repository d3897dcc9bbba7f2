package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team belongs to exactly one league.
type Team struct {
	ID        uuid.UUID `json:"id"`
	LeagueID  uuid.UUID `json:"league_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Bowler belongs to exactly one team. LeagueID is a denormalized copy of the
// team's league.
type Bowler struct {
	ID              uuid.UUID `json:"id"`
	TeamID          uuid.UUID `json:"team_id"`
	LeagueID        uuid.UUID `json:"league_id"`
	Name            string    `json:"name"`
	StartingAverage float64   `json:"starting_average"`
	CreatedAt       time.Time `json:"created_at"`
}

// Game is a scheduled match between two teams in one week.
type Game struct {
	ID        uuid.UUID `json:"id"`
	LeagueID  uuid.UUID `json:"league_id"`
	Week      int       `json:"week"`
	Team1ID   uuid.UUID `json:"team1_id"`
	Team2ID   uuid.UUID `json:"team2_id"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Involves reports whether the team plays in this game.
func (g Game) Involves(teamID uuid.UUID) bool {
	return g.Team1ID == teamID || g.Team2ID == teamID
}

// Opponent returns the other side of the game for teamID.
func (g Game) Opponent(teamID uuid.UUID) uuid.UUID {
	if g.Team1ID == teamID {
		return g.Team2ID
	}
	return g.Team1ID
}

// IsSelfPlay reports a game scheduled with the same team on both sides.
func (g Game) IsSelfPlay() bool {
	return g.Team1ID == g.Team2ID
}

// Score is one bowler's pin count for one game number of a match.
type Score struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"game_id"`
	BowlerID   uuid.UUID `json:"bowler_id"`
	TeamID     uuid.UUID `json:"team_id"`
	GameNumber int       `json:"game_number"`
	Score      int       `json:"score"`
}

// TeamInput is the create payload for a team.
type TeamInput struct {
	LeagueID uuid.UUID `json:"league_id" yaml:"-"`
	Name     string    `json:"name" yaml:"name"`
}

// TeamPatch carries optional team updates.
type TeamPatch struct {
	Name *string `json:"name,omitempty"`
}

// BowlerInput is the create payload for a bowler.
type BowlerInput struct {
	TeamID          uuid.UUID `json:"team_id" yaml:"-"`
	Name            string    `json:"name" yaml:"name"`
	StartingAverage float64   `json:"starting_average" yaml:"starting_average"`
}

// BowlerPatch carries optional bowler updates. Moving a bowler to another
// team is allowed only inside the same league.
type BowlerPatch struct {
	TeamID          *uuid.UUID `json:"team_id,omitempty"`
	Name            *string    `json:"name,omitempty"`
	StartingAverage *float64   `json:"starting_average,omitempty"`
}

// GameInput is the create payload for a scheduled game.
type GameInput struct {
	LeagueID uuid.UUID `json:"league_id"`
	Week     int       `json:"week"`
	Team1ID  uuid.UUID `json:"team1_id"`
	Team2ID  uuid.UUID `json:"team2_id"`
}

// ScoreInput is one row of a score submission for a game.
type ScoreInput struct {
	BowlerID   uuid.UUID `json:"bowler_id"`
	TeamID     uuid.UUID `json:"team_id"`
	GameNumber int       `json:"game_number"`
	Score      int       `json:"score"`
}
