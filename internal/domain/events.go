package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewScoresSubmittedEvent records that a game's score sheet was replaced.
func NewScoresSubmittedEvent(game Game, scoreCount int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"league_id":   game.LeagueID.String(),
		"game_id":     game.ID.String(),
		"week":        game.Week,
		"team1_id":    game.Team1ID.String(),
		"team2_id":    game.Team2ID.String(),
		"score_count": scoreCount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateGame,
		AggregateID:   game.ID.String(),
		EventType:     EventScoresSubmitted,
		PartitionKey:  game.LeagueID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLeagueCompletedEvent records final standings for a league.
func NewLeagueCompletedEvent(league League, standings []StandingsEntry) OutboxDraft {
	type row struct {
		Rank   int     `json:"rank"`
		TeamID string  `json:"team_id"`
		Name   string  `json:"name"`
		Points float64 `json:"points"`
	}
	rows := make([]row, 0, len(standings))
	for _, s := range standings {
		rows = append(rows, row{Rank: s.Rank, TeamID: s.Team.ID.String(), Name: s.Team.Name, Points: s.Points})
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"league_id": league.ID.String(),
		"name":      league.Name,
		"standings": rows,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLeague,
		AggregateID:   league.ID.String(),
		EventType:     EventLeagueCompleted,
		PartitionKey:  league.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLeagueDeletedEvent records a cascading league deletion.
func NewLeagueDeletedEvent(leagueID uuid.UUID) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{"league_id": leagueID.String()})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLeague,
		AggregateID:   leagueID.String(),
		EventType:     EventLeagueDeleted,
		PartitionKey:  leagueID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
