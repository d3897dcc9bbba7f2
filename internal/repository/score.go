package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tenpin/leaguebook/internal/domain"
)

type scoreRepo struct {
	db DBTX
}

const scoreColumns = `s.id, s.game_id, s.bowler_id, s.team_id, s.game_number, s.score`

func (r *scoreRepo) ListByGame(ctx context.Context, gameID uuid.UUID) ([]domain.Score, error) {
	return r.list(ctx, `SELECT `+scoreColumns+` FROM scores s WHERE s.game_id = $1 ORDER BY s.seq`, gameID)
}

func (r *scoreRepo) ListByBowler(ctx context.Context, bowlerID uuid.UUID) ([]domain.Score, error) {
	return r.list(ctx, `SELECT `+scoreColumns+` FROM scores s WHERE s.bowler_id = $1 ORDER BY s.seq`, bowlerID)
}

func (r *scoreRepo) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Score, error) {
	return r.list(ctx, `
		SELECT `+scoreColumns+` FROM scores s
		JOIN games g ON g.id = s.game_id
		WHERE g.league_id = $1
		ORDER BY s.seq`, leagueID)
}

func (r *scoreRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Score, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ID, &s.GameID, &s.BowlerID, &s.TeamID, &s.GameNumber, &s.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// InsertMany queues one INSERT per score in a single batch. The seq column
// records the order they were sent.
func (r *scoreRepo) InsertMany(ctx context.Context, scores []domain.Score) error {
	if len(scores) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range scores {
		batch.Queue(`
			INSERT INTO scores (id, game_id, bowler_id, team_id, game_number, score)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.GameID, s.BowlerID, s.TeamID, s.GameNumber, s.Score)
	}

	br := r.db.SendBatch(ctx, batch)
	for range scores {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert score: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close score batch: %w", err)
	}
	return nil
}

func (r *scoreRepo) DeleteByGame(ctx context.Context, gameID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM scores WHERE game_id = $1`, gameID)
	if err != nil {
		return 0, fmt.Errorf("delete scores: %w", err)
	}
	return tag.RowsAffected(), nil
}
