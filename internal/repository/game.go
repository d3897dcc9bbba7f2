package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tenpin/leaguebook/internal/domain"
)

type gameRepo struct {
	db DBTX
}

const gameColumns = `id, league_id, week, team1_id, team2_id, completed, created_at`

func (r *gameRepo) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE league_id = $1 ORDER BY week, created_at, id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *gameRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	return scanGame(r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
}

func (r *gameRepo) Create(ctx context.Context, g *domain.Game) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO games (`+gameColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.LeagueID, g.Week, g.Team1ID, g.Team2ID, g.Completed, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE games SET completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("game", id.String())
	}
	return nil
}

func (r *gameRepo) MaxCompletedWeek(ctx context.Context, leagueID uuid.UUID) (int, error) {
	var week int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(week), 0) FROM games
		WHERE league_id = $1 AND completed`, leagueID).Scan(&week)
	if err != nil {
		return 0, fmt.Errorf("max completed week: %w", err)
	}
	return week, nil
}

func (r *gameRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	err := row.Scan(&g.ID, &g.LeagueID, &g.Week, &g.Team1ID, &g.Team2ID, &g.Completed, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return &g, nil
}
