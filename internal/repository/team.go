package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tenpin/leaguebook/internal/domain"
)

type teamRepo struct {
	db DBTX
}

func (r *teamRepo) ListAll(ctx context.Context) ([]domain.Team, error) {
	return r.list(ctx, `SELECT id, league_id, name, created_at FROM teams ORDER BY created_at, id`)
}

func (r *teamRepo) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Team, error) {
	return r.list(ctx, `
		SELECT id, league_id, name, created_at FROM teams
		WHERE league_id = $1 ORDER BY created_at, id`, leagueID)
}

func (r *teamRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Team, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *teamRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRow(ctx, `SELECT id, league_id, name, created_at FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.LeagueID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	return &t, nil
}

func (r *teamRepo) Create(ctx context.Context, t *domain.Team) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO teams (id, league_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.LeagueID, t.Name, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (r *teamRepo) Update(ctx context.Context, t *domain.Team) error {
	tag, err := r.db.Exec(ctx, `UPDATE teams SET name = $2 WHERE id = $1`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("team", t.ID.String())
	}
	return nil
}

// Delete cascades to the team's bowlers, their scores and the team's games.
func (r *teamRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete team: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
