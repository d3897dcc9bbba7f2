package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/infra"
)

type bowlerRepo struct {
	db DBTX
}

const bowlerColumns = `id, team_id, league_id, name, starting_average, created_at`

func (r *bowlerRepo) ListAll(ctx context.Context) ([]domain.Bowler, error) {
	return r.list(ctx, `SELECT `+bowlerColumns+` FROM bowlers ORDER BY created_at, id`)
}

func (r *bowlerRepo) ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Bowler, error) {
	return r.list(ctx, `SELECT `+bowlerColumns+` FROM bowlers WHERE league_id = $1 ORDER BY created_at, id`, leagueID)
}

func (r *bowlerRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Bowler, error) {
	return r.list(ctx, `SELECT `+bowlerColumns+` FROM bowlers WHERE team_id = $1 ORDER BY created_at, id`, teamID)
}

func (r *bowlerRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Bowler, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bowlers: %w", err)
	}
	defer rows.Close()

	var bowlers []domain.Bowler
	for rows.Next() {
		b, err := scanBowler(rows)
		if err != nil {
			return nil, err
		}
		bowlers = append(bowlers, *b)
	}
	return bowlers, rows.Err()
}

func (r *bowlerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Bowler, error) {
	return scanBowler(r.db.QueryRow(ctx, `SELECT `+bowlerColumns+` FROM bowlers WHERE id = $1`, id))
}

func (r *bowlerRepo) Create(ctx context.Context, b *domain.Bowler) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bowlers (`+bowlerColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.TeamID, b.LeagueID, b.Name, infra.Float64ToNumeric(b.StartingAverage), b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bowler: %w", err)
	}
	return nil
}

func (r *bowlerRepo) Update(ctx context.Context, b *domain.Bowler) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bowlers SET team_id = $2, league_id = $3, name = $4, starting_average = $5
		WHERE id = $1`,
		b.ID, b.TeamID, b.LeagueID, b.Name, infra.Float64ToNumeric(b.StartingAverage))
	if err != nil {
		return fmt.Errorf("update bowler: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("bowler", b.ID.String())
	}
	return nil
}

func (r *bowlerRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bowlers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete bowler: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanBowler(row pgx.Row) (*domain.Bowler, error) {
	var b domain.Bowler
	var avg pgtype.Numeric
	err := row.Scan(&b.ID, &b.TeamID, &b.LeagueID, &b.Name, &avg, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bowler: %w", err)
	}
	b.StartingAverage, err = infra.NumericToFloat64(avg)
	if err != nil {
		return nil, fmt.Errorf("convert starting_average: %w", err)
	}
	return &b, nil
}
