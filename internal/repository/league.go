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

type leagueRepo struct {
	db DBTX
}

const leagueColumns = `id, name, team_size, games_per_session, total_weeks,
	use_handicap, handicap_basis, handicap_percentage, max_handicap,
	point_system_type, points_per_win, points_per_tie, points_per_loss,
	points_per_individual_game, points_per_team_game, points_per_team_series,
	bonus_points_for_series, status, created_at`

func (r *leagueRepo) List(ctx context.Context) ([]domain.League, error) {
	rows, err := r.db.Query(ctx, `SELECT `+leagueColumns+` FROM leagues ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []domain.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (r *leagueRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leagueColumns+` FROM leagues WHERE id = $1`, id)
	return scanLeague(row)
}

func (r *leagueRepo) Create(ctx context.Context, l *domain.League) error {
	p := domain.FlattenPointSystem(l.PointSystem)
	_, err := r.db.Exec(ctx, `
		INSERT INTO leagues (`+leagueColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		l.ID, l.Name, l.TeamSize, l.GamesPerSession, l.TotalWeeks,
		l.Handicap.Enabled, l.Handicap.Basis, l.Handicap.Percentage, l.Handicap.Max,
		string(p.Type),
		infra.Float64ToNumeric(p.PointsPerWin),
		infra.Float64ToNumeric(p.PointsPerTie),
		infra.Float64ToNumeric(p.PointsPerLoss),
		infra.Float64ToNumeric(p.PointsPerIndividualGame),
		infra.Float64ToNumeric(p.PointsPerTeamGame),
		infra.Float64ToNumeric(p.PointsPerTeamSeries),
		l.TrackSeries, string(l.Status), l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

func (r *leagueRepo) Update(ctx context.Context, l *domain.League) error {
	p := domain.FlattenPointSystem(l.PointSystem)
	tag, err := r.db.Exec(ctx, `
		UPDATE leagues SET
		  name = $2, team_size = $3, games_per_session = $4, total_weeks = $5,
		  use_handicap = $6, handicap_basis = $7, handicap_percentage = $8, max_handicap = $9,
		  point_system_type = $10, points_per_win = $11, points_per_tie = $12, points_per_loss = $13,
		  points_per_individual_game = $14, points_per_team_game = $15, points_per_team_series = $16,
		  bonus_points_for_series = $17, status = $18
		WHERE id = $1`,
		l.ID, l.Name, l.TeamSize, l.GamesPerSession, l.TotalWeeks,
		l.Handicap.Enabled, l.Handicap.Basis, l.Handicap.Percentage, l.Handicap.Max,
		string(p.Type),
		infra.Float64ToNumeric(p.PointsPerWin),
		infra.Float64ToNumeric(p.PointsPerTie),
		infra.Float64ToNumeric(p.PointsPerLoss),
		infra.Float64ToNumeric(p.PointsPerIndividualGame),
		infra.Float64ToNumeric(p.PointsPerTeamGame),
		infra.Float64ToNumeric(p.PointsPerTeamSeries),
		l.TrackSeries, string(l.Status),
	)
	if err != nil {
		return fmt.Errorf("update league: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("league", l.ID.String())
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for teams, bowlers, games and scores.
func (r *leagueRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete league: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanLeague(row pgx.Row) (*domain.League, error) {
	var l domain.League
	var p domain.PointSettings
	var pType, status string
	var win, tie, loss, indiv, teamGame, series pgtype.Numeric
	err := row.Scan(&l.ID, &l.Name, &l.TeamSize, &l.GamesPerSession, &l.TotalWeeks,
		&l.Handicap.Enabled, &l.Handicap.Basis, &l.Handicap.Percentage, &l.Handicap.Max,
		&pType, &win, &tie, &loss, &indiv, &teamGame, &series,
		&l.TrackSeries, &status, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan league: %w", err)
	}

	p.Type = domain.PointSystemType(pType)
	for _, f := range []struct {
		dst *float64
		src pgtype.Numeric
		col string
	}{
		{&p.PointsPerWin, win, "points_per_win"},
		{&p.PointsPerTie, tie, "points_per_tie"},
		{&p.PointsPerLoss, loss, "points_per_loss"},
		{&p.PointsPerIndividualGame, indiv, "points_per_individual_game"},
		{&p.PointsPerTeamGame, teamGame, "points_per_team_game"},
		{&p.PointsPerTeamSeries, series, "points_per_team_series"},
	} {
		v, convErr := infra.NumericToFloat64(f.src)
		if convErr != nil {
			return nil, fmt.Errorf("convert %s: %w", f.col, convErr)
		}
		*f.dst = v
	}

	ps, err := p.System()
	if err != nil {
		return nil, fmt.Errorf("league %s: %w", l.ID, err)
	}
	l.PointSystem = ps
	l.Status = domain.LeagueStatus(status)
	return &l, nil
}
