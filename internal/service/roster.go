package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/standings"
)

// RosterService manages teams and bowlers.
type RosterService struct {
	store  repository.Store
	engine *standings.Engine
	logger *slog.Logger
}

// NewRosterService creates a RosterService.
func NewRosterService(store repository.Store, engine *standings.Engine, logger *slog.Logger) *RosterService {
	return &RosterService{store: store, engine: engine, logger: logger}
}

// CreateTeam adds a team to an existing league.
func (s *RosterService) CreateTeam(ctx context.Context, in domain.TeamInput) (*domain.Team, error) {
	if err := domain.ValidateName("team", in.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if _, err := findLeague(ctx, s.store, in.LeagueID); err != nil {
		return nil, err
	}

	team := domain.Team{
		ID:        uuid.New(),
		LeagueID:  in.LeagueID,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Teams().Create(ctx, &team); err != nil {
		return nil, wrapErr("create team", err)
	}
	return &team, nil
}

// Team returns the team with its record.
func (s *RosterService) Team(ctx context.Context, id uuid.UUID) (*domain.TeamWithStats, error) {
	team, err := findTeam(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	league, err := findLeague(ctx, s.store, team.LeagueID)
	if err != nil {
		return nil, err
	}
	stats, err := s.engine.TeamWithStats(ctx, id, *league)
	if err != nil {
		return nil, wrapErr("compute team record", err)
	}
	if stats == nil {
		return nil, domain.ErrNotFound("team", id.String())
	}
	return stats, nil
}

// UpdateTeam renames a team.
func (s *RosterService) UpdateTeam(ctx context.Context, id uuid.UUID, patch domain.TeamPatch) (*domain.Team, error) {
	team, err := findTeam(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if err := domain.ValidateName("team", *patch.Name); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		team.Name = strings.TrimSpace(*patch.Name)
	}
	if err := s.store.Teams().Update(ctx, team); err != nil {
		return nil, wrapErr("update team", err)
	}
	return team, nil
}

// DeleteTeam removes a team, its bowlers and every game it plays in.
func (s *RosterService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Teams().Delete(ctx, id)
	if err != nil {
		return wrapErr("delete team", err)
	}
	if !deleted {
		return domain.ErrNotFound("team", id.String())
	}
	s.logger.Info("team deleted", "team_id", id)
	return nil
}

// CreateBowler adds a bowler to a team. The bowler's league is the team's.
func (s *RosterService) CreateBowler(ctx context.Context, in domain.BowlerInput) (*domain.Bowler, error) {
	if err := domain.ValidateName("bowler", in.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateStartingAverage(in.StartingAverage); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	team, err := findTeam(ctx, s.store, in.TeamID)
	if err != nil {
		return nil, err
	}

	bowler := domain.Bowler{
		ID:              uuid.New(),
		TeamID:          team.ID,
		LeagueID:        team.LeagueID,
		Name:            strings.TrimSpace(in.Name),
		StartingAverage: in.StartingAverage,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Bowlers().Create(ctx, &bowler); err != nil {
		return nil, wrapErr("create bowler", err)
	}
	return &bowler, nil
}

// Bowler returns the bowler with averages and handicap under their league's rules.
func (s *RosterService) Bowler(ctx context.Context, id uuid.UUID) (*domain.BowlerWithStats, error) {
	bowler, err := findBowler(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	league, err := findLeague(ctx, s.store, bowler.LeagueID)
	if err != nil {
		return nil, err
	}
	stats, err := s.engine.BowlerWithStats(ctx, id, *league)
	if err != nil {
		return nil, wrapErr("compute bowler stats", err)
	}
	if stats == nil {
		return nil, domain.ErrNotFound("bowler", id.String())
	}
	return stats, nil
}

// UpdateBowler applies a partial update. A team change must stay in the league.
func (s *RosterService) UpdateBowler(ctx context.Context, id uuid.UUID, patch domain.BowlerPatch) (*domain.Bowler, error) {
	bowler, err := findBowler(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if err := domain.ValidateName("bowler", *patch.Name); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		bowler.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.StartingAverage != nil {
		if err := domain.ValidateStartingAverage(*patch.StartingAverage); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		bowler.StartingAverage = *patch.StartingAverage
	}
	if patch.TeamID != nil && *patch.TeamID != bowler.TeamID {
		team, err := s.store.Teams().FindByID(ctx, *patch.TeamID)
		if err != nil {
			return nil, wrapErr("find team", err)
		}
		if team == nil {
			return nil, domain.ErrValidation("team " + patch.TeamID.String() + " does not exist")
		}
		if team.LeagueID != bowler.LeagueID {
			return nil, domain.ErrValidation("bowlers can only move between teams of the same league")
		}
		bowler.TeamID = team.ID
	}

	if err := s.store.Bowlers().Update(ctx, bowler); err != nil {
		return nil, wrapErr("update bowler", err)
	}
	return bowler, nil
}

// DeleteBowler removes a bowler and their scores.
func (s *RosterService) DeleteBowler(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Bowlers().Delete(ctx, id)
	if err != nil {
		return wrapErr("delete bowler", err)
	}
	if !deleted {
		return domain.ErrNotFound("bowler", id.String())
	}
	return nil
}

func findTeam(ctx context.Context, store repository.Store, id uuid.UUID) (*domain.Team, error) {
	team, err := store.Teams().FindByID(ctx, id)
	if err != nil {
		return nil, wrapErr("find team", err)
	}
	if team == nil {
		return nil, domain.ErrNotFound("team", id.String())
	}
	return team, nil
}

func findBowler(ctx context.Context, store repository.Store, id uuid.UUID) (*domain.Bowler, error) {
	bowler, err := store.Bowlers().FindByID(ctx, id)
	if err != nil {
		return nil, wrapErr("find bowler", err)
	}
	if bowler == nil {
		return nil, domain.ErrNotFound("bowler", id.String())
	}
	return bowler, nil
}
