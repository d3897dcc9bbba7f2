package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/standings"
)

const recentGamesLimit = 10

// LeagueService handles league configuration, lifecycle and read views.
type LeagueService struct {
	store  repository.Store
	engine *standings.Engine
	logger *slog.Logger
}

// NewLeagueService creates a LeagueService.
func NewLeagueService(store repository.Store, engine *standings.Engine, logger *slog.Logger) *LeagueService {
	return &LeagueService{store: store, engine: engine, logger: logger}
}

// Create validates and stores a new active league.
func (s *LeagueService) Create(ctx context.Context, in domain.LeagueInput) (*domain.League, error) {
	var ps domain.PointSystem = domain.DefaultMatchupSystem()
	if in.Points != nil {
		sys, err := in.Points.System()
		if err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		ps = sys
	}

	league := domain.League{
		ID:              uuid.New(),
		Name:            in.Name,
		TeamSize:        in.TeamSize,
		GamesPerSession: in.GamesPerSession,
		TotalWeeks:      in.TotalWeeks,
		Handicap:        in.Handicap,
		PointSystem:     ps,
		TrackSeries:     in.TrackSeries,
		Status:          domain.LeagueActive,
		CreatedAt:       time.Now().UTC(),
	}
	if err := domain.ValidateLeague(league); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if err := s.store.Leagues().Create(ctx, &league); err != nil {
		return nil, wrapErr("create league", err)
	}
	s.logger.Info("league created", "league_id", league.ID, "name", league.Name, "point_system", ps.Type())
	return &league, nil
}

// Get returns the league or a not-found error.
func (s *LeagueService) Get(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	return findLeague(ctx, s.store, id)
}

// List returns every league.
func (s *LeagueService) List(ctx context.Context) ([]domain.League, error) {
	leagues, err := s.store.Leagues().List(ctx)
	if err != nil {
		return nil, wrapErr("list leagues", err)
	}
	return orEmpty(leagues), nil
}

// Update applies a partial update and revalidates the whole league.
func (s *LeagueService) Update(ctx context.Context, id uuid.UUID, patch domain.LeaguePatch) (*domain.League, error) {
	current, err := findLeague(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	updated, err := patch.Apply(*current)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateLeague(updated); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := s.store.Leagues().Update(ctx, &updated); err != nil {
		return nil, wrapErr("update league", err)
	}
	return &updated, nil
}

// Delete removes the league with its teams, bowlers, games and scores.
func (s *LeagueService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		deleted, err := tx.Leagues().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound("league", id.String())
		}
		return tx.Outbox().Insert(ctx, domain.NewLeagueDeletedEvent(id))
	})
	if err != nil {
		return wrapErr("delete league", err)
	}
	s.logger.Info("league deleted", "league_id", id)
	return nil
}

// CalculateFinals marks the league completed and returns its final standings.
// Standings are read inside the same transaction as the status change.
func (s *LeagueService) CalculateFinals(ctx context.Context, id uuid.UUID) ([]domain.StandingsEntry, error) {
	var final []domain.StandingsEntry
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		league, err := findLeague(ctx, tx, id)
		if err != nil {
			return err
		}
		league.Status = domain.LeagueCompleted
		if err := tx.Leagues().Update(ctx, league); err != nil {
			return err
		}
		final, err = s.engine.With(tx).TeamStandings(ctx, id)
		if err != nil {
			return err
		}
		return tx.Outbox().Insert(ctx, domain.NewLeagueCompletedEvent(*league, final))
	})
	if err != nil {
		return nil, wrapErr("calculate finals", err)
	}
	s.logger.Info("league finals calculated", "league_id", id, "teams", len(final))
	return orEmpty(final), nil
}

// LeagueOverview is the league landing view.
type LeagueOverview struct {
	League              domain.League            `json:"league"`
	Teams               []domain.Team            `json:"teams"`
	TeamStandings       []domain.StandingsEntry  `json:"team_standings"`
	IndividualStandings []domain.BowlerWithStats `json:"individual_standings"`
	RecentGames         []domain.Game            `json:"recent_games"`
	WeeksCompleted      int                      `json:"weeks_completed"`
}

// Overview returns the league with standings and its most recent games.
func (s *LeagueService) Overview(ctx context.Context, id uuid.UUID) (*LeagueOverview, error) {
	league, err := findLeague(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.store.Teams().ListByLeague(ctx, id)
	if err != nil {
		return nil, wrapErr("list teams", err)
	}
	snap, err := s.engine.Snapshot(ctx, *league)
	if err != nil {
		return nil, wrapErr("compute standings", err)
	}
	games, err := s.store.Games().ListByLeague(ctx, id)
	if err != nil {
		return nil, wrapErr("list games", err)
	}
	if len(games) > recentGamesLimit {
		games = games[len(games)-recentGamesLimit:]
	}

	return &LeagueOverview{
		League:              *league,
		Teams:               orEmpty(teams),
		TeamStandings:       orEmpty(snap.Teams),
		IndividualStandings: orEmpty(snap.Individuals),
		RecentGames:         orEmpty(games),
		WeeksCompleted:      snap.WeeksCompleted,
	}, nil
}

// Standings returns team and individual standings for the league.
func (s *LeagueService) Standings(ctx context.Context, id uuid.UUID) (*standings.Snapshot, error) {
	league, err := findLeague(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.engine.Snapshot(ctx, *league)
	if err != nil {
		return nil, wrapErr("compute standings", err)
	}
	snap.Teams = orEmpty(snap.Teams)
	snap.Individuals = orEmpty(snap.Individuals)
	return snap, nil
}

// LeagueTeams is the team list view, best record first.
type LeagueTeams struct {
	League domain.League          `json:"league"`
	Teams  []domain.TeamWithStats `json:"teams"`
}

// Teams returns every team of the league with its record, sorted by points.
func (s *LeagueService) Teams(ctx context.Context, id uuid.UUID) (*LeagueTeams, error) {
	league, err := findLeague(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.engine.LeagueTeams(ctx, *league)
	if err != nil {
		return nil, wrapErr("compute team records", err)
	}
	teams = standings.SortTeamsByPoints(teams)
	return &LeagueTeams{League: *league, Teams: orEmpty(teams)}, nil
}

// ScoreBoard is the score entry view for a league.
type ScoreBoard struct {
	League      domain.League   `json:"league"`
	Teams       []domain.Team   `json:"teams"`
	Bowlers     []domain.Bowler `json:"bowlers"`
	Games       []domain.Game   `json:"games"`
	Scores      []domain.Score  `json:"scores"`
	CurrentWeek int             `json:"current_week"`
}

// ScoreBoard returns the raw schedule and scores with the week to enter next.
func (s *LeagueService) ScoreBoard(ctx context.Context, id uuid.UUID) (*ScoreBoard, error) {
	league, err := findLeague(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	board := &ScoreBoard{League: *league}
	if board.Teams, err = s.store.Teams().ListByLeague(ctx, id); err != nil {
		return nil, wrapErr("list teams", err)
	}
	if board.Bowlers, err = s.store.Bowlers().ListByLeague(ctx, id); err != nil {
		return nil, wrapErr("list bowlers", err)
	}
	if board.Games, err = s.store.Games().ListByLeague(ctx, id); err != nil {
		return nil, wrapErr("list games", err)
	}
	if board.Scores, err = s.store.Scores().ListByLeague(ctx, id); err != nil {
		return nil, wrapErr("list scores", err)
	}
	weeks, err := s.engine.WeeksCompleted(ctx, id)
	if err != nil {
		return nil, wrapErr("weeks completed", err)
	}
	board.CurrentWeek = weeks + 1

	board.Teams = orEmpty(board.Teams)
	board.Bowlers = orEmpty(board.Bowlers)
	board.Games = orEmpty(board.Games)
	board.Scores = orEmpty(board.Scores)
	return board, nil
}

// Dashboard is the cross-league home view.
type Dashboard struct {
	Leagues        []domain.League `json:"leagues"`
	Teams          []domain.Team   `json:"teams"`
	Bowlers        []domain.Bowler `json:"bowlers"`
	WeeksCompleted map[string]int  `json:"weeks_completed"`
}

// Dashboard lists everything with the weeks completed per league.
func (s *LeagueService) Dashboard(ctx context.Context) (*Dashboard, error) {
	leagues, err := s.store.Leagues().List(ctx)
	if err != nil {
		return nil, wrapErr("list leagues", err)
	}
	teams, err := s.store.Teams().ListAll(ctx)
	if err != nil {
		return nil, wrapErr("list teams", err)
	}
	bowlers, err := s.store.Bowlers().ListAll(ctx)
	if err != nil {
		return nil, wrapErr("list bowlers", err)
	}

	weeks := make(map[string]int, len(leagues))
	for _, l := range leagues {
		n, err := s.engine.WeeksCompleted(ctx, l.ID)
		if err != nil {
			return nil, wrapErr("weeks completed", err)
		}
		weeks[l.ID.String()] = n
	}
	return &Dashboard{
		Leagues:        orEmpty(leagues),
		Teams:          orEmpty(teams),
		Bowlers:        orEmpty(bowlers),
		WeeksCompleted: weeks,
	}, nil
}

func findLeague(ctx context.Context, store repository.Store, id uuid.UUID) (*domain.League, error) {
	league, err := store.Leagues().FindByID(ctx, id)
	if err != nil {
		return nil, wrapErr("find league", err)
	}
	if league == nil {
		return nil, domain.ErrNotFound("league", id.String())
	}
	return league, nil
}
