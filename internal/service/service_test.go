package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/standings"
)

type services struct {
	store    *repository.MemoryStore
	leagues  *LeagueService
	roster   *RosterService
	schedule *ScheduleService
}

func newServices(t *testing.T) services {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := repository.NewMemoryStore()
	engine := standings.NewEngine(store, logger, nil)
	return services{
		store:    store,
		leagues:  NewLeagueService(store, engine, logger),
		roster:   NewRosterService(store, engine, logger),
		schedule: NewScheduleService(store, nil, logger),
	}
}

func leagueInput(name string) domain.LeagueInput {
	return domain.LeagueInput{
		Name:            name,
		TeamSize:        4,
		GamesPerSession: 3,
		TotalWeeks:      30,
		Handicap:        domain.HandicapRules{Enabled: false, Basis: 210, Percentage: 90, Max: 63},
	}
}

// matchFixture is a league with two teams of two bowlers and one game.
type matchFixture struct {
	league *domain.League
	home   *domain.Team
	away   *domain.Team
	homeA  *domain.Bowler
	homeB  *domain.Bowler
	awayA  *domain.Bowler
	awayB  *domain.Bowler
	game   *domain.Game
}

func newMatch(t *testing.T, s services) matchFixture {
	t.Helper()
	ctx := context.Background()
	var f matchFixture
	var err error

	f.league, err = s.leagues.Create(ctx, leagueInput("Thursday Trios"))
	require.NoError(t, err)
	f.home = mustTeam(t, s, f.league.ID, "Alley Cats")
	f.away = mustTeam(t, s, f.league.ID, "Split Happens")
	f.homeA = mustBowler(t, s, f.home.ID, "Dana", 170)
	f.homeB = mustBowler(t, s, f.home.ID, "Eli", 150)
	f.awayA = mustBowler(t, s, f.away.ID, "Frankie", 160)
	f.awayB = mustBowler(t, s, f.away.ID, "Gale", 140)
	f.game, err = s.schedule.CreateGame(ctx, domain.GameInput{LeagueID: f.league.ID, Week: 1, Team1ID: f.home.ID, Team2ID: f.away.ID})
	require.NoError(t, err)
	return f
}

func mustTeam(t *testing.T, s services, leagueID uuid.UUID, name string) *domain.Team {
	t.Helper()
	team, err := s.roster.CreateTeam(context.Background(), domain.TeamInput{LeagueID: leagueID, Name: name})
	require.NoError(t, err)
	return team
}

func mustBowler(t *testing.T, s services, teamID uuid.UUID, name string, avg float64) *domain.Bowler {
	t.Helper()
	b, err := s.roster.CreateBowler(context.Background(), domain.BowlerInput{TeamID: teamID, Name: name, StartingAverage: avg})
	require.NoError(t, err)
	return b
}

func row(b *domain.Bowler, n, pins int) domain.ScoreInput {
	return domain.ScoreInput{BowlerID: b.ID, TeamID: b.TeamID, GameNumber: n, Score: pins}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
