package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/service"
	"github.com/tenpin/leaguebook/internal/standings"
)

const tuesdayMixed = `
league:
  name: Tuesday Mixed
  team_size: 2
  games_per_session: 3
  total_weeks: 12
  handicap:
    use_handicap: true
    handicap_basis: 200
    handicap_percentage: 90
    max_handicap: 60
  points:
    point_system_type: simple
    points_per_win: 2
    points_per_tie: 1
    points_per_loss: 0
teams:
  - name: Alley Cats
    bowlers:
      - {name: Dana, starting_average: 170}
      - {name: Eli, starting_average: 150}
  - name: Split Happens
    bowlers:
      - {name: Frankie, starting_average: 160}
      - {name: Gale, starting_average: 140}
schedule:
  - week: 1
    team1: Alley Cats
    team2: split happens
    scores:
      - {bowler: Dana, game: 1, score: 190}
      - {bowler: Eli, game: 1, score: 170}
      - {bowler: Frankie, game: 1, score: 150}
      - {bowler: Gale, game: 1, score: 145}
  - week: 2
    team1: Split Happens
    team2: Alley Cats
`

type fixture struct {
	store    *repository.MemoryStore
	engine   *standings.Engine
	leagues  *service.LeagueService
	importer *Importer
}

func newFixture() fixture {
	logger := slog.New(slog.DiscardHandler)
	store := repository.NewMemoryStore()
	engine := standings.NewEngine(store, logger, nil)
	leagues := service.NewLeagueService(store, engine, logger)
	return fixture{
		store:   store,
		engine:  engine,
		leagues: leagues,
		importer: NewImporter(
			leagues,
			service.NewRosterService(store, engine, logger),
			service.NewScheduleService(store, nil, logger),
			logger,
		),
	}
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(tuesdayMixed))
	require.NoError(t, err)

	assert.Equal(t, "Tuesday Mixed", f.League.Name)
	assert.True(t, f.League.Handicap.Enabled)
	require.NotNil(t, f.League.Points)
	assert.Equal(t, domain.PointSystemSimple, f.League.Points.Type)
	require.Len(t, f.Teams, 2)
	assert.Equal(t, 170.0, f.Teams[0].Bowlers[0].StartingAverage)
	require.Len(t, f.Schedule, 2)
	assert.Len(t, f.Schedule[0].Scores, 4)
	assert.Empty(t, f.Schedule[1].Scores)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown key", "league:\n  name: x\n  lanes: 12\n"},
		{"not yaml", "league: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestImport(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	f, err := Parse(strings.NewReader(tuesdayMixed))
	require.NoError(t, err)

	res, err := fx.importer.Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Teams)
	assert.Equal(t, 4, res.Bowlers)
	assert.Equal(t, 2, res.Games)
	assert.Equal(t, 1, res.Sheets)

	snap, err := fx.leagues.Standings(ctx, res.League.ID)
	require.NoError(t, err)
	require.Len(t, snap.Teams, 2)
	// Handicap from played averages narrows it to 396 against 389.
	assert.Equal(t, "Alley Cats", snap.Teams[0].Team.Name)
	assert.Equal(t, 2.0, snap.Teams[0].Points)
	assert.Equal(t, 1, snap.WeeksCompleted)
}

func TestImport_FailureRemovesLeague(t *testing.T) {
	tests := []struct {
		name string
		edit func(f *File)
	}{
		{"duplicate bowler", func(f *File) {
			f.Teams[1].Bowlers[0].Name = "dana"
		}},
		{"unknown team", func(f *File) {
			f.Schedule[1].Team2 = "Gutter Kings"
		}},
		{"unknown bowler", func(f *File) {
			f.Schedule[0].Scores[0].Bowler = "Nobody"
		}},
		{"score out of range", func(f *File) {
			f.Schedule[0].Scores[0].Score = 301
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture()
			ctx := context.Background()
			f, err := Parse(strings.NewReader(tuesdayMixed))
			require.NoError(t, err)
			tt.edit(f)

			_, err = fx.importer.Import(ctx, f)
			require.Error(t, err)

			leagues, err := fx.leagues.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, leagues)
			teams, err := fx.store.Teams().ListAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, teams)
		})
	}
}

func TestImport_InvalidLeague(t *testing.T) {
	fx := newFixture()
	f := &File{League: domain.LeagueInput{Name: "Broken", TeamSize: 0}}
	_, err := fx.importer.Import(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create league")
}

func TestImport_GeneratedLeague(t *testing.T) {
	faker := gofakeit.New(11)
	f := &File{League: domain.LeagueInput{
		Name:            "Generated",
		TeamSize:        3,
		GamesPerSession: 3,
		TotalWeeks:      20,
		Handicap:        domain.HandicapRules{Basis: 210, Percentage: 90, Max: 60},
	}}

	used := map[string]bool{}
	for ti := 0; ti < 6; ti++ {
		team := Team{Name: fmt.Sprintf("Team %d", ti+1)}
		for len(team.Bowlers) < 3 {
			name := faker.FirstName() + " " + faker.LastName()
			if used[nameKey(name)] {
				continue
			}
			used[nameKey(name)] = true
			team.Bowlers = append(team.Bowlers, domain.BowlerInput{Name: name, StartingAverage: float64(faker.Number(100, 220))})
		}
		f.Teams = append(f.Teams, team)
	}
	for week := 1; week <= 3; week++ {
		for i := 0; i < len(f.Teams); i += 2 {
			g := Game{Week: week, Team1: f.Teams[i].Name, Team2: f.Teams[i+1].Name}
			for _, side := range []Team{f.Teams[i], f.Teams[i+1]} {
				for _, b := range side.Bowlers {
					for n := 1; n <= 3; n++ {
						g.Scores = append(g.Scores, Score{Bowler: b.Name, Game: n, Score: faker.Number(90, 279)})
					}
				}
			}
			f.Schedule = append(f.Schedule, g)
		}
	}

	fx := newFixture()
	ctx := context.Background()
	res, err := fx.importer.Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 18, res.Bowlers)
	assert.Equal(t, 9, res.Games)
	assert.Equal(t, 9, res.Sheets)

	snap, err := fx.leagues.Standings(ctx, res.League.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Teams, 6)
	assert.Len(t, snap.Individuals, 18)
	assert.Equal(t, 3, snap.WeeksCompleted)
	for _, b := range snap.Individuals {
		assert.Equal(t, 9, b.GamesPlayed, b.Name)
	}
}
