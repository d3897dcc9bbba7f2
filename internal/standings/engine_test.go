package standings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
)

type leagueFixture struct {
	t      *testing.T
	store  *repository.MemoryStore
	league domain.League
}

func newLeague(t *testing.T, hcp domain.HandicapRules, ps domain.PointSystem) *leagueFixture {
	t.Helper()
	f := &leagueFixture{
		t:     t,
		store: repository.NewMemoryStore(),
		league: domain.League{
			ID: uuid.New(), Name: "Thursday Night", TeamSize: 4, GamesPerSession: 3, TotalWeeks: 20,
			Handicap: hcp, PointSystem: ps, Status: domain.LeagueActive, CreatedAt: time.Now(),
		},
	}
	require.NoError(t, f.store.Leagues().Create(context.Background(), &f.league))
	return f
}

func (f *leagueFixture) team(name string) domain.Team {
	f.t.Helper()
	t := domain.Team{ID: uuid.New(), LeagueID: f.league.ID, Name: name, CreatedAt: time.Now()}
	require.NoError(f.t, f.store.Teams().Create(context.Background(), &t))
	return t
}

func (f *leagueFixture) bowler(team domain.Team, name string, avg float64) domain.Bowler {
	f.t.Helper()
	b := domain.Bowler{ID: uuid.New(), TeamID: team.ID, LeagueID: f.league.ID, Name: name, StartingAverage: avg}
	require.NoError(f.t, f.store.Bowlers().Create(context.Background(), &b))
	return b
}

func (f *leagueFixture) game(week int, a, b domain.Team) domain.Game {
	f.t.Helper()
	g := domain.Game{ID: uuid.New(), LeagueID: f.league.ID, Week: week, Team1ID: a.ID, Team2ID: b.ID}
	require.NoError(f.t, f.store.Games().Create(context.Background(), &g))
	return g
}

// bowl records one bowler's games in order and marks the game completed.
func (f *leagueFixture) bowl(g domain.Game, b domain.Bowler, games ...int) {
	f.t.Helper()
	ctx := context.Background()
	rows := make([]domain.Score, 0, len(games))
	for i, p := range games {
		rows = append(rows, domain.Score{
			ID: uuid.New(), GameID: g.ID, BowlerID: b.ID, TeamID: b.TeamID, GameNumber: i + 1, Score: p,
		})
	}
	require.NoError(f.t, f.store.Scores().InsertMany(ctx, rows))
	require.NoError(f.t, f.store.Games().SetCompleted(ctx, g.ID, true))
}

func (f *leagueFixture) engine() *Engine {
	return NewEngine(f.store, slog.New(slog.DiscardHandler), nil)
}

func TestEngine_SimpleSystemWinLoss(t *testing.T) {
	f := newLeague(t, domain.HandicapRules{}, domain.SimpleSystem{PointsPerWin: 2, PointsPerTie: 1, PointsPerLoss: 0})
	a, b := f.team("A"), f.team("B")
	g := f.game(1, a, b)
	f.bowl(g, f.bowler(a, "Ann", 0), 200, 200, 200)
	f.bowl(g, f.bowler(b, "Bea", 0), 200, 190, 190)

	ctx := context.Background()
	e := f.engine()

	statsA, err := e.TeamWithStats(ctx, a.ID, f.league)
	require.NoError(t, err)
	require.NotNil(t, statsA)
	assert.Equal(t, 1, statsA.Wins)
	assert.Equal(t, 2.0, statsA.TotalPoints)
	assert.Equal(t, 600, statsA.TotalPins)
	assert.Equal(t, 1, statsA.GamesPlayed)
	require.Len(t, statsA.Bowlers, 1)
	assert.Equal(t, 600, statsA.Bowlers[0].HighSeries)

	statsB, err := e.TeamWithStats(ctx, b.ID, f.league)
	require.NoError(t, err)
	assert.Equal(t, 1, statsB.Losses)
	assert.Equal(t, 0.0, statsB.TotalPoints)
	assert.Equal(t, 580, statsB.TotalPins)
}

func TestEngine_MatchupAcrossWeeks(t *testing.T) {
	f := newLeague(t, domain.HandicapRules{}, domain.DefaultMatchupSystem())
	a, b := f.team("A"), f.team("B")
	a1, a2 := f.bowler(a, "A1", 0), f.bowler(a, "A2", 0)
	b1, b2 := f.bowler(b, "B1", 0), f.bowler(b, "B2", 0)

	w1 := f.game(1, a, b)
	f.bowl(w1, a1, 200, 180, 190)
	f.bowl(w1, b1, 190, 190, 190)
	f.bowl(w1, a2, 150, 160, 170)
	f.bowl(w1, b2, 160, 150, 170)

	w2 := f.game(2, b, a)
	f.bowl(w2, a1, 150, 150, 150)
	f.bowl(w2, b1, 200, 200, 200)

	// Scheduled but not bowled.
	f.game(3, a, b)

	ctx := context.Background()
	stats, err := f.engine().TeamWithStats(ctx, a.ID, f.league)
	require.NoError(t, err)

	// Week 1 game 1: A1 200>190 (+1), A2 150<160; totals 350=350, no team point.
	// Game 2: A1 180<190, A2 160>150 (+1); 340=340.
	// Game 3: A1 190=190, A2 170=170; 360=360. Series tie.
	// Week 2: A loses everything.
	assert.Equal(t, 2.0, stats.TotalPoints)
	assert.Equal(t, 0, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Ties)
	assert.Equal(t, 2, stats.GamesPlayed)
	assert.Equal(t, 570+480+450, stats.TotalPins)

	weeks, err := f.engine().WeeksCompleted(ctx, f.league.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, weeks)
}

func TestEngine_HandicapPinsPerScoreRow(t *testing.T) {
	rules := domain.HandicapRules{Enabled: true, Basis: 210, Percentage: 90, Max: 100}
	f := newLeague(t, rules, domain.DefaultMatchupSystem())
	a, b := f.team("A"), f.team("B")
	g := f.game(1, a, b)
	f.bowl(g, f.bowler(a, "Ann", 0), 150, 150, 150)
	f.bowl(g, f.bowler(b, "Bea", 0), 210, 210, 210)

	stats, err := f.engine().TeamWithStats(context.Background(), a.ID, f.league)
	require.NoError(t, err)
	// Average 150 gives floor(60*0.9) = 54 pins on each of three games.
	assert.Equal(t, 3*54, stats.HandicapPins)
	assert.Equal(t, 450, stats.TotalPins)
	// 204 < 210 every game, so the handicap is not enough.
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 0.0, stats.TotalPoints)
}

func TestEngine_AbsentResults(t *testing.T) {
	f := newLeague(t, domain.HandicapRules{}, domain.DefaultMatchupSystem())
	ctx := context.Background()
	e := f.engine()

	team, err := e.TeamWithStats(ctx, uuid.New(), f.league)
	require.NoError(t, err)
	assert.Nil(t, team)

	bowler, err := e.BowlerWithStats(ctx, uuid.New(), f.league)
	require.NoError(t, err)
	assert.Nil(t, bowler)

	standings, err := e.TeamStandings(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, standings)
	assert.Empty(t, standings)

	individuals, err := e.IndividualStandings(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, individuals)
	assert.Empty(t, individuals)

	weeks, err := e.WeeksCompleted(ctx, f.league.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, weeks)
}

func TestEngine_SelfPlayGameSkipped(t *testing.T) {
	f := newLeague(t, domain.HandicapRules{}, domain.DefaultMatchupSystem())
	a := f.team("A")
	g := f.game(1, a, a)
	f.bowl(g, f.bowler(a, "Ann", 0), 200)

	stats, err := f.engine().TeamWithStats(context.Background(), a.ID, f.league)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.GamesPlayed)
	assert.Equal(t, 0, stats.TotalPins)
	assert.Equal(t, 0.0, stats.TotalPoints)
}

// hidingStore makes one bowler look deleted while their scores remain.
type hidingStore struct {
	*repository.MemoryStore
	hidden uuid.UUID
}

func (s hidingStore) Bowlers() repository.BowlerRepository {
	return hidingBowlers{BowlerRepository: s.MemoryStore.Bowlers(), hidden: s.hidden}
}

type hidingBowlers struct {
	repository.BowlerRepository
	hidden uuid.UUID
}

func (b hidingBowlers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Bowler, error) {
	if id == b.hidden {
		return nil, nil
	}
	return b.BowlerRepository.FindByID(ctx, id)
}

func TestEngine_MissingOpponentBowlerCountsNoHandicap(t *testing.T) {
	rules := domain.HandicapRules{Enabled: true, Basis: 220, Percentage: 100, Max: 100}
	f := newLeague(t, rules, domain.SimpleSystem{PointsPerWin: 2, PointsPerTie: 1})
	a, b := f.team("A"), f.team("B")
	g := f.game(1, a, b)
	f.bowl(g, f.bowler(a, "Ann", 0), 200)
	ghost := f.bowler(b, "Ghost", 0)
	f.bowl(g, ghost, 150)

	e := NewEngine(hidingStore{MemoryStore: f.store, hidden: ghost.ID}, slog.New(slog.DiscardHandler), nil)
	stats, err := e.TeamWithStats(context.Background(), b.ID, f.league)
	require.NoError(t, err)
	assert.Empty(t, stats.Bowlers)
	assert.Equal(t, 150, stats.TotalPins)
	assert.Equal(t, 0, stats.HandicapPins)
	// Ann: 200 + 20 handicap beats 150 + 0.
	assert.Equal(t, 1, stats.Losses)
}

func TestEngine_IndividualStandings(t *testing.T) {
	f := newLeague(t, domain.HandicapRules{}, domain.DefaultMatchupSystem())
	a, b := f.team("A"), f.team("B")
	g := f.game(1, a, b)
	low := f.bowler(a, "Low", 0)
	f.bowler(b, "Rookie", 175)
	high := f.bowler(b, "High", 0)
	f.bowl(g, low, 120, 130, 140)
	f.bowl(g, high, 220, 230, 240)

	out, err := f.engine().IndividualStandings(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "High", out[0].Name)
	assert.Equal(t, "Rookie", out[1].Name)
	assert.Equal(t, 175.0, out[1].Average)
	assert.Equal(t, "Low", out[2].Name)
}

func TestEngine_StandingsAreIdempotent(t *testing.T) {
	faker := gofakeit.New(7)
	rules := domain.HandicapRules{Enabled: true, Basis: 210, Percentage: 90, Max: 63}
	f := newLeague(t, rules, domain.DefaultMatchupSystem())

	teams := make([]domain.Team, 6)
	roster := make(map[uuid.UUID][]domain.Bowler)
	for i := range teams {
		teams[i] = f.team(faker.Company())
		for j := 0; j < 4; j++ {
			roster[teams[i].ID] = append(roster[teams[i].ID], f.bowler(teams[i], faker.Name(), faker.Float64Range(120, 210)))
		}
	}
	for week := 1; week <= 5; week++ {
		order := []int{0, 1, 2, 3, 4, 5}
		faker.ShuffleAnySlice(order)
		for k := 0; k+1 < len(order); k += 2 {
			home, away := teams[order[k]], teams[order[k+1]]
			g := f.game(week, home, away)
			for _, side := range []domain.Team{home, away} {
				for _, bw := range roster[side.ID] {
					f.bowl(g, bw, faker.Number(90, 280), faker.Number(90, 280), faker.Number(90, 280))
				}
			}
		}
	}

	ctx := context.Background()
	e := f.engine()
	first, err := e.TeamStandings(ctx, f.league.ID)
	require.NoError(t, err)
	second, err := e.TeamStandings(ctx, f.league.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("standings changed between identical calls (-first +second):\n%s", diff)
	}
	require.Len(t, first, len(teams))

	games := 0
	for i, entry := range first {
		assert.Equal(t, i+1, entry.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, first[i-1].Points, entry.Points)
		}
		assert.Equal(t, entry.Team.Wins+entry.Team.Losses+entry.Team.Ties, entry.Team.GamesPlayed)
		games += entry.Team.GamesPlayed
	}
	assert.Equal(t, 5*len(teams), games)

	snap, err := e.Snapshot(ctx, f.league)
	require.NoError(t, err)
	if diff := cmp.Diff(first, snap.Teams); diff != "" {
		t.Fatalf("snapshot standings differ (-standings +snapshot):\n%s", diff)
	}
	assert.Equal(t, 5, snap.WeeksCompleted)
	assert.Len(t, snap.Individuals, 24)
}
