//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/test/integration/testutil"
)

type pgFixture struct {
	league  domain.League
	teamA   domain.Team
	teamB   domain.Team
	bowlerA domain.Bowler
	bowlerB domain.Bowler
	game    domain.Game
}

func seedPg(t *testing.T, s repository.Store) pgFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	f := pgFixture{
		league: domain.League{
			ID: uuid.New(), Name: "Thursday Seniors", TeamSize: 2, GamesPerSession: 3, TotalWeeks: 12,
			Handicap:    domain.HandicapRules{Enabled: true, Basis: 210, Percentage: 90, Max: 60},
			PointSystem: domain.DefaultMatchupSystem(), Status: domain.LeagueActive, CreatedAt: now,
		},
	}
	f.teamA = domain.Team{ID: uuid.New(), LeagueID: f.league.ID, Name: "Strike Force", CreatedAt: now}
	f.teamB = domain.Team{ID: uuid.New(), LeagueID: f.league.ID, Name: "Lane Changers", CreatedAt: now}
	f.bowlerA = domain.Bowler{ID: uuid.New(), TeamID: f.teamA.ID, LeagueID: f.league.ID, Name: "Hollis", StartingAverage: 172.5, CreatedAt: now}
	f.bowlerB = domain.Bowler{ID: uuid.New(), TeamID: f.teamB.ID, LeagueID: f.league.ID, Name: "Iris", StartingAverage: 155, CreatedAt: now}
	f.game = domain.Game{ID: uuid.New(), LeagueID: f.league.ID, Week: 1, Team1ID: f.teamA.ID, Team2ID: f.teamB.ID, CreatedAt: now}

	require.NoError(t, s.Leagues().Create(ctx, &f.league))
	require.NoError(t, s.Teams().Create(ctx, &f.teamA))
	require.NoError(t, s.Teams().Create(ctx, &f.teamB))
	require.NoError(t, s.Bowlers().Create(ctx, &f.bowlerA))
	require.NoError(t, s.Bowlers().Create(ctx, &f.bowlerB))
	require.NoError(t, s.Games().Create(ctx, &f.game))
	return f
}

func pgScore(f pgFixture, b domain.Bowler, n, pins int) domain.Score {
	return domain.Score{ID: uuid.New(), GameID: f.game.ID, BowlerID: b.ID, TeamID: b.TeamID, GameNumber: n, Score: pins}
}

func TestPgStore_LeagueRoundTrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	f := seedPg(t, env.Store)
	ctx := context.Background()

	got, err := env.Store.Leagues().FindByID(ctx, f.league.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.league.Name, got.Name)
	assert.Equal(t, f.league.Handicap, got.Handicap)
	assert.Equal(t, f.league.PointSystem, got.PointSystem)
	assert.Equal(t, domain.LeagueActive, got.Status)

	got.Name = "Thursday Seniors II"
	got.PointSystem = domain.SimpleSystem{PointsPerWin: 2, PointsPerTie: 1}
	require.NoError(t, env.Store.Leagues().Update(ctx, got))

	again, err := env.Store.Leagues().FindByID(ctx, f.league.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thursday Seniors II", again.Name)
	assert.Equal(t, got.PointSystem, again.PointSystem)

	bowler, err := env.Store.Bowlers().FindByID(ctx, f.bowlerA.ID)
	require.NoError(t, err)
	assert.Equal(t, 172.5, bowler.StartingAverage)
	assert.Equal(t, f.league.ID, bowler.LeagueID)
}

func TestPgStore_FindMissingReturnsNil(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	l, err := env.Store.Leagues().FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, l)

	g, err := env.Store.Games().FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, g)

	deleted, err := env.Store.Teams().Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPgStore_ScoresKeepInsertionOrder(t *testing.T) {
	env := testutil.NewTestEnv(t)
	f := seedPg(t, env.Store)
	ctx := context.Background()

	rows := []domain.Score{
		pgScore(f, f.bowlerB, 1, 190),
		pgScore(f, f.bowlerA, 1, 150),
		pgScore(f, f.bowlerA, 2, 210),
		pgScore(f, f.bowlerB, 2, 140),
	}
	require.NoError(t, env.Store.Scores().InsertMany(ctx, rows))

	got, err := env.Store.Scores().ListByGame(ctx, f.game.ID)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].ID, got[i].ID)
		assert.Equal(t, rows[i].Score, got[i].Score)
	}

	byLeague, err := env.Store.Scores().ListByLeague(ctx, f.league.ID)
	require.NoError(t, err)
	assert.Len(t, byLeague, 4)
}

func TestPgStore_TransactionRollback(t *testing.T) {
	env := testutil.NewTestEnv(t)
	f := seedPg(t, env.Store)
	ctx := context.Background()
	require.NoError(t, env.Store.Scores().InsertMany(ctx, []domain.Score{pgScore(f, f.bowlerA, 1, 150)}))

	boom := errors.New("boom")
	err := env.Store.WithinTx(ctx, func(tx repository.Store) error {
		n, err := tx.Scores().DeleteByGame(ctx, f.game.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			require.NoError(t, inner.Games().SetCompleted(ctx, f.game.ID, true))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	got, err := env.Store.Scores().ListByGame(ctx, f.game.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	week, err := env.Store.Games().MaxCompletedWeek(ctx, f.league.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, week)
}

func TestPgStore_CascadingDeletes(t *testing.T) {
	ctx := context.Background()

	t.Run("league", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		f := seedPg(t, env.Store)
		require.NoError(t, env.Store.Scores().InsertMany(ctx, []domain.Score{pgScore(f, f.bowlerA, 1, 180)}))

		deleted, err := env.Store.Leagues().Delete(ctx, f.league.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		teams, err := env.Store.Teams().ListByLeague(ctx, f.league.ID)
		require.NoError(t, err)
		assert.Empty(t, teams)
		scores, err := env.Store.Scores().ListByBowler(ctx, f.bowlerA.ID)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("team takes its games", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		f := seedPg(t, env.Store)
		require.NoError(t, env.Store.Scores().InsertMany(ctx, []domain.Score{pgScore(f, f.bowlerB, 1, 180)}))

		deleted, err := env.Store.Teams().Delete(ctx, f.teamA.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		g, err := env.Store.Games().FindByID(ctx, f.game.ID)
		require.NoError(t, err)
		assert.Nil(t, g)
		scores, err := env.Store.Scores().ListByBowler(ctx, f.bowlerB.ID)
		require.NoError(t, err)
		assert.Empty(t, scores)
		b, err := env.Store.Bowlers().FindByID(ctx, f.bowlerB.ID)
		require.NoError(t, err)
		assert.NotNil(t, b)
	})

	t.Run("bowler takes only their scores", func(t *testing.T) {
		env := testutil.NewTestEnv(t)
		f := seedPg(t, env.Store)
		require.NoError(t, env.Store.Scores().InsertMany(ctx, []domain.Score{
			pgScore(f, f.bowlerA, 1, 180),
			pgScore(f, f.bowlerB, 1, 170),
		}))

		deleted, err := env.Store.Bowlers().Delete(ctx, f.bowlerA.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		scores, err := env.Store.Scores().ListByGame(ctx, f.game.ID)
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, f.bowlerB.ID, scores[0].BowlerID)
	})
}

func TestPgStore_Outbox(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, env.Store.Outbox().Insert(ctx, domain.NewLeagueDeletedEvent(ids[i])))
	}

	recs, err := env.Store.Outbox().FetchUnpublished(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Less(t, recs[0].SeqID, recs[1].SeqID)
	assert.Equal(t, ids[0].String(), recs[0].AggregateID)
	assert.Equal(t, domain.EventLeagueDeleted, recs[0].EventType)

	require.NoError(t, env.Store.Outbox().MarkPublished(ctx, []int64{recs[0].SeqID, recs[1].SeqID}))
	recs, err = env.Store.Outbox().FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, ids[2].String(), recs[0].AggregateID)
}
