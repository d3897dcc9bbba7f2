package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tenpin/leaguebook/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store bundles the entity repositories behind one transactional boundary.
// Lookups that find nothing return nil with a nil error.
type Store interface {
	Leagues() LeagueRepository
	Teams() TeamRepository
	Bowlers() BowlerRepository
	Games() GameRepository
	Scores() ScoreRepository
	Outbox() OutboxRepository

	// WithinTx runs fn against a Store whose writes commit together or not
	// at all. Readers outside fn never observe a partial write.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

// LeagueRepository provides access to leagues.
type LeagueRepository interface {
	List(ctx context.Context) ([]domain.League, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.League, error)
	Create(ctx context.Context, league *domain.League) error
	Update(ctx context.Context, league *domain.League) error

	// Delete removes the league with its teams, bowlers, games and scores.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TeamRepository provides access to teams.
type TeamRepository interface {
	ListAll(ctx context.Context) ([]domain.Team, error)
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Team, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error

	// Delete removes the team with its bowlers, the games it plays in and
	// every score under either.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// BowlerRepository provides access to bowlers.
type BowlerRepository interface {
	ListAll(ctx context.Context) ([]domain.Bowler, error)
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Bowler, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Bowler, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Bowler, error)
	Create(ctx context.Context, bowler *domain.Bowler) error
	Update(ctx context.Context, bowler *domain.Bowler) error

	// Delete removes the bowler and every score they bowled.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// GameRepository provides access to scheduled games.
type GameRepository interface {
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Game, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	Create(ctx context.Context, game *domain.Game) error
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error

	// MaxCompletedWeek returns the highest week with a completed game, or 0.
	MaxCompletedWeek(ctx context.Context, leagueID uuid.UUID) (int, error)

	// Delete removes the game and its scores.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ScoreRepository provides access to score rows. Rows for a game come back in
// the order they were inserted.
type ScoreRepository interface {
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]domain.Score, error)
	ListByBowler(ctx context.Context, bowlerID uuid.UUID) ([]domain.Score, error)
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]domain.Score, error)
	InsertMany(ctx context.Context, scores []domain.Score) error
	DeleteByGame(ctx context.Context, gameID uuid.UUID) (int64, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the change).
	Insert(ctx context.Context, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events oldest first.
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRecord, error)

	// MarkPublished removes relayed events.
	MarkPublished(ctx context.Context, ids []int64) error
}
