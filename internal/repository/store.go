package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the Postgres-backed Store. Repositories are bound to either the
// pool or the open transaction.
type PgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	inTx bool
}

// NewPgStore returns a Store over the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, db: pool}
}

func (s *PgStore) Leagues() LeagueRepository { return &leagueRepo{db: s.db} }
func (s *PgStore) Teams() TeamRepository     { return &teamRepo{db: s.db} }
func (s *PgStore) Bowlers() BowlerRepository { return &bowlerRepo{db: s.db} }
func (s *PgStore) Games() GameRepository     { return &gameRepo{db: s.db} }
func (s *PgStore) Scores() ScoreRepository   { return &scoreRepo{db: s.db} }
func (s *PgStore) Outbox() OutboxRepository  { return &outboxRepo{db: s.db} }

// WithinTx runs fn in a single database transaction. A nested call joins the
// outer transaction.
func (s *PgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PgStore{pool: s.pool, db: tx, inTx: true})
	})
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
