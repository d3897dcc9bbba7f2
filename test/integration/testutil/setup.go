//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenpin/leaguebook/internal/app"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
)

const (
	TestJWTSecret = "integration-test-secret-0123456789abcdef"
	TestDBName    = "leaguebook_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server         *httptest.Server
	Pool           *pgxpool.Pool
	Store          *repository.PgStore
	JWTMgr         *auth.JWTManager
	AdminToken     string
	SecretaryToken string
	t              *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serverDSN(database string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("PGUSER", "leaguebook"),
		envOr("PGPASSWORD", "leaguebook"),
		envOr("PGHOST", "localhost"),
		envOr("PGPORT", "5432"),
		database,
	)
}

// TestDSN points at the dedicated test database.
func TestDSN() string {
	return envOr("LEAGUEBOOK_TEST_DSN", serverDSN(TestDBName))
}

func ensureTestDB(ctx context.Context) error {
	if os.Getenv("LEAGUEBOOK_TEST_DSN") != "" {
		return nil
	}
	bPool, err := pgxpool.New(ctx, serverDSN(envOr("PGDATABASE", "leaguebook")))
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}
	if !exists {
		if _, err := bPool.Exec(ctx, "CREATE DATABASE "+TestDBName); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

// SharedPool connects once per test binary and applies the embedded migrations.
func SharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := ensureTestDB(ctx); err != nil {
			poolErr = err
			return
		}
		logger := Logger()
		if err := infra.RunMigrations(TestDSN(), logger); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		poolCfg, err := pgxpool.ParseConfig(TestDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1
		sharedPool, poolErr = pgxpool.NewWithConfig(ctx, poolCfg)
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router and a clean test database.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := SharedPool(t)
	store := repository.NewPgStore(pool)
	jwtMgr := auth.NewJWTManager(TestJWTSecret, time.Hour)
	logger := Logger()

	router := app.NewRouter(app.RouterDeps{
		Store:               store,
		JWTMgr:              jwtMgr,
		Logger:              logger,
		Metrics:             infra.NewMetrics(),
		ExtractionRateLimit: 10,
		CORSAllowedOrigins:  "*",
	})

	env := &TestEnv{
		Server: httptest.NewServer(router),
		Pool:   pool,
		Store:  store,
		JWTMgr: jwtMgr,
		t:      t,
	}
	env.AdminToken = env.token("admin@integration", auth.RoleAdmin)
	env.SecretaryToken = env.token("desk@integration", auth.RoleSecretary)

	env.CleanAll()
	t.Cleanup(func() {
		env.Server.Close()
		env.CleanAll()
	})
	return env
}

func (env *TestEnv) token(subject string, role auth.Role) string {
	env.t.Helper()
	tok, err := env.JWTMgr.GenerateToken(subject, role)
	if err != nil {
		env.t.Fatalf("generate token: %v", err)
	}
	return tok
}

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
