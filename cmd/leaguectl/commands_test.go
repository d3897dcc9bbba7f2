package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/standings"
	"github.com/urfave/cli/v2"
)

const testSecret = "leaguectl-test-secret-0123456789abcdef"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(slog.New(slog.DiscardHandler))
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"leaguectl"}, args...))
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	out, err := runCLI(t, "token", "--subject", "desk@lanes", "--role", "admin", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager(testSecret, time.Hour).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "desk@lanes", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenCommand_Rejects(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		t.Setenv("JWT_SECRET", testSecret)
		_, err := runCLI(t, "token", "-s", "x", "-r", "owner")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown role")
	})

	t.Run("insecure secret", func(t *testing.T) {
		_, err := runCLI(t, "token", "-s", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})
}

func TestCommands_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"export format", []string{"export", "-l", uuid.NewString(), "-o", "x.pdf", "pdf"}, "xlsx or png"},
		{"standings bad id", []string{"standings", "-l", "nope"}, "invalid league id"},
		{"import without file", []string{"import"}, "seed file path"},
		{"import missing file", []string{"import", "/nonexistent/seed.yaml"}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrintStandings(t *testing.T) {
	team := domain.TeamWithStats{Team: domain.Team{Name: "Alley Cats"}, Wins: 3, Losses: 1}
	snap := &standings.Snapshot{
		League: domain.League{Name: "Tuesday Mixed", Status: domain.LeagueActive},
		Teams: []domain.StandingsEntry{
			{Rank: 1, Team: team, ScratchTotal: 2400, HandicapTotal: 120, Points: 17.5},
		},
		Individuals: []domain.BowlerWithStats{
			{Bowler: domain.Bowler{Name: "Dana"}, GamesPlayed: 12, Average: 181.25, Handicap: 26, HighGame: 234, HighSeries: 612},
		},
		WeeksCompleted: 4,
	}

	var out bytes.Buffer
	app := &cli.App{Writer: &out}
	require.NoError(t, printStandings(cli.NewContext(app, nil, nil), snap))

	text := out.String()
	assert.Contains(t, text, "Tuesday Mixed (active), 4 weeks completed")
	assert.Contains(t, text, "Alley Cats")
	assert.Contains(t, text, "17.5")
	assert.Contains(t, text, "3-1-0")
	assert.Contains(t, text, "181.2")
}
