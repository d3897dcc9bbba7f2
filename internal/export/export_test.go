package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/standings"
	"github.com/xuri/excelize/v2"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleSnapshot() *standings.Snapshot {
	alley := domain.Team{ID: uuid.New(), Name: "Alley Cats"}
	split := domain.Team{ID: uuid.New(), Name: "Split Happens"}
	return &standings.Snapshot{
		League: domain.League{ID: uuid.New(), Name: "Thursday Trios"},
		Teams: []domain.StandingsEntry{
			{Rank: 1, Points: 14, ScratchTotal: 2400, HandicapTotal: 120, Team: domain.TeamWithStats{Team: split, Wins: 3, Losses: 1}},
			{Rank: 2, Points: 6.5, ScratchTotal: 2350, HandicapTotal: 90, Team: domain.TeamWithStats{Team: alley, Wins: 1, Losses: 2, Ties: 1}},
		},
		Individuals: []domain.BowlerWithStats{
			{Bowler: domain.Bowler{Name: "Frankie", TeamID: split.ID}, GamesPlayed: 12, Average: 187.25, Handicap: 20, HighGame: 234, HighSeries: 611},
			{Bowler: domain.Bowler{Name: "Dana", TeamID: alley.ID}, GamesPlayed: 12, Average: 171, Handicap: 35, HighGame: 210, HighSeries: 560},
		},
		WeeksCompleted: 4,
	}
}

func TestWriteStandingsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStandingsXLSX(&buf, sampleSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Teams", "Individuals"}, f.GetSheetList())

	teams, err := f.GetRows("Teams")
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, []string{"Rank", "Team", "Points", "Wins", "Losses", "Ties", "Scratch", "Handicap", "Total"}, teams[0])
	assert.Equal(t, []string{"1", "Split Happens", "14", "3", "1", "0", "2400", "120", "2520"}, teams[1])
	assert.Equal(t, "6.5", teams[2][2])

	bowlers, err := f.GetRows("Individuals")
	require.NoError(t, err)
	require.Len(t, bowlers, 3)
	assert.Equal(t, []string{"1", "Frankie", "Split Happens", "12", "187.25", "20", "234", "611"}, bowlers[1])
	assert.Equal(t, "Alley Cats", bowlers[2][2])
}

func TestWriteStandingsXLSX_EmptyLeague(t *testing.T) {
	var buf bytes.Buffer
	snap := &standings.Snapshot{League: domain.League{Name: "New League"}}
	require.NoError(t, WriteStandingsXLSX(&buf, snap))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Teams")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestStandingsChartPNG(t *testing.T) {
	tests := []struct {
		name string
		snap *standings.Snapshot
	}{
		{"with points", sampleSnapshot()},
		{"no teams", &standings.Snapshot{League: domain.League{Name: "Empty"}}},
		{"no points yet", &standings.Snapshot{
			League: domain.League{Name: "Week One"},
			Teams:  []domain.StandingsEntry{{Rank: 1, Team: domain.TeamWithStats{Team: domain.Team{Name: "Solo"}}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := StandingsChartPNG(tt.snap)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic))
		})
	}
}
