// Package seed loads a whole league (configuration, rosters, schedule and
// optionally recorded score sheets) from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/service"
	"gopkg.in/yaml.v3"
)

// File is the seed document.
type File struct {
	League   domain.LeagueInput `yaml:"league"`
	Teams    []Team             `yaml:"teams"`
	Schedule []Game             `yaml:"schedule"`
}

// Team is a team and its roster.
type Team struct {
	Name    string               `yaml:"name"`
	Bowlers []domain.BowlerInput `yaml:"bowlers"`
}

// Game is a scheduled match referencing teams by name. Scores, when present,
// are submitted as the game's sheet.
type Game struct {
	Week   int     `yaml:"week"`
	Team1  string  `yaml:"team1"`
	Team2  string  `yaml:"team2"`
	Scores []Score `yaml:"scores,omitempty"`
}

// Score is one sheet row referencing the bowler by name.
type Score struct {
	Bowler string `yaml:"bowler"`
	Game   int    `yaml:"game"`
	Score  int    `yaml:"score"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// Result summarises an import.
type Result struct {
	League  domain.League
	Teams   int
	Bowlers int
	Games   int
	Sheets  int
}

// Importer writes seed files through the services so every rule applies.
type Importer struct {
	leagues  *service.LeagueService
	roster   *service.RosterService
	schedule *service.ScheduleService
	logger   *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(leagues *service.LeagueService, roster *service.RosterService, schedule *service.ScheduleService, logger *slog.Logger) *Importer {
	return &Importer{leagues: leagues, roster: roster, schedule: schedule, logger: logger}
}

// Import creates the league and everything in it. On failure the partially
// created league is deleted again.
func (im *Importer) Import(ctx context.Context, f *File) (*Result, error) {
	league, err := im.leagues.Create(ctx, f.League)
	if err != nil {
		return nil, fmt.Errorf("create league: %w", err)
	}

	res, err := im.populate(ctx, *league, f)
	if err != nil {
		if delErr := im.leagues.Delete(context.WithoutCancel(ctx), league.ID); delErr != nil {
			im.logger.Error("seed cleanup failed", "league_id", league.ID, "error", delErr)
		}
		return nil, err
	}
	im.logger.Info("league imported",
		"league_id", league.ID,
		"teams", res.Teams,
		"bowlers", res.Bowlers,
		"games", res.Games,
		"sheets", res.Sheets,
	)
	return res, nil
}

func (im *Importer) populate(ctx context.Context, league domain.League, f *File) (*Result, error) {
	res := &Result{League: league}
	teams := make(map[string]domain.Team, len(f.Teams))
	bowlers := make(map[string]domain.Bowler)

	for _, t := range f.Teams {
		key := nameKey(t.Name)
		if _, dup := teams[key]; dup {
			return nil, fmt.Errorf("team %q listed twice", t.Name)
		}
		team, err := im.roster.CreateTeam(ctx, domain.TeamInput{LeagueID: league.ID, Name: t.Name})
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", t.Name, err)
		}
		teams[key] = *team
		res.Teams++

		for _, b := range t.Bowlers {
			bkey := nameKey(b.Name)
			if _, dup := bowlers[bkey]; dup {
				return nil, fmt.Errorf("bowler %q listed twice in the league", b.Name)
			}
			b.TeamID = team.ID
			bowler, err := im.roster.CreateBowler(ctx, b)
			if err != nil {
				return nil, fmt.Errorf("bowler %q: %w", b.Name, err)
			}
			bowlers[bkey] = *bowler
			res.Bowlers++
		}
	}

	for i, g := range f.Schedule {
		t1, ok1 := teams[nameKey(g.Team1)]
		t2, ok2 := teams[nameKey(g.Team2)]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("schedule entry %d: unknown team %q or %q", i+1, g.Team1, g.Team2)
		}
		game, err := im.schedule.CreateGame(ctx, domain.GameInput{LeagueID: league.ID, Week: g.Week, Team1ID: t1.ID, Team2ID: t2.ID})
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i+1, err)
		}
		res.Games++

		if len(g.Scores) == 0 {
			continue
		}
		rows := make([]domain.ScoreInput, 0, len(g.Scores))
		for _, s := range g.Scores {
			b, ok := bowlers[nameKey(s.Bowler)]
			if !ok {
				return nil, fmt.Errorf("schedule entry %d: unknown bowler %q", i+1, s.Bowler)
			}
			rows = append(rows, domain.ScoreInput{BowlerID: b.ID, TeamID: b.TeamID, GameNumber: s.Game, Score: s.Score})
		}
		if _, err := im.schedule.SubmitScores(ctx, game.ID, rows); err != nil {
			return nil, fmt.Errorf("schedule entry %d scores: %w", i+1, err)
		}
		res.Sheets++
	}
	return res, nil
}

func nameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
