package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeagueStatus is the lifecycle state of a league.
type LeagueStatus string

const (
	LeagueActive    LeagueStatus = "active"
	LeagueCompleted LeagueStatus = "completed"
)

// PointSystemType selects how match points are awarded.
type PointSystemType string

const (
	PointSystemMatchup PointSystemType = "matchup"
	PointSystemSimple  PointSystemType = "simple"
)

// PointSystem is the league's scoring rule set. Exactly one of MatchupSystem
// or SimpleSystem implements it, so each branch always carries its own values.
type PointSystem interface {
	Type() PointSystemType
	Validate() error
}

// MatchupSystem awards points per bowler-vs-bowler game, per team game total
// and per team series total.
type MatchupSystem struct {
	PointsPerIndividualGame float64 `json:"points_per_individual_game" yaml:"points_per_individual_game"`
	PointsPerTeamGame       float64 `json:"points_per_team_game" yaml:"points_per_team_game"`
	PointsPerTeamSeries     float64 `json:"points_per_team_series" yaml:"points_per_team_series"`
}

func (MatchupSystem) Type() PointSystemType { return PointSystemMatchup }

func (m MatchupSystem) Validate() error {
	if m.PointsPerIndividualGame < 0 || m.PointsPerTeamGame < 0 || m.PointsPerTeamSeries < 0 {
		return fmt.Errorf("matchup point values must be non-negative")
	}
	return nil
}

// SimpleSystem awards points on the overall series result only.
type SimpleSystem struct {
	PointsPerWin  float64 `json:"points_per_win" yaml:"points_per_win"`
	PointsPerTie  float64 `json:"points_per_tie" yaml:"points_per_tie"`
	PointsPerLoss float64 `json:"points_per_loss" yaml:"points_per_loss"`
}

func (SimpleSystem) Type() PointSystemType { return PointSystemSimple }

func (s SimpleSystem) Validate() error {
	if s.PointsPerWin < 0 || s.PointsPerTie < 0 || s.PointsPerLoss < 0 {
		return fmt.Errorf("simple point values must be non-negative")
	}
	return nil
}

// DefaultMatchupSystem is applied to leagues created without point settings.
func DefaultMatchupSystem() MatchupSystem {
	return MatchupSystem{PointsPerIndividualGame: 1, PointsPerTeamGame: 1, PointsPerTeamSeries: 2}
}

// PointSettings is the flat column/wire form of a PointSystem.
type PointSettings struct {
	Type                    PointSystemType `json:"point_system_type" yaml:"point_system_type"`
	PointsPerWin            float64         `json:"points_per_win" yaml:"points_per_win"`
	PointsPerTie            float64         `json:"points_per_tie" yaml:"points_per_tie"`
	PointsPerLoss           float64         `json:"points_per_loss" yaml:"points_per_loss"`
	PointsPerIndividualGame float64         `json:"points_per_individual_game" yaml:"points_per_individual_game"`
	PointsPerTeamGame       float64         `json:"points_per_team_game" yaml:"points_per_team_game"`
	PointsPerTeamSeries     float64         `json:"points_per_team_series" yaml:"points_per_team_series"`
}

// System converts the flat settings into the tagged PointSystem.
// An empty type means matchup.
func (p PointSettings) System() (PointSystem, error) {
	switch p.Type {
	case PointSystemMatchup, "":
		return MatchupSystem{
			PointsPerIndividualGame: p.PointsPerIndividualGame,
			PointsPerTeamGame:       p.PointsPerTeamGame,
			PointsPerTeamSeries:     p.PointsPerTeamSeries,
		}, nil
	case PointSystemSimple:
		return SimpleSystem{
			PointsPerWin:  p.PointsPerWin,
			PointsPerTie:  p.PointsPerTie,
			PointsPerLoss: p.PointsPerLoss,
		}, nil
	default:
		return nil, fmt.Errorf("unknown point system type: %q", p.Type)
	}
}

// FlattenPointSystem is the inverse of PointSettings.System.
func FlattenPointSystem(ps PointSystem) PointSettings {
	switch s := ps.(type) {
	case SimpleSystem:
		return PointSettings{
			Type:          PointSystemSimple,
			PointsPerWin:  s.PointsPerWin,
			PointsPerTie:  s.PointsPerTie,
			PointsPerLoss: s.PointsPerLoss,
		}
	case MatchupSystem:
		return PointSettings{
			Type:                    PointSystemMatchup,
			PointsPerIndividualGame: s.PointsPerIndividualGame,
			PointsPerTeamGame:       s.PointsPerTeamGame,
			PointsPerTeamSeries:     s.PointsPerTeamSeries,
		}
	default:
		return PointSettings{Type: PointSystemMatchup}
	}
}

// HandicapRules configures how a bowler's average turns into handicap pins.
type HandicapRules struct {
	Enabled    bool `json:"use_handicap" yaml:"use_handicap"`
	Basis      int  `json:"handicap_basis" yaml:"handicap_basis"`
	Percentage int  `json:"handicap_percentage" yaml:"handicap_percentage"`
	Max        int  `json:"max_handicap" yaml:"max_handicap"`
}

// League is a configured bowling competition.
type League struct {
	ID              uuid.UUID
	Name            string
	TeamSize        int
	GamesPerSession int
	TotalWeeks      int
	Handicap        HandicapRules
	PointSystem     PointSystem
	TrackSeries     bool
	Status          LeagueStatus
	CreatedAt       time.Time
}

type leagueJSON struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	TeamSize        int          `json:"team_size"`
	GamesPerSession int          `json:"games_per_session"`
	TotalWeeks      int          `json:"total_weeks"`
	TrackSeries     bool         `json:"bonus_points_for_series"`
	Status          LeagueStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	HandicapRules
	PointSettings
}

func (l League) MarshalJSON() ([]byte, error) {
	return json.Marshal(leagueJSON{
		ID:              l.ID,
		Name:            l.Name,
		TeamSize:        l.TeamSize,
		GamesPerSession: l.GamesPerSession,
		TotalWeeks:      l.TotalWeeks,
		TrackSeries:     l.TrackSeries,
		Status:          l.Status,
		CreatedAt:       l.CreatedAt,
		HandicapRules:   l.Handicap,
		PointSettings:   FlattenPointSystem(l.PointSystem),
	})
}

func (l *League) UnmarshalJSON(data []byte) error {
	var w leagueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ps, err := w.PointSettings.System()
	if err != nil {
		return err
	}
	*l = League{
		ID:              w.ID,
		Name:            w.Name,
		TeamSize:        w.TeamSize,
		GamesPerSession: w.GamesPerSession,
		TotalWeeks:      w.TotalWeeks,
		Handicap:        w.HandicapRules,
		PointSystem:     ps,
		TrackSeries:     w.TrackSeries,
		Status:          w.Status,
		CreatedAt:       w.CreatedAt,
	}
	return nil
}

// LeagueInput is the create payload for a league.
type LeagueInput struct {
	Name            string         `json:"name" yaml:"name"`
	TeamSize        int            `json:"team_size" yaml:"team_size"`
	GamesPerSession int            `json:"games_per_session" yaml:"games_per_session"`
	TotalWeeks      int            `json:"total_weeks" yaml:"total_weeks"`
	TrackSeries     bool           `json:"bonus_points_for_series" yaml:"bonus_points_for_series"`
	Handicap        HandicapRules  `json:"handicap" yaml:"handicap"`
	Points          *PointSettings `json:"points,omitempty" yaml:"points,omitempty"`
}

// LeaguePatch carries optional league updates; nil fields are left unchanged.
type LeaguePatch struct {
	Name            *string        `json:"name,omitempty"`
	TeamSize        *int           `json:"team_size,omitempty"`
	GamesPerSession *int           `json:"games_per_session,omitempty"`
	TotalWeeks      *int           `json:"total_weeks,omitempty"`
	TrackSeries     *bool          `json:"bonus_points_for_series,omitempty"`
	Handicap        *HandicapRules `json:"handicap,omitempty"`
	Points          *PointSettings `json:"points,omitempty"`
	Status          *LeagueStatus  `json:"status,omitempty"`
}

// Apply returns a copy of l with the patch applied.
func (p LeaguePatch) Apply(l League) (League, error) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.TeamSize != nil {
		l.TeamSize = *p.TeamSize
	}
	if p.GamesPerSession != nil {
		l.GamesPerSession = *p.GamesPerSession
	}
	if p.TotalWeeks != nil {
		l.TotalWeeks = *p.TotalWeeks
	}
	if p.TrackSeries != nil {
		l.TrackSeries = *p.TrackSeries
	}
	if p.Handicap != nil {
		l.Handicap = *p.Handicap
	}
	if p.Points != nil {
		ps, err := p.Points.System()
		if err != nil {
			return l, err
		}
		l.PointSystem = ps
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	return l, nil
}
