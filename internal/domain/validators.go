package domain

import (
	"fmt"
	"strings"
)

// Bounds accepted for league configuration and score entry.
const (
	MinTeamSize        = 1
	MaxTeamSize        = 10
	MinGamesPerSession = 1
	MaxGamesPerSession = 5
	MinTotalWeeks      = 1
	MaxTotalWeeks      = 52
	MinHandicapBasis   = 180
	MaxHandicapBasis   = 250
	MaxHandicapPercent = 100
	MaxHandicapCap     = 100
	MaxPins            = 300
)

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, lo, hi, v)
	}
	return nil
}

// ValidateName checks a display name for a league, team or bowler.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	return nil
}

// ValidateHandicapRules checks basis, percentage and cap bounds.
func ValidateHandicapRules(h HandicapRules) error {
	if err := checkRange("handicap basis", h.Basis, MinHandicapBasis, MaxHandicapBasis); err != nil {
		return err
	}
	if err := checkRange("handicap percentage", h.Percentage, 0, MaxHandicapPercent); err != nil {
		return err
	}
	return checkRange("max handicap", h.Max, 0, MaxHandicapCap)
}

// ValidateLeague checks every configurable league field.
func ValidateLeague(l League) error {
	if err := ValidateName("league", l.Name); err != nil {
		return err
	}
	if err := checkRange("team size", l.TeamSize, MinTeamSize, MaxTeamSize); err != nil {
		return err
	}
	if err := checkRange("games per session", l.GamesPerSession, MinGamesPerSession, MaxGamesPerSession); err != nil {
		return err
	}
	if err := checkRange("total weeks", l.TotalWeeks, MinTotalWeeks, MaxTotalWeeks); err != nil {
		return err
	}
	if err := ValidateHandicapRules(l.Handicap); err != nil {
		return err
	}
	if l.PointSystem == nil {
		return fmt.Errorf("point system is required")
	}
	if err := l.PointSystem.Validate(); err != nil {
		return err
	}
	switch l.Status {
	case LeagueActive, LeagueCompleted:
	default:
		return fmt.Errorf("invalid league status: %q", l.Status)
	}
	return nil
}

// ValidateStartingAverage checks a bowler's entering average.
func ValidateStartingAverage(avg float64) error {
	if avg < 0 || avg > MaxPins {
		return fmt.Errorf("starting average must be between 0 and %d, got %g", MaxPins, avg)
	}
	return nil
}

// ValidateWeek checks a schedule week number.
func ValidateWeek(week int) error {
	if week < 1 {
		return fmt.Errorf("week must be at least 1, got %d", week)
	}
	return nil
}

// ValidateScore checks one submitted score row against the league's session length.
func ValidateScore(in ScoreInput, gamesPerSession int) error {
	if err := checkRange("game number", in.GameNumber, 1, gamesPerSession); err != nil {
		return err
	}
	return checkRange("score", in.Score, 0, MaxPins)
}
