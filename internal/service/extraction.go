package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/guard"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
)

const extractionCircuit = "extraction"

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Extractor reads rosters and score sheets from base64 encoded photos.
type Extractor interface {
	ExtractRoster(ctx context.Context, image string) (*domain.RosterExtraction, error)
	ExtractScores(ctx context.Context, image string, bowlerNames []string) (*domain.ScoreSheetExtraction, error)
}

// ExtractionService guards calls to the extraction model and matches score
// sheets against game rosters.
type ExtractionService struct {
	extractor Extractor
	store     repository.Store
	limiter   *guard.RateLimiter
	breaker   *guard.CircuitBreaker
	metrics   *infra.Metrics
	logger    *slog.Logger
}

// NewExtractionService creates an ExtractionService. A nil extractor makes
// every call fail as unavailable.
func NewExtractionService(
	extractor Extractor,
	store repository.Store,
	limiter *guard.RateLimiter,
	breaker *guard.CircuitBreaker,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		store:     store,
		limiter:   limiter,
		breaker:   breaker,
		metrics:   metrics,
		logger:    logger,
	}
}

// ScoreExtraction is an extracted score sheet, merged with a game's rosters
// when a game was given.
type ScoreExtraction struct {
	Sheet domain.ScoreSheetExtraction `json:"sheet"`
	Merge *domain.ScoreSheetMerge     `json:"merge,omitempty"`
}

// ExtractRoster reads a team sheet photo. client keys the rate limit.
func (s *ExtractionService) ExtractRoster(ctx context.Context, client, image string) (*domain.RosterExtraction, error) {
	image, err := s.admit(ctx, client, image)
	if err != nil {
		s.metrics.CountExtraction("roster", "rejected")
		return nil, err
	}

	var roster *domain.RosterExtraction
	err = s.breaker.Execute(ctx, extractionCircuit, func(ctx context.Context) error {
		var err error
		roster, err = s.extractor.ExtractRoster(ctx, image)
		return err
	})
	if err != nil {
		s.metrics.CountExtraction("roster", "error")
		s.logger.Warn("roster extraction failed", "client", client, "error", err)
		return nil, wrapUpstream(err)
	}
	roster.Bowlers = orEmpty(roster.Bowlers)
	s.metrics.CountExtraction("roster", "ok")
	return roster, nil
}

// ExtractScores reads a score sheet photo. With a game id the known bowlers
// of both teams are passed to the model and the result is merged.
func (s *ExtractionService) ExtractScores(ctx context.Context, client, image string, bowlerNames []string, gameID *uuid.UUID) (*ScoreExtraction, error) {
	image, err := s.admit(ctx, client, image)
	if err != nil {
		s.metrics.CountExtraction("scores", "rejected")
		return nil, err
	}

	var (
		roster []domain.Bowler
		gps    int
	)
	if gameID != nil {
		if roster, gps, err = s.gameRoster(ctx, *gameID); err != nil {
			s.metrics.CountExtraction("scores", "rejected")
			return nil, err
		}
		if len(bowlerNames) == 0 {
			for _, b := range roster {
				bowlerNames = append(bowlerNames, b.Name)
			}
		}
	}

	var sheet *domain.ScoreSheetExtraction
	err = s.breaker.Execute(ctx, extractionCircuit, func(ctx context.Context) error {
		var err error
		sheet, err = s.extractor.ExtractScores(ctx, image, bowlerNames)
		return err
	})
	if err != nil {
		s.metrics.CountExtraction("scores", "error")
		s.logger.Warn("score extraction failed", "client", client, "error", err)
		return nil, wrapUpstream(err)
	}
	sheet.Scores = orEmpty(sheet.Scores)
	s.metrics.CountExtraction("scores", "ok")

	out := &ScoreExtraction{Sheet: *sheet}
	if gameID != nil {
		merged := MergeScoreSheet(*gameID, *sheet, roster, gps)
		out.Merge = &merged
	}
	return out, nil
}

// admit checks configuration, input and the caller's rate limit.
func (s *ExtractionService) admit(ctx context.Context, client, image string) (string, error) {
	if s.extractor == nil {
		return "", domain.ErrUnavailable("image extraction is not configured", nil)
	}
	image = strings.TrimSpace(dataURLPrefix.ReplaceAllString(image, ""))
	if image == "" {
		return "", domain.ErrValidation("image is required")
	}
	if res := s.limiter.Check(ctx, client); !res.Allowed {
		return "", domain.ErrRateLimited(res.Reason)
	}
	return image, nil
}

func (s *ExtractionService) gameRoster(ctx context.Context, gameID uuid.UUID) ([]domain.Bowler, int, error) {
	game, err := findGame(ctx, s.store, gameID)
	if err != nil {
		return nil, 0, err
	}
	league, err := findLeague(ctx, s.store, game.LeagueID)
	if err != nil {
		return nil, 0, err
	}
	var roster []domain.Bowler
	for _, teamID := range []uuid.UUID{game.Team1ID, game.Team2ID} {
		bowlers, err := s.store.Bowlers().ListByTeam(ctx, teamID)
		if err != nil {
			return nil, 0, wrapErr("list bowlers", err)
		}
		roster = append(roster, bowlers...)
	}
	return roster, league.GamesPerSession, nil
}

func wrapUpstream(err error) error {
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	return domain.ErrUnavailable("image extraction failed", err)
}
