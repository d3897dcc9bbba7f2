package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
)

// ScheduleService manages games and their score sheets.
type ScheduleService struct {
	store   repository.Store
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewScheduleService creates a ScheduleService. metrics may be nil.
func NewScheduleService(store repository.Store, metrics *infra.Metrics, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{store: store, metrics: metrics, logger: logger}
}

// CreateGame schedules a match between two different teams of the league.
func (s *ScheduleService) CreateGame(ctx context.Context, in domain.GameInput) (*domain.Game, error) {
	if err := domain.ValidateWeek(in.Week); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if in.Team1ID == in.Team2ID {
		return nil, domain.ErrValidation("a team cannot play itself")
	}
	if _, err := findLeague(ctx, s.store, in.LeagueID); err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{in.Team1ID, in.Team2ID} {
		team, err := s.store.Teams().FindByID(ctx, id)
		if err != nil {
			return nil, wrapErr("find team", err)
		}
		if team == nil || team.LeagueID != in.LeagueID {
			return nil, domain.ErrValidation(fmt.Sprintf("team %s is not in league %s", id, in.LeagueID))
		}
	}

	game := domain.Game{
		ID:        uuid.New(),
		LeagueID:  in.LeagueID,
		Week:      in.Week,
		Team1ID:   in.Team1ID,
		Team2ID:   in.Team2ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Games().Create(ctx, &game); err != nil {
		return nil, wrapErr("create game", err)
	}
	return &game, nil
}

// GameSheet is a game with its recorded score rows.
type GameSheet struct {
	Game   domain.Game    `json:"game"`
	Scores []domain.Score `json:"scores"`
}

// Game returns a game with its score rows in submission order.
func (s *ScheduleService) Game(ctx context.Context, id uuid.UUID) (*GameSheet, error) {
	game, err := findGame(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.Scores().ListByGame(ctx, id)
	if err != nil {
		return nil, wrapErr("list scores", err)
	}
	return &GameSheet{Game: *game, Scores: orEmpty(scores)}, nil
}

// DeleteGame removes a game and its scores.
func (s *ScheduleService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Games().Delete(ctx, id)
	if err != nil {
		return wrapErr("delete game", err)
	}
	if !deleted {
		return domain.ErrNotFound("game", id.String())
	}
	return nil
}

// SubmitResult reports what a score submission changed.
type SubmitResult struct {
	Success  bool  `json:"success"`
	Replaced int64 `json:"replaced"`
	Inserted int   `json:"inserted"`
}

// SubmitScores replaces every score of a game with rows and marks the game
// completed. The batch is validated in full before anything is written and
// applied in one transaction; an empty batch clears the sheet.
func (s *ScheduleService) SubmitScores(ctx context.Context, gameID uuid.UUID, rows []domain.ScoreInput) (*SubmitResult, error) {
	var result SubmitResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		game, err := findGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if game.IsSelfPlay() {
			return domain.ErrValidation("game " + game.ID.String() + " has the same team on both sides")
		}
		league, err := findLeague(ctx, tx, game.LeagueID)
		if err != nil {
			return err
		}

		scores, err := validateSheet(ctx, tx, *game, league.GamesPerSession, rows)
		if err != nil {
			return err
		}

		if result.Replaced, err = tx.Scores().DeleteByGame(ctx, gameID); err != nil {
			return err
		}
		if len(scores) > 0 {
			if err := tx.Scores().InsertMany(ctx, scores); err != nil {
				return err
			}
		}
		if err := tx.Games().SetCompleted(ctx, gameID, true); err != nil {
			return err
		}
		result.Inserted = len(scores)
		return tx.Outbox().Insert(ctx, domain.NewScoresSubmittedEvent(*game, len(scores)))
	})
	if err != nil {
		s.metrics.CountScoreSubmission("rejected")
		return nil, wrapErr("submit scores", err)
	}

	s.metrics.CountScoreSubmission("ok")
	s.logger.Info("scores submitted",
		"game_id", gameID,
		"replaced", result.Replaced,
		"inserted", result.Inserted,
	)
	result.Success = true
	return &result, nil
}

// validateSheet checks every row against the game and builds the rows to store.
func validateSheet(ctx context.Context, store repository.Store, game domain.Game, gamesPerSession int, rows []domain.ScoreInput) ([]domain.Score, error) {
	type slot struct {
		bowler uuid.UUID
		number int
	}
	seen := make(map[slot]bool, len(rows))
	bowlers := make(map[uuid.UUID]*domain.Bowler)
	scores := make([]domain.Score, 0, len(rows))

	for i, in := range rows {
		if err := domain.ValidateScore(in, gamesPerSession); err != nil {
			return nil, domain.ErrValidation(fmt.Sprintf("row %d: %s", i+1, err))
		}
		if !game.Involves(in.TeamID) {
			return nil, domain.ErrValidation(fmt.Sprintf("row %d: team %s is not part of game %s", i+1, in.TeamID, game.ID))
		}

		bowler, ok := bowlers[in.BowlerID]
		if !ok {
			var err error
			if bowler, err = store.Bowlers().FindByID(ctx, in.BowlerID); err != nil {
				return nil, err
			}
			bowlers[in.BowlerID] = bowler
		}
		if bowler == nil {
			return nil, domain.ErrValidation(fmt.Sprintf("row %d: bowler %s does not exist", i+1, in.BowlerID))
		}
		if bowler.TeamID != in.TeamID {
			return nil, domain.ErrValidation(fmt.Sprintf("row %d: bowler %s is not on team %s", i+1, bowler.Name, in.TeamID))
		}

		key := slot{in.BowlerID, in.GameNumber}
		if seen[key] {
			return nil, domain.ErrValidation(fmt.Sprintf("row %d: duplicate score for bowler %s game %d", i+1, bowler.Name, in.GameNumber))
		}
		seen[key] = true

		scores = append(scores, domain.Score{
			ID:         uuid.New(),
			GameID:     game.ID,
			BowlerID:   in.BowlerID,
			TeamID:     in.TeamID,
			GameNumber: in.GameNumber,
			Score:      in.Score,
		})
	}
	return scores, nil
}

func findGame(ctx context.Context, store repository.Store, id uuid.UUID) (*domain.Game, error) {
	game, err := store.Games().FindByID(ctx, id)
	if err != nil {
		return nil, wrapErr("find game", err)
	}
	if game == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	return game, nil
}
