package standings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tenpin/leaguebook/internal/standings"

// Engine computes derived statistics from the store on every call.
type Engine struct {
	store   repository.Store
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infra.Metrics
}

// NewEngine creates a standings engine. metrics may be nil.
func NewEngine(store repository.Store, logger *slog.Logger, metrics *infra.Metrics) *Engine {
	return &Engine{
		store:   store,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
	}
}

// With returns a copy of the engine that reads through store, typically an
// open transaction.
func (e *Engine) With(store repository.Store) *Engine {
	c := *e
	c.store = store
	return &c
}

// Snapshot is everything derived for one league in a single pass.
type Snapshot struct {
	League         domain.League            `json:"league"`
	Teams          []domain.StandingsEntry  `json:"standings"`
	Individuals    []domain.BowlerWithStats `json:"individual_standings"`
	WeeksCompleted int                      `json:"weeks_completed"`
}

// BowlerWithStats returns nil when the bowler does not exist.
func (e *Engine) BowlerWithStats(ctx context.Context, bowlerID uuid.UUID, league domain.League) (_ *domain.BowlerWithStats, err error) {
	ctx, span := e.start(ctx, "Standings.BowlerWithStats", league.ID, &err)
	defer span.End()
	defer e.observe("bowler_stats", time.Now())

	return e.newRun(league).bowler(ctx, bowlerID)
}

// TeamWithStats returns nil when the team does not exist.
func (e *Engine) TeamWithStats(ctx context.Context, teamID uuid.UUID, league domain.League) (_ *domain.TeamWithStats, err error) {
	ctx, span := e.start(ctx, "Standings.TeamWithStats", league.ID, &err)
	defer span.End()
	defer e.observe("team_stats", time.Now())

	team, err := e.store.Teams().FindByID(ctx, teamID)
	if err != nil || team == nil {
		return nil, err
	}
	stats, err := e.newRun(league).team(ctx, *team)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// LeagueTeams returns every team of the league with its record, in roster order.
func (e *Engine) LeagueTeams(ctx context.Context, league domain.League) (_ []domain.TeamWithStats, err error) {
	ctx, span := e.start(ctx, "Standings.LeagueTeams", league.ID, &err)
	defer span.End()
	defer e.observe("league_teams", time.Now())

	return e.newRun(league).teams(ctx)
}

// TeamStandings ranks the league's teams. A missing league yields an empty list.
func (e *Engine) TeamStandings(ctx context.Context, leagueID uuid.UUID) (_ []domain.StandingsEntry, err error) {
	ctx, span := e.start(ctx, "Standings.TeamStandings", leagueID, &err)
	defer span.End()
	defer e.observe("team_standings", time.Now())

	league, err := e.store.Leagues().FindByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league == nil {
		return []domain.StandingsEntry{}, nil
	}
	records, err := e.newRun(*league).teams(ctx)
	if err != nil {
		return nil, err
	}
	return RankTeams(records, league.Handicap.Enabled), nil
}

// IndividualStandings lists the league's bowlers by average, highest first.
func (e *Engine) IndividualStandings(ctx context.Context, leagueID uuid.UUID) (_ []domain.BowlerWithStats, err error) {
	ctx, span := e.start(ctx, "Standings.IndividualStandings", leagueID, &err)
	defer span.End()
	defer e.observe("individual_standings", time.Now())

	league, err := e.store.Leagues().FindByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league == nil {
		return []domain.BowlerWithStats{}, nil
	}
	return e.newRun(*league).individuals(ctx)
}

// WeeksCompleted is the highest week with a completed game, or 0.
func (e *Engine) WeeksCompleted(ctx context.Context, leagueID uuid.UUID) (int, error) {
	return e.store.Games().MaxCompletedWeek(ctx, leagueID)
}

// Snapshot computes team and individual standings for a league sharing one
// per-call memo.
func (e *Engine) Snapshot(ctx context.Context, league domain.League) (_ *Snapshot, err error) {
	ctx, span := e.start(ctx, "Standings.Snapshot", league.ID, &err)
	defer span.End()
	defer e.observe("snapshot", time.Now())

	r := e.newRun(league)
	records, err := r.teams(ctx)
	if err != nil {
		return nil, err
	}
	individuals, err := r.individuals(ctx)
	if err != nil {
		return nil, err
	}
	weeks, err := e.WeeksCompleted(ctx, league.ID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		League:         league,
		Teams:          RankTeams(records, league.Handicap.Enabled),
		Individuals:    individuals,
		WeeksCompleted: weeks,
	}, nil
}

func (e *Engine) start(ctx context.Context, name string, leagueID uuid.UUID, errp *error) (context.Context, spanEnder) {
	ctx, span := e.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("league.id", leagueID.String())))
	return ctx, spanEnder{span: span, errp: errp}
}

// spanEnder records the named error result on the span before ending it.
type spanEnder struct {
	span trace.Span
	errp *error
}

func (s spanEnder) End() {
	if err := *s.errp; err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (e *Engine) observe(operation string, started time.Time) {
	e.metrics.ObserveStandings(operation, time.Since(started))
}

// run is the scope of one engine call. Its memos must not outlive the call,
// since scores can change between calls.
type run struct {
	e       *Engine
	league  domain.League
	bowlers map[uuid.UUID]*domain.BowlerWithStats
	sheets  map[uuid.UUID][]domain.Score
	games   []domain.Game
	loaded  bool
	warned  map[uuid.UUID]bool
}

func (e *Engine) newRun(league domain.League) *run {
	return &run{
		e:       e,
		league:  league,
		bowlers: make(map[uuid.UUID]*domain.BowlerWithStats),
		sheets:  make(map[uuid.UUID][]domain.Score),
		warned:  make(map[uuid.UUID]bool),
	}
}

// bowler memoizes stats by id. Missing bowlers are memoized as nil.
func (r *run) bowler(ctx context.Context, id uuid.UUID) (*domain.BowlerWithStats, error) {
	if st, ok := r.bowlers[id]; ok {
		return st, nil
	}
	b, err := r.e.store.Bowlers().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bowler %s: %w", id, err)
	}
	if b == nil {
		r.bowlers[id] = nil
		return nil, nil
	}
	scores, err := r.e.store.Scores().ListByBowler(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load scores for bowler %s: %w", id, err)
	}
	st := BowlerStats(*b, scores, r.league.Handicap)
	r.bowlers[id] = &st
	return &st, nil
}

func (r *run) handicap(ctx context.Context, bowlerID uuid.UUID) (int, error) {
	st, err := r.bowler(ctx, bowlerID)
	if err != nil {
		return 0, err
	}
	if st == nil {
		if !r.warned[bowlerID] {
			r.warned[bowlerID] = true
			r.e.logger.WarnContext(ctx, "score references missing bowler, counting no handicap",
				"league_id", r.league.ID, "bowler_id", bowlerID)
		}
		return 0, nil
	}
	return st.Handicap, nil
}

func (r *run) leagueGames(ctx context.Context) ([]domain.Game, error) {
	if !r.loaded {
		games, err := r.e.store.Games().ListByLeague(ctx, r.league.ID)
		if err != nil {
			return nil, fmt.Errorf("load games: %w", err)
		}
		r.games, r.loaded = games, true
	}
	return r.games, nil
}

func (r *run) sheet(ctx context.Context, gameID uuid.UUID) ([]domain.Score, error) {
	if s, ok := r.sheets[gameID]; ok {
		return s, nil
	}
	scores, err := r.e.store.Scores().ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load scores for game %s: %w", gameID, err)
	}
	r.sheets[gameID] = scores
	return scores, nil
}

// lines splits a game's rows by side, keeping recorded order.
func (r *run) lines(ctx context.Context, scores []domain.Score, own, opp uuid.UUID) ([]Line, []Line, error) {
	var mine, theirs []Line
	for _, s := range scores {
		if s.TeamID != own && s.TeamID != opp {
			continue
		}
		hcp, err := r.handicap(ctx, s.BowlerID)
		if err != nil {
			return nil, nil, err
		}
		l := Line{GameNumber: s.GameNumber, Pins: s.Score, Handicap: hcp}
		if s.TeamID == own {
			mine = append(mine, l)
		} else {
			theirs = append(theirs, l)
		}
	}
	return mine, theirs, nil
}

func (r *run) team(ctx context.Context, t domain.Team) (domain.TeamWithStats, error) {
	out := domain.TeamWithStats{Team: t, Bowlers: []domain.BowlerWithStats{}}

	roster, err := r.e.store.Bowlers().ListByTeam(ctx, t.ID)
	if err != nil {
		return out, fmt.Errorf("load roster for team %s: %w", t.ID, err)
	}
	for _, b := range roster {
		st, err := r.bowler(ctx, b.ID)
		if err != nil {
			return out, err
		}
		if st != nil {
			out.Bowlers = append(out.Bowlers, *st)
		}
	}

	games, err := r.leagueGames(ctx)
	if err != nil {
		return out, err
	}
	for _, g := range games {
		if !g.Completed || !g.Involves(t.ID) {
			continue
		}
		if g.IsSelfPlay() {
			r.e.logger.WarnContext(ctx, "skipping game scheduled against itself",
				"league_id", r.league.ID, "game_id", g.ID, "team_id", t.ID)
			continue
		}

		scores, err := r.sheet(ctx, g.ID)
		if err != nil {
			return out, err
		}
		own, opp, err := r.lines(ctx, scores, t.ID, g.Opponent(t.ID))
		if err != nil {
			return out, err
		}

		for _, l := range own {
			out.TotalPins += l.Pins
			out.HandicapPins += l.Handicap
		}

		res := ScoreMatch(r.league.PointSystem, r.league.GamesPerSession, own, opp)
		out.TotalPoints += res.Points
		switch res.Outcome {
		case Win:
			out.Wins++
		case Loss:
			out.Losses++
		default:
			out.Ties++
		}
		out.GamesPlayed++
	}
	return out, nil
}

func (r *run) teams(ctx context.Context) ([]domain.TeamWithStats, error) {
	teams, err := r.e.store.Teams().ListByLeague(ctx, r.league.ID)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	out := make([]domain.TeamWithStats, 0, len(teams))
	for _, t := range teams {
		stats, err := r.team(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	return out, nil
}

func (r *run) individuals(ctx context.Context) ([]domain.BowlerWithStats, error) {
	bowlers, err := r.e.store.Bowlers().ListByLeague(ctx, r.league.ID)
	if err != nil {
		return nil, fmt.Errorf("load bowlers: %w", err)
	}
	out := make([]domain.BowlerWithStats, 0, len(bowlers))
	for _, b := range bowlers {
		st, err := r.bowler(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if st != nil {
			out = append(out, *st)
		}
	}
	return RankBowlers(out), nil
}
