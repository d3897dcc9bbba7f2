package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/domain"
)

// ErrMissingReference is returned by the memory store where Postgres would
// raise a foreign key violation.
var ErrMissingReference = errors.New("referenced row does not exist")

// memData is one consistent snapshot of every table. Slices keep insertion
// order, which is the order lists are returned in.
type memData struct {
	leagues []domain.League
	teams   []domain.Team
	bowlers []domain.Bowler
	games   []domain.Game
	scores  []domain.Score
	outbox  []domain.OutboxRecord
	nextSeq int64
}

func (d *memData) clone() *memData {
	return &memData{
		leagues: slices.Clone(d.leagues),
		teams:   slices.Clone(d.teams),
		bowlers: slices.Clone(d.bowlers),
		games:   slices.Clone(d.games),
		scores:  slices.Clone(d.scores),
		outbox:  slices.Clone(d.outbox),
		nextSeq: d.nextSeq,
	}
}

type memRoot struct {
	writeMu sync.Mutex   // one writer (plain write or transaction) at a time
	mu      sync.RWMutex // guards the data pointer and in-place writes
	data    *memData
}

// MemoryStore is an in-process Store. Transactions run against a private
// copy that replaces the shared snapshot only on success, so readers see
// either all of a transaction's writes or none of them.
//
// Inside WithinTx, use only the Store passed to fn; writing through the
// outer store from there deadlocks.
type MemoryStore struct {
	root *memRoot
	view *memData // non-nil inside a transaction
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: &memRoot{data: &memData{}}}
}

func (s *MemoryStore) Leagues() LeagueRepository { return memLeagues{s} }
func (s *MemoryStore) Teams() TeamRepository     { return memTeams{s} }
func (s *MemoryStore) Bowlers() BowlerRepository { return memBowlers{s} }
func (s *MemoryStore) Games() GameRepository     { return memGames{s} }
func (s *MemoryStore) Scores() ScoreRepository   { return memScores{s} }
func (s *MemoryStore) Outbox() OutboxRepository  { return memOutbox{s} }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.view != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.root.writeMu.Lock()
	defer s.root.writeMu.Unlock()

	s.root.mu.RLock()
	working := s.root.data.clone()
	s.root.mu.RUnlock()

	if err := fn(&MemoryStore{root: s.root, view: working}); err != nil {
		return err
	}

	s.root.mu.Lock()
	s.root.data = working
	s.root.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) read(fn func(d *memData)) {
	if s.view != nil {
		fn(s.view)
		return
	}
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	fn(s.root.data)
}

// write applies fn in place. Outside a transaction fn must check everything
// before it mutates, since there is nothing to roll back.
func (s *MemoryStore) write(fn func(d *memData) error) error {
	if s.view != nil {
		return fn(s.view)
	}
	s.root.writeMu.Lock()
	defer s.root.writeMu.Unlock()
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	return fn(s.root.data)
}

func indexOf[T any](items []T, match func(T) bool) int {
	return slices.IndexFunc(items, match)
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (d *memData) hasLeague(id uuid.UUID) bool {
	return indexOf(d.leagues, func(l domain.League) bool { return l.ID == id }) >= 0
}

func (d *memData) hasTeam(id uuid.UUID) bool {
	return indexOf(d.teams, func(t domain.Team) bool { return t.ID == id }) >= 0
}

func (d *memData) hasBowler(id uuid.UUID) bool {
	return indexOf(d.bowlers, func(b domain.Bowler) bool { return b.ID == id }) >= 0
}

func (d *memData) hasGame(id uuid.UUID) bool {
	return indexOf(d.games, func(g domain.Game) bool { return g.ID == id }) >= 0
}

func (d *memData) deleteGame(id uuid.UUID) bool {
	before := len(d.games)
	d.games = slices.DeleteFunc(d.games, func(g domain.Game) bool { return g.ID == id })
	d.scores = slices.DeleteFunc(d.scores, func(s domain.Score) bool { return s.GameID == id })
	return len(d.games) < before
}

func (d *memData) deleteBowler(id uuid.UUID) bool {
	before := len(d.bowlers)
	d.bowlers = slices.DeleteFunc(d.bowlers, func(b domain.Bowler) bool { return b.ID == id })
	d.scores = slices.DeleteFunc(d.scores, func(s domain.Score) bool { return s.BowlerID == id })
	return len(d.bowlers) < before
}

func (d *memData) deleteTeam(id uuid.UUID) bool {
	for _, b := range filter(d.bowlers, func(b domain.Bowler) bool { return b.TeamID == id }) {
		d.deleteBowler(b.ID)
	}
	for _, g := range filter(d.games, func(g domain.Game) bool { return g.Involves(id) }) {
		d.deleteGame(g.ID)
	}
	d.scores = slices.DeleteFunc(d.scores, func(s domain.Score) bool { return s.TeamID == id })
	before := len(d.teams)
	d.teams = slices.DeleteFunc(d.teams, func(t domain.Team) bool { return t.ID == id })
	return len(d.teams) < before
}

func (d *memData) deleteLeague(id uuid.UUID) bool {
	for _, t := range filter(d.teams, func(t domain.Team) bool { return t.LeagueID == id }) {
		d.deleteTeam(t.ID)
	}
	for _, g := range filter(d.games, func(g domain.Game) bool { return g.LeagueID == id }) {
		d.deleteGame(g.ID)
	}
	d.bowlers = slices.DeleteFunc(d.bowlers, func(b domain.Bowler) bool { return b.LeagueID == id })
	before := len(d.leagues)
	d.leagues = slices.DeleteFunc(d.leagues, func(l domain.League) bool { return l.ID == id })
	return len(d.leagues) < before
}

// --- leagues ---

type memLeagues struct{ s *MemoryStore }

func (r memLeagues) List(_ context.Context) ([]domain.League, error) {
	var out []domain.League
	r.s.read(func(d *memData) { out = slices.Clone(d.leagues) })
	return out, nil
}

func (r memLeagues) FindByID(_ context.Context, id uuid.UUID) (*domain.League, error) {
	var found *domain.League
	r.s.read(func(d *memData) {
		if i := indexOf(d.leagues, func(l domain.League) bool { return l.ID == id }); i >= 0 {
			l := d.leagues[i]
			found = &l
		}
	})
	return found, nil
}

func (r memLeagues) Create(_ context.Context, l *domain.League) error {
	return r.s.write(func(d *memData) error {
		if d.hasLeague(l.ID) {
			return domain.ErrConflict(fmt.Sprintf("league %s already exists", l.ID))
		}
		d.leagues = append(d.leagues, *l)
		return nil
	})
}

func (r memLeagues) Update(_ context.Context, l *domain.League) error {
	return r.s.write(func(d *memData) error {
		i := indexOf(d.leagues, func(x domain.League) bool { return x.ID == l.ID })
		if i < 0 {
			return domain.ErrNotFound("league", l.ID.String())
		}
		l.CreatedAt = d.leagues[i].CreatedAt
		d.leagues[i] = *l
		return nil
	})
}

func (r memLeagues) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.s.write(func(d *memData) error {
		deleted = d.deleteLeague(id)
		return nil
	})
	return deleted, err
}

// --- teams ---

type memTeams struct{ s *MemoryStore }

func (r memTeams) ListAll(_ context.Context) ([]domain.Team, error) {
	var out []domain.Team
	r.s.read(func(d *memData) { out = slices.Clone(d.teams) })
	return out, nil
}

func (r memTeams) ListByLeague(_ context.Context, leagueID uuid.UUID) ([]domain.Team, error) {
	var out []domain.Team
	r.s.read(func(d *memData) {
		out = filter(d.teams, func(t domain.Team) bool { return t.LeagueID == leagueID })
	})
	return out, nil
}

func (r memTeams) FindByID(_ context.Context, id uuid.UUID) (*domain.Team, error) {
	var found *domain.Team
	r.s.read(func(d *memData) {
		if i := indexOf(d.teams, func(t domain.Team) bool { return t.ID == id }); i >= 0 {
			t := d.teams[i]
			found = &t
		}
	})
	return found, nil
}

func (r memTeams) Create(_ context.Context, t *domain.Team) error {
	return r.s.write(func(d *memData) error {
		if !d.hasLeague(t.LeagueID) {
			return fmt.Errorf("insert team: league %s: %w", t.LeagueID, ErrMissingReference)
		}
		if d.hasTeam(t.ID) {
			return domain.ErrConflict(fmt.Sprintf("team %s already exists", t.ID))
		}
		d.teams = append(d.teams, *t)
		return nil
	})
}

func (r memTeams) Update(_ context.Context, t *domain.Team) error {
	return r.s.write(func(d *memData) error {
		i := indexOf(d.teams, func(x domain.Team) bool { return x.ID == t.ID })
		if i < 0 {
			return domain.ErrNotFound("team", t.ID.String())
		}
		d.teams[i].Name = t.Name
		return nil
	})
}

func (r memTeams) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.s.write(func(d *memData) error {
		deleted = d.deleteTeam(id)
		return nil
	})
	return deleted, err
}

// --- bowlers ---

type memBowlers struct{ s *MemoryStore }

func (r memBowlers) ListAll(_ context.Context) ([]domain.Bowler, error) {
	var out []domain.Bowler
	r.s.read(func(d *memData) { out = slices.Clone(d.bowlers) })
	return out, nil
}

func (r memBowlers) ListByLeague(_ context.Context, leagueID uuid.UUID) ([]domain.Bowler, error) {
	var out []domain.Bowler
	r.s.read(func(d *memData) {
		out = filter(d.bowlers, func(b domain.Bowler) bool { return b.LeagueID == leagueID })
	})
	return out, nil
}

func (r memBowlers) ListByTeam(_ context.Context, teamID uuid.UUID) ([]domain.Bowler, error) {
	var out []domain.Bowler
	r.s.read(func(d *memData) {
		out = filter(d.bowlers, func(b domain.Bowler) bool { return b.TeamID == teamID })
	})
	return out, nil
}

func (r memBowlers) FindByID(_ context.Context, id uuid.UUID) (*domain.Bowler, error) {
	var found *domain.Bowler
	r.s.read(func(d *memData) {
		if i := indexOf(d.bowlers, func(b domain.Bowler) bool { return b.ID == id }); i >= 0 {
			b := d.bowlers[i]
			found = &b
		}
	})
	return found, nil
}

func (r memBowlers) Create(_ context.Context, b *domain.Bowler) error {
	return r.s.write(func(d *memData) error {
		if !d.hasTeam(b.TeamID) || !d.hasLeague(b.LeagueID) {
			return fmt.Errorf("insert bowler: team %s: %w", b.TeamID, ErrMissingReference)
		}
		if d.hasBowler(b.ID) {
			return domain.ErrConflict(fmt.Sprintf("bowler %s already exists", b.ID))
		}
		d.bowlers = append(d.bowlers, *b)
		return nil
	})
}

func (r memBowlers) Update(_ context.Context, b *domain.Bowler) error {
	return r.s.write(func(d *memData) error {
		i := indexOf(d.bowlers, func(x domain.Bowler) bool { return x.ID == b.ID })
		if i < 0 {
			return domain.ErrNotFound("bowler", b.ID.String())
		}
		if !d.hasTeam(b.TeamID) || !d.hasLeague(b.LeagueID) {
			return fmt.Errorf("update bowler: team %s: %w", b.TeamID, ErrMissingReference)
		}
		b.CreatedAt = d.bowlers[i].CreatedAt
		d.bowlers[i] = *b
		return nil
	})
}

func (r memBowlers) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.s.write(func(d *memData) error {
		deleted = d.deleteBowler(id)
		return nil
	})
	return deleted, err
}

// --- games ---

type memGames struct{ s *MemoryStore }

func (r memGames) ListByLeague(_ context.Context, leagueID uuid.UUID) ([]domain.Game, error) {
	var out []domain.Game
	r.s.read(func(d *memData) {
		out = filter(d.games, func(g domain.Game) bool { return g.LeagueID == leagueID })
	})
	// Match the Postgres ordering: week, then creation order.
	slices.SortStableFunc(out, func(a, b domain.Game) int { return a.Week - b.Week })
	return out, nil
}

func (r memGames) FindByID(_ context.Context, id uuid.UUID) (*domain.Game, error) {
	var found *domain.Game
	r.s.read(func(d *memData) {
		if i := indexOf(d.games, func(g domain.Game) bool { return g.ID == id }); i >= 0 {
			g := d.games[i]
			found = &g
		}
	})
	return found, nil
}

func (r memGames) Create(_ context.Context, g *domain.Game) error {
	return r.s.write(func(d *memData) error {
		if !d.hasLeague(g.LeagueID) || !d.hasTeam(g.Team1ID) || !d.hasTeam(g.Team2ID) {
			return fmt.Errorf("insert game: %w", ErrMissingReference)
		}
		if d.hasGame(g.ID) {
			return domain.ErrConflict(fmt.Sprintf("game %s already exists", g.ID))
		}
		d.games = append(d.games, *g)
		return nil
	})
}

func (r memGames) SetCompleted(_ context.Context, id uuid.UUID, completed bool) error {
	return r.s.write(func(d *memData) error {
		i := indexOf(d.games, func(g domain.Game) bool { return g.ID == id })
		if i < 0 {
			return domain.ErrNotFound("game", id.String())
		}
		d.games[i].Completed = completed
		return nil
	})
}

func (r memGames) MaxCompletedWeek(_ context.Context, leagueID uuid.UUID) (int, error) {
	week := 0
	r.s.read(func(d *memData) {
		for _, g := range d.games {
			if g.LeagueID == leagueID && g.Completed && g.Week > week {
				week = g.Week
			}
		}
	})
	return week, nil
}

func (r memGames) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.s.write(func(d *memData) error {
		deleted = d.deleteGame(id)
		return nil
	})
	return deleted, err
}

// --- scores ---

type memScores struct{ s *MemoryStore }

func (r memScores) ListByGame(_ context.Context, gameID uuid.UUID) ([]domain.Score, error) {
	var out []domain.Score
	r.s.read(func(d *memData) {
		out = filter(d.scores, func(s domain.Score) bool { return s.GameID == gameID })
	})
	return out, nil
}

func (r memScores) ListByBowler(_ context.Context, bowlerID uuid.UUID) ([]domain.Score, error) {
	var out []domain.Score
	r.s.read(func(d *memData) {
		out = filter(d.scores, func(s domain.Score) bool { return s.BowlerID == bowlerID })
	})
	return out, nil
}

func (r memScores) ListByLeague(_ context.Context, leagueID uuid.UUID) ([]domain.Score, error) {
	var out []domain.Score
	r.s.read(func(d *memData) {
		games := make(map[uuid.UUID]bool)
		for _, g := range d.games {
			if g.LeagueID == leagueID {
				games[g.ID] = true
			}
		}
		out = filter(d.scores, func(s domain.Score) bool { return games[s.GameID] })
	})
	return out, nil
}

type scoreKey struct {
	game, bowler uuid.UUID
	number       int
}

func (r memScores) InsertMany(_ context.Context, scores []domain.Score) error {
	if len(scores) == 0 {
		return nil
	}
	return r.s.write(func(d *memData) error {
		seen := make(map[scoreKey]bool, len(d.scores)+len(scores))
		for _, s := range d.scores {
			seen[scoreKey{s.GameID, s.BowlerID, s.GameNumber}] = true
		}
		for _, s := range scores {
			if !d.hasGame(s.GameID) || !d.hasBowler(s.BowlerID) || !d.hasTeam(s.TeamID) {
				return fmt.Errorf("insert score: %w", ErrMissingReference)
			}
			k := scoreKey{s.GameID, s.BowlerID, s.GameNumber}
			if seen[k] {
				return domain.ErrConflict(fmt.Sprintf("bowler %s already has a score for game %d", s.BowlerID, s.GameNumber))
			}
			seen[k] = true
		}
		d.scores = append(d.scores, scores...)
		return nil
	})
}

func (r memScores) DeleteByGame(_ context.Context, gameID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.write(func(d *memData) error {
		before := len(d.scores)
		d.scores = slices.DeleteFunc(d.scores, func(s domain.Score) bool { return s.GameID == gameID })
		n = int64(before - len(d.scores))
		return nil
	})
	return n, err
}

// --- outbox ---

type memOutbox struct{ s *MemoryStore }

func (r memOutbox) Insert(_ context.Context, draft domain.OutboxDraft) error {
	return r.s.write(func(d *memData) error {
		d.nextSeq++
		d.outbox = append(d.outbox, domain.OutboxRecord{SeqID: d.nextSeq, OutboxDraft: draft})
		return nil
	})
}

func (r memOutbox) FetchUnpublished(_ context.Context, limit int) ([]domain.OutboxRecord, error) {
	var out []domain.OutboxRecord
	r.s.read(func(d *memData) {
		n := min(max(limit, 0), len(d.outbox))
		out = slices.Clone(d.outbox[:n])
	})
	return out, nil
}

func (r memOutbox) MarkPublished(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.s.write(func(d *memData) error {
		d.outbox = slices.DeleteFunc(d.outbox, func(rec domain.OutboxRecord) bool {
			return slices.Contains(ids, rec.SeqID)
		})
		return nil
	})
}
