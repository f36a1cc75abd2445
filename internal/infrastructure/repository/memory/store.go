package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nfl-pickem/internal/domain/record"
	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
	"github.com/riskibarqy/nfl-pickem/internal/domain/standing"
	"github.com/riskibarqy/nfl-pickem/internal/domain/store"
	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
	"github.com/riskibarqy/nfl-pickem/internal/domain/user"
)

type pickKey struct {
	userID  int64
	matchID int64
}

// dataset is every table of the in-memory store.
type dataset struct {
	seq       map[string]int64
	teams     []team.Team
	matches   []match.Match
	results   map[int64]match.Result
	standings []standing.WeeklyTeamStanding
	pointer   *season.Pointer
	entries   []season.Entry
	picks     map[pickKey]pick.Pick
	records   []record.WeeklyRecord
	users     []user.User
}

func newDataset() *dataset {
	return &dataset{
		seq:     make(map[string]int64),
		results: make(map[int64]match.Result),
		picks:   make(map[pickKey]pick.Pick),
	}
}

func (d *dataset) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// clone copies every table. Rows are values, so a shallow copy of each
// slice and map is a full snapshot.
func (d *dataset) clone() *dataset {
	out := &dataset{
		seq:       maps.Clone(d.seq),
		teams:     slices.Clone(d.teams),
		matches:   slices.Clone(d.matches),
		results:   maps.Clone(d.results),
		standings: slices.Clone(d.standings),
		entries:   slices.Clone(d.entries),
		picks:     maps.Clone(d.picks),
		records:   slices.Clone(d.records),
		users:     slices.Clone(d.users),
	}
	if d.pointer != nil {
		p := *d.pointer
		out.pointer = &p
	}
	return out
}

// accessor hides whether a repository works on committed data or on the
// snapshot of a running unit of work.
type accessor interface {
	read(fn func(d *dataset))
	write(fn func(d *dataset) error) error
}

// Store is the in-memory backend used when no database is configured and
// in tests. Units of work run one at a time against a snapshot that
// replaces the committed data only when the work succeeds.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset
}

func NewStore(teams []team.Team) *Store {
	s := &Store{data: newDataset()}
	if len(teams) > 0 {
		_, _ = s.Repositories().Teams.Seed(context.Background(), teams)
	}
	return s
}

// Repositories returns repositories over the committed data.
func (s *Store) Repositories() store.Repositories {
	return bind(committed{s: s})
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, bind(&txView{data: snapshot})); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
	return nil
}

func bind(acc accessor) store.Repositories {
	return store.Repositories{
		Teams:     &TeamRepository{acc: acc},
		Matches:   &MatchRepository{acc: acc},
		Standings: &StandingRepository{acc: acc},
		Seasons:   &SeasonRepository{acc: acc},
		Picks:     &PickRepository{acc: acc},
		Records:   &RecordRepository{acc: acc},
		Users:     &UserRepository{acc: acc},
	}
}

type committed struct {
	s *Store
}

func (c committed) read(fn func(d *dataset)) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	fn(c.s.data)
}

// write waits for any running unit of work so its commit cannot discard
// this change.
func (c committed) write(fn func(d *dataset) error) error {
	c.s.txMu.Lock()
	defer c.s.txMu.Unlock()
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return fn(c.s.data)
}

type txView struct {
	data *dataset
}

func (t *txView) read(fn func(d *dataset)) {
	fn(t.data)
}

func (t *txView) write(fn func(d *dataset) error) error {
	return fn(t.data)
}
