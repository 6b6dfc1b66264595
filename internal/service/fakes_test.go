package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/ContentWarnings/Backend/internal/event"
	"github.com/ContentWarnings/Backend/internal/model"
	"github.com/ContentWarnings/Backend/internal/repository"
)

// In-memory stores standing in for the pgx repositories. They copy records
// in and out so tests observe only what was persisted.

type memWarnings struct {
	mu   sync.Mutex
	data map[string]*model.Warning
}

func newMemWarnings() *memWarnings {
	return &memWarnings{data: map[string]*model.Warning{}}
}

func copyWarning(w *model.Warning) *model.Warning {
	cp := *w
	cp.Intervals = append([]model.Interval{}, w.Intervals...)
	cp.Upvoters = model.NewVoterSet(w.Upvoters.Slice()...)
	cp.Downvoters = model.NewVoterSet(w.Downvoters.Slice()...)
	return &cp
}

func (m *memWarnings) Get(_ context.Context, id string) (*model.Warning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.data[id]
	if !ok {
		return nil, repository.WrapError(repository.ErrNotFound, "get warning")
	}
	return copyWarning(w), nil
}

func (m *memWarnings) Create(_ context.Context, w *model.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[w.ID]; ok {
		return repository.WrapError(repository.ErrDuplicateKey, "create warning")
	}
	m.data[w.ID] = copyWarning(w)
	return nil
}

func (m *memWarnings) Put(_ context.Context, w *model.Warning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[w.ID] = copyWarning(w)
	return nil
}

func (m *memWarnings) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	delete(m.data, id)
	return ok, nil
}

func (m *memWarnings) Existing(_ context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.data[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memWarnings) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[id]
	return ok
}

type memMovies struct {
	mu   sync.Mutex
	data map[int64][]string
}

func newMemMovies() *memMovies {
	return &memMovies{data: map[int64][]string{}}
}

func (m *memMovies) Get(_ context.Context, movieID int64) (*model.MovieIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, ok := m.data[movieID]
	if !ok {
		return nil, repository.WrapError(repository.ErrNotFound, "get movie index")
	}
	return &model.MovieIndex{MovieID: movieID, WarningIDs: append([]string{}, ids...)}, nil
}

func (m *memMovies) Put(_ context.Context, idx *model.MovieIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[idx.MovieID] = append([]string{}, idx.WarningIDs...)
	return nil
}

func (m *memMovies) ids(movieID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.data[movieID]...)
}

type memContributors struct {
	mu   sync.Mutex
	data map[string][]string
}

func newMemContributors() *memContributors {
	return &memContributors{data: map[string][]string{}}
}

func (m *memContributors) Get(_ context.Context, id string) (*model.Contributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned, ok := m.data[id]
	if !ok {
		return nil, repository.WrapError(repository.ErrNotFound, "get contributor")
	}
	return &model.Contributor{ContributorID: id, OwnedWarningIDs: append([]string{}, owned...)}, nil
}

func (m *memContributors) Put(_ context.Context, c *model.Contributor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[c.ContributorID] = append([]string{}, c.OwnedWarningIDs...)
	return nil
}

func (m *memContributors) owned(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string{}, m.data[id]...)
	sort.Strings(out)
	return out
}

type memLedgers struct {
	mu   sync.Mutex
	data map[string]model.ContributionLedger
}

func newMemLedgers() *memLedgers {
	return &memLedgers{data: map[string]model.ContributionLedger{}}
}

func (m *memLedgers) Get(_ context.Context, id string) (*model.ContributionLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.data[id]
	if !ok {
		return nil, repository.WrapError(repository.ErrNotFound, "get ledger")
	}
	return &l, nil
}

// Put keeps the low-trust flag sticky like the SQL upsert does.
func (m *memLedgers) Put(_ context.Context, l *model.ContributionLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	if prev, ok := m.data[l.ContributorID]; ok && prev.IsLowTrust {
		cp.IsLowTrust = true
	}
	m.data[l.ContributorID] = cp
	return nil
}

func (m *memLedgers) get(id string) model.ContributionLedger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[id]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// mockMovieStore lets tests inject movie index failures.
type mockMovieStore struct {
	mock.Mock
}

func (m *mockMovieStore) Get(ctx context.Context, movieID int64) (*model.MovieIndex, error) {
	args := m.Called(ctx, movieID)
	idx, _ := args.Get(0).(*model.MovieIndex)
	return idx, args.Error(1)
}

func (m *mockMovieStore) Put(ctx context.Context, idx *model.MovieIndex) error {
	args := m.Called(ctx, idx)
	return args.Error(0)
}

// mockWarningStore lets tests inject warning store failures.
type mockWarningStore struct {
	mock.Mock
}

func (m *mockWarningStore) Get(ctx context.Context, id string) (*model.Warning, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*model.Warning)
	return w, args.Error(1)
}

func (m *mockWarningStore) Create(ctx context.Context, w *model.Warning) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockWarningStore) Put(ctx context.Context, w *model.Warning) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockWarningStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockWarningStore) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).(map[string]bool)
	return out, args.Error(1)
}

// testEnv wires every service over in-memory stores.
type testEnv struct {
	warnings     *memWarnings
	movies       *memMovies
	contributors *memContributors
	ledgers      *memLedgers
	events       *recordingPublisher

	trust        *TrustService
	cascade      *CascadeService
	ledger       *LedgerService
	votes        *VoteService
	warningSvc   *WarningService
	contributorS *ContributorService
}

func newTestEnv(screen ContentScreen) *testEnv {
	log := zerolog.Nop()
	cache := &CacheService{log: log}

	env := &testEnv{
		warnings:     newMemWarnings(),
		movies:       newMemMovies(),
		contributors: newMemContributors(),
		ledgers:      newMemLedgers(),
		events:       &recordingPublisher{},
		trust:        NewTrustService(),
	}
	env.cascade = NewCascadeService(env.warnings, env.movies, env.contributors, cache, env.events, log)
	env.ledger = NewLedgerService(env.warnings, env.contributors, env.ledgers, env.trust, env.events, log)
	env.votes = NewVoteService(env.warnings, env.trust, env.cascade, cache, log)
	env.warningSvc = NewWarningService(env.warnings, env.movies, env.ledger, env.cascade, screen, cache, log)
	env.contributorS = NewContributorService(env.warnings, env.ledger, log)
	return env
}

func content(movieID int64, c model.Classification) model.WarningContent {
	return model.WarningContent{
		Classification: c,
		MovieID:        movieID,
		Intervals:      []model.Interval{{Start: 10, End: 20}},
		Description:    "a scene",
	}
}

// submit creates a warning under a fixed server-assigned id and fails the
// test on error.
func (e *testEnv) submit(t testing.TB, id string, movieID int64, owner string) {
	t.Helper()
	prev := e.warningSvc.newID
	e.warningSvc.newID = func() string { return id }
	defer func() { e.warningSvc.newID = prev }()
	if _, err := e.warningSvc.Submit(context.Background(), content(movieID, "Gore"), owner); err != nil {
		t.Fatalf("submit %s: %v", id, err)
	}
}
