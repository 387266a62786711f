package mediator

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/holonet/internal/database"
	"github.com/mrlokans/holonet/internal/database/items"
	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/swapi"
)

type fakeRemote struct {
	mu      sync.Mutex
	pages   map[string]*swapi.Page
	err     error
	calls   []string
	onFetch func(ctx context.Context)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{pages: make(map[string]*swapi.Page)}
}

func (f *fakeRemote) FetchPage(ctx context.Context, label entities.Label, cursor string, pageSize int) (*swapi.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cursor)
	page, err, hook := f.pages[cursor], f.err, f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, &swapi.ProtocolError{Msg: "no page for cursor " + cursor}
	}
	return page, nil
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) cursors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	last map[entities.Label]time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, last: make(map[entities.Label]time.Time)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) LastSyncTime(_ context.Context, label entities.Label) (*time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.last[label]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (c *fakeClock) SetLastSyncTime(_ context.Context, label entities.Label, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[label] = t
	return nil
}

// failingStore fails commits while passing reads through.
type failingStore struct {
	Store
}

func (failingStore) CommitRefresh(context.Context, entities.Label, []entities.ListItem, *string) error {
	return &entities.StorageError{Op: "commit refresh", Err: errors.New("disk full")}
}

func (failingStore) CommitAppend(context.Context, entities.Label, []entities.ListItem, *string) error {
	return &entities.StorageError{Op: "commit append", Err: errors.New("disk full")}
}

type testEnv struct {
	db     *database.Database
	store  *database.SyncStore
	items  *items.Repository
	remote *fakeRemote
	clock  *fakeClock
}

func setupTest(t *testing.T) (*testEnv, func()) {
	dbPath := "./test_mediator_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	env := &testEnv{
		db:     db,
		store:  database.NewSyncStore(db),
		items:  items.NewRepository(db.DB),
		remote: newFakeRemote(),
		clock:  newFakeClock(time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)),
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}
	return env, cleanup
}

func (e *testEnv) mediator() *Mediator {
	return New(e.remote, e.store, e.clock, Config{PageSize: 10})
}

func strPtr(s string) *string { return &s }

func page(next *string, hasMore bool, rows ...swapi.Item) *swapi.Page {
	return &swapi.Page{Items: rows, NextCursor: next, HasMore: hasMore}
}

func luke() swapi.Item { return swapi.Item{ID: "1", Name: "Luke", FilmCount: 4, Cursor: "c1"} }
func leia() swapi.Item { return swapi.Item{ID: "2", Name: "Leia", FilmCount: 4, Cursor: "c2"} }

func windowIDs(t *testing.T, e *testEnv, label entities.Label) []string {
	rows, err := e.items.Window(context.Background(), label, 0, 0)
	require.NoError(t, err)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestMediator_EndToEndScenario(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(strPtr("c1"), true, luke())
	env.remote.pages["c1"] = page(nil, false, leia())

	result := m.Load(ctx, entities.LabelPersons, Refresh, 0)
	require.True(t, result.Success, "%v", result.Err)
	assert.False(t, result.Exhausted)
	assert.Equal(t, []string{"1"}, windowIDs(t, env, entities.LabelPersons))

	bookmark, err := env.store.Bookmark(ctx, entities.LabelPersons)
	require.NoError(t, err)
	require.NotNil(t, bookmark.NextKey)
	assert.Equal(t, "c1", *bookmark.NextKey)

	result = m.Load(ctx, entities.LabelPersons, Append, 0)
	require.True(t, result.Success, "%v", result.Err)
	assert.True(t, result.Exhausted)
	assert.Equal(t, []string{"1", "2"}, windowIDs(t, env, entities.LabelPersons))

	bookmark, err = env.store.Bookmark(ctx, entities.LabelPersons)
	require.NoError(t, err)
	assert.Nil(t, bookmark.NextKey)

	calls := env.remote.callCount()
	result = m.Load(ctx, entities.LabelPersons, Append, 0)
	assert.True(t, result.Success)
	assert.True(t, result.Exhausted)
	assert.Equal(t, calls, env.remote.callCount())
}

func TestMediator_AppendWithoutNextKeyMakesNoRemoteCall(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	// Fresh data already cached, so the first load is not upgraded.
	require.NoError(t, env.store.CommitRefresh(ctx, entities.LabelPlanets,
		[]entities.ListItem{{ID: "p1", Name: "Tatooine"}}, nil))
	require.NoError(t, env.clock.SetLastSyncTime(ctx, entities.LabelPlanets, env.clock.Now().Add(-time.Minute)))

	m := env.mediator()
	for i := 0; i < 3; i++ {
		result := m.Load(ctx, entities.LabelPlanets, Append, 0)
		assert.True(t, result.Success)
		assert.True(t, result.Exhausted)
		assert.Equal(t, Append, result.Signal)
	}
	assert.Equal(t, 0, env.remote.callCount())
}

func TestMediator_AppendCursorFollowsPreviousResponse(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(strPtr("a"), true, swapi.Item{ID: "1", Cursor: "a"})
	env.remote.pages["a"] = page(strPtr("b"), true, swapi.Item{ID: "2", Cursor: "b"})
	env.remote.pages["b"] = page(strPtr("c"), true, swapi.Item{ID: "3", Cursor: "c"})
	env.remote.pages["c"] = page(strPtr("c-end"), false, swapi.Item{ID: "4", Cursor: "c-end"})

	require.True(t, m.Load(ctx, entities.LabelStarships, Refresh, 0).Success)
	for {
		result := m.Load(ctx, entities.LabelStarships, Append, 0)
		require.True(t, result.Success, "%v", result.Err)
		if result.Exhausted {
			break
		}
	}

	assert.Equal(t, []string{"", "a", "b", "c"}, env.remote.cursors())
	assert.Equal(t, []string{"1", "2", "3", "4"}, windowIDs(t, env, entities.LabelStarships))
}

func TestMediator_AppendRejectsRepeatedCursor(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(strPtr("a"), true, swapi.Item{ID: "1"})
	env.remote.pages["a"] = page(strPtr("a"), true, swapi.Item{ID: "2"})

	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)
	result := m.Load(ctx, entities.LabelPersons, Append, 0)

	assert.False(t, result.Success)
	assert.Equal(t, KindProtocol, result.Kind)
	assert.Equal(t, []string{"1"}, windowIDs(t, env, entities.LabelPersons))
}

func TestMediator_FavouriteSurvivesAppend(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(strPtr("c1"), true, luke())
	env.remote.pages["c1"] = page(nil, false, leia())

	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)
	require.NoError(t, env.items.SetFavourite(ctx, entities.LabelPersons, "1", true))
	require.True(t, m.Load(ctx, entities.LabelPersons, Append, 0).Success)

	item, err := env.items.Get(ctx, entities.LabelPersons, "1")
	require.NoError(t, err)
	assert.True(t, item.IsFavorite)
}

func TestMediator_FavouriteSurvivesRefresh(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(nil, false, luke(), leia())

	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)
	require.NoError(t, env.items.SetFavourite(ctx, entities.LabelPersons, "2", true))
	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)

	item, err := env.items.Get(ctx, entities.LabelPersons, "2")
	require.NoError(t, err)
	assert.True(t, item.IsFavorite)
}

func TestMediator_StaleCacheUpgradesFirstLoad(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.store.CommitRefresh(ctx, entities.LabelPersons,
		[]entities.ListItem{{ID: "old"}}, strPtr("old-cursor")))
	require.NoError(t, env.clock.SetLastSyncTime(ctx, entities.LabelPersons, env.clock.Now().Add(-2*time.Hour)))
	env.remote.pages[""] = page(nil, false, luke())

	m := env.mediator()
	assert.Equal(t, LaunchInitialRefresh, m.Initialize(ctx, entities.LabelPersons))

	result := m.Load(ctx, entities.LabelPersons, Append, 0)
	require.True(t, result.Success, "%v", result.Err)
	assert.Equal(t, Refresh, result.Signal)
	assert.Equal(t, []string{""}, env.remote.cursors())
	assert.Equal(t, []string{"1"}, windowIDs(t, env, entities.LabelPersons))

	last, err := env.clock.LastSyncTime(ctx, entities.LabelPersons)
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), *last)

	// Only the first load is subject to the policy.
	result = m.Load(ctx, entities.LabelPersons, Append, 0)
	assert.Equal(t, Append, result.Signal)
}

func TestMediator_FreshCacheServesWithoutRefresh(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.store.CommitRefresh(ctx, entities.LabelPersons,
		[]entities.ListItem{{ID: "1"}}, strPtr("c1")))
	require.NoError(t, env.clock.SetLastSyncTime(ctx, entities.LabelPersons, env.clock.Now().Add(-30*time.Minute)))
	env.remote.pages["c1"] = page(nil, false, leia())

	m := env.mediator()
	assert.Equal(t, SkipInitialRefresh, m.Initialize(ctx, entities.LabelPersons))

	result := m.Load(ctx, entities.LabelPersons, Append, 0)
	require.True(t, result.Success, "%v", result.Err)
	assert.Equal(t, Append, result.Signal)
	assert.Equal(t, []string{"c1"}, env.remote.cursors())
}

func TestMediator_InitializeWithoutHistory(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	assert.Equal(t, LaunchInitialRefresh, m.Initialize(ctx, entities.LabelPlanets))

	// Recent timestamp but empty cache.
	require.NoError(t, env.clock.SetLastSyncTime(ctx, entities.LabelPlanets, env.clock.Now()))
	assert.Equal(t, LaunchInitialRefresh, m.Initialize(ctx, entities.LabelPlanets))
}

func TestMediator_Prepend(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.pages[""] = page(strPtr("c1"), true, luke())
	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)
	calls := env.remote.callCount()

	result := m.Load(ctx, entities.LabelPersons, Prepend, 0)
	assert.True(t, result.Success)
	assert.True(t, result.Exhausted)
	assert.Equal(t, calls, env.remote.callCount())
}

func TestMediator_FailuresLeaveStoreUnchanged(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{name: "network", err: &swapi.NetworkError{Err: errors.New("connection reset")}, kind: KindNetwork},
		{name: "protocol", err: &swapi.ProtocolError{Msg: "bad payload"}, kind: KindProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, cleanup := setupTest(t)
			defer cleanup()
			ctx := context.Background()
			m := env.mediator()

			env.remote.pages[""] = page(strPtr("c1"), true, luke())
			require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)

			env.remote.err = tt.err
			for _, signal := range []LoadSignal{Refresh, Append} {
				result := m.Load(ctx, entities.LabelPersons, signal, 0)
				assert.False(t, result.Success)
				assert.Equal(t, tt.kind, result.Kind)
				assert.ErrorIs(t, result.Err, tt.err)
			}

			assert.Equal(t, []string{"1"}, windowIDs(t, env, entities.LabelPersons))
			bookmark, err := env.store.Bookmark(ctx, entities.LabelPersons)
			require.NoError(t, err)
			assert.Equal(t, "c1", *bookmark.NextKey)

			// Retrying the same signal once the remote recovers succeeds.
			env.remote.err = nil
			env.remote.pages["c1"] = page(nil, false, leia())
			result := m.Load(ctx, entities.LabelPersons, Append, 0)
			assert.True(t, result.Success)
			assert.Equal(t, []string{"1", "2"}, windowIDs(t, env, entities.LabelPersons))
		})
	}
}

func TestMediator_StorageFailure(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	env.remote.pages[""] = page(strPtr("c1"), true, luke())
	m := New(env.remote, failingStore{Store: env.store}, env.clock, Config{})

	result := m.Load(ctx, entities.LabelPersons, Refresh, 0)
	assert.False(t, result.Success)
	assert.Equal(t, KindStorage, result.Kind)
	assert.Empty(t, windowIDs(t, env, entities.LabelPersons))

	last, err := env.clock.LastSyncTime(ctx, entities.LabelPersons)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestMediator_FailedFirstRefreshIsRetriedAsRefresh(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	env.remote.err = &swapi.NetworkError{Err: errors.New("offline")}
	result := m.Load(ctx, entities.LabelPersons, Append, 0)
	assert.False(t, result.Success)
	assert.Equal(t, Refresh, result.Signal)

	env.remote.err = nil
	env.remote.pages[""] = page(nil, false, luke())
	result = m.Load(ctx, entities.LabelPersons, Append, 0)
	assert.True(t, result.Success)
	assert.Equal(t, Refresh, result.Signal)
}

func TestMediator_CancelledBeforeCommit(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	m := env.mediator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env.remote.pages[""] = page(strPtr("c1"), true, luke())
	env.remote.onFetch = func(context.Context) { cancel() }

	result := m.Load(ctx, entities.LabelPersons, Refresh, 0)
	assert.False(t, result.Success)
	assert.Equal(t, KindCancelled, result.Kind)
	assert.Empty(t, windowIDs(t, env, entities.LabelPersons))

	bookmark, err := env.store.Bookmark(context.Background(), entities.LabelPersons)
	require.NoError(t, err)
	assert.Nil(t, bookmark)
}

func TestMediator_ReadersNeverSeePartialRefresh(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()
	m := env.mediator()

	first := make([]swapi.Item, 0, 3)
	for _, id := range []string{"a", "b", "c"} {
		first = append(first, swapi.Item{ID: id, Name: id})
	}
	second := make([]swapi.Item, 0, 5)
	for _, id := range []string{"v", "w", "x", "y", "z"} {
		second = append(second, swapi.Item{ID: id, Name: id})
	}

	env.remote.pages[""] = page(nil, false, first...)
	require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)

	stop := make(chan struct{})
	var seen sync.Map
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			rows, err := env.items.Window(ctx, entities.LabelPersons, 0, 0)
			if err == nil {
				seen.Store(len(rows), true)
			}
		}
	}()

	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			env.remote.pages[""] = page(nil, false, second...)
		} else {
			env.remote.pages[""] = page(nil, false, first...)
		}
		require.True(t, m.Load(ctx, entities.LabelPersons, Refresh, 0).Success)
	}
	close(stop)
	wg.Wait()

	seen.Range(func(key, _ any) bool {
		assert.Contains(t, []int{3, 5}, key.(int))
		return true
	})
}

func TestParseLoadSignal(t *testing.T) {
	for _, s := range []LoadSignal{Refresh, Append, Prepend} {
		parsed, err := ParseLoadSignal(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseLoadSignal("sideways")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, classify(nil))
	assert.Equal(t, KindCancelled, classify(context.Canceled))
	assert.Equal(t, KindNetwork, classify(&swapi.NetworkError{Err: context.DeadlineExceeded}))
	assert.Equal(t, KindStorage, classify(&entities.StorageError{Op: "x", Err: errors.New("y")}))
	assert.Equal(t, KindProtocol, classify(errors.New("unexpected")))
}
