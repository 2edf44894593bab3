package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/alexanderramin/tasksync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullTable() domain.RoutingTable {
	return domain.RoutingTable{
		Default:  "db-default",
		Work:     "db-work",
		Personal: "db-personal",
		Clients:  map[string]domain.DatabaseRef{"Acme": "db-acme"},
	}
}

// countingSource returns table (or err) and counts fetches.
type countingSource struct {
	table domain.RoutingTable
	err   error
	fails int
	calls int
}

func (s *countingSource) FetchRoutingTable(context.Context) (domain.RoutingTable, error) {
	s.calls++
	if s.calls <= s.fails {
		return domain.RoutingTable{}, errors.New("upstream unavailable")
	}
	if s.err != nil {
		return domain.RoutingTable{}, s.err
	}
	return s.table, nil
}

func noSleepPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func newTestStore(t *testing.T, src Source, cache Cache) *Store {
	t.Helper()
	tl := logging.NewTestLogger(t)
	return NewStore(src, cache, WithRetryPolicy(noSleepPolicy()), WithLogger(tl.Logger))
}

func TestStore_FetchesOnceWithinTTL(t *testing.T) {
	src := &countingSource{table: fullTable()}
	store := newTestStore(t, src, NewMemoryCache())
	ctx := context.Background()

	first, err := store.RoutingTable(ctx)
	require.NoError(t, err)
	second, err := store.RoutingTable(ctx)
	require.NoError(t, err)

	assert.Equal(t, fullTable(), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestStore_RefetchesAfterTTL(t *testing.T) {
	src := &countingSource{table: fullTable()}
	cache := NewMemoryCache()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	store := newTestStore(t, src, cache)
	ctx := context.Background()

	_, err := store.RoutingTable(ctx)
	require.NoError(t, err)

	now = now.Add(DefaultTTL)
	_, err = store.RoutingTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestStore_CorruptCacheIsRefetched(t *testing.T) {
	src := &countingSource{table: fullTable()}
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, CacheKey, []byte("{not json"), time.Hour))

	store := newTestStore(t, src, cache)
	table, err := store.RoutingTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullTable(), table)
	assert.Equal(t, 1, src.calls)

	data, ok, err := cache.Get(ctx, CacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), "db-acme")
}

func TestStore_RetriesSource(t *testing.T) {
	src := &countingSource{table: fullTable(), fails: 2}
	store := newTestStore(t, src, nil)

	table, err := store.RoutingTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fullTable(), table)
	assert.Equal(t, 3, src.calls)
}

func TestStore_SourceFailureAfterRetries(t *testing.T) {
	src := &countingSource{fails: 5}
	store := newTestStore(t, src, NewMemoryCache())

	_, err := store.RoutingTable(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrRetryExhausted)
	assert.Equal(t, 3, src.calls)
}

func TestStore_LoadValidates(t *testing.T) {
	table := fullTable()
	table.Work = ""
	table.Personal = ""
	store := newTestStore(t, &countingSource{table: table}, nil)

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "work")
	assert.Contains(t, cfgErr.Message, "personal")
}

func TestStore_InvalidTableIsNotCached(t *testing.T) {
	bad := fullTable()
	bad.Default = ""
	src := &countingSource{table: bad}
	cache := NewMemoryCache()
	store := newTestStore(t, src, cache)
	ctx := context.Background()

	_, err := store.RoutingTable(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, 1, src.calls, "validation errors are not retried")

	_, ok, err := cache.Get(ctx, CacheKey)
	require.NoError(t, err)
	assert.False(t, ok)

	src.table = fullTable()
	table, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullTable(), table)
	assert.Equal(t, 2, src.calls)
}

func TestStore_LoadRejectsInvalidCachedTable(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, CacheKey, []byte(`{"default":"db-default"}`), time.Hour))
	src := &countingSource{table: fullTable()}
	store := newTestStore(t, src, cache)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Zero(t, src.calls)
}

func TestStore_RefreshBypassesCache(t *testing.T) {
	src := &countingSource{table: fullTable()}
	store := newTestStore(t, src, NewMemoryCache())
	ctx := context.Background()

	_, err := store.RoutingTable(ctx)
	require.NoError(t, err)
	_, err = store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestStore_WithSQLiteCache(t *testing.T) {
	cache := repository.NewSQLiteCacheRepo(testutil.NewTestDB(t))
	src := &countingSource{table: fullTable()}
	store := newTestStore(t, src, cache)
	ctx := context.Background()

	_, err := store.RoutingTable(ctx)
	require.NoError(t, err)
	table, err := store.RoutingTable(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.DatabaseRef("db-acme"), table.Clients["Acme"])
	assert.Equal(t, 1, src.calls)
}
