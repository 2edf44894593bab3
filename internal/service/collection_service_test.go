package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/alexanderramin/tasksync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionService_Add(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteCollectionRepo(database)
	svc := NewCollectionService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()

	c, err := svc.Add(ctx, "  Acme ledger ", 15)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme ledger", c.Name)

	fetched, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, fetched.BillingAnchorDay)
}

func TestCollectionService_Add_Validation(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewCollectionService(repository.NewSQLiteCollectionRepo(database), testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.Add(ctx, " ", 1)
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = svc.Add(ctx, "Acme", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidBillingAnchor)

	_, err = svc.Add(ctx, "Acme", 32)
	assert.ErrorIs(t, err, domain.ErrInvalidBillingAnchor)
}

func TestCollectionService_EnsureFromRouting(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteCollectionRepo(database)
	svc := NewCollectionService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()

	table := domain.RoutingTable{
		Default:  "db-default",
		Work:     "db-default",
		Personal: "db-personal",
		Clients:  map[string]domain.DatabaseRef{"Beta": "db-beta", "Acme": "db-acme", "Empty": ""},
	}

	created, err := svc.EnsureFromRouting(ctx, table, 1)
	require.NoError(t, err)
	require.Len(t, created, 4, "shared and empty references are skipped")
	assert.Equal(t, "default", created[0].Name)
	assert.Equal(t, "client: Acme", created[2].Name)
	assert.Equal(t, "db-beta", created[3].ID)

	again, err := svc.EnsureFromRouting(ctx, table, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCollectionService_EnsureFromRouting_RollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteCollectionRepo(database)
	injected := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{Inner: testutil.NewTestUoW(database), FailOn: 2, Err: injected}
	svc := NewCollectionService(repo, uow)
	ctx := context.Background()

	_, err := svc.EnsureFromRouting(ctx, testRouting, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "first insert must be rolled back")
	assert.Equal(t, 2, uow.Execs())
}

func TestRunService_ListRecent(t *testing.T) {
	database := testutil.NewTestDB(t)
	runs := repository.NewSQLiteSyncRunRepo(database)
	ctx := context.Background()

	older := testutil.NewTestSyncRun(syncDate, testutil.WithStartedAt(syncDate.Add(time.Hour)))
	newer := testutil.NewTestSyncRun(syncDate, testutil.WithStartedAt(syncDate.AddDate(0, 0, 1)))
	require.NoError(t, runs.Create(ctx, older))
	require.NoError(t, runs.Create(ctx, newer))

	svc := NewRunService(runs)
	list, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	got, err := svc.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
}
