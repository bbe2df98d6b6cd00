package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splax/notes/internal/app/migrate"
	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
	"github.com/splax/notes/internal/repository/repotest"
	"github.com/splax/notes/internal/service/notes"
	"github.com/splax/notes/pkg/logger"
)

func openMigrated(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.db")
	runner, err := migrate.New(migrate.DriverSQLite, DSN(path), logger.Discard())
	require.NoError(t, err)
	require.NoError(t, runner.Ensure(context.Background()))

	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return openMigrated(t)
	})
}

func TestCreatedNotesListAtOrAfterRequestTime(t *testing.T) {
	store := openMigrated(t)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &domain.User{
		ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: []byte("x"), CreatedAt: time.Now().UTC(),
	}))
	svc := notes.New(store, logger.Discard())

	for i := 0; i < 50; i++ {
		before := time.Now()
		created, err := svc.Create(ctx, "u1", "T", "C")
		require.NoError(t, err)

		list, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		require.NotEmpty(t, list)
		newest := list[0]
		require.Equal(t, created.ID, newest.ID, "run %d: newest note is not the one just created", i)
		assert.True(t, newest.CreatedAt.Equal(created.CreatedAt), "run %d: listed %v, returned %v", i, newest.CreatedAt, created.CreatedAt)
		assert.False(t, newest.CreatedAt.Before(before), "run %d: listed %v before request %v", i, newest.CreatedAt, before)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}
