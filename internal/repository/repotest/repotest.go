// Package repotest holds behaviour checks shared by every repository.Store
// implementation.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
)

// Run exercises store against the repository contracts. newStore must return
// an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Helper()

	t.Run("users", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		u := newUser("ann@example.com")
		require.NoError(t, store.CreateUser(ctx, u))

		byEmail, err := store.GetUserByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "Ann", byEmail.Name)
		assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)

		byID, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)

		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = store.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.CreateUser(ctx, newUser("dup@example.com")))
		err := store.CreateUser(ctx, newUser("dup@example.com"))
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("notes are scoped by owner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ann := newUser("ann@example.com")
		bob := newUser("bob@example.com")
		require.NoError(t, store.CreateUser(ctx, ann))
		require.NoError(t, store.CreateUser(ctx, bob))

		base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
		older := newNote(ann.ID, "Older", "first", base)
		newer := newNote(ann.ID, "Newer", "second", base.Add(time.Minute))
		foreign := newNote(bob.ID, "Bob", "private", base.Add(2*time.Minute))
		for _, n := range []*domain.Note{older, newer, foreign} {
			require.NoError(t, store.CreateNote(ctx, n))
		}

		notes, err := store.ListNotesByOwner(ctx, ann.ID)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, newer.ID, notes[0].ID)
		assert.Equal(t, older.ID, notes[1].ID)
		assert.True(t, notes[0].CreatedAt.Equal(newer.CreatedAt))

		_, err = store.UpdateOwnedNote(ctx, domain.NoteUpdate{ID: foreign.ID, OwnerID: ann.ID, Title: "stolen", UpdatedAt: base})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, store.DeleteOwnedNote(ctx, foreign.ID, ann.ID), repository.ErrNotFound)

		bobs, err := store.ListNotesByOwner(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobs, 1)
		assert.Equal(t, "Bob", bobs[0].Title)
	})

	t.Run("update keeps blank fields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ann := newUser("ann@example.com")
		require.NoError(t, store.CreateUser(ctx, ann))
		created := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
		n := newNote(ann.ID, "Shopping", "Milk", created)
		require.NoError(t, store.CreateNote(ctx, n))

		later := created.Add(time.Hour)
		updated, err := store.UpdateOwnedNote(ctx, domain.NoteUpdate{ID: n.ID, OwnerID: ann.ID, Content: "Milk, Eggs", UpdatedAt: later})
		require.NoError(t, err)
		assert.Equal(t, n.ID, updated.ID)
		assert.Equal(t, "Shopping", updated.Title)
		assert.Equal(t, "Milk, Eggs", updated.Content)
		assert.True(t, updated.CreatedAt.Equal(created))
		assert.True(t, updated.UpdatedAt.Equal(later))
	})

	t.Run("timestamps round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ann := newUser("ann@example.com")
		require.NoError(t, store.CreateUser(ctx, ann))

		before := time.Now()
		created := time.Now().UTC().Truncate(time.Microsecond).Add(time.Microsecond)
		n := newNote(ann.ID, "Stamp", "now", created)
		require.NoError(t, store.CreateNote(ctx, n))

		notes, err := store.ListNotesByOwner(ctx, ann.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.True(t, notes[0].CreatedAt.Equal(created), "listed %v, stored %v", notes[0].CreatedAt, created)
		assert.True(t, notes[0].UpdatedAt.Equal(created))
		assert.False(t, notes[0].CreatedAt.Before(before), "listed %v before %v", notes[0].CreatedAt, before)

		later := created.Add(1500 * time.Microsecond)
		updated, err := store.UpdateOwnedNote(ctx, domain.NoteUpdate{ID: n.ID, OwnerID: ann.ID, Title: "Stamp 2", UpdatedAt: later})
		require.NoError(t, err)
		assert.True(t, updated.CreatedAt.Equal(created))
		assert.True(t, updated.UpdatedAt.Equal(later))
	})

	t.Run("delete is not repeatable", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ann := newUser("ann@example.com")
		require.NoError(t, store.CreateUser(ctx, ann))
		n := newNote(ann.ID, "Temp", "gone soon", time.Now().UTC())
		require.NoError(t, store.CreateNote(ctx, n))

		require.NoError(t, store.DeleteOwnedNote(ctx, n.ID, ann.ID))
		assert.ErrorIs(t, store.DeleteOwnedNote(ctx, n.ID, ann.ID), repository.ErrNotFound)

		notes, err := store.ListNotesByOwner(ctx, ann.ID)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}

func newUser(email string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Name:         "Ann",
		Email:        email,
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newNote(ownerID, title, content string, created time.Time) *domain.Note {
	return &domain.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: created,
		UpdatedAt: created,
	}
}
