// Package memory provides a process-local store used by tests and by the
// server when STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
)

// Repository keeps users and notes in maps guarded by a single mutex.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
	notes   map[string]domain.Note
}

var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.NoteRepository = (*Repository)(nil)
	_ repository.Store          = (*Repository)(nil)
)

// New returns an empty Repository.
func New() *Repository {
	return &Repository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		notes:   make(map[string]domain.Note),
	}
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }

// Close is a no-op.
func (r *Repository) Close() error { return nil }

// CreateUser inserts a user, rejecting duplicate ids and emails.
func (r *Repository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	if _, ok := r.users[user.ID]; ok {
		return repository.ErrConflict
	}
	stored := *user
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.users[user.ID] = stored
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.users[id]
	return &u, nil
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// CreateNote inserts a note owned by an existing user.
func (r *Repository) CreateNote(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[note.OwnerID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.notes[note.ID]; ok {
		return repository.ErrConflict
	}
	r.notes[note.ID] = *note
	return nil
}

// ListNotesByOwner returns the owner's notes, newest first.
func (r *Repository) ListNotesByOwner(_ context.Context, ownerID string) ([]domain.Note, error) {
	r.mu.RLock()
	notes := make([]domain.Note, 0)
	for _, n := range r.notes {
		if n.OwnerID == ownerID {
			notes = append(notes, n)
		}
	}
	r.mu.RUnlock()

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// UpdateOwnedNote replaces non-empty fields of the note matching id and owner.
func (r *Repository) UpdateOwnedNote(_ context.Context, update domain.NoteUpdate) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[update.ID]
	if !ok || n.OwnerID != update.OwnerID {
		return nil, repository.ErrNotFound
	}
	if update.Title != "" {
		n.Title = update.Title
	}
	if update.Content != "" {
		n.Content = update.Content
	}
	n.UpdatedAt = update.UpdatedAt
	r.notes[n.ID] = n
	return &n, nil
}

// DeleteOwnedNote removes the note matching id and owner.
func (r *Repository) DeleteOwnedNote(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}
