package repository

import (
	"context"

	"github.com/splax/notes/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// NoteRepository persists notes. Every lookup that targets a single note is
// scoped by both note id and owner id.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *domain.Note) error
	ListNotesByOwner(ctx context.Context, ownerID string) ([]domain.Note, error)
	UpdateOwnedNote(ctx context.Context, update domain.NoteUpdate) (*domain.Note, error)
	DeleteOwnedNote(ctx context.Context, id, ownerID string) error
}

// Store bundles both repositories with lifecycle hooks for the server.
type Store interface {
	UserRepository
	NoteRepository
	Ping(ctx context.Context) error
	Close() error
}
