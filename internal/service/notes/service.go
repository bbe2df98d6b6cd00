package notes

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/splax/notes/internal/apperr"
	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
)

var (
	// ErrNoteNotFound covers both absent notes and notes owned by someone else.
	ErrNoteNotFound = apperr.New(apperr.NotFound, "note not found")

	errTitleContentRequired = apperr.New(apperr.Validation, "title and content are required")
	errNothingToUpdate      = apperr.New(apperr.Validation, "title or content is required")
)

// Service handles note workflows, always scoped to the requesting user.
type Service struct {
	repo   repository.NoteRepository
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Service.
func New(repo repository.NoteRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the user's notes, newest first.
func (s Service) List(ctx context.Context, userID string) ([]domain.Note, error) {
	notes, err := s.repo.ListNotesByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list notes", err)
	}
	return notes, nil
}

// Create stores a note owned by userID.
func (s Service) Create(ctx context.Context, userID, title, content string) (*domain.Note, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, errTitleContentRequired
	}
	now := s.timestamp()
	note := &domain.Note{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create note", err)
	}
	s.logger.Info("note created", "note_id", note.ID, "user_id", userID)
	return note, nil
}

// Update replaces the title and content of a note owned by userID. Blank
// fields keep their stored value.
func (s Service) Update(ctx context.Context, userID, noteID, title, content string) (*domain.Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, ErrNoteNotFound
	}
	if strings.TrimSpace(title) == "" {
		title = ""
	}
	if strings.TrimSpace(content) == "" {
		content = ""
	}
	if title == "" && content == "" {
		return nil, errNothingToUpdate
	}
	note, err := s.repo.UpdateOwnedNote(ctx, domain.NoteUpdate{
		ID:        noteID,
		OwnerID:   userID,
		Title:     title,
		Content:   content,
		UpdatedAt: s.timestamp(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, apperr.Wrap(apperr.Internal, "update note", err)
	}
	s.logger.Info("note updated", "note_id", note.ID, "user_id", userID)
	return note, nil
}

// Delete permanently removes a note owned by userID.
func (s Service) Delete(ctx context.Context, userID, noteID string) error {
	if _, err := uuid.Parse(noteID); err != nil {
		return ErrNoteNotFound
	}
	if err := s.repo.DeleteOwnedNote(ctx, noteID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return apperr.Wrap(apperr.Internal, "delete note", err)
	}
	s.logger.Info("note deleted", "note_id", noteID, "user_id", userID)
	return nil
}

// timestamp returns the current time rounded up to the microsecond, the
// finest precision every store keeps. Rounding up keeps stored times at or
// after the moment the request was handled.
func (s Service) timestamp() time.Time {
	now := s.now().UTC()
	if t := now.Truncate(time.Microsecond); !t.Equal(now) {
		return t.Add(time.Microsecond)
	}
	return now
}
