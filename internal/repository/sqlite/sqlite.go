// Package sqlite implements the note and credential stores on a single
// SQLite file for local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
)

// Repository implements persistence interfaces on SQLite.
type Repository struct {
	db *sql.DB
}

var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.NoteRepository = (*Repository)(nil)
	_ repository.Store          = (*Repository)(nil)
)

// DSN builds a connection string for the given database file.
func DSN(path string) string {
	clean := filepath.Clean(path)
	return "file:" + clean + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Open opens the SQLite file at path. Schema is managed by the migrate runner.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Repository{db: db}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Timestamps are stored as Unix nanoseconds so they read back unchanged.
func toUnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(v int64) time.Time {
	return time.Unix(0, v).UTC()
}

func isConstraint(err error, code int) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == code
	}
	return false
}

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, toUnixNano(user.CreatedAt))
	if err != nil {
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) || isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u       domain.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = fromUnixNano(created)
	return &u, nil
}

// CreateNote inserts a note.
func (r *Repository) CreateNote(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (id, owner_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, note.ID, note.OwnerID, note.Title, note.Content, toUnixNano(note.CreatedAt), toUnixNano(note.UpdatedAt))
	if err != nil {
		switch {
		case isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY):
			return repository.ErrNotFound
		case isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY):
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// ListNotesByOwner returns the owner's notes, newest first.
func (r *Repository) ListNotesByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	const query = `SELECT id, owner_id, title, content, created_at, updated_at
		FROM notes WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// UpdateOwnedNote replaces non-empty fields of the note matching id and owner
// in a single statement.
func (r *Repository) UpdateOwnedNote(ctx context.Context, update domain.NoteUpdate) (*domain.Note, error) {
	const query = `UPDATE notes
		SET title = COALESCE(NULLIF(?, ''), title),
			content = COALESCE(NULLIF(?, ''), content),
			updated_at = ?
		WHERE id = ? AND owner_id = ?
		RETURNING id, owner_id, title, content, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, query, update.Title, update.Content, toUnixNano(update.UpdatedAt), update.ID, update.OwnerID)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// DeleteOwnedNote removes the note matching id and owner.
func (r *Repository) DeleteOwnedNote(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*domain.Note, error) {
	var (
		n                  domain.Note
		created, updatedAt int64
	)
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &created, &updatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = fromUnixNano(created)
	n.UpdatedAt = fromUnixNano(updatedAt)
	return &n, nil
}
