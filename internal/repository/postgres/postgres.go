package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/notes/internal/domain"
	"github.com/splax/notes/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.NoteRepository = (*Repository)(nil)
	_ repository.Store          = (*Repository)(nil)
)

// Ping checks pool connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases pooled connections.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateNote inserts a note.
func (r *Repository) CreateNote(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (id, owner_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, note.ID, note.OwnerID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return repository.ErrNotFound
			case "23505":
				return repository.ErrConflict
			}
		}
		return err
	}
	return nil
}

// ListNotesByOwner returns the owner's notes, newest first.
func (r *Repository) ListNotesByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	const query = `SELECT id, owner_id, title, content, created_at, updated_at
		FROM notes WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateOwnedNote replaces non-empty fields of the note matching id and owner
// in a single statement.
func (r *Repository) UpdateOwnedNote(ctx context.Context, update domain.NoteUpdate) (*domain.Note, error) {
	const query = `UPDATE notes
		SET title = COALESCE(NULLIF($3, ''), title),
			content = COALESCE(NULLIF($4, ''), content),
			updated_at = $5
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, content, created_at, updated_at`
	row := r.pool.QueryRow(ctx, query, update.ID, update.OwnerID, update.Title, update.Content, update.UpdatedAt)
	var n domain.Note
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// DeleteOwnedNote removes the note matching id and owner.
func (r *Repository) DeleteOwnedNote(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM notes WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
