package domain

import "time"

// Note is a titled text entry owned by exactly one user.
type Note struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteUpdate carries replacement fields for an owned note. Empty fields keep
// the stored value.
type NoteUpdate struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	UpdatedAt time.Time
}
