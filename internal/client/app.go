// Package client holds the notes client application: session handling,
// the fetched note list, the search filter and the note form.
package client

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	apiclient "github.com/splax/notes/pkg/api/client"
)

// State is the authentication state of the application.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

var (
	// ErrBusy is returned when another operation is still in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNotAuthenticated is returned by note operations without a session.
	ErrNotAuthenticated = errors.New("please log in first")
	// ErrBlankNote is returned before any network call when the form is incomplete.
	ErrBlankNote = errors.New("please enter both title and content")
	// ErrUnknownNote is returned when editing a note that is not in the fetched list.
	ErrUnknownNote = errors.New("note not found")
)

// API is the subset of the REST client the application drives.
type API interface {
	Register(ctx context.Context, name, email, password string) (apiclient.Session, error)
	Login(ctx context.Context, email, password string) (apiclient.Session, error)
	ListNotes(ctx context.Context, token string) ([]apiclient.Note, error)
	CreateNote(ctx context.Context, token, title, content string) (apiclient.Note, error)
	UpdateNote(ctx context.Context, token, id, title, content string) (apiclient.Note, error)
	DeleteNote(ctx context.Context, token, id string) error
	Logout(ctx context.Context, token string) error
}

// Form is the note editor. EditingID is empty when creating.
type Form struct {
	Title     string
	Content   string
	EditingID string
}

// App is the client state machine. Methods are safe for concurrent use but
// only one network operation runs at a time.
type App struct {
	api      API
	sessions SessionStore
	timeout  time.Duration
	baseURL  string

	mu      sync.Mutex
	busy    bool
	session Session
	notes   []apiclient.Note
	filter  string
	form    Form
	lastErr string
}

// Option customises an App.
type Option func(*App)

// WithTimeout bounds every network call made by the App.
func WithTimeout(d time.Duration) Option {
	return func(a *App) {
		a.timeout = d
	}
}

// WithBaseURL records the API root in the saved session so later runs talk
// to the server that issued the token.
func WithBaseURL(url string) Option {
	return func(a *App) {
		a.baseURL = url
	}
}

// New returns an unauthenticated App.
func New(api API, sessions SessionStore, opts ...Option) *App {
	if sessions == nil {
		sessions = &MemoryStore{}
	}
	a := &App{api: api, sessions: sessions}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restore loads a persisted session. A stored token puts the App in the
// Authenticated state; it is checked by the server on the next call.
func (a *App) Restore() error {
	s, err := a.sessions.Load()
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.Token != "" {
		a.session = s
	}
	return nil
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *App) stateLocked() State {
	if a.session.Token == "" {
		return Unauthenticated
	}
	return Authenticated
}

// User returns the signed-in user.
func (a *App) User() (apiclient.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.User, a.session.Token != ""
}

// LastError is the message of the most recent failure, verbatim from the API when it sent one.
func (a *App) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Busy reports whether an operation is in flight.
func (a *App) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Register creates an account, signs in and fetches notes.
func (a *App) Register(ctx context.Context, name, email, password string) error {
	return a.authenticate(ctx, func(ctx context.Context) (apiclient.Session, error) {
		return a.api.Register(ctx, name, email, password)
	})
}

// Login signs in and fetches notes.
func (a *App) Login(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, func(ctx context.Context) (apiclient.Session, error) {
		return a.api.Login(ctx, email, password)
	})
}

func (a *App) authenticate(ctx context.Context, call func(context.Context) (apiclient.Session, error)) error {
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()

	callCtx, cancel := a.callContext(ctx)
	resp, err := call(callCtx)
	cancel()
	if err != nil {
		a.setLastError(err.Error())
		return err
	}
	s := Session{Token: resp.Token, User: resp.User, APIBaseURL: a.baseURL}
	a.mu.Lock()
	a.session = s
	a.notes = nil
	a.form = Form{}
	a.lastErr = ""
	a.mu.Unlock()
	if err := a.sessions.Save(s); err != nil {
		a.setLastError(err.Error())
		return err
	}
	return a.refresh(ctx)
}

// Logout discards the session, notes and form locally. The server is not called.
func (a *App) Logout() error {
	a.mu.Lock()
	a.clearLocked()
	a.lastErr = ""
	a.mu.Unlock()
	return a.sessions.Clear()
}

// RevokeSession asks the server to revoke the current token, then logs out
// locally. The local session is discarded even when the server call fails.
func (a *App) RevokeSession(ctx context.Context) error {
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()
	token, err := a.token()
	if err != nil {
		return err
	}
	callCtx, cancel := a.callContext(ctx)
	revokeErr := a.api.Logout(callCtx, token)
	cancel()
	if err := a.Logout(); err != nil {
		return err
	}
	if revokeErr != nil {
		a.setLastError(revokeErr.Error())
		return revokeErr
	}
	return nil
}

func (a *App) clearLocked() {
	a.session = Session{}
	a.notes = nil
	a.form = Form{}
	a.filter = ""
}

// Refresh replaces the local note list with the server's.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()
	return a.refresh(ctx)
}

func (a *App) refresh(ctx context.Context) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	list, err := a.api.ListNotes(callCtx, token)
	if err != nil {
		a.fail(err)
		return err
	}
	a.mu.Lock()
	a.notes = list
	a.mu.Unlock()
	return nil
}

// Notes returns the full fetched list.
func (a *App) Notes() []apiclient.Note {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.notes)
}

// SetFilter sets the search term used by Visible.
func (a *App) SetFilter(term string) {
	a.mu.Lock()
	a.filter = term
	a.mu.Unlock()
}

// Visible returns the fetched notes whose "title content" text contains the
// filter, ignoring case. The fetched list itself is left untouched.
func (a *App) Visible() []apiclient.Note {
	a.mu.Lock()
	defer a.mu.Unlock()
	term := strings.ToLower(a.filter)
	out := make([]apiclient.Note, 0, len(a.notes))
	for _, n := range a.notes {
		if term == "" || strings.Contains(strings.ToLower(n.Title+" "+n.Content), term) {
			out = append(out, n)
		}
	}
	return out
}

func (a *App) Form() Form {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form
}

// SetForm updates the editor fields and keeps the editing target.
func (a *App) SetForm(title, content string) {
	a.mu.Lock()
	a.form.Title = title
	a.form.Content = content
	a.mu.Unlock()
}

// StartEdit loads a fetched note into the form.
func (a *App) StartEdit(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := slices.IndexFunc(a.notes, func(n apiclient.Note) bool { return n.ID == id })
	if idx < 0 {
		return ErrUnknownNote
	}
	n := a.notes[idx]
	a.form = Form{Title: n.Title, Content: n.Content, EditingID: n.ID}
	return nil
}

// CancelEdit clears the form.
func (a *App) CancelEdit() {
	a.mu.Lock()
	a.form = Form{}
	a.mu.Unlock()
}

// Save creates a note, or updates the one being edited, then re-fetches.
// On failure the form is kept so the user can retry.
func (a *App) Save(ctx context.Context) error {
	form := a.Form()
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Content) == "" {
		a.setLastError(ErrBlankNote.Error())
		return ErrBlankNote
	}
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()
	token, err := a.token()
	if err != nil {
		return err
	}

	callCtx, cancel := a.callContext(ctx)
	if form.EditingID != "" {
		_, err = a.api.UpdateNote(callCtx, token, form.EditingID, form.Title, form.Content)
	} else {
		_, err = a.api.CreateNote(callCtx, token, form.Title, form.Content)
	}
	cancel()
	if err != nil {
		a.fail(err)
		return err
	}
	a.mu.Lock()
	a.form = Form{}
	a.lastErr = ""
	a.mu.Unlock()
	return a.refresh(ctx)
}

// Delete removes a note and re-fetches. Deleting the note being edited clears the form.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()
	token, err := a.token()
	if err != nil {
		return err
	}
	callCtx, cancel := a.callContext(ctx)
	err = a.api.DeleteNote(callCtx, token, id)
	cancel()
	if err != nil {
		a.fail(err)
		return err
	}
	a.mu.Lock()
	if a.form.EditingID == id {
		a.form = Form{}
	}
	a.lastErr = ""
	a.mu.Unlock()
	return a.refresh(ctx)
}

func (a *App) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return ErrBusy
	}
	a.busy = true
	return nil
}

func (a *App) end() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}

func (a *App) token() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.Token == "" {
		a.lastErr = ErrNotAuthenticated.Error()
		return "", ErrNotAuthenticated
	}
	return a.session.Token, nil
}

func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func (a *App) setLastError(msg string) {
	a.mu.Lock()
	a.lastErr = msg
	a.mu.Unlock()
}

// fail records err. A 401 on an authenticated call means the session is
// no longer accepted, so it is dropped.
func (a *App) fail(err error) {
	a.mu.Lock()
	a.lastErr = err.Error()
	expired := a.stateLocked() == Authenticated && apiclient.IsStatus(err, http.StatusUnauthorized)
	if expired {
		a.clearLocked()
	}
	a.mu.Unlock()
	if expired {
		_ = a.sessions.Clear()
	}
}
