package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides typed access to the notes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:5000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// BaseURL reports the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return e.Message
}

// IsStatus reports whether err is an APIError carrying the given status.
func IsStatus(err error, status int) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := extractError(resp.Body)
		return APIError{Status: resp.StatusCode, Message: msg}
	}

	if v == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Message)
}

// User reflects API user payloads.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is returned by register and login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Note is a single owned note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}
	var resp Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, "", &resp); err != nil {
		return Session{}, err
	}
	return resp, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, "", &resp); err != nil {
		return Session{}, err
	}
	return resp, nil
}

// Logout asks the server to revoke token. Servers without revocation accept
// the call and leave the token valid until it expires.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, token, nil)
}

// ListNotes returns the caller's notes, newest first.
func (c *Client) ListNotes(ctx context.Context, token string) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, token, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote stores a new note.
func (c *Client) CreateNote(ctx context.Context, token, title, content string) (Note, error) {
	body := map[string]string{"title": title, "content": content}
	var note Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, token, &note); err != nil {
		return Note{}, err
	}
	return note, nil
}

// UpdateNote replaces the title and content of a note. Blank fields are kept by the server.
func (c *Client) UpdateNote(ctx context.Context, token, id, title, content string) (Note, error) {
	path := fmt.Sprintf("/api/notes/%s", url.PathEscape(id))
	body := map[string]string{"title": title, "content": content}
	var note Note
	if err := c.do(ctx, http.MethodPut, path, body, token, &note); err != nil {
		return Note{}, err
	}
	return note, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, token, id string) error {
	path := fmt.Sprintf("/api/notes/%s", url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, token, nil)
}
