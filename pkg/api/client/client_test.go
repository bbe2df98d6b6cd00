package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalisesBaseURL(t *testing.T) {
	cli, err := New("localhost:5000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cli.BaseURL())

	cli, err = New("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cli.BaseURL())
}

func TestLoginSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.io", body["email"])
		assert.Equal(t, "pw", body["password"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u1","name":"A","email":"a@x.io"}}`))
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	require.NoError(t, err)
	session, err := cli.Login(context.Background(), "a@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "tok", User: User{ID: "u1", Name: "A", Email: "a@x.io"}}, session)
}

func TestNoteCallsCarryBearerToken(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"n1","title":"T","content":"C","owner":"u1"}]`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"message":"Note deleted successfully"}`))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"n1","title":"T","content":"C","owner":"u1"}`))
		}
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	notes, err := cli.ListNotes(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)

	_, err = cli.CreateNote(ctx, "tok", "T", "C")
	require.NoError(t, err)
	_, err = cli.UpdateNote(ctx, "tok", "n1", "T", "C")
	require.NoError(t, err)
	require.NoError(t, cli.DeleteNote(ctx, "tok", "n1"))
	require.NoError(t, cli.Logout(ctx, "tok"))

	assert.Equal(t, []string{
		"GET /api/notes",
		"POST /api/notes",
		"PUT /api/notes/n1",
		"DELETE /api/notes/n1",
		"POST /api/auth/logout",
	}, seen)
}

func TestErrorsSurfaceServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"email already registered"}`))
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	require.NoError(t, err)
	_, err = cli.Register(context.Background(), "A", "a@x.io", "pw")
	require.Error(t, err)
	assert.Equal(t, "email already registered", err.Error())
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

func TestErrorsFallBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	require.NoError(t, err)
	_, err = cli.ListNotes(context.Background(), "tok")
	assert.EqualError(t, err, "api request failed with status 502")
}
