package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/remote"
	"github.com/abatilo/dash/internal/session"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	ok := func(w http.ResponseWriter, email, name string) {
		reply(w, http.StatusOK, map[string]any{
			"access_token": "header.payload.sig",
			"token_type":   "bearer",
			"user":         map[string]any{"id": 3, "email": email, "full_name": name},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter2" {
			reply(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
			return
		}
		ok(w, body["email"], "Ada Lovelace")
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			reply(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
			return
		}
		ok(w, body["email"], body["full_name"])
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin(t *testing.T) {
	srv := authServer(t)
	auth := session.NewAuthenticator(remote.NewClient(srv.URL, remote.Credentials{}))

	s, err := auth.Login(context.Background(), "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", s.AccessToken)
	assert.Equal(t, int64(3), s.User.ID)
	assert.Equal(t, srv.URL, s.APIURL)
	assert.False(t, s.SavedAt.IsZero())
}

func TestLoginRejected(t *testing.T) {
	srv := authServer(t)
	auth := session.NewAuthenticator(remote.NewClient(srv.URL, remote.Credentials{}))

	_, err := auth.Login(context.Background(), "ada@example.com", "wrong")
	var verr dasherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account", verr.Field)
	assert.Equal(t, "Invalid credentials", verr.Reason)
	assert.NotErrorAs(t, err, &dasherrors.SessionInvalidError{}, "a wrong password is not a rejected session")
}

func TestLoginRequiresFields(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	t.Cleanup(srv.Close)
	auth := session.NewAuthenticator(remote.NewClient(srv.URL, remote.Credentials{}))

	_, err := auth.Login(context.Background(), " ", "pw")
	var verr dasherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Zero(t, hits.Load(), "invalid input never reaches the server")
}

func TestRegister(t *testing.T) {
	srv := authServer(t)
	auth := session.NewAuthenticator(remote.NewClient(srv.URL, remote.Credentials{}))

	s, err := auth.Register(context.Background(), "new@example.com", "pw", "New Person")
	require.NoError(t, err)
	assert.Equal(t, "New Person", s.User.FullName)

	_, err = auth.Register(context.Background(), "taken@example.com", "pw", "Someone")
	var verr dasherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email already registered", verr.Reason)
}

func TestUnauthorizedInvalidatesGate(t *testing.T) {
	dir := t.TempDir()
	gate := session.NewGate(dir)
	require.NoError(t, gate.Store(&session.Session{AccessToken: "stale", TokenType: "bearer"}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
	}))
	t.Cleanup(srv.Close)

	creds, err := gate.Credentials()
	require.NoError(t, err)
	client := remote.NewClient(srv.URL, creds, remote.WithUnauthorizedHook(func() {
		_ = gate.Invalidate()
	}))

	_, err = remote.NewBacking(client).List(context.Background())
	require.ErrorAs(t, err, &dasherrors.SessionInvalidError{})
	assert.False(t, session.Exists(dir))

	_, err = gate.Credentials()
	require.ErrorAs(t, err, &dasherrors.NotLoggedInError{})
}
