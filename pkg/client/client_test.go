package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jon4hz/keepsake/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "keepsake_session"

// fakeServer mimics the JSON endpoints of a keepsake server.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Username != "GEET" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "token", Path: "/"})
		_, _ = w.Write([]byte(`{"id":1,"username":"GEET"}`))
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	})
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"username":"GEET"}`))
	})
	mux.HandleFunc("GET /api/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_LoginFlow(t *testing.T) {
	server := fakeServer(t)
	c, err := New(server.URL + "/")
	require.NoError(t, err)
	ctx := context.Background()

	user, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = c.User(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	user, err = c.Login(ctx, "GEET", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Username: "GEET"}, user)

	user, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "GEET", user.Username)

	require.NoError(t, c.Logout(ctx))
	require.NoError(t, c.Logout(ctx))

	user, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_InvalidCredentials(t *testing.T) {
	server := fakeServer(t)
	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "GEET", "wrong", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	server := fakeServer(t)
	c, err := New(server.URL)
	require.NoError(t, err)

	resp, err := c.doRequest(context.Background(), http.MethodGet, "/api/broken", nil)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	apiErr := apiError(resp)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Internal server error", apiErr.Message)
	assert.Equal(t, "API request failed with status 500: Internal server error", apiErr.Error())
}

func TestClient_Unreachable(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.CurrentUser(context.Background())
	assert.Error(t, err)
}

func TestClient_GuardsPages(t *testing.T) {
	server := fakeServer(t)
	c, err := New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()
	g := guard.New("/login")

	_, state := guard.NewQuery[User](c).Resolve(ctx)
	assert.Equal(t, guard.Decision{Action: guard.Redirect, Location: "/login"}, g.Decide(state))

	_, err = c.Login(ctx, "GEET", "secret", false)
	require.NoError(t, err)

	user, state := guard.NewQuery[User](c).Resolve(ctx)
	require.NotNil(t, user)
	assert.Equal(t, guard.Render, g.Decide(state).Action)
}
