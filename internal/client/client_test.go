package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub simulates the server side of the refresh protocol: a protected
// resource that accepts one specific token, and a refresh endpoint whose
// behavior the test controls.
type apiStub struct {
	validToken    string
	refreshOK     atomic.Bool
	refreshCalls  atomic.Int64
	resourceCalls atomic.Int64
}

func (s *apiStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refresh_token", func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		if !s.refreshOK.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Refresh token invalid"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "accessToken": s.validToken})
	})
	mux.HandleFunc("GET /quests", func(w http.ResponseWriter, r *http.Request) {
		s.resourceCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+s.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Token expired"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "quests": []any{}})
	})
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "short and stout"})
	})
	return mux
}

func newStubClient(t *testing.T, stub *apiStub, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestDoSucceedsWithValidToken(t *testing.T) {
	stub := &apiStub{validToken: "good-token"}
	c := newStubClient(t, stub, WithAccessToken("good-token"))

	var out map[string]any
	require.NoError(t, c.Get(t.Context(), "/quests", &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, int64(0), stub.refreshCalls.Load(), "no refresh when the token works")
}

func TestDoRefreshesOnceAndReplays(t *testing.T) {
	stub := &apiStub{validToken: "fresh-token"}
	stub.refreshOK.Store(true)
	c := newStubClient(t, stub, WithAccessToken("expired-token"))

	var out map[string]any
	require.NoError(t, c.Get(t.Context(), "/quests", &out))

	assert.Equal(t, "fresh-token", c.AccessToken(), "fresh token persisted")
	assert.Equal(t, int64(1), stub.refreshCalls.Load())
	assert.Equal(t, int64(2), stub.resourceCalls.Load(), "original request replayed exactly once")
}

func TestDoRefreshFailureIsTerminal(t *testing.T) {
	stub := &apiStub{validToken: "fresh-token"}
	var redirected atomic.Int64
	c := newStubClient(t, stub,
		WithAccessToken("expired-token"),
		WithRedirectFunc(func() { redirected.Add(1) }))

	err := c.Get(t.Context(), "/quests", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRedirectToLogin), "terminal state is errors.Is-able")
	assert.Empty(t, c.AccessToken(), "stored token cleared")
	assert.Equal(t, int64(1), redirected.Load(), "redirect hook fired once")
	assert.Equal(t, int64(1), stub.resourceCalls.Load(), "no replay after failed refresh")
}

func TestDoSecondUnauthorizedIsTerminal(t *testing.T) {
	// Refresh succeeds but hands back a token the resource still rejects:
	// the replay 401s and the client must stop, not loop.
	var refreshCalls, resourceCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/refresh_token":
			refreshCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "accessToken": "still-stale"})
		default:
			resourceCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Token expired"})
		}
	}))
	t.Cleanup(srv.Close)

	var redirected atomic.Int64
	c, err := New(srv.URL,
		WithAccessToken("expired"),
		WithRedirectFunc(func() { redirected.Add(1) }))
	require.NoError(t, err)

	err = c.Get(t.Context(), "/quests", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRedirectToLogin)
	assert.Equal(t, int64(1), refreshCalls.Load(), "exactly one refresh attempt")
	assert.Equal(t, int64(2), resourceCalls.Load(), "exactly one replay")
	assert.Equal(t, int64(1), redirected.Load())
	assert.Empty(t, c.AccessToken())
}

func TestDoSurfacesNon401Errors(t *testing.T) {
	stub := &apiStub{validToken: "good-token"}
	c := newStubClient(t, stub, WithAccessToken("good-token"))

	err := c.Get(t.Context(), "/teapot", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTeapot, apiErr.Status)
	assert.Equal(t, "short and stout", apiErr.Message)
	assert.Equal(t, int64(0), stub.refreshCalls.Load(), "non-401 failures never trigger refresh")
}

func TestNewValidation(t *testing.T) {
	_, err := New("")
	require.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.NotNil(t, c.httpClient.Jar, "cookie jar installed for the refresh cookie")
}
