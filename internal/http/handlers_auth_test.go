package httpx_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	f := newRouterFixture(t, nil)

	token, cookie := f.register(t, "Aria", "aria@example.com", "hunter22")

	// The refresh cookie is HttpOnly, Strict, and scoped to the whole site.
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Positive(t, cookie.MaxAge)

	// The access token opens gated routes.
	rec := f.do(t, bearer(jsonRequest(t, http.MethodGet, "/profile", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "aria@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash, "password hash never serializes")

	// Login with the same credentials works too.
	rec = f.do(t, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "aria@example.com",
		"password": "hunter22",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, findCookie(rec.Result().Cookies(), "refresh_token"))
}

func TestRegisterValidationErrors(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.do(t, jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"username": "",
		"email":    "bad",
		"password": "ab",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	violations, ok := body["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, violations, 3)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "Aria", "aria@example.com", "hunter22")

	rec := f.do(t, jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"username": "Other",
		"email":    "aria@example.com",
		"password": "hunter22",
	}))
	// Conflicts surface as 400 per the wire contract.
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "Aria", "aria@example.com", "hunter22")

	rec := f.do(t, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "aria@example.com",
		"password": "wrong",
	}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestRefreshReadsCookieOnly(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, cookie := f.register(t, "Aria", "aria@example.com", "hunter22")

	// Without the cookie the endpoint refuses, even when a valid access
	// token rides along in the header.
	rec := f.do(t, bearer(jsonRequest(t, http.MethodPost, "/refresh_token", nil), token))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// With the cookie it mints a fresh, working access token.
	req := jsonRequest(t, http.MethodPost, "/refresh_token", nil)
	req.AddCookie(cookie)
	rec = f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	fresh, _ := body["accessToken"].(string)
	require.NotEmpty(t, fresh)

	rec = f.do(t, bearer(jsonRequest(t, http.MethodGet, "/profile", nil), fresh))
	assert.Equal(t, http.StatusOK, rec.Code, "refresh-minted token passes the auth gate")
}

func TestRefreshRejectsAccessTokenInCookie(t *testing.T) {
	f := newRouterFixture(t, nil)
	token, _ := f.register(t, "Aria", "aria@example.com", "hunter22")

	req := jsonRequest(t, http.MethodPost, "/refresh_token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: token})
	rec := f.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Refresh token invalid", body["message"])
}

func TestLogoutExpiresCookieAndRefreshFails(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.register(t, "Aria", "aria@example.com", "hunter22")

	rec := f.do(t, jsonRequest(t, http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := findCookie(rec.Result().Cookies(), "refresh_token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
	assert.False(t, cleared.Expires.After(time.Unix(0, 0).UTC()), "Expires pinned at the epoch")

	// The browser drops the cookie, so the next refresh carries none.
	rec = f.do(t, jsonRequest(t, http.MethodPost, "/refresh_token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout is idempotent.
	rec = f.do(t, jsonRequest(t, http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGoogleLoginFlow(t *testing.T) {
	f := newRouterFixture(t, nil)

	// Begin: redirect to the provider with state/nonce cookies set.
	rec := f.do(t, jsonRequest(t, http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	stateCookie := findCookie(rec.Result().Cookies(), "oauth_state")
	nonceCookie := findCookie(rec.Result().Cookies(), "oauth_nonce")
	require.NotNil(t, stateCookie)
	require.NotNil(t, nonceCookie)
	assert.True(t, stateCookie.HttpOnly)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, stateCookie.Value, state)

	// Callback: completes the flow and hands the browser an access token.
	callback := func() *url.URL {
		req := jsonRequest(t, http.MethodGet, "/auth/google/callback?code=dev&state="+state, nil)
		req.AddCookie(stateCookie)
		req.AddCookie(nonceCookie)
		rec := f.do(t, req)
		require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
		require.NotNil(t, findCookie(rec.Result().Cookies(), "refresh_token"))
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		return loc
	}

	loc := callback()
	assert.Equal(t, "/auth-handler.html", loc.Path)
	token := loc.Query().Get("token")
	require.NotEmpty(t, token)

	rec = f.do(t, bearer(jsonRequest(t, http.MethodGet, "/profile", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "dev.user@example.com", user["email"])
	assert.Equal(t, "Dev User", user["username"])

	// A second callback logs into the same account rather than creating
	// another one.
	callback()
	n, err := f.users.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	f := newRouterFixture(t, nil)

	req := jsonRequest(t, http.MethodGet, "/auth/google/callback?code=dev&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "real-state"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce"})
	rec := f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleCallbackRejectsLocalEmail(t *testing.T) {
	f := newRouterFixture(t, nil)

	// The dev provider's email is already owned by a password account.
	f.register(t, "Local", "dev.user@example.com", "hunter22")

	rec := f.do(t, jsonRequest(t, http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	stateCookie := findCookie(rec.Result().Cookies(), "oauth_state")
	nonceCookie := findCookie(rec.Result().Cookies(), "oauth_nonce")

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	req := jsonRequest(t, http.MethodGet, "/auth/google/callback?code=dev&state="+location.Query().Get("state"), nil)
	req.AddCookie(stateCookie)
	req.AddCookie(nonceCookie)

	rec = f.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Email already registered locally."))
}
