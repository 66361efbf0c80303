package httpx_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openquest/questlog/config"
	"github.com/openquest/questlog/internal/adapters/devauth"
	"github.com/openquest/questlog/internal/adapters/jwtcodec"
	httpx "github.com/openquest/questlog/internal/http"
	mocksauth "github.com/openquest/questlog/internal/mocks/auth"
	"github.com/openquest/questlog/internal/ports"
	"github.com/openquest/questlog/internal/service"
)

// routerFixture wires the full router against in-memory stores and a real
// token codec, so handler tests exercise the same stack the server runs.
type routerFixture struct {
	handler http.Handler
	users   *mocksauth.MemoryUserStore
	quests  *mocksauth.MemoryQuestStore
	badges  *mocksauth.MemoryBadgeStore
	codec   *jwtcodec.Codec
	auth    *service.AuthService
}

func newRouterFixture(t *testing.T, limiter ports.RateLimiter) *routerFixture {
	t.Helper()

	codec, err := jwtcodec.New(config.TokenConfig{
		AccessSecret:  "router-access-secret",
		RefreshSecret: "router-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	require.NoError(t, err)

	provider, err := devauth.NewProvider(devauth.Config{
		Subject: "dev-sub-1",
		Email:   "dev.user@example.com",
		Name:    "Dev User",
	})
	require.NoError(t, err)

	f := &routerFixture{
		users:  mocksauth.NewMemoryUserStore(),
		quests: mocksauth.NewMemoryQuestStore(),
		badges: mocksauth.NewMemoryBadgeStore(),
		codec:  codec,
	}
	f.auth = service.NewAuthService(service.AuthServiceOptions{
		Users:    f.users,
		Codec:    codec,
		Provider: provider,
	})

	f.handler = httpx.NewRouter(httpx.RouterServices{
		Auth:     f.auth,
		Resolver: f.auth,
		Codec:    codec,
		Limiter:  limiter,
		Quests: service.NewQuestService(service.QuestServiceOptions{
			Quests: f.quests,
			Users:  f.users,
			Badges: f.badges,
		}),
		Profile:           service.NewProfileService(f.users),
		Leaderboard:       service.NewLeaderboardService(f.users, f.badges),
		Stats:             service.NewStatsService(f.users, f.quests),
		GoogleRedirectURL: "http://localhost:8080/auth/google/callback",
		RefreshTTL:        30 * 24 * time.Hour,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}

// do executes a request against the router and returns the recorder.
func (f *routerFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// register creates an account via the API and returns the access token and
// the refresh cookie.
func (f *routerFixture) register(t *testing.T, username, email, password string) (string, *http.Cookie) {
	t.Helper()
	rec := f.do(t, jsonRequest(t, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)

	cookie := findCookie(rec.Result().Cookies(), "refresh_token")
	require.NotNil(t, cookie)
	return token, cookie
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
