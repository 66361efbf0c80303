package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/service"
)

// refreshCookieName is the only transport for refresh tokens. The token
// never appears in headers or response bodies.
const refreshCookieName = "refresh_token"

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*service.AuthResult, error)
	BeginGoogleLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)
	CompleteGoogleLogin(ctx context.Context, input service.CompleteGoogleLoginInput) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// GoogleRedirectURL is the registered OAuth callback URL.
	GoogleRedirectURL string
	// RefreshTTL bounds the refresh cookie lifetime.
	RefreshTTL time.Duration
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Register handles account creation.
// POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Register(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setRefreshCookie(w, r, result.Tokens.RefreshToken)
	WriteSuccess(w, http.StatusCreated, map[string]any{
		"accessToken": result.Tokens.AccessToken,
		"user":        result.User,
	})
}

// Login handles password login.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), req)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setRefreshCookie(w, r, result.Tokens.RefreshToken)
	WriteSuccess(w, http.StatusOK, map[string]any{
		"accessToken": result.Tokens.AccessToken,
		"user":        result.User,
	})
}

// GoogleBegin initiates the federated login flow.
// GET /auth/google.
func (h *AuthHandlers) GoogleBegin(w http.ResponseWriter, r *http.Request) {
	authURL, state, nonce, err := h.Svc.BeginGoogleLogin(r.Context(), h.GoogleRedirectURL)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setOAuthCookies(w, r, state, nonce)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback completes the federated login flow. On success the
// browser is redirected to the static auth handler page carrying the
// access token in the query; the refresh token travels only as a cookie.
// GET /auth/google/callback.
func (h *AuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		RenderError(w, apperrors.Validation("Missing code or state parameter"))
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		RenderError(w, apperrors.Unauthenticated("Invalid or missing state parameter"))
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		RenderError(w, apperrors.Unauthenticated("Missing nonce parameter"))
		return
	}

	result, err := h.Svc.CompleteGoogleLogin(r.Context(), service.CompleteGoogleLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "google login failed", "error", err)
		RenderError(w, err)
		return
	}

	h.setRefreshCookie(w, r, result.Tokens.RefreshToken)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	u := url.URL{Path: "/auth-handler.html"}
	q := url.Values{}
	q.Set("token", result.Tokens.AccessToken)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// Refresh mints a new access token from the refresh cookie. The cookie is
// the only accepted transport; tokens in the header or body are ignored.
// POST /refresh_token.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		RenderError(w, apperrors.Unauthenticated("No refresh token"))
		return
	}

	access, err := h.Svc.Refresh(r.Context(), cookie.Value)
	if err != nil {
		RenderError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"accessToken": access})
}

// Logout overwrites the refresh cookie with an immediately expired one.
// Idempotent; succeeds whether or not a cookie was present.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, refreshCookieName)
	WriteSuccess(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

// setRefreshCookie writes the refresh token as an HttpOnly cookie.
func (h *AuthHandlers) setRefreshCookie(w http.ResponseWriter, r *http.Request, token string) {
	ttl := h.RefreshTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// setOAuthCookies stores the OAuth state and nonce in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, state, nonce string) {
	isSecure := isSecureRequest(r)
	for name, value := range map[string]string{
		"oauth_state": state,
		"oauth_nonce": nonce,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes used when setting cookies to maximize
// compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteStrictMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
