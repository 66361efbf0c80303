package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/openquest/questlog/internal/domain/auth"
)

// Sentinel errors returned by TokenCodec verification. Expiry is
// distinguished from all other invalidity so callers can report it.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenCodec issues and verifies the JWT access/refresh token pair.
// Access and refresh tokens are signed with distinct secrets.
type TokenCodec interface {
	// IssueAccessToken mints a short-lived access token carrying the claims.
	IssueAccessToken(claims domainauth.AccessClaims) (string, error)

	// IssueRefreshToken mints a long-lived refresh token carrying only the user id.
	IssueRefreshToken(userID string) (string, error)

	// VerifyAccessToken validates signature, method, and expiry.
	// Returns ErrTokenExpired or ErrTokenInvalid on failure.
	VerifyAccessToken(token string) (domainauth.AccessClaims, error)

	// VerifyRefreshToken validates a refresh token against the refresh secret.
	VerifyRefreshToken(token string) (domainauth.RefreshClaims, error)
}

// BeginInput carries inputs for initiating a federated login flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// IdentityProvider initiates and completes an authentication flow against an IdP.
type IdentityProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// RateDecision is the outcome of a rate limit check.
type RateDecision struct {
	Allowed bool
	// Remaining is the number of attempts left in the current window.
	Remaining int
	// RetryAfter is how long until the oldest attempt ages out.
	// Meaningful only when Allowed is false.
	RetryAfter time.Duration
}

// RateLimiter bounds attempts per key over a sliding window. Every call
// counts as an attempt regardless of the eventual request outcome.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
