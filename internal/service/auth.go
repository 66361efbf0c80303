package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/openquest/questlog/internal/data"
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/observability/statsd"
	"github.com/openquest/questlog/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserStore
	Codec    ports.TokenCodec
	Provider ports.IdentityProvider // optional; Google login disabled when nil
	Metrics  statsd.Sink            // optional
}

// AuthService orchestrates registration, password login, federated login,
// and the refresh protocol.
type AuthService struct {
	users    ports.UserStore
	codec    ports.TokenCodec
	provider ports.IdentityProvider
	metrics  statsd.Sink
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		users:    opts.Users,
		codec:    opts.Codec,
		provider: opts.Provider,
		metrics:  opts.Metrics,
	}
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	User   model.User
	Tokens domainauth.TokenPair
}

// Register validates the request, hashes the password, creates the
// account with the user role, and issues a token pair.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*AuthResult, error) {
	if violations := req.Validate(); len(violations) > 0 {
		return nil, apperrors.ValidationErrors("Validation failed", toViolations(violations))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	user, err := s.users.Create(ctx, model.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		PasswordHash: &hashStr,
		Role:         domainauth.RoleUser,
	})
	if err != nil {
		if errors.Is(err, data.ErrEmailExists) {
			return nil, apperrors.ConflictField("email", "Email already registered")
		}
		return nil, apperrors.MapDBError(err)
	}

	tokens, err := s.TokensFor(user)
	if err != nil {
		return nil, err
	}

	s.count("auth.register.success")
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login verifies password credentials and issues a token pair. Missing
// accounts and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*AuthResult, error) {
	if violations := req.Validate(); len(violations) > 0 {
		return nil, apperrors.ValidationErrors("Validation failed", toViolations(violations))
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			s.count("auth.login.failure")
			return nil, apperrors.Unauthenticated("Invalid credentials")
		}
		return nil, apperrors.MapDBError(err)
	}

	if !user.HasPassword() {
		return nil, apperrors.Validation("This account uses Google sign-in. Please log in with Google.")
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		s.count("auth.login.failure")
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}

	tokens, err := s.TokensFor(user)
	if err != nil {
		return nil, err
	}

	s.count("auth.login.success")
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// BeginGoogleLogin initiates the federated flow and returns the provider
// auth URL with state and nonce.
func (s *AuthService) BeginGoogleLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error) {
	if s.provider == nil {
		return "", "", "", apperrors.NotFound("Google sign-in is not configured")
	}
	if redirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	authURL, state, nonce, err = s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return "", "", "", fmt.Errorf("begin auth flow: %w", err)
	}
	return authURL, state, nonce, nil
}

// CompleteGoogleLoginInput groups parameters for completing a federated login.
type CompleteGoogleLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteGoogleLogin exchanges the authorization code for an identity
// and resolves it to an account:
//   - a user already linked to this Google subject logs in;
//   - an unlinked email that exists locally is rejected, never merged;
//   - otherwise a new user-role account is created with no password.
func (s *AuthService) CompleteGoogleLogin(ctx context.Context, input CompleteGoogleLoginInput) (*AuthResult, error) {
	if s.provider == nil {
		return nil, apperrors.NotFound("Google sign-in is not configured")
	}
	if input.Code == "" {
		return nil, apperrors.Validation("authorization code is required")
	}
	if input.State == "" {
		return nil, apperrors.Validation("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, apperrors.Validation("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		s.count("auth.google.failure")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "Google sign-in failed")
	}

	user, err := s.resolveGoogleIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	tokens, err := s.TokensFor(user)
	if err != nil {
		return nil, err
	}

	s.count("auth.google.success")
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) resolveGoogleIdentity(ctx context.Context, identity domainauth.Identity) (model.User, error) {
	user, err := s.users.GetByGoogleID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, data.ErrUserNotFound) {
		return model.User{}, apperrors.MapDBError(err)
	}

	// Not linked yet. An existing local account with the same email is
	// rejected rather than silently merged.
	if _, emailErr := s.users.GetByEmail(ctx, identity.Email); emailErr == nil {
		return model.User{}, apperrors.ConflictField("email", "Email already registered locally.")
	} else if !errors.Is(emailErr, data.ErrUserNotFound) {
		return model.User{}, apperrors.MapDBError(emailErr)
	}

	googleID := identity.Subject
	created, err := s.users.Create(ctx, model.User{
		Username: usernameFromIdentity(identity),
		Email:    identity.Email,
		GoogleID: &googleID,
		Role:     domainauth.RoleUser,
	})
	if err != nil {
		return model.User{}, apperrors.MapDBError(err)
	}
	return created, nil
}

// Refresh verifies the refresh token and mints a new access token. The
// new token carries only the user id: role and username are not
// re-resolved here, the auth middleware's store lookup is the backstop
// for staleness.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.count("auth.refresh.failure")
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "Refresh token invalid")
	}

	access, err := s.codec.IssueAccessToken(domainauth.AccessClaims{UserID: claims.UserID})
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.count("auth.refresh.success")
	return access, nil
}

// TokensFor issues the access/refresh pair for a user.
func (s *AuthService) TokensFor(user model.User) (domainauth.TokenPair, error) {
	access, err := s.codec.IssueAccessToken(domainauth.AccessClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Username: user.Username,
	})
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken(user.ID)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ResolveUser loads the current user for verified access token claims.
// Used by the auth middleware so every gated request sees the current
// role, not the one minted into the token.
func (s *AuthService) ResolveUser(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return model.User{}, apperrors.Unauthenticated("User not found")
		}
		return model.User{}, apperrors.MapDBError(err)
	}
	return user, nil
}

func (s *AuthService) count(name string) {
	if s.metrics != nil {
		s.metrics.Count(name, 1, nil)
	}
}

func toViolations(fieldErrs []model.FieldError) []apperrors.FieldViolation {
	out := make([]apperrors.FieldViolation, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = apperrors.FieldViolation{Field: fe.Field, Message: fe.Message}
	}
	return out
}

// usernameFromIdentity derives a display name for accounts created via
// Google sign-in.
func usernameFromIdentity(identity domainauth.Identity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return "Adventurer"
}
