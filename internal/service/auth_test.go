package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquest/questlog/config"
	"github.com/openquest/questlog/internal/adapters/jwtcodec"
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	mocksauth "github.com/openquest/questlog/internal/mocks/auth"
	"github.com/openquest/questlog/internal/ports"
)

func newTestCodec(t *testing.T, opts ...jwtcodec.Option) *jwtcodec.Codec {
	t.Helper()
	codec, err := jwtcodec.New(config.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	}, opts...)
	require.NoError(t, err)
	return codec
}

func newTestAuthService(t *testing.T) (*AuthService, *mocksauth.MemoryUserStore, *jwtcodec.Codec) {
	t.Helper()
	users := mocksauth.NewMemoryUserStore()
	codec := newTestCodec(t)
	svc := NewAuthService(AuthServiceOptions{
		Users:    users,
		Codec:    codec,
		Provider: mocksauth.NewMockIdentityProvider(),
	})
	return svc, users, codec
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, _, codec := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Aria",
		Email:    "aria@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.User.ID)
	assert.Equal(t, domainauth.RoleUser, registered.User.Role)
	assert.Nil(t, registered.User.GoogleID)

	// Access token carries the identity and role.
	claims, err := codec.VerifyAccessToken(registered.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, domainauth.RoleUser, claims.Role)
	assert.Equal(t, "Aria", claims.Username)

	// The same credentials log in.
	loggedIn, err := svc.Login(ctx, model.LoginRequest{
		Email:    "aria@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotEmpty(t, loggedIn.Tokens.RefreshToken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		Username: "",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	fields := make([]string, 0, len(appErr.Violations))
	for _, v := range appErr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fields)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	req := model.RegisterRequest{Username: "Aria", Email: "aria@example.com", Password: "hunter22"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Username = "Other"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "email", apperrors.GetField(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Aria", Email: "aria@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "aria@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))

	// Unknown accounts produce the same error, no account enumeration.
	_, err2 := svc.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err2)
	assert.True(t, apperrors.IsUnauthenticated(err2))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestAuthService_LoginGoogleOnlyAccount(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	sub := "google-sub-1"
	_, err := users.Create(ctx, model.User{
		Username: "Mock User",
		Email:    "mock.user@example.com",
		GoogleID: &sub,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "mock.user@example.com", Password: "anything"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Google")
}

func TestAuthService_GoogleLoginCreatesThenReuses(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	input := CompleteGoogleLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"}

	first, err := svc.CompleteGoogleLogin(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, first.User.GoogleID)
	assert.Equal(t, "google-sub-1", *first.User.GoogleID)
	assert.Equal(t, "Mock User", first.User.Username)
	assert.False(t, first.User.HasPassword())

	// Second callback with the same subject logs into the same account.
	second, err := svc.CompleteGoogleLogin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAuthService_GoogleLoginRejectsLocalEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// A password account already owns the email the IdP reports.
	_, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Local", Email: "mock.user@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.CompleteGoogleLogin(ctx, CompleteGoogleLoginInput{Code: "code", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Email already registered locally.")
}

func TestAuthService_GoogleLoginDisabled(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Users: mocksauth.NewMemoryUserStore(),
		Codec: newTestCodec(t),
	})

	_, _, _, err := svc.BeginGoogleLogin(context.Background(), "http://localhost:8080/auth/google/callback")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.CompleteGoogleLogin(context.Background(), CompleteGoogleLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAuthService_GoogleLoginExchangeFailure(t *testing.T) {
	provider := mocksauth.NewMockIdentityProvider()
	provider.ExchangeFunc = func(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, assert.AnError
	}
	svc := NewAuthService(AuthServiceOptions{
		Users:    mocksauth.NewMemoryUserStore(),
		Codec:    newTestCodec(t),
		Provider: provider,
	})

	_, err := svc.CompleteGoogleLogin(context.Background(), CompleteGoogleLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _, codec := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Aria", Email: "aria@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, registered.Tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := codec.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	// Refresh-minted tokens carry only the id; the middleware re-resolves
	// the user, so role and username are intentionally absent.
	assert.Empty(t, claims.Role)
	assert.Empty(t, claims.Username)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Aria", Email: "aria@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// An access token is signed with a different secret and must not refresh.
	_, err = svc.Refresh(ctx, registered.Tokens.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestAuthService_RefreshGarbage(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestAuthService_ResolveUser(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, model.RegisterRequest{
		Username: "Aria", Email: "aria@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	user, err := svc.ResolveUser(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "aria@example.com", user.Email)

	_, err = svc.ResolveUser(ctx, "missing-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Contains(t, err.Error(), "User not found")
}

func TestUsernameFromIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity domainauth.Identity
		want     string
	}{
		{
			name:     "uses display name",
			identity: domainauth.Identity{Name: "Mock User", Email: "mock@example.com"},
			want:     "Mock User",
		},
		{
			name:     "falls back to email local part",
			identity: domainauth.Identity{Email: "mock.user@example.com"},
			want:     "mock.user",
		},
		{
			name:     "last resort default",
			identity: domainauth.Identity{Email: ""},
			want:     "Adventurer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usernameFromIdentity(tt.identity))
		})
	}
}
