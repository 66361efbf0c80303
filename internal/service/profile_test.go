package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	mocksauth "github.com/openquest/questlog/internal/mocks/auth"
)

func TestProfileService_Get(t *testing.T) {
	users := mocksauth.NewMemoryUserStore()
	svc := NewProfileService(users)
	ctx := context.Background()

	user, err := users.Create(ctx, model.User{Username: "Aria", Email: "aria@example.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aria", got.Username)

	_, err = svc.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileService_Update(t *testing.T) {
	users := mocksauth.NewMemoryUserStore()
	svc := NewProfileService(users)
	ctx := context.Background()

	user, err := users.Create(ctx, model.User{Username: "Aria", Email: "aria@example.com"})
	require.NoError(t, err)

	bio := "Collector of rare herbs."
	updated, err := svc.Update(ctx, user.ID, model.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
}

func TestProfileService_UpdateNoFields(t *testing.T) {
	svc := NewProfileService(mocksauth.NewMemoryUserStore())

	_, err := svc.Update(context.Background(), "any", model.UpdateProfileRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProfileService_UpdateValidation(t *testing.T) {
	users := mocksauth.NewMemoryUserStore()
	svc := NewProfileService(users)
	ctx := context.Background()

	user, err := users.Create(ctx, model.User{Username: "Aria", Email: "aria@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   model.UpdateProfileRequest
		field string
	}{
		{
			name:  "username too short",
			req:   model.UpdateProfileRequest{Username: ptr("ab")},
			field: "username",
		},
		{
			name:  "username with digits",
			req:   model.UpdateProfileRequest{Username: ptr("Aria99")},
			field: "username",
		},
		{
			name:  "bad email",
			req:   model.UpdateProfileRequest{Email: ptr("nope")},
			field: "email",
		},
		{
			name:  "bio too long",
			req:   model.UpdateProfileRequest{Bio: ptr(strings.Repeat("a", 501))},
			field: "bio",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, user.ID, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			require.NotEmpty(t, appErr.Violations)
			assert.Equal(t, tt.field, appErr.Violations[0].Field)
		})
	}
}

func TestProfileService_UpdateEmailTaken(t *testing.T) {
	users := mocksauth.NewMemoryUserStore()
	svc := NewProfileService(users)
	ctx := context.Background()

	user, err := users.Create(ctx, model.User{Username: "Aria", Email: "aria@example.com"})
	require.NoError(t, err)
	_, err = users.Create(ctx, model.User{Username: "Brin", Email: "brin@example.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, user.ID, model.UpdateProfileRequest{Email: ptr("brin@example.com")})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "email", apperrors.GetField(err))
}

func ptr(s string) *string { return &s }
