package service

import (
	"context"
	"errors"

	"github.com/openquest/questlog/internal/data"
	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/ports"
)

// ProfileService reads and updates the caller's own profile.
type ProfileService struct {
	users ports.UserStore
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(users ports.UserStore) *ProfileService {
	return &ProfileService{users: users}
}

// Get loads a user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return model.User{}, apperrors.NotFound("User not found")
		}
		return model.User{}, apperrors.MapDBError(err)
	}
	return user, nil
}

// Update validates and applies profile changes.
func (s *ProfileService) Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.User, error) {
	if !req.HasUpdates() {
		return model.User{}, apperrors.Validation("at least one field must be updated")
	}
	if violations := req.Validate(); len(violations) > 0 {
		return model.User{}, apperrors.ValidationErrors("Validation failed", toViolations(violations))
	}

	user, err := s.users.UpdateProfile(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrUserNotFound):
			return model.User{}, apperrors.NotFound("User not found")
		case errors.Is(err, data.ErrEmailExists):
			return model.User{}, apperrors.ConflictField("email", "Email already registered")
		}
		return model.User{}, apperrors.MapDBError(err)
	}
	return user, nil
}
