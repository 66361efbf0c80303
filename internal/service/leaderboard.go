package service

import (
	"context"

	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/ports"
)

// leaderboardSize is the number of entries shown on the public board.
const leaderboardSize = 10

// LeaderboardService serves the public leaderboard and badge catalog.
type LeaderboardService struct {
	users  ports.UserStore
	badges ports.BadgeStore
}

// NewLeaderboardService constructs a new LeaderboardService.
func NewLeaderboardService(users ports.UserStore, badges ports.BadgeStore) *LeaderboardService {
	return &LeaderboardService{users: users, badges: badges}
}

// Top returns the top users by lifetime XP with their rank assigned.
func (s *LeaderboardService) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	users, err := s.users.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	entries := make([]model.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = model.LeaderboardEntry{
			Rank:     i + 1,
			Username: u.Username,
			Level:    u.Level,
			TotalXP:  u.TotalXP,
		}
	}
	return entries, nil
}

// Badges returns the full badge catalog.
func (s *LeaderboardService) Badges(ctx context.Context) ([]model.Badge, error) {
	badges, err := s.badges.List(ctx)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return badges, nil
}
