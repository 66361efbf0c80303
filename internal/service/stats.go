package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/ports"
)

// Stats summarizes system counts for the admin dashboard.
type Stats struct {
	TotalUsers  int `json:"totalUsers"`
	TotalQuests int `json:"totalQuests"`
}

// StatsService aggregates counts for the admin-only stats endpoint.
type StatsService struct {
	users  ports.UserStore
	quests ports.QuestStore
}

// NewStatsService constructs a new StatsService.
func NewStatsService(users ports.UserStore, quests ports.QuestStore) *StatsService {
	return &StatsService{users: users, quests: quests}
}

// Collect gathers the counts concurrently.
func (s *StatsService) Collect(ctx context.Context) (Stats, error) {
	var stats Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		if err != nil {
			return err
		}
		stats.TotalUsers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.quests.Count(gctx)
		if err != nil {
			return err
		}
		stats.TotalQuests = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, apperrors.MapDBError(err)
	}
	return stats, nil
}
