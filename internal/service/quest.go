package service

import (
	"context"
	"errors"
	"slices"

	"github.com/openquest/questlog/internal/data"
	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/observability/statsd"
	"github.com/openquest/questlog/internal/ports"
)

// QuestServiceOptions groups dependencies for QuestService.
type QuestServiceOptions struct {
	Quests  ports.QuestStore
	Users   ports.UserStore
	Badges  ports.BadgeStore
	Metrics statsd.Sink // optional
}

// QuestService lists quests and applies completion rewards.
type QuestService struct {
	quests  ports.QuestStore
	users   ports.UserStore
	badges  ports.BadgeStore
	metrics statsd.Sink
}

// NewQuestService constructs a new QuestService.
func NewQuestService(opts QuestServiceOptions) *QuestService {
	return &QuestService{
		quests:  opts.Quests,
		users:   opts.Users,
		badges:  opts.Badges,
		metrics: opts.Metrics,
	}
}

// List returns all quests, newest first.
func (s *QuestService) List(ctx context.Context) ([]model.Quest, error) {
	quests, err := s.quests.List(ctx)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return quests, nil
}

// CompleteResult is the outcome of completing a quest.
type CompleteResult struct {
	Quest model.Quest
	User  model.User
}

// Complete marks the quest completed and applies its reward to the user:
// XP is added to both the current and lifetime totals, the level is
// recomputed, and any badge whose threshold is now met is granted.
func (s *QuestService) Complete(ctx context.Context, questID, userID string) (*CompleteResult, error) {
	quest, err := s.quests.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, data.ErrQuestNotFound) {
			return nil, apperrors.NotFound("Quest not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	if quest.Completed {
		return nil, apperrors.Validation("Quest already completed")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.Unauthenticated("User not found")
		}
		return nil, apperrors.MapDBError(err)
	}

	quest, err = s.quests.MarkCompleted(ctx, questID)
	if err != nil {
		if errors.Is(err, data.ErrQuestNotFound) {
			return nil, apperrors.NotFound("Quest not found")
		}
		return nil, apperrors.MapDBError(err)
	}

	user.XP += quest.XP
	user.TotalXP += quest.XP
	user.Level = model.LevelForTotalXP(user.TotalXP)

	granted, err := s.grantEarnedBadges(ctx, &user)
	if err != nil {
		return nil, err
	}

	user, err = s.users.SaveProgress(ctx, user)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	if s.metrics != nil {
		s.metrics.Count("quests.completed", 1, nil)
		if granted > 0 {
			s.metrics.Count("badges.granted", int64(granted), nil)
		}
	}
	return &CompleteResult{Quest: quest, User: user}, nil
}

// grantEarnedBadges appends every badge whose threshold the user's
// lifetime XP now meets. Returns how many were newly granted.
func (s *QuestService) grantEarnedBadges(ctx context.Context, user *model.User) (int, error) {
	all, err := s.badges.List(ctx)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}

	granted := 0
	for _, badge := range all {
		if user.TotalXP < badge.XPRequired {
			continue
		}
		if slices.Contains(user.Badges, badge.Name) {
			continue
		}
		user.Badges = append(user.Badges, badge.Name)
		granted++
	}
	return granted, nil
}
