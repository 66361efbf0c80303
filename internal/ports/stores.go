package ports

import (
	"context"

	"github.com/openquest/questlog/internal/domain/model"
)

// UserStore persists and retrieves user accounts.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (model.User, error)

	// UpdateProfile applies the set fields of the request to the user.
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error)

	// SaveProgress persists xp, total_xp, level, and badges after a quest reward.
	SaveProgress(ctx context.Context, u model.User) (model.User, error)

	// Leaderboard returns up to limit users ordered by lifetime XP descending.
	Leaderboard(ctx context.Context, limit int) ([]model.User, error)

	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// QuestStore persists and retrieves quests.
type QuestStore interface {
	Create(ctx context.Context, req model.CreateQuestRequest) (model.Quest, error)
	GetByID(ctx context.Context, id string) (model.Quest, error)

	// List returns all quests, newest first.
	List(ctx context.Context) ([]model.Quest, error)

	// MarkCompleted flips the quest to completed.
	MarkCompleted(ctx context.Context, id string) (model.Quest, error)

	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// BadgeStore persists and retrieves badges.
type BadgeStore interface {
	Create(ctx context.Context, b model.Badge) (model.Badge, error)
	List(ctx context.Context) ([]model.Badge, error)
	DeleteAll(ctx context.Context) error
}
