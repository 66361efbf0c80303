// Package devseed populates a development database with demo quests,
// badges, leaderboard users, and an admin account. Seeding is idempotent:
// existing records are skipped, not duplicated.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/openquest/questlog/internal/data"
	"github.com/openquest/questlog/internal/data/cryptoutil"
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/ports"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB     *sql.DB
	users  ports.UserStore
	quests ports.QuestStore
	badges ports.BadgeStore
}

// NewServices constructs the repositories required for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	encryptor := &cryptoutil.NoopEncryptor{} // Use noop for dev
	return Services{
		DB:     db,
		users:  data.NewUserRepo(db, encryptor),
		quests: data.NewQuestRepo(db),
		badges: data.NewBadgeRepo(db),
	}
}

// AdminEmail is the seeded admin account's login.
const AdminEmail = "questmaster@example.com"

// AdminPassword is the seeded admin account's password. Development only.
const AdminPassword = "password123"

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedQuests(ctx, svcs.quests, logger)
	failures += seedBadges(ctx, svcs.badges, logger)
	failures += seedLeaderboardUsers(ctx, svcs.users, logger)
	if err := seedAdmin(ctx, svcs.users, logger); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

// Destroy removes all seeded data: users, quests, and badges.
func Destroy(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if err := svcs.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	if err := svcs.quests.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete quests: %w", err)
	}
	if err := svcs.badges.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete badges: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "destroyed all seeded data")
	}
	return nil
}

func seedQuests(ctx context.Context, quests ports.QuestStore, logger *slog.Logger) int {
	// Quests have no natural unique key, so skip seeding entirely when
	// any already exist.
	count, err := quests.Count(ctx)
	if err != nil {
		if logger != nil {
			logger.ErrorContext(ctx, "failed to count quests", "error", err)
		}
		return 1
	}
	if count > 0 {
		if logger != nil {
			logger.InfoContext(ctx, "quests already seeded", "count", count)
		}
		return 0
	}

	requests := []model.CreateQuestRequest{
		{Title: "Morning Meditation", XP: 50, Category: "wellness"},
		{Title: "Exercise 30min", XP: 100, Category: "fitness"},
		{Title: "Read for 20min", XP: 75, Category: "learning"},
		{Title: "Drink 8 glasses of water", XP: 60, Category: "health"},
		{Title: "Practice coding", XP: 150, Category: "learning"},
	}

	failures := 0
	for _, req := range requests {
		if _, err := quests.Create(ctx, req); err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create quest", "title", req.Title, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "created quest", "title", req.Title, "xp", req.XP)
		}
	}
	return failures
}

func seedBadges(ctx context.Context, badges ports.BadgeStore, logger *slog.Logger) int {
	seed := []model.Badge{
		{Name: "Early Bird", Description: "Complete a quest before 8 AM", XPRequired: 0},
		{Name: "Fitness Enthusiast", Description: "Complete 10 fitness quests", XPRequired: 1000},
		{Name: "Bookworm", Description: "Complete 20 reading quests", XPRequired: 1500},
		{Name: "Legend", Description: "Reach level 10", XPRequired: 5000},
		{Name: "Master", Description: "Reach level 20", XPRequired: 10000},
	}

	failures := 0
	for _, b := range seed {
		created, err := createBadge(ctx, badges, b)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create badge", "name", b.Name, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "badge already exists"
			if created {
				msg = "created badge"
			}
			logger.InfoContext(ctx, msg, "name", b.Name)
		}
	}
	return failures
}

func createBadge(ctx context.Context, badges ports.BadgeStore, b model.Badge) (bool, error) {
	if _, err := badges.Create(ctx, b); err != nil {
		if errors.Is(err, data.ErrBadgeNameExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func seedLeaderboardUsers(ctx context.Context, users ports.UserStore, logger *slog.Logger) int {
	seed := []model.User{
		{Username: "DragonSlayer", Level: 15, TotalXP: 15000},
		{Username: "MysticMage", Level: 12, TotalXP: 12500},
		{Username: "ShadowNinja", Level: 10, TotalXP: 10200},
		{Username: "NoobSlayer", Level: 3, TotalXP: 1500},
	}

	failures := 0
	for _, u := range seed {
		u.Email = model.NormalizeEmail(u.Username + "@example.com")
		u.Role = domainauth.RoleUser

		created, err := createUser(ctx, users, u)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create user", "username", u.Username, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "user already exists"
			if created {
				msg = "created user"
			}
			logger.InfoContext(ctx, msg, "username", u.Username, "total_xp", u.TotalXP)
		}
	}
	return failures
}

func seedAdmin(ctx context.Context, users ports.UserStore, logger *slog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	hashStr := string(hash)

	admin := model.User{
		Username:     "QuestMaster",
		Email:        AdminEmail,
		PasswordHash: &hashStr,
		Role:         domainauth.RoleAdmin,
		Level:        5,
		XP:           1250,
		TotalXP:      3750,
		Badges:       []string{"Early Bird", "Bookworm"},
	}

	created, err := createUser(ctx, users, admin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if logger != nil {
		msg := "admin already exists"
		if created {
			msg = "created admin account"
		}
		logger.InfoContext(ctx, msg, "email", AdminEmail)
	}
	return nil
}

func createUser(ctx context.Context, users ports.UserStore, u model.User) (bool, error) {
	if _, err := users.Create(ctx, u); err != nil {
		if errors.Is(err, data.ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
