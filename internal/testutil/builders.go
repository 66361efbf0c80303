package testutil

import (
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
)

// UserBuilder provides a fluent interface for building model.User fixtures.
type UserBuilder struct {
	user model.User
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		user: model.User{
			Username: "TestAdventurer",
			Email:    "adventurer@example.com",
			Role:     "user",
			Badges:   []string{},
		},
	}
}

// WithUsername sets the username.
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.user.Username = username
	return b
}

// WithEmail sets the email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

// WithPasswordHash sets the password hash.
func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = StringPtr(hash)
	return b
}

// WithGoogleID links the account to a Google subject.
func (b *UserBuilder) WithGoogleID(sub string) *UserBuilder {
	b.user.GoogleID = StringPtr(sub)
	return b
}

// WithRole sets the role.
func (b *UserBuilder) WithRole(role string) *UserBuilder {
	b.user.Role = domainauth.Role(role)
	return b
}

// WithBio sets the bio.
func (b *UserBuilder) WithBio(bio string) *UserBuilder {
	b.user.Bio = bio
	return b
}

// WithProgress sets xp, lifetime xp, and level.
func (b *UserBuilder) WithProgress(xp, totalXP, level int) *UserBuilder {
	b.user.XP = xp
	b.user.TotalXP = totalXP
	b.user.Level = level
	return b
}

// WithBadges sets the earned badge names.
func (b *UserBuilder) WithBadges(badges ...string) *UserBuilder {
	b.user.Badges = badges
	return b
}

// Build returns the constructed user.
func (b *UserBuilder) Build() model.User {
	return b.user
}

// QuestBuilder provides a fluent interface for building quest create requests.
type QuestBuilder struct {
	req model.CreateQuestRequest
}

// NewQuest creates a QuestBuilder with sensible defaults.
func NewQuest() *QuestBuilder {
	return &QuestBuilder{
		req: model.CreateQuestRequest{
			Title:    "Morning Meditation",
			XP:       50,
			Category: "wellness",
		},
	}
}

// WithTitle sets the quest title.
func (b *QuestBuilder) WithTitle(title string) *QuestBuilder {
	b.req.Title = title
	return b
}

// WithXP sets the XP reward.
func (b *QuestBuilder) WithXP(xp int) *QuestBuilder {
	b.req.XP = xp
	return b
}

// WithCategory sets the category.
func (b *QuestBuilder) WithCategory(category string) *QuestBuilder {
	b.req.Category = category
	return b
}

// Build returns the constructed request.
func (b *QuestBuilder) Build() model.CreateQuestRequest {
	return b.req
}

// BadgeBuilder provides a fluent interface for building model.Badge fixtures.
type BadgeBuilder struct {
	badge model.Badge
}

// NewBadge creates a BadgeBuilder with sensible defaults.
func NewBadge() *BadgeBuilder {
	return &BadgeBuilder{
		badge: model.Badge{
			Name:        "Early Bird",
			Description: "Complete a quest before 8 AM",
			XPRequired:  0,
		},
	}
}

// WithName sets the badge name.
func (b *BadgeBuilder) WithName(name string) *BadgeBuilder {
	b.badge.Name = name
	return b
}

// WithDescription sets the description.
func (b *BadgeBuilder) WithDescription(description string) *BadgeBuilder {
	b.badge.Description = description
	return b
}

// WithXPRequired sets the XP threshold.
func (b *BadgeBuilder) WithXPRequired(xp int) *BadgeBuilder {
	b.badge.XPRequired = xp
	return b
}

// Build returns the constructed badge.
func (b *BadgeBuilder) Build() model.Badge {
	return b.badge
}
