//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxQuestTitleLen = 255

// Quest represents a completable task worth XP.
type Quest struct {
	ID        string    `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	XP        int       `json:"xp"         db:"xp"`
	Category  string    `json:"category"   db:"category"`
	Completed bool      `json:"completed"  db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateQuestRequest represents parameters to create a Quest.
type CreateQuestRequest struct {
	Title    string `json:"title"`
	XP       int    `json:"xp"`
	Category string `json:"category"`
}

// Validate validates CreateQuestRequest.
func (r *CreateQuestRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxQuestTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if r.XP <= 0 {
		return errors.New("xp must be > 0")
	}
	return nil
}
