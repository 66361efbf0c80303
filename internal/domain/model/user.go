//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openquest/questlog/internal/domain/auth"
)

const (
	minPasswordLen = 6
	minUsernameLen = 3
	maxUsernameLen = 50
	maxBioLen      = 500
)

var (
	// emailPattern is a permissive shape check; real validation is
	// delivery. Matches the original wire contract.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// profileUsernamePattern restricts display names to letters and spaces.
	profileUsernamePattern = regexp.MustCompile(`^[a-zA-Z ]+$`)

	// bioPattern restricts bios to a conservative printable charset.
	bioPattern = regexp.MustCompile(`^[a-zA-Z0-9\s.,!?'"()-]*$`)
)

// FieldError is a single itemized validation failure tied to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// User represents a registered account. PasswordHash is nil for
// Google-only accounts. Bio is stored encrypted at rest; the repository
// layer decrypts it before the struct reaches services.
type User struct {
	ID           string     `json:"id"         db:"id"`
	Username     string     `json:"username"   db:"username"`
	Email        string     `json:"email"      db:"email"`
	PasswordHash *string    `json:"-"          db:"password_hash"`
	GoogleID     *string    `json:"-"          db:"google_id"`
	Bio          string     `json:"bio"        db:"bio"`
	Role         auth.Role  `json:"role"       db:"role"`
	Level        int        `json:"level"      db:"level"`
	XP           int        `json:"xp"         db:"xp"`
	TotalXP      int        `json:"totalXP"    db:"total_xp"`
	Badges       []string   `json:"badges"     db:"badges"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// LevelForTotalXP computes a user's level from lifetime XP.
// Every 1000 XP is one level; level starts at 1.
func LevelForTotalXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/1000 + 1
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest represents parameters to create a password account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns every failing field rather than stopping at the first,
// so the client can render all problems at once.
func (r *RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, FieldError{Field: "username", Message: "Username is required"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		errs = append(errs, FieldError{Field: "email", Message: "A valid email is required"})
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLen {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	return errs
}

// LoginRequest represents password login parameters.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates LoginRequest.
func (r *LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// UpdateProfileRequest represents parameters to update the caller's profile.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateProfileRequest) HasUpdates() bool {
	return r.Username != nil || r.Email != nil || r.Bio != nil
}

// Validate validates UpdateProfileRequest, itemizing failures per field.
func (r *UpdateProfileRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Username != nil {
		name := strings.TrimSpace(*r.Username)
		n := utf8.RuneCountInString(name)
		switch {
		case n < minUsernameLen || n > maxUsernameLen:
			errs = append(errs, FieldError{Field: "username", Message: "Username must be 3-50 characters"})
		case !profileUsernamePattern.MatchString(name):
			errs = append(errs, FieldError{Field: "username", Message: "Username may only contain letters and spaces"})
		default:
			*r.Username = name
		}
	}
	if r.Email != nil && !emailPattern.MatchString(strings.TrimSpace(*r.Email)) {
		errs = append(errs, FieldError{Field: "email", Message: "A valid email is required"})
	}
	if r.Bio != nil {
		switch {
		case utf8.RuneCountInString(*r.Bio) > maxBioLen:
			errs = append(errs, FieldError{Field: "bio", Message: "Bio cannot exceed 500 characters"})
		case !bioPattern.MatchString(*r.Bio):
			errs = append(errs, FieldError{Field: "bio", Message: "Bio contains unsupported characters"})
		}
	}
	return errs
}
