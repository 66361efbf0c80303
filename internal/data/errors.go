package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User repository sentinels.
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already registered")
	ErrGoogleIDExists = errors.New("google account already linked")

	// Quest repository sentinels.
	ErrQuestNotFound = errors.New("quest not found")

	// Badge repository sentinels.
	ErrBadgeNameExists = errors.New("badge name already exists")
)
