// Package mocks provides mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// store interfaces. Hand-written in-memory doubles for the auth ports live in
// the auth subpackage; gomock is used where tests need strict expectation
// matching.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockUserStore(ctrl)
//	store.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
package mocks

// Generate mock for UserStore interface from internal/ports.
// This creates MockUserStore with methods for all UserStore interface methods:
// Create, GetByID, GetByEmail, GetByGoogleID, UpdateProfile, SaveProgress, Leaderboard, Count, DeleteAll
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_store_mock.go github.com/openquest/questlog/internal/ports UserStore
