package auth

// Package auth contains simple hand-written test doubles for auth ports and
// stores. These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openquest/questlog/internal/data"
	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.UserStore        = (*MemoryUserStore)(nil)
	_ ports.QuestStore       = (*MemoryQuestStore)(nil)
	_ ports.BadgeStore       = (*MemoryBadgeStore)(nil)
	_ ports.RateLimiter      = (*StaticRateLimiter)(nil)
)

// MockIdentityProvider simulates an IdP for tests with deterministic
// state/nonce handling.
type MockIdentityProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL         string
	StatePrefix     string
	NoncePrefix     string
	DefaultIdentity domainauth.Identity

	callCount int
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultIdentity: domainauth.Identity{
			Subject: "google-sub-1",
			Email:   "mock.user@example.com",
			Name:    "Mock User",
		},
	}
}

func (m *MockIdentityProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockIdentityProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	identity := m.DefaultIdentity
	if identity.Subject == "" {
		identity = domainauth.Identity{
			Subject: "google-sub-1",
			Email:   "mock.user@example.com",
			Name:    "Mock User",
		}
	}
	return identity, nil
}

// MemoryUserStore is an in-memory user store for unit tests. It mirrors the
// repository's uniqueness and defaulting behavior, including the data-layer
// sentinel errors services translate on.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	seq   int
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

func (m *MemoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = model.NormalizeEmail(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return model.User{}, data.ErrEmailExists
		}
		if u.GoogleID != nil && existing.GoogleID != nil && *existing.GoogleID == *u.GoogleID {
			return model.User{}, data.ErrGoogleIDExists
		}
	}

	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	if u.Role == "" {
		u.Role = domainauth.RoleUser
	}
	if u.Level <= 0 {
		u.Level = model.LevelForTotalXP(u.TotalXP)
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, data.ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = model.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, data.ErrUserNotFound
}

func (m *MemoryUserStore) GetByGoogleID(_ context.Context, googleID string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return model.User{}, data.ErrUserNotFound
}

func (m *MemoryUserStore) UpdateProfile(_ context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, data.ErrUserNotFound
	}

	if req.Email != nil {
		email := model.NormalizeEmail(*req.Email)
		for otherID, other := range m.users {
			if otherID != id && other.Email == email {
				return model.User{}, data.ErrEmailExists
			}
		}
		u.Email = email
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	u.UpdatedAt = time.Now().UTC()

	m.users[id] = u
	return u, nil
}

func (m *MemoryUserStore) SaveProgress(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[u.ID]
	if !ok {
		return model.User{}, data.ErrUserNotFound
	}

	stored.XP = u.XP
	stored.TotalXP = u.TotalXP
	stored.Level = u.Level
	stored.Badges = u.Badges
	stored.UpdatedAt = time.Now().UTC()

	m.users[u.ID] = stored
	return stored, nil
}

func (m *MemoryUserStore) Leaderboard(_ context.Context, limit int) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalXP != all[j].TotalXP {
			return all[i].TotalXP > all[j].TotalXP
		}
		return all[i].ID < all[j].ID
	})
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// SetRole changes a user's role directly. Test hook for exercising
// role-change visibility on live tokens.
func (m *MemoryUserStore) SetRole(id string, role domainauth.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Role = role
		m.users[id] = u
	}
}

func (m *MemoryUserStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemoryUserStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]model.User)
	return nil
}

// MemoryQuestStore is an in-memory quest store for unit tests.
type MemoryQuestStore struct {
	mu     sync.Mutex
	quests map[string]model.Quest
	order  []string
	seq    int
}

// NewMemoryQuestStore creates a new in-memory quest store.
func NewMemoryQuestStore() *MemoryQuestStore {
	return &MemoryQuestStore{quests: make(map[string]model.Quest)}
}

func (m *MemoryQuestStore) Create(_ context.Context, req model.CreateQuestRequest) (model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	q := model.Quest{
		ID:        fmt.Sprintf("quest-%d", m.seq),
		Title:     strings.TrimSpace(req.Title),
		XP:        req.XP,
		Category:  req.Category,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}
	m.quests[q.ID] = q
	m.order = append(m.order, q.ID)
	return q, nil
}

func (m *MemoryQuestStore) GetByID(_ context.Context, id string) (model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quests[id]
	if !ok {
		return model.Quest{}, data.ErrQuestNotFound
	}
	return q, nil
}

func (m *MemoryQuestStore) List(_ context.Context) ([]model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Newest first, matching the repository ordering.
	out := make([]model.Quest, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.quests[m.order[i]])
	}
	return out, nil
}

func (m *MemoryQuestStore) MarkCompleted(_ context.Context, id string) (model.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quests[id]
	if !ok {
		return model.Quest{}, data.ErrQuestNotFound
	}
	q.Completed = true
	m.quests[id] = q
	return q, nil
}

func (m *MemoryQuestStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quests), nil
}

func (m *MemoryQuestStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quests = make(map[string]model.Quest)
	m.order = nil
	return nil
}

// MemoryBadgeStore is an in-memory badge store for unit tests.
type MemoryBadgeStore struct {
	mu     sync.Mutex
	badges map[string]model.Badge
	seq    int
}

// NewMemoryBadgeStore creates a new in-memory badge store.
func NewMemoryBadgeStore() *MemoryBadgeStore {
	return &MemoryBadgeStore{badges: make(map[string]model.Badge)}
}

func (m *MemoryBadgeStore) Create(_ context.Context, b model.Badge) (model.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.badges {
		if existing.Name == b.Name {
			return model.Badge{}, data.ErrBadgeNameExists
		}
	}

	m.seq++
	b.ID = fmt.Sprintf("badge-%d", m.seq)
	m.badges[b.ID] = b
	return b, nil
}

func (m *MemoryBadgeStore) List(_ context.Context) ([]model.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Badge, 0, len(m.badges))
	for _, b := range m.badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].XPRequired < out[j].XPRequired })
	return out, nil
}

func (m *MemoryBadgeStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges = make(map[string]model.Badge)
	return nil
}

// StaticRateLimiter always returns the configured decision. Useful for
// exercising both branches of rate-limited handlers.
type StaticRateLimiter struct {
	Decision ports.RateDecision
	Err      error

	// Keys records every key passed to Allow, in order.
	Keys []string
}

// AllowAll returns a limiter that never blocks.
func AllowAll() *StaticRateLimiter {
	return &StaticRateLimiter{Decision: ports.RateDecision{Allowed: true, Remaining: 1}}
}

// DenyAll returns a limiter that always blocks with the given retry delay.
func DenyAll(retryAfter time.Duration) *StaticRateLimiter {
	return &StaticRateLimiter{Decision: ports.RateDecision{Allowed: false, RetryAfter: retryAfter}}
}

func (s *StaticRateLimiter) Allow(_ context.Context, key string) (ports.RateDecision, error) {
	s.Keys = append(s.Keys, key)
	if s.Err != nil {
		return ports.RateDecision{}, s.Err
	}
	return s.Decision, nil
}
