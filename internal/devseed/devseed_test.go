package devseed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/openquest/questlog/internal/domain/auth"
	mocksauth "github.com/openquest/questlog/internal/mocks/auth"
)

func memServices() Services {
	return Services{
		users:  mocksauth.NewMemoryUserStore(),
		quests: mocksauth.NewMemoryQuestStore(),
		badges: mocksauth.NewMemoryBadgeStore(),
	}
}

func TestRunSeedsEverything(t *testing.T) {
	svcs := memServices()

	require.NoError(t, Run(t.Context(), svcs, nil))

	quests, err := svcs.quests.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, quests, 5)

	badges, err := svcs.badges.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, badges, 5)

	admin, err := svcs.users.GetByEmail(t.Context(), AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, admin.Role)
	assert.Equal(t, "QuestMaster", admin.Username)
	require.NotNil(t, admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(AdminPassword)))

	board, err := svcs.users.Leaderboard(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, board, 5)
	assert.Equal(t, "DragonSlayer", board[0].Username)
	assert.Equal(t, 15, board[0].Level)
}

func TestRunIsIdempotent(t *testing.T) {
	svcs := memServices()

	require.NoError(t, Run(t.Context(), svcs, nil))
	require.NoError(t, Run(t.Context(), svcs, nil))

	quests, err := svcs.quests.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, quests, 5, "quests are not re-seeded")

	count, err := svcs.users.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, count, "users are not duplicated")
}

func TestDestroyRemovesAllData(t *testing.T) {
	svcs := memServices()

	require.NoError(t, Run(t.Context(), svcs, nil))
	require.NoError(t, Destroy(t.Context(), svcs, nil))

	count, err := svcs.users.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)

	quests, err := svcs.quests.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, quests)

	badges, err := svcs.badges.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, badges)
}
