package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/mocks"
	mocksauth "github.com/openquest/questlog/internal/mocks/auth"
)

func TestStatsService_Collect(t *testing.T) {
	users := mocksauth.NewMemoryUserStore()
	quests := mocksauth.NewMemoryQuestStore()
	svc := NewStatsService(users, quests)
	ctx := context.Background()

	_, err := users.Create(ctx, model.User{Username: "Aria", Email: "aria@example.com"})
	require.NoError(t, err)
	_, err = users.Create(ctx, model.User{Username: "Brin", Email: "brin@example.com"})
	require.NoError(t, err)
	_, err = quests.Create(ctx, model.CreateQuestRequest{Title: "Slay", XP: 100})
	require.NoError(t, err)

	stats, err := svc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalQuests)
}

func TestStatsService_CollectUserCountError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockUserStore(ctrl)
	users.EXPECT().Count(gomock.Any()).Return(0, assert.AnError)

	svc := NewStatsService(users, mocksauth.NewMemoryQuestStore())

	_, err := svc.Collect(context.Background())
	require.Error(t, err)
}
