package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/testutil"
)

func TestQuestRepo_Create(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewQuestRepo(db)

		q, err := repo.Create(ctx, testutil.NewQuest().
			WithTitle("  Read for 20 minutes  ").
			WithXP(75).
			WithCategory("learning").
			Build())
		require.NoError(t, err)

		assert.NotEmpty(t, q.ID)
		assert.Equal(t, "Read for 20 minutes", q.Title)
		assert.Equal(t, 75, q.XP)
		assert.Equal(t, "learning", q.Category)
		assert.False(t, q.Completed)
		assert.NotZero(t, q.CreatedAt)
	})
}

func TestQuestRepo_Create_Invalid(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewQuestRepo(db)

		_, err := repo.Create(ctx, model.CreateQuestRequest{Title: "   ", XP: 10})
		assert.Error(t, err)

		_, err = repo.Create(ctx, model.CreateQuestRequest{Title: "No reward", XP: 0})
		assert.Error(t, err)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestQuestRepo_List_NewestFirst(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewQuestRepoWithTimeProvider(db, tp)

		for _, title := range []string{"First quest", "Second quest", "Third quest"} {
			_, err := repo.Create(ctx, testutil.NewQuest().WithTitle(title).Build())
			require.NoError(t, err)
			tp.AddTime(time.Minute)
		}

		quests, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, quests, 3)
		assert.Equal(t, "Third quest", quests[0].Title)
		assert.Equal(t, "Second quest", quests[1].Title)
		assert.Equal(t, "First quest", quests[2].Title)
	})
}

func TestQuestRepo_MarkCompleted(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewQuestRepo(db)

		q, err := repo.Create(ctx, testutil.NewQuest().Build())
		require.NoError(t, err)
		require.False(t, q.Completed)

		done, err := repo.MarkCompleted(ctx, q.ID)
		require.NoError(t, err)
		assert.True(t, done.Completed)

		got, err := repo.GetByID(ctx, q.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)

		_, err = repo.MarkCompleted(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrQuestNotFound)
	})
}

func TestQuestRepo_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewQuestRepo(db)
		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrQuestNotFound)
	})
}

func TestQuestRepo_DeleteAll(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewQuestRepo(db)

		_, err := repo.Create(ctx, testutil.NewQuest().Build())
		require.NoError(t, err)

		require.NoError(t, repo.DeleteAll(ctx))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
