package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openquest/questlog/internal/data/pgxutil"
	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/ports"
)

// QuestRepo provides database operations for quests.
type QuestRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewQuestRepo creates a new QuestRepo with real time provider.
func NewQuestRepo(db *sql.DB) *QuestRepo {
	return &QuestRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewQuestRepoWithTimeProvider creates a new QuestRepo with a custom time provider (useful for tests).
func NewQuestRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *QuestRepo {
	return &QuestRepo{DB: db, timeProvider: tp}
}

const questColumnList = `id, title, xp, category, completed, created_at`

const (
	questGetByIDQuery = `
		SELECT ` + questColumnList + `
		FROM quests
		WHERE id = $1`

	questListQuery = `
		SELECT ` + questColumnList + `
		FROM quests
		ORDER BY created_at DESC`
)

// Create inserts a new quest.
func (r *QuestRepo) Create(ctx context.Context, req model.CreateQuestRequest) (model.Quest, error) {
	if err := req.Validate(); err != nil {
		return model.Quest{}, err
	}

	var out model.Quest
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO quests (id, title, xp, category, completed, created_at)
			VALUES ($1, $2, $3, $4, FALSE, $5)
			RETURNING `+questColumnList,
			uuid.NewString(),
			strings.TrimSpace(req.Title),
			req.XP,
			strings.TrimSpace(req.Category),
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Quest])
		return err
	}); err != nil {
		return model.Quest{}, fmt.Errorf("failed to create quest: %w", err)
	}
	return out, nil
}

// GetByID retrieves a quest by ID.
func (r *QuestRepo) GetByID(ctx context.Context, id string) (model.Quest, error) {
	var quest model.Quest
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, questGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		quest, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Quest])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Quest{}, ErrQuestNotFound
		}
		return model.Quest{}, fmt.Errorf("failed to get quest by ID: %w", err)
	}
	return quest, nil
}

// List retrieves all quests, newest first.
func (r *QuestRepo) List(ctx context.Context) ([]model.Quest, error) {
	var out []model.Quest
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, questListQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Quest])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	return out, nil
}

// MarkCompleted flips the quest to completed.
func (r *QuestRepo) MarkCompleted(ctx context.Context, id string) (model.Quest, error) {
	var out model.Quest
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE quests SET completed = TRUE
			WHERE id = $1
			RETURNING `+questColumnList, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Quest])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Quest{}, ErrQuestNotFound
		}
		return model.Quest{}, fmt.Errorf("failed to mark quest completed: %w", err)
	}
	return out, nil
}

// Count returns the number of quests.
func (r *QuestRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM quests`).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count quests: %w", err)
	}
	return count, nil
}

// DeleteAll removes every quest. Used by the seeder.
func (r *QuestRepo) DeleteAll(ctx context.Context) error {
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM quests`)
		return err
	}); err != nil {
		return fmt.Errorf("failed to delete quests: %w", err)
	}
	return nil
}

var _ ports.QuestStore = (*QuestRepo)(nil)
