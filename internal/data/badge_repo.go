package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openquest/questlog/internal/data/pgxutil"
	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/ports"
)

// BadgeRepo provides database operations for badges.
type BadgeRepo struct {
	DB *sql.DB
}

// NewBadgeRepo creates a new BadgeRepo.
func NewBadgeRepo(db *sql.DB) *BadgeRepo {
	return &BadgeRepo{DB: db}
}

const badgeColumnList = `id, name, description, xp_required`

// Create inserts a new badge.
func (r *BadgeRepo) Create(ctx context.Context, b model.Badge) (model.Badge, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	var out model.Badge
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO badges (id, name, description, xp_required)
			VALUES ($1, $2, $3, $4)
			RETURNING `+badgeColumnList,
			b.ID,
			strings.TrimSpace(b.Name),
			b.Description,
			b.XPRequired,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Badge])
		return err
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Badge{}, ErrBadgeNameExists
		}
		return model.Badge{}, fmt.Errorf("failed to create badge: %w", err)
	}
	return out, nil
}

// List retrieves all badges ordered by their XP threshold.
func (r *BadgeRepo) List(ctx context.Context) ([]model.Badge, error) {
	var out []model.Badge
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+badgeColumnList+`
			FROM badges
			ORDER BY xp_required ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Badge])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return out, nil
}

// DeleteAll removes every badge. Used by the seeder.
func (r *BadgeRepo) DeleteAll(ctx context.Context) error {
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM badges`)
		return err
	}); err != nil {
		return fmt.Errorf("failed to delete badges: %w", err)
	}
	return nil
}

var _ ports.BadgeStore = (*BadgeRepo)(nil)
