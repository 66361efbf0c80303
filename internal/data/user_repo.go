package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openquest/questlog/internal/data/cryptoutil"
	"github.com/openquest/questlog/internal/data/pgxutil"
	"github.com/openquest/questlog/internal/domain/model"
	"github.com/openquest/questlog/internal/ports"
)

// UserRepo provides database operations for users. Bios are encrypted
// before writes and decrypted after reads; the rest of the application
// only ever sees plaintext.
type UserRepo struct {
	DB           *sql.DB
	encryptor    cryptoutil.Encryptor
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB, enc cryptoutil.Encryptor) *UserRepo {
	return &UserRepo{DB: db, encryptor: enc, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, enc cryptoutil.Encryptor, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, encryptor: enc, timeProvider: tp}
}

const userColumnList = `id, username, email, password_hash, google_id, bio, role, level, xp, total_xp, badges, created_at, updated_at`

const (
	userGetByIDQuery = `
		SELECT ` + userColumnList + `
		FROM users
		WHERE id = $1`

	userGetByEmailQuery = `
		SELECT ` + userColumnList + `
		FROM users
		WHERE email = $1`

	userGetByGoogleIDQuery = `
		SELECT ` + userColumnList + `
		FROM users
		WHERE google_id = $1`

	userLeaderboardQuery = `
		SELECT ` + userColumnList + `
		FROM users
		ORDER BY total_xp DESC, created_at ASC
		LIMIT $1`
)

// Create inserts a new user. The ID is assigned here when the caller
// leaves it empty.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Level <= 0 {
		u.Level = model.LevelForTotalXP(u.TotalXP)
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}

	encBio, err := r.encryptor.Encrypt([]byte(u.Bio))
	if err != nil {
		return model.User{}, fmt.Errorf("encrypt bio: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (
				id, username, email, password_hash, google_id, bio, role, level, xp, total_xp, badges, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12
			) RETURNING `+userColumnList,
			u.ID,
			strings.TrimSpace(u.Username),
			model.NormalizeEmail(u.Email),
			u.PasswordHash,
			u.GoogleID,
			encBio,
			u.Role,
			u.Level,
			u.XP,
			u.TotalXP,
			u.Badges,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return model.User{}, r.mapWriteErr(err, false)
	}
	return r.decryptBio(out)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, "failed to get user by ID", id)
}

// GetByEmail retrieves a user by case-normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getByQuery(ctx, userGetByEmailQuery, "failed to get user by email", model.NormalizeEmail(email))
}

// GetByGoogleID retrieves a user by their linked Google subject.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	return r.getByQuery(ctx, userGetByGoogleIDQuery, "failed to get user by google id", googleID)
}

// UpdateProfile applies the set fields of the request. Validation is the
// caller's responsibility.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if req.Username != nil {
		setParts = append(setParts, fmt.Sprintf("username = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Username))
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", nextIdx()))
		args = append(args, model.NormalizeEmail(*req.Email))
	}
	if req.Bio != nil {
		encBio, err := r.encryptor.Encrypt([]byte(*req.Bio))
		if err != nil {
			return model.User{}, fmt.Errorf("encrypt bio: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("bio = $%d", nextIdx()))
		args = append(args, encBio)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + userColumnList

	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return model.User{}, r.mapWriteErr(err, true)
	}
	return r.decryptBio(out)
}

// SaveProgress persists xp, total_xp, level, and badges after a quest reward.
func (r *UserRepo) SaveProgress(ctx context.Context, u model.User) (model.User, error) {
	if u.Badges == nil {
		u.Badges = []string{}
	}
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE users
			SET xp = $1, total_xp = $2, level = $3, badges = $4, updated_at = $5
			WHERE id = $6
			RETURNING `+userColumnList,
			u.XP,
			u.TotalXP,
			u.Level,
			u.Badges,
			r.timeProvider.Now().UTC(),
			u.ID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return model.User{}, r.mapWriteErr(err, true)
	}
	return r.decryptBio(out)
}

// Leaderboard returns up to limit users ordered by lifetime XP descending.
func (r *UserRepo) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var rowsOut []model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, userLeaderboardQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	for i := range rowsOut {
		u, err := r.decryptBio(rowsOut[i])
		if err != nil {
			return nil, err
		}
		rowsOut[i] = u
	}
	return rowsOut, nil
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// DeleteAll removes every user. Used by the seeder.
func (r *UserRepo) DeleteAll(ctx context.Context) error {
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM users`)
		return err
	}); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

// --- helpers ---

func (r *UserRepo) getByQuery(ctx context.Context, q, errMsg string, args ...any) (model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("%s: %w", errMsg, err)
	}
	return r.decryptBio(user)
}

func (r *UserRepo) decryptBio(u model.User) (model.User, error) {
	plain, err := r.encryptor.Decrypt(u.Bio)
	if err != nil {
		return model.User{}, fmt.Errorf("decrypt bio for user %s: %w", u.ID, err)
	}
	u.Bio = string(plain)
	return u, nil
}

func (r *UserRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "google_id") {
			return ErrGoogleIDExists
		}
		return ErrEmailExists
	}
	return err
}

var _ ports.UserStore = (*UserRepo)(nil)
