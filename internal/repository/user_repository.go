package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenMismatch means a conditional session-token update found a
	// different stored value: the presented token was already rotated.
	ErrTokenMismatch = errors.New("session token mismatch")
)

const userColumns = `id, username, email, full_name, password_hash, role, session_token, avatar_url, cover_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, username, email, full_name, password_hash, role, avatar_url, cover_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.AvatarURL,
		user.CoverURL,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

// FindByIdentifier resolves a login identifier that may be either a
// username or an email address.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, identifier))
}

// SetSessionToken unconditionally overwrites the stored session token.
// This is the rotation point for a fresh issuance.
func (r *UserRepository) SetSessionToken(ctx context.Context, id string, token string) error {
	const query = `UPDATE users SET session_token = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SwapSessionToken replaces the stored session token only if it still
// equals prev. The conditional WHERE makes the compare-and-overwrite atomic
// at the store, so concurrent rotations cannot both win.
func (r *UserRepository) SwapSessionToken(ctx context.Context, id string, prev string, next string) error {
	const query = `
		UPDATE users SET session_token = $3, updated_at = NOW()
		WHERE id = $1 AND session_token = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, prev, next)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTokenMismatch
	}
	return nil
}

func (r *UserRepository) ClearSessionToken(ctx context.Context, id string) error {
	const query = `UPDATE users SET session_token = NULL, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// SetAssetSlot persists a remote asset reference into the named slot.
func (r *UserRepository) SetAssetSlot(ctx context.Context, id string, slot models.AssetSlot, url string) error {
	var query string
	switch slot {
	case models.SlotAvatar:
		query = `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`
	case models.SlotCover:
		query = `UPDATE users SET cover_url = $2, updated_at = NOW() WHERE id = $1`
	default:
		return fmt.Errorf("unknown asset slot %q", slot)
	}

	cmd, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fullName string, email string) error {
	const query = `
		UPDATE users
		SET full_name = COALESCE(NULLIF($2, ''), full_name),
		    email = COALESCE(NULLIF($3, ''), email),
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, fullName, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.SessionToken,
		&user.AvatarURL,
		&user.CoverURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
