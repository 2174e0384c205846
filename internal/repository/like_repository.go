package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/api/internal/models"
)

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Toggle flips the like state for (user, target) and reports the new state.
// The delete-then-insert keeps a unique index on (user_id, target, target_id)
// authoritative under concurrent toggles.
func (r *LikeRepository) Toggle(ctx context.Context, like models.Like) (bool, error) {
	const deleteQuery = `
		DELETE FROM likes WHERE user_id = $1 AND target = $2 AND target_id = $3
	`
	cmd, err := r.pool.Exec(ctx, deleteQuery, like.UserID, like.Target, like.TargetID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return false, nil
	}

	const insertQuery = `
		INSERT INTO likes (id, user_id, target, target_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, target, target_id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, insertQuery, like.ID, like.UserID, like.Target, like.TargetID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID string, target models.LikeTarget, targetID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM likes WHERE user_id = $1 AND target = $2 AND target_id = $3
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, target, targetID).Scan(&exists)
	return exists, err
}

func (r *LikeRepository) CountForTarget(ctx context.Context, target models.LikeTarget, targetID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM likes WHERE target = $1 AND target_id = $2`
	var count int64
	err := r.pool.QueryRow(ctx, query, target, targetID).Scan(&count)
	return count, err
}

// ListLikedVideos returns published videos the user has liked, most recent
// like first.
func (r *LikeRepository) ListLikedVideos(ctx context.Context, userID string, limit, offset int) ([]models.Video, error) {
	const query = `
		SELECT v.id, v.owner_id, v.file_url, v.thumbnail_url, v.title, v.description,
		       v.duration, v.views, v.published, v.created_at, v.updated_at
		FROM likes l
		JOIN videos v ON v.id = l.target_id
		WHERE l.user_id = $1 AND l.target = 'video' AND v.published = TRUE
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID,
			&video.OwnerID,
			&video.FileURL,
			&video.ThumbnailURL,
			&video.Title,
			&video.Description,
			&video.Duration,
			&video.Views,
			&video.Published,
			&video.CreatedAt,
			&video.UpdatedAt,
		); err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
