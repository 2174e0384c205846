package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/api/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

const videoColumns = `id, owner_id, file_url, thumbnail_url, title, description, duration, views, published, created_at, updated_at`

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) Create(ctx context.Context, video models.Video) error {
	const query = `
		INSERT INTO videos (
			id, owner_id, file_url, thumbnail_url, title, description, duration, views, published, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, 0, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		video.ID,
		video.OwnerID,
		video.FileURL,
		video.ThumbnailURL,
		video.Title,
		video.Description,
		video.Duration,
		video.Published,
	)
	return err
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (models.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id = $1`, videoColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *VideoRepository) UpdateDetails(ctx context.Context, id string, title, description string) error {
	const query = `
		UPDATE videos
		SET title = COALESCE(NULLIF($2, ''), title),
		    description = COALESCE(NULLIF($3, ''), description),
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, title, description)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) SetThumbnail(ctx context.Context, id string, url string) error {
	const query = `UPDATE videos SET thumbnail_url = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE videos SET published = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, published)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE videos SET views = views + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM videos WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

type VideoFilter struct {
	OwnerID         string
	Query           string
	IncludeUnlisted bool
	Limit           int
	Offset          int
}

func (r *VideoRepository) List(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE 1=1`, videoColumns)
	args := make([]any, 0, 4)

	if !filter.IncludeUnlisted {
		query += ` AND published = TRUE`
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) scanOne(row pgx.Row) (models.Video, error) {
	video, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

func (r *VideoRepository) scanRow(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
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
	)
	return video, err
}
