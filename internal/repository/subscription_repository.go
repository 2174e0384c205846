package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/api/internal/models"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state and reports whether the subscriber is
// now subscribed to the channel.
func (r *SubscriptionRepository) Toggle(ctx context.Context, sub models.Subscription) (bool, error) {
	const deleteQuery = `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`
	cmd, err := r.pool.Exec(ctx, deleteQuery, sub.SubscriberID, sub.ChannelID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return false, nil
	}

	const insertQuery = `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, insertQuery, sub.ID, sub.SubscriberID, sub.ChannelID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, subscriberID, channelID).Scan(&exists)
	return exists, err
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`
	var count int64
	err := r.pool.QueryRow(ctx, query, channelID).Scan(&count)
	return count, err
}

func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`
	var count int64
	err := r.pool.QueryRow(ctx, query, subscriberID).Scan(&count)
	return count, err
}

func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, channelID string, limit, offset int) ([]models.User, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.created_at
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listUsers(ctx, query, channelID, limit, offset)
}

func (r *SubscriptionRepository) ListChannels(ctx context.Context, subscriberID string, limit, offset int) ([]models.User, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.created_at
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listUsers(ctx, query, subscriberID, limit, offset)
}

func (r *SubscriptionRepository) listUsers(ctx context.Context, query string, id string, limit, offset int) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.AvatarURL,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
