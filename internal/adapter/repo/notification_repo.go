package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// NotificationRepositoryPG implements domain.NotificationRepository using PostgreSQL.
type NotificationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repo.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{pool: pool}
}

// Create inserts a new unread notification.
func (r *NotificationRepositoryPG) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO notifications (id, type, message, item_id, read, created_at)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6);
`, n.ID, n.Type, n.Message, n.ItemID, n.Read, n.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// MarkRead flips the read flag; flipping an already-read notification is a no-op.
func (r *NotificationRepositoryPG) MarkRead(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE notifications SET read = TRUE, read_at = $2 WHERE id = $1 AND NOT read;
`, id, at)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		// Either unknown or already read; distinguish for the caller.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1);`, id).Scan(&exists); err != nil {
			return storeErr(err)
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}

// ListRecent returns the newest notifications limited by the input value.
func (r *NotificationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, type, message, COALESCE(item_id::text, ''), read, created_at, read_at
FROM notifications
ORDER BY created_at DESC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &n.ItemID, &n.Read, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, storeErr(err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// UnreadCount is the admin badge number polled by the dashboard.
func (r *NotificationRepositoryPG) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE NOT read;`).Scan(&count); err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}
