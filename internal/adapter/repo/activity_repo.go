package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// ActivityRepositoryPG implements domain.ActivityRepository using PostgreSQL.
type ActivityRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new activity repo.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepositoryPG {
	return &ActivityRepositoryPG{pool: pool}
}

// Append inserts one audit entry. There is no update or delete path.
func (r *ActivityRepositoryPG) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO activity (id, type, details, actor, created_at)
VALUES ($1, $2, $3, $4, $5);
`, entry.ID, entry.Type, entry.Details, entry.Actor, entry.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// ListRecent returns the newest entries limited by the input value.
func (r *ActivityRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, type, details, actor, created_at
FROM activity
ORDER BY created_at DESC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Details, &e.Actor, &e.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}
