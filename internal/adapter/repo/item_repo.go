package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// ItemRepositoryPG implements domain.ItemRepository using PostgreSQL.
type ItemRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new item repo.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepositoryPG {
	return &ItemRepositoryPG{pool: pool}
}

// Create inserts a fresh item with an empty donor list.
func (r *ItemRepositoryPG) Create(ctx context.Context, item *domain.Item) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO items (id, name, description, target_amount, donated_amount, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`, item.ID, item.Name, item.Description, item.Target, item.Donated, item.Status, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Get loads one item with its donor list, ordered by contribution time.
func (r *ItemRepositoryPG) Get(ctx context.Context, id string) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, description, target_amount, donated_amount, status, created_at, updated_at
FROM items
WHERE id = $1;
`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	donors, err := loadDonors(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	item.Donors = donors
	return item, nil
}

// List returns all items, newest first, with donor lists attached.
func (r *ItemRepositoryPG) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, description, target_amount, donated_amount, status, created_at, updated_at
FROM items
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var items []domain.Item
	index := map[string]int{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		index[item.ID] = len(items)
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	donorRows, err := r.pool.Query(ctx, `
SELECT item_id, id, name, amount, is_anonymous, COALESCE(donation_id::text, ''), created_at
FROM item_donors
WHERE item_id = ANY($1)
ORDER BY created_at;
`, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	defer donorRows.Close()
	for donorRows.Next() {
		var itemID string
		var d domain.DonorContribution
		if err := donorRows.Scan(&itemID, &d.ID, &d.Name, &d.Amount, &d.IsAnonymous, &d.DonationID, &d.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		if i, ok := index[itemID]; ok {
			items[i].Donors = append(items[i].Donors, d)
		}
	}
	if err := donorRows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// Replace overwrites the item's fields and donor list wholesale inside one
// transaction; the donated total is recomputed from the new donor list.
func (r *ItemRepositoryPG) Replace(ctx context.Context, item *domain.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
UPDATE items
SET name = $2, description = $3, target_amount = $4, donated_amount = $5, status = $6, updated_at = $7
WHERE id = $1;
`, item.ID, item.Name, item.Description, item.Target, item.Donated, item.Status, item.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM item_donors WHERE item_id = $1;`, item.ID); err != nil {
		return storeErr(err)
	}
	for _, d := range item.Donors {
		if _, err := tx.Exec(ctx, `
INSERT INTO item_donors (id, item_id, name, amount, is_anonymous, donation_id, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7);
`, d.ID, item.ID, d.Name, d.Amount, d.IsAnonymous, d.DonationID, d.CreatedAt); err != nil {
			return storeErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// Delete removes the item and, via cascade, its donor list. Donation records
// referencing the item are retained for audit.
func (r *ItemRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1;`, id)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Target,
		&item.Donated,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadDonors(ctx context.Context, q querier, itemID string) ([]domain.DonorContribution, error) {
	rows, err := q.Query(ctx, `
SELECT id, name, amount, is_anonymous, COALESCE(donation_id::text, ''), created_at
FROM item_donors
WHERE item_id = $1
ORDER BY created_at;
`, itemID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var donors []domain.DonorContribution
	for rows.Next() {
		var d domain.DonorContribution
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount, &d.IsAnonymous, &d.DonationID, &d.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return donors, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}

func coarseStatus(donated, target domain.Amount) domain.ItemStatus {
	if donated >= target {
		return domain.ItemFunded
	}
	return domain.ItemAvailable
}
