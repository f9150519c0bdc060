package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
// The submit and reject paths run as single transactions with the item row
// locked, so the donated total always equals the donor-list sum and two
// concurrent submissions cannot jointly overshoot the target.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// Submit inserts the pending record and credits the item in one transaction.
func (r *DonationRepositoryPG) Submit(ctx context.Context, rec *domain.DonationRecord) (*domain.Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
SELECT id, name, description, target_amount, donated_amount, status, created_at, updated_at
FROM items
WHERE id = $1
FOR UPDATE;
`, rec.ItemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}

	// Remaining is re-checked under the lock: a concurrent submission that
	// committed first shrinks the budget for this one.
	if rec.Amount > item.Remaining() {
		return nil, domain.Validationf("amount cannot exceed remaining amount of " + item.Remaining().Display())
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO donations (id, item_id, donor_name, donor_email, donor_phone, amount, is_anonymous, transaction_ref, screenshot_url, status, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`, rec.ID, rec.ItemID, rec.DonorName, rec.DonorEmail, rec.DonorPhone, rec.Amount, rec.IsAnonymous, rec.TransactionRef, rec.ScreenshotURL, rec.Status, rec.SubmittedAt); err != nil {
		return nil, storeErr(err)
	}

	donorID := uuid.NewString()
	if _, err := tx.Exec(ctx, `
INSERT INTO item_donors (id, item_id, name, amount, is_anonymous, donation_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, donorID, rec.ItemID, rec.DonorName, rec.Amount, rec.IsAnonymous, rec.ID, rec.SubmittedAt); err != nil {
		return nil, storeErr(err)
	}

	updated, err := reconcileItem(ctx, tx, item, rec.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(err)
	}
	return updated, nil
}

// Verify marks a pending record as verified. It never touches the item
// ledger: the amount was credited at submission time.
func (r *DonationRepositoryPG) Verify(ctx context.Context, donationID, verifiedBy string, at time.Time) (*domain.DonationRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback(ctx)

	rec, err := getDonation(ctx, tx, donationID, true)
	if err != nil {
		return nil, err
	}
	switch rec.Status {
	case domain.DonationVerified:
		return rec, domain.ErrAlreadyVerified
	case domain.DonationRejected:
		return nil, domain.Validationf("donation was rejected and cannot be verified")
	}

	if _, err := tx.Exec(ctx, `
UPDATE donations SET status = $2, verified_at = $3, verified_by = $4 WHERE id = $1;
`, donationID, domain.DonationVerified, at, verifiedBy); err != nil {
		return nil, storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(err)
	}
	rec.Status = domain.DonationVerified
	rec.VerifiedAt = &at
	rec.VerifiedBy = verifiedBy
	return rec, nil
}

// Reject marks the record rejected and reverses its ledger credit in the same
// transaction. The record itself is retained for audit. A record whose
// contribution was never linked leaves the item untouched.
func (r *DonationRepositoryPG) Reject(ctx context.Context, donationID string) (*domain.DonationRecord, *domain.Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	defer tx.Rollback(ctx)

	rec, err := getDonation(ctx, tx, donationID, true)
	if err != nil {
		return nil, nil, err
	}
	if rec.Status == domain.DonationRejected {
		return rec, nil, nil
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
UPDATE donations SET status = $2 WHERE id = $1;
`, donationID, domain.DonationRejected); err != nil {
		return nil, nil, storeErr(err)
	}

	row := tx.QueryRow(ctx, `
SELECT id, name, description, target_amount, donated_amount, status, created_at, updated_at
FROM items
WHERE id = $1
FOR UPDATE;
`, rec.ItemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Item deleted after submission; the record transition alone
			// still goes through.
			if err := tx.Commit(ctx); err != nil {
				return nil, nil, storeErr(err)
			}
			rec.Status = domain.DonationRejected
			return rec, nil, nil
		}
		return nil, nil, storeErr(err)
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM item_donors WHERE item_id = $1 AND donation_id = $2;
`, rec.ItemID, donationID); err != nil {
		return nil, nil, storeErr(err)
	}

	updated, err := reconcileItem(ctx, tx, item, now)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, storeErr(err)
	}
	rec.Status = domain.DonationRejected
	return rec, updated, nil
}

// Get loads a single donation record.
func (r *DonationRepositoryPG) Get(ctx context.Context, id string) (*domain.DonationRecord, error) {
	return getDonation(ctx, r.pool, id, false)
}

// List returns donation records, newest first, optionally filtered by status.
func (r *DonationRepositoryPG) List(ctx context.Context, filter domain.DonationFilter) ([]domain.DonationRecord, error) {
	query := `
SELECT id, item_id, donor_name, donor_email, donor_phone, amount, is_anonymous, transaction_ref, screenshot_url, status, submitted_at, verified_at, verified_by
FROM donations
`
	var args []any
	if filter != "" && filter != domain.DonationsAll {
		query += `WHERE status = $1
`
		args = append(args, string(filter))
	}
	query += `ORDER BY submitted_at DESC;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var recs []domain.DonationRecord
	for rows.Next() {
		rec, err := scanDonation(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return recs, nil
}

// PendingStatsByItem aggregates still-pending records per item.
func (r *DonationRepositoryPG) PendingStatsByItem(ctx context.Context) (map[string]domain.PendingStats, error) {
	rows, err := r.pool.Query(ctx, `
SELECT item_id, COUNT(*), COALESCE(SUM(amount), 0)
FROM donations
WHERE status = 'pending'
GROUP BY item_id;
`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	stats := map[string]domain.PendingStats{}
	for rows.Next() {
		var itemID string
		var s domain.PendingStats
		if err := rows.Scan(&itemID, &s.Count, &s.Amount); err != nil {
			return nil, storeErr(err)
		}
		stats[itemID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return stats, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getDonation(ctx context.Context, q rowQuerier, id string, forUpdate bool) (*domain.DonationRecord, error) {
	query := `
SELECT id, item_id, donor_name, donor_email, donor_phone, amount, is_anonymous, transaction_ref, screenshot_url, status, submitted_at, verified_at, verified_by
FROM donations
WHERE id = $1
`
	if forUpdate {
		query += `FOR UPDATE`
	}
	rec, err := scanDonation(q.QueryRow(ctx, query+";", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return rec, nil
}

func scanDonation(row scannable) (*domain.DonationRecord, error) {
	var rec domain.DonationRecord
	if err := row.Scan(
		&rec.ID,
		&rec.ItemID,
		&rec.DonorName,
		&rec.DonorEmail,
		&rec.DonorPhone,
		&rec.Amount,
		&rec.IsAnonymous,
		&rec.TransactionRef,
		&rec.ScreenshotURL,
		&rec.Status,
		&rec.SubmittedAt,
		&rec.VerifiedAt,
		&rec.VerifiedBy,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// reconcileItem recomputes the donated total from the donor list inside the
// caller's transaction and persists it with the derived coarse status, so
// donated_amount == sum(item_donors.amount) holds after every commit.
func reconcileItem(ctx context.Context, tx pgx.Tx, item *domain.Item, at time.Time) (*domain.Item, error) {
	var donated domain.Amount
	if err := tx.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0) FROM item_donors WHERE item_id = $1;
`, item.ID).Scan(&donated); err != nil {
		return nil, storeErr(err)
	}

	status := coarseStatus(donated, item.Target)
	if _, err := tx.Exec(ctx, `
UPDATE items SET donated_amount = $2, status = $3, updated_at = $4 WHERE id = $1;
`, item.ID, donated, status, at); err != nil {
		return nil, storeErr(err)
	}

	donors, err := loadDonors(ctx, tx, item.ID)
	if err != nil {
		return nil, err
	}

	updated := *item
	updated.Donated = donated
	updated.Status = status
	updated.UpdatedAt = at
	updated.Donors = donors
	return &updated, nil
}
