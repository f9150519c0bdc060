package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository using PostgreSQL.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// IncrementCounters upserts counters for the provided day.
func (r *AnalyticsRepositoryPG) IncrementCounters(ctx context.Context, day string, counters map[string]int64) error {
	query := `
INSERT INTO analytics_daily (
    day, page_views, donations_submitted, donations_verified, donations_rejected, amount_submitted, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, now()
) ON CONFLICT (day) DO UPDATE SET
    page_views = analytics_daily.page_views + EXCLUDED.page_views,
    donations_submitted = analytics_daily.donations_submitted + EXCLUDED.donations_submitted,
    donations_verified = analytics_daily.donations_verified + EXCLUDED.donations_verified,
    donations_rejected = analytics_daily.donations_rejected + EXCLUDED.donations_rejected,
    amount_submitted = analytics_daily.amount_submitted + EXCLUDED.amount_submitted,
    updated_at = now();
`
	_, err := r.pool.Exec(ctx, query,
		day,
		counters["page_views"],
		counters["donations_submitted"],
		counters["donations_verified"],
		counters["donations_rejected"],
		counters["amount_submitted"],
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// GetSummary returns the latest day's counters.
func (r *AnalyticsRepositoryPG) GetSummary(ctx context.Context) (*domain.AnalyticsDaily, error) {
	row := r.pool.QueryRow(ctx, `
SELECT day, page_views, donations_submitted, donations_verified, donations_rejected, amount_submitted, updated_at
FROM analytics_daily
ORDER BY day DESC
LIMIT 1;
`)

	var summary domain.AnalyticsDaily
	if err := row.Scan(
		&summary.Day,
		&summary.PageViews,
		&summary.DonationsSubmitted,
		&summary.DonationsVerified,
		&summary.DonationsRejected,
		&summary.AmountSubmitted,
		&summary.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.AnalyticsDaily{}, nil
		}
		return nil, storeErr(err)
	}
	return &summary, nil
}
