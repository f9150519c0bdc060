package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// SettingsRepositoryPG implements domain.SettingsRepository using PostgreSQL.
// Settings live in a single constrained row; Get on an empty table returns
// the defaults.
type SettingsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repo.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{pool: pool}
}

// Get loads the site settings, falling back to defaults when unset.
func (r *SettingsRepositoryPG) Get(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := r.pool.QueryRow(ctx, `
SELECT project_name, upi_qr_code, certificate_text, updated_at
FROM settings
WHERE id = 1;
`).Scan(&s.ProjectName, &s.UPIQRCode, &s.CertificateText, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, storeErr(err)
	}
	return s, nil
}

// Save upserts the single settings row.
func (r *SettingsRepositoryPG) Save(ctx context.Context, s domain.Settings) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO settings (id, project_name, upi_qr_code, certificate_text, updated_at)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
    project_name = EXCLUDED.project_name,
    upi_qr_code = EXCLUDED.upi_qr_code,
    certificate_text = EXCLUDED.certificate_text,
    updated_at = EXCLUDED.updated_at;
`, s.ProjectName, s.UPIQRCode, s.CertificateText, s.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}
