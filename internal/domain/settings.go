package domain

import "time"

// Settings is the single-row site configuration edited from the admin panel.
type Settings struct {
	ProjectName     string
	UPIQRCode       string
	CertificateText string
	UpdatedAt       time.Time
}

// DefaultSettings mirrors the values used before an admin has saved anything.
func DefaultSettings() Settings {
	return Settings{
		ProjectName:     "Project Shelter",
		CertificateText: "Thank you for your generous donation!",
	}
}

// AnalyticsDaily holds best-effort per-day counters for the admin dashboard.
type AnalyticsDaily struct {
	Day                string
	PageViews          int64
	DonationsSubmitted int64
	DonationsVerified  int64
	DonationsRejected  int64
	AmountSubmitted    Amount
	UpdatedAt          time.Time
}

// ConversionRate is submitted donations per page view, as a percentage.
func (a AnalyticsDaily) ConversionRate() float64 {
	if a.PageViews == 0 {
		return 0
	}
	return float64(a.DonationsSubmitted) / float64(a.PageViews) * 100
}
