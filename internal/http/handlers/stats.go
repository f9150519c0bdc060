package handlers

import "net/http"

// StatsDashboard serves the admin headline numbers plus the daily analytics
// counters. The analytics block is best-effort and omitted when unavailable.
func (a *App) StatsDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Ledger.Stats(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}

	out := map[string]any{
		"totalItems":     stats.TotalItems,
		"fundedItems":    stats.FundedItems,
		"totalDonations": stats.TotalDonations,
		"totalAmount":    stats.TotalAmount.Decimal(),
	}
	if summary, err := a.Analytics.GetSummary(r.Context()); err == nil && summary != nil {
		out["analytics"] = map[string]any{
			"day":                summary.Day,
			"pageViews":          summary.PageViews,
			"donationsSubmitted": summary.DonationsSubmitted,
			"donationsVerified":  summary.DonationsVerified,
			"donationsRejected":  summary.DonationsRejected,
			"amountSubmitted":    summary.AmountSubmitted.Decimal(),
			"conversionRate":     summary.ConversionRate(),
		}
	} else if err != nil {
		a.Logger.Warn().Err(err).Msg("analytics summary unavailable")
	}
	a.json(w, http.StatusOK, out)
}
