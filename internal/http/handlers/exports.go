package handlers

import (
	"fmt"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/pkg/archive"
)

// ExportScreenshots bundles the payment screenshots of an item's donations
// into a zip download. Rejected donations are left out, and screenshots
// hosted off this instance are skipped rather than fetched.
func (a *App) ExportScreenshots(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	if _, err := a.Ledger.GetItem(r.Context(), itemID); err != nil {
		a.domainError(w, err)
		return
	}

	recs, err := a.Ledger.Donations(r.Context(), domain.DonationsAll)
	if err != nil {
		a.domainError(w, err)
		return
	}

	var files []archive.File
	for _, rec := range recs {
		if rec.ItemID != itemID || rec.Status == domain.DonationRejected || rec.ScreenshotURL == "" {
			continue
		}
		data, err := a.Uploads.ReadLocal(r.Context(), rec.ScreenshotURL)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("%s-%s%s", rec.Status, rec.ID, path.Ext(rec.ScreenshotURL))
		files = append(files, archive.File{Name: name, Data: data})
	}

	payload, err := archive.Bundle(files)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=item-%s-screenshots.zip", itemID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
