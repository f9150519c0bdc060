package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
	"github.com/shrusti-bit/project-shelter/internal/middleware"
)

type donationSubmitRequest struct {
	ItemID         string  `json:"itemId" validate:"required"`
	DonorName      string  `json:"donorName" validate:"required,min=2"`
	DonorEmail     string  `json:"donorEmail" validate:"omitempty,email"`
	DonorPhone     string  `json:"donorPhone" validate:"omitempty,donorphone"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	IsAnonymous    bool    `json:"isAnonymous"`
	TransactionRef string  `json:"transactionRef"`
	ScreenshotURL  string  `json:"screenshotUrl"`
}

type donationDTO struct {
	ID             string     `json:"id"`
	ItemID         string     `json:"itemId"`
	DonorName      string     `json:"donorName"`
	DonorEmail     string     `json:"donorEmail,omitempty"`
	DonorPhone     string     `json:"donorPhone,omitempty"`
	Amount         float64    `json:"amount"`
	IsAnonymous    bool       `json:"isAnonymous"`
	TransactionRef string     `json:"transactionRef,omitempty"`
	ScreenshotURL  string     `json:"screenshotUrl,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty"`
	VerifiedBy     string     `json:"verifiedBy,omitempty"`
}

func toDonationDTO(rec *domain.DonationRecord) donationDTO {
	return donationDTO{
		ID:             rec.ID,
		ItemID:         rec.ItemID,
		DonorName:      rec.DonorName,
		DonorEmail:     rec.DonorEmail,
		DonorPhone:     rec.DonorPhone,
		Amount:         rec.Amount.Decimal(),
		IsAnonymous:    rec.IsAnonymous,
		TransactionRef: rec.TransactionRef,
		ScreenshotURL:  rec.ScreenshotURL,
		Status:         string(rec.Status),
		SubmittedAt:    rec.SubmittedAt,
		VerifiedAt:     rec.VerifiedAt,
		VerifiedBy:     rec.VerifiedBy,
	}
}

// DonationsSubmit records a donor's pledge and credits the item in the same
// store transaction.
func (a *App) DonationsSubmit(w http.ResponseWriter, r *http.Request) {
	var req donationSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
		return
	}
	rec, item, err := a.Ledger.Submit(r.Context(), ledger.SubmitInput{
		ItemID:         req.ItemID,
		DonorName:      req.DonorName,
		DonorEmail:     req.DonorEmail,
		DonorPhone:     req.DonorPhone,
		Amount:         domain.AmountFromDecimal(req.Amount),
		IsAnonymous:    req.IsAnonymous,
		TransactionRef: req.TransactionRef,
		ScreenshotURL:  req.ScreenshotURL,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"donation": toDonationDTO(rec),
		"item": map[string]any{
			"id":              item.ID,
			"donatedAmount":   item.Donated.Decimal(),
			"remainingAmount": item.Remaining().Decimal(),
		},
	})
}

// DonationsList serves the admin review queue; ?filter= (or ?status=)
// narrows by record status.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		raw = r.URL.Query().Get("status")
	}
	filter := domain.DonationFilter(raw)
	if filter == "" {
		filter = domain.DonationsAll
	}
	recs, err := a.Ledger.Donations(r.Context(), filter)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]donationDTO, 0, len(recs))
	for i := range recs {
		out = append(out, toDonationDTO(&recs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"donations": out})
}

// DonationsVerify marks a record verified. Verification is an audit step;
// the item was already credited at submission.
func (a *App) DonationsVerify(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminEmailFromContext(r.Context())
	rec, err := a.Ledger.Verify(r.Context(), chi.URLParam(r, "id"), admin)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) && rec != nil {
			a.json(w, http.StatusConflict, map[string]any{
				"error":    map[string]string{"code": "already_verified", "message": "donation is already verified"},
				"donation": toDonationDTO(rec),
			})
			return
		}
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"donation": toDonationDTO(rec)})
}

// DonationsReject marks a record rejected and reverses its credit on the
// item. The record stays in the list for the audit trail.
func (a *App) DonationsReject(w http.ResponseWriter, r *http.Request) {
	admin := middleware.AdminEmailFromContext(r.Context())
	rec, err := a.Ledger.Reject(r.Context(), chi.URLParam(r, "id"), admin)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"donation": toDonationDTO(rec)})
}
