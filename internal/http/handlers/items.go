package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
	"github.com/shrusti-bit/project-shelter/internal/middleware"
)

type donorDTO struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	IsAnonymous bool    `json:"isAnonymous"`
}

type itemDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	TargetAmount    float64    `json:"targetAmount"`
	DonatedAmount   float64    `json:"donatedAmount"`
	VerifiedAmount  float64    `json:"verifiedAmount"`
	RemainingAmount float64    `json:"remainingAmount"`
	ProgressPercent float64    `json:"progressPercent"`
	Status          string     `json:"status"`
	CanDonate       bool       `json:"canDonate"`
	Donors          []donorDTO `json:"donors"`
	DonorDisplay    string     `json:"donorDisplay,omitempty"`
	PendingCount    int        `json:"pendingCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toItemDTO(v ledger.ItemView) itemDTO {
	donors := make([]donorDTO, 0, len(v.Donors))
	for _, d := range v.Donors {
		name := d.Name
		if d.IsAnonymous {
			name = "Anonymous"
		}
		donors = append(donors, donorDTO{Name: name, Amount: d.Amount.Decimal(), IsAnonymous: d.IsAnonymous})
	}
	progress := 0.0
	if v.Target > 0 {
		progress = float64(v.Donated) / float64(v.Target) * 100
		if progress > 100 {
			progress = 100
		}
	}
	return itemDTO{
		ID:              v.ID,
		Name:            v.Name,
		Description:     v.Description,
		TargetAmount:    v.Target.Decimal(),
		DonatedAmount:   v.Donated.Decimal(),
		VerifiedAmount:  v.Verified.Decimal(),
		RemainingAmount: v.Remaining().Decimal(),
		ProgressPercent: progress,
		Status:          string(v.Display),
		CanDonate:       v.CanDonate(),
		Donors:          donors,
		DonorDisplay:    v.DonorDisplay(),
		PendingCount:    v.Pending.Count,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// ItemsList serves the public item grid; ?filter= (or the tab's ?status=)
// narrows to available or funded. Each render counts as a page view for the
// daily analytics.
func (a *App) ItemsList(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = r.URL.Query().Get("status")
	}
	views, err := a.Ledger.ListItems(r.Context(), filter)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.Sink.Count(r.Context(), map[string]int64{"page_views": 1})

	items := make([]itemDTO, 0, len(views))
	for _, v := range views {
		items = append(items, toItemDTO(v))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ItemsGet(w http.ResponseWriter, r *http.Request) {
	view, err := a.Ledger.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toItemDTO(*view))
}

type itemCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"targetAmount" validate:"required,gt=0"`
}

func (a *App) ItemsCreate(w http.ResponseWriter, r *http.Request) {
	var req itemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
		return
	}
	actor := middleware.AdminEmailFromContext(r.Context())
	item, err := a.Ledger.CreateItem(r.Context(), req.Name, req.Description, domain.AmountFromDecimal(req.TargetAmount), actor)
	if err != nil {
		a.domainError(w, err)
		return
	}
	view, err := a.Ledger.GetItem(r.Context(), item.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toItemDTO(*view))
}

type itemUpdateRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"targetAmount" validate:"required,gt=0"`
	Status       string  `json:"status"`
	Donors       []struct {
		Name        string  `json:"name"`
		Amount      float64 `json:"amount"`
		IsAnonymous bool    `json:"isAnonymous"`
	} `json:"donors"`
}

// ItemsUpdate replaces an item's fields and donor list wholesale. This is the
// admin correction path; the donated total is recomputed from the donor list.
func (a *App) ItemsUpdate(w http.ResponseWriter, r *http.Request) {
	var req itemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
		return
	}
	donors := make([]domain.DonorContribution, 0, len(req.Donors))
	for _, d := range req.Donors {
		donors = append(donors, domain.DonorContribution{
			Name:        d.Name,
			Amount:      domain.AmountFromDecimal(d.Amount),
			IsAnonymous: d.IsAnonymous,
		})
	}
	actor := middleware.AdminEmailFromContext(r.Context())
	item, err := a.Ledger.EditItem(r.Context(), chi.URLParam(r, "id"), ledger.EditItemInput{
		Name:        req.Name,
		Description: req.Description,
		Target:      domain.AmountFromDecimal(req.TargetAmount),
		Status:      domain.ItemStatus(req.Status),
		Donors:      donors,
	}, actor)
	if err != nil {
		a.domainError(w, err)
		return
	}
	view, err := a.Ledger.GetItem(r.Context(), item.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toItemDTO(*view))
}

// ItemsDelete removes the item and its donor list. Donation records for the
// item are kept for the audit trail.
func (a *App) ItemsDelete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.AdminEmailFromContext(r.Context())
	if err := a.Ledger.DeleteItem(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
