package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrusti-bit/project-shelter/internal/upload"
)

// UploadsCreate stores a payment screenshot and returns its hosted URL. A
// failed upload never blocks the donation itself; the client submits without
// the screenshot.
func (a *App) UploadsCreate(w http.ResponseWriter, r *http.Request) {
	var req upload.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Uploads.Store(r.Context(), req)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, res)
}
