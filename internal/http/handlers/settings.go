package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/middleware"
)

type settingsDTO struct {
	ProjectName     string `json:"projectName"`
	UPIQRCode       string `json:"upiQrCode,omitempty"`
	CertificateText string `json:"certificateText"`
}

// SettingsGet is public: the donation page needs the project name and the
// UPI QR code.
func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	s, err := a.Settings.Get(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, settingsDTO{
		ProjectName:     s.ProjectName,
		UPIQRCode:       s.UPIQRCode,
		CertificateText: s.CertificateText,
	})
}

func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if req.ProjectName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "projectName is required")
		return
	}
	s := domain.Settings{
		ProjectName:     req.ProjectName,
		UPIQRCode:       strings.TrimSpace(req.UPIQRCode),
		CertificateText: strings.TrimSpace(req.CertificateText),
		UpdatedAt:       time.Now(),
	}
	if s.CertificateText == "" {
		s.CertificateText = domain.DefaultSettings().CertificateText
	}
	if err := a.Settings.Save(r.Context(), s); err != nil {
		a.domainError(w, err)
		return
	}
	a.Sink.Record(r.Context(), "settings_updated", "Updated site settings", middleware.AdminEmailFromContext(r.Context()))
	a.json(w, http.StatusOK, settingsDTO{
		ProjectName:     s.ProjectName,
		UPIQRCode:       s.UPIQRCode,
		CertificateText: s.CertificateText,
	})
}
