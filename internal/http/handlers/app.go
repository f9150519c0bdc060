// Package handlers holds the HTTP surface: public item browsing and donation
// submission, plus the JWT-guarded admin dashboard routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
	"github.com/shrusti-bit/project-shelter/internal/infra"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
	"github.com/shrusti-bit/project-shelter/internal/upload"
)

// App bundles the dependencies every handler needs.
type App struct {
	Ledger        *ledger.Service
	Uploads       *upload.Service
	Settings      domain.SettingsRepository
	Activity      domain.ActivityRepository
	Notifications domain.NotificationRepository
	Analytics     domain.AnalyticsRepository
	Sink          *event.Sink
	Bus           *event.Bus
	Cfg           *infra.Config
	Logger        zerolog.Logger

	validate *validator.Validate
}

func NewApp(svc *ledger.Service, uploads *upload.Service, settings domain.SettingsRepository, activity domain.ActivityRepository, notifications domain.NotificationRepository, analytics domain.AnalyticsRepository, sink *event.Sink, bus *event.Bus, cfg *infra.Config, logger zerolog.Logger) *App {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Donor phone numbers arrive in whatever format people type; accept
	// digits with common separators as long as at least ten digits remain.
	_ = v.RegisterValidation("donorphone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		digits := 0
		for _, r := range s {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case r == ' ' || r == '+' || r == '(' || r == ')' || r == '-':
			default:
				return false
			}
		}
		return digits >= 10
	})
	return &App{
		Ledger:        svc,
		Uploads:       uploads,
		Settings:      settings,
		Activity:      activity,
		Notifications: notifications,
		Analytics:     analytics,
		Sink:          sink,
		Bus:           bus,
		Cfg:           cfg,
		Logger:        logger,
		validate:      v,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{"error": map[string]string{"code": errCode, "message": message}})
}

// domainError maps the service error taxonomy onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrAlreadyVerified):
		a.error(w, http.StatusConflict, "already_verified", "donation is already verified")
	case errors.Is(err, domain.ErrUpload):
		a.error(w, http.StatusBadGateway, "upload_failed", "file upload failed")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// validationMessage flattens the first validator failure into a message a
// form can show inline.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		field := strings.ToLower(f.Field()[:1]) + f.Field()[1:]
		switch f.Tag() {
		case "required":
			return field + " is required"
		case "min":
			return field + " must be at least " + f.Param() + " characters"
		case "email":
			return field + " must be a valid email address"
		case "donorphone":
			return field + " must be a valid phone number"
		case "gt":
			return field + " must be greater than " + f.Param()
		}
		return field + " is invalid"
	}
	return "invalid payload"
}
