package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shrusti-bit/project-shelter/internal/http/handlers"
	"github.com/shrusti-bit/project-shelter/internal/middleware"
)

// NewRouter wires the public donation routes and the JWT-guarded admin
// dashboard routes.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
	)

	submitLimit := middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Get("/items", app.ItemsList)
		r.Get("/items/{id}", app.ItemsGet)
		r.Get("/settings", app.SettingsGet)
		r.Get("/stream", app.Stream)

		r.With(submitLimit).Post("/donations", app.DonationsSubmit)
		r.With(submitLimit).Post("/uploads", app.UploadsCreate)

		r.Route("/admin", func(r chi.Router) {
			r.With(submitLimit).Post("/login", app.AuthLogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminAuth(app.Cfg.JWTSecret))

				r.Post("/logout", app.AuthLogout)

				r.Post("/items", app.ItemsCreate)
				r.Put("/items/{id}", app.ItemsUpdate)
				r.Delete("/items/{id}", app.ItemsDelete)
				r.Get("/items/{id}/screenshots", app.ExportScreenshots)

				r.Get("/donations", app.DonationsList)
				r.Post("/donations/{id}/verify", app.DonationsVerify)
				r.Post("/donations/{id}/reject", app.DonationsReject)

				r.Get("/activity", app.ActivityList)
				r.Get("/notifications", app.NotificationsList)
				r.Get("/notifications/unread-count", app.NotificationsUnreadCount)
				r.Post("/notifications/{id}/read", app.NotificationsMarkRead)

				r.Get("/stats", app.StatsDashboard)
				r.Get("/settings", app.SettingsGet)
				r.Put("/settings", app.SettingsUpdate)
			})
		})
	})

	// Locally stored screenshots; external uploads are served by their host.
	if app.Cfg.StoragePath != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Cfg.StoragePath)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
