package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shrusti-bit/project-shelter/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

// AuthLogin checks the admin credentials and issues a 24h session token.
// Invalid email and invalid password produce the same response.
func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != strings.ToLower(a.Cfg.AdminEmail) ||
		bcrypt.CompareHashAndPassword([]byte(a.Cfg.AdminPasswordHash), []byte(req.Password)) != nil {
		a.Logger.Warn().Str("email", email).Msg("failed admin login")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	exp := time.Now().Add(24 * time.Hour).Unix()
	token, err := middleware.SignJWT(a.Cfg.JWTSecret, middleware.TokenClaims{
		Sub:      email,
		Role:     middleware.RoleAdmin,
		Exp:      exp,
		Issuer:   "project-shelter",
		Audience: "admin-dashboard",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	a.Sink.Record(r.Context(), "admin_login", "Admin logged in", email)
	a.json(w, http.StatusOK, loginResponse{Token: token, Email: email, ExpiresAt: exp})
}

// AuthLogout only records the audit entry; tokens are stateless and expire on
// their own.
func (a *App) AuthLogout(w http.ResponseWriter, r *http.Request) {
	email := middleware.AdminEmailFromContext(r.Context())
	a.Sink.Record(r.Context(), "admin_logout", "Admin logged out", email)
	w.WriteHeader(http.StatusNoContent)
}
