package handlers

import (
	"net/http"
	"strconv"
	"time"
)

type activityDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *App) ActivityList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	entries, err := a.Activity.ListRecent(r.Context(), limit)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]activityDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityDTO{ID: e.ID, Type: e.Type, Details: e.Details, Actor: e.Actor, CreatedAt: e.CreatedAt})
	}
	a.json(w, http.StatusOK, map[string]any{"activity": out})
}
