package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type notificationDTO struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	ItemID    string     `json:"itemId,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

func (a *App) NotificationsList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	items, err := a.Notifications.ListRecent(r.Context(), limit)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, notificationDTO{
			ID: n.ID, Type: n.Type, Message: n.Message, ItemID: n.ItemID,
			Read: n.Read, CreatedAt: n.CreatedAt, ReadAt: n.ReadAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"notifications": out})
}

func (a *App) NotificationsUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := a.Notifications.UnreadCount(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]int{"unread": count})
}

func (a *App) NotificationsMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := a.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), time.Now()); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
