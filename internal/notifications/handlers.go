package notifications

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/utils"
)

type Handler struct {
	store *Store
}

func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	items, err := h.store.Unread(r.Context(), caller.UserID)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to fetch notifications", err))
		return
	}

	views := make([]View, 0, len(items))
	for _, n := range items {
		views = append(views, n.View())
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	err := h.store.MarkAsRead(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
		return
	}
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to update notification", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
