package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	r.Get("/", h.List)
	r.Post("/{id}/mark-as-read", h.MarkAsRead)

	return r
}
