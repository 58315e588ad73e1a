package foodlogs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	r.Get("/", h.ListFoodLogs)
	r.Post("/", h.CreateFoodLog)
	r.Get("/{id}", h.GetFoodLog)
	r.Put("/{id}", h.UpdateFoodLog)
	r.Patch("/{id}", h.UpdateFoodLog)
	r.Delete("/{id}", h.DeleteFoodLog)

	return r
}
