package foods

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	r.Get("/", h.ListFoods)
	r.Post("/", h.CreateFood)
	r.Get("/{id}", h.GetFood)
	r.Put("/{id}", h.UpdateFood)
	r.Patch("/{id}", h.UpdateFood)
	r.Delete("/{id}", h.DeleteFood)

	return r
}
