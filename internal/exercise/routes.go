package exercise

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(sessions))

	r.Get("/", h.ListExerciseLogs)
	r.Post("/", h.CreateExerciseLog)
	r.Get("/{id}", h.GetExerciseLog)
	r.Put("/{id}", h.UpdateExerciseLog)
	r.Patch("/{id}", h.UpdateExerciseLog)
	r.Delete("/{id}", h.DeleteExerciseLog)

	return r
}
