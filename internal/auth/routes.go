package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
)

// SetupRoutes returns the /auth router. Profile endpoints live outside
// /auth and are mounted by the top-level router.
func SetupRoutes(h *Handler, sessions middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Post("/logout", h.Logout)
		r.Post("/change-password", h.ChangePassword)
	})

	return r
}
