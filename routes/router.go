// Package routes assembles the HTTP API.
package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/auth"
	"github.com/gogofit/backend/internal/config"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/exercise"
	"github.com/gogofit/backend/internal/foodlogs"
	"github.com/gogofit/backend/internal/foods"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/logging"
	"github.com/gogofit/backend/internal/metrics"
	"github.com/gogofit/backend/internal/middleware"
	"github.com/gogofit/backend/internal/notifications"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the collaborators of the router. Mailer and Now are optional.
type Deps struct {
	DB     *gorm.DB
	Config config.Config
	Mailer auth.Mailer
	Now    func() time.Time
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func healthHandler(d *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx, d); err != nil {
			log.Error().Err(err).Msg("health check failed")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// New builds the API router.
func New(deps Deps) http.Handler {
	cfg := deps.Config
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location()

	notifyStore := notifications.NewStore(deps.DB)
	notifyStore.Now = now
	sessions := auth.SessionInfo{DB: deps.DB, Now: now}

	broker := auth.NewPasswordBroker(deps.DB, deps.Mailer, auth.BrokerOptions{
		AppURL:   cfg.AppURL,
		Expire:   cfg.PasswordResetExpire,
		Throttle: cfg.PasswordResetThrottle,
		Now:      now,
	})
	authHandler := auth.NewHandler(deps.DB, auth.Options{
		TokenTTL:      cfg.TokenTTL,
		DefaultLocale: cfg.AppLocale,
		Location:      loc,
		Broker:        broker,
		Notifier:      notifyStore,
		Now:           now,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.AccessLog)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperr.NotFound("Not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"message": "Method not allowed",
		})
	})

	r.Get("/", RootHandler)
	r.Get("/healthz", healthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Mount("/auth", auth.SetupRoutes(authHandler, sessions))
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Get("/user/profile", authHandler.GetProfile)
		r.Post("/update-profile", authHandler.UpdateProfile)
	})

	r.Mount("/foods", foods.SetupRoutes(foods.NewHandler(foods.NewStore(deps.DB)), sessions))
	r.Mount("/food-logs", foodlogs.SetupRoutes(foodlogs.NewHandler(foodlogs.NewStore(deps.DB), loc, now), sessions))
	r.Mount("/exercise-logs", exercise.SetupRoutes(exercise.NewHandler(exercise.NewStore(deps.DB), loc), sessions))
	r.Mount("/notifications", notifications.SetupRoutes(notifications.NewHandler(notifyStore), sessions))

	return r
}

// Models lists every table in dependency order.
func Models() []any {
	models := auth.Models()
	models = append(models, &foods.Food{}, &foodlogs.FoodLog{}, &exercise.ExerciseLog{}, &notifications.Notification{})
	return models
}

// InitModules auto-migrates every feature module.
func InitModules(d *gorm.DB) error {
	for _, initFn := range []func(*gorm.DB) error{
		auth.Init,
		foods.Init,
		foodlogs.Init,
		exercise.Init,
		notifications.Init,
	} {
		if err := initFn(d); err != nil {
			return err
		}
	}
	return nil
}
