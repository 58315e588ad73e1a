package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogofit/backend/internal/auth"
	"github.com/gogofit/backend/internal/config"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/logging"
	"github.com/gogofit/backend/routes"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; the default logger still writes JSON to stderr.
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	d, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() { _ = db.Close(d) }()

	if cfg.DBAutoMigrate {
		if err := routes.InitModules(d); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate")
		}
	}

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: routes.New(routes.Deps{
			DB:     d,
			Config: cfg,
			Mailer: auth.LogMailer{},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
