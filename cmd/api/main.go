package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/theinvitelink/rsvp-service/internal/config"
	"github.com/theinvitelink/rsvp-service/internal/httpserver"
	"github.com/theinvitelink/rsvp-service/internal/retention"
	"github.com/theinvitelink/rsvp-service/internal/store"
)

// main boots the service: config → DB → schema → retention sweeper → HTTP server.
func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

	// Load runtime config from environment (DB_URL, ADMIN_KEY, SESSION_SECRET).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("store connect failed")
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	// Retention sweep honours the 30-day auto-delete promise shown to organizers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go retention.New(db, cfg.SweepInterval, cfg.RetentionDays, log).Run(ctx)

	// Build HTTP router (public event surface + admin-key moderation surface).
	router := httpserver.NewRouter(cfg, db, log)

	log.Info().Str("addr", cfg.Addr).Msg("server started")
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
