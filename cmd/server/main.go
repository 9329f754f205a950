package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/jsflux/encore/internal/adapters/http"
	"github.com/jsflux/encore/internal/adapters/janus"
	sigws "github.com/jsflux/encore/internal/adapters/signal"
	"github.com/jsflux/encore/internal/app"
	"github.com/jsflux/encore/internal/config"
	"github.com/jsflux/encore/internal/store"
	"github.com/jsflux/encore/internal/store/memory"
	"github.com/jsflux/encore/internal/store/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	var st store.Store
	if cfg.DatabaseDSN != "" {
		pg, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = memory.New()
		log.Warn().Msg("no database configured, using in-memory store")
	}

	presence := app.NewPresence()
	broker := app.NewBroker()
	relay := app.NewRelay(presence, broker)
	playback := app.NewPlayback(st)
	queue := app.NewQueue(st)

	api := &router.API{
		Store:    st,
		Relay:    relay,
		Playback: playback,
		Queue:    queue,
	}
	sigCtl := sigws.NewController(relay, broker, st, cfg.ReadLimit, cfg.PingPeriod)
	tunnel := janus.New(cfg.JanusURL)

	r := router.SetupRouter(ctx, cfg, api, sigCtl, tunnel)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Encore server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
