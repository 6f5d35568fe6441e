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

	router "github.com/dkeye/commcall/internal/adapters/http"
	wssignal "github.com/dkeye/commcall/internal/adapters/signal"
	"github.com/dkeye/commcall/internal/app"
	"github.com/dkeye/commcall/internal/app/orch"
	"github.com/dkeye/commcall/internal/config"
	"github.com/dkeye/commcall/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	registry := app.NewRegistry()
	calls := app.NewCallStore()
	history := core.NewHistory(cfg.HistoryCapacity)

	coordinator := &orch.Orchestrator{
		Registry:    registry,
		Calls:       calls,
		History:     history,
		Policy:      app.SimplePolicy{},
		ReplayLimit: cfg.HistoryReplay,
	}

	limiter := wssignal.NewSendRateLimiter(cfg.MessageRate, cfg.MessageWindow)
	ctl := wssignal.NewController(coordinator, limiter, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, ctl, calls)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Drop every live session so read pumps unblock and exit.
	for _, ep := range registry.Snapshot() {
		ep.Session.Signal().Close()
	}
	log.Info().Msg("server exited")
}
