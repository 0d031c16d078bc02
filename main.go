package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/beltranomeara/guessgame/internal/config"
	"github.com/beltranomeara/guessgame/internal/draw"
	"github.com/beltranomeara/guessgame/internal/game"
	"github.com/beltranomeara/guessgame/internal/httpserver"
	"github.com/beltranomeara/guessgame/internal/pokeapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Log.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func run(ctx context.Context, cfg config.Config) error {
	ledger, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	drawer := draw.New(cfg.Game.SecretSource, cfg.Game.DailySalt)
	fetcher := pokeapi.RandomFetcher{
		Client: pokeapi.NewClient(cfg.PokeAPI.BaseURL, cfg.PokeAPI.Timeout),
		Drawer: drawer,
	}
	holder := game.NewHolder(fetcher, game.Options{
		DefaultMode: cfg.Game.DefaultMode,
		Policy:      cfg.Game.Policy,
		Drawer:      drawer,
	})
	api := httpserver.New(holder, ledger, httpserver.Options{
		ClientOrigin:   cfg.HTTP.ClientOrigin,
		HandlerTimeout: cfg.HTTP.HandlerTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.HTTP.Addr).
			Str("defaultMode", string(cfg.Game.DefaultMode)).
			Str("policy", string(cfg.Game.Policy)).
			Str("secrets", cfg.Game.SecretSource).
			Msg("starting guessgame server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
