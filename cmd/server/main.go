package main

import (
	"context"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-server/internal/config"
	"github.com/lox/holdem-server/internal/driver"
	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/reactor"
)

type CLI struct {
	Bind   string `kong:"default=':4040',help='Address to listen on'"`
	Config string `kong:"help='Path to an HCL table configuration file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	BuyIn  int    `kong:"help='Override the configured buy-in amount'"`
	Seed   *int64 `kong:"help='Deterministic shuffle seed (omit for real randomness)'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdem-server"),
		kong.Description("Networked multi-user Texas Hold'em table"),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			logger.Error().Err(err).Str("path", cli.Config).Msg("failed to load table configuration")
			kctx.Exit(1)
		}
		cfg = loaded
	}
	if cli.BuyIn > 0 {
		cfg.Table.BuyIn = cli.BuyIn
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid table configuration")
		kctx.Exit(1)
	}

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	settings := cfg.Settings()
	state := game.NewGame(settings, rng)

	listener, err := net.Listen("tcp", cli.Bind)
	if err != nil {
		logger.Error().Err(err).Str("bind", cli.Bind).Msg("failed to listen")
		kctx.Exit(1)
	}
	logger.Info().
		Str("bind", cli.Bind).
		Uint32("buy_in", settings.BuyIn).
		Uint32("small_blind", settings.MinSmallBlind).
		Uint32("big_blind", settings.MinBigBlind).
		Int64("seed", seed).
		Msg("table listening")

	toDriver := make(chan reactor.Command, 256)
	fromDriver := make(chan reactor.Event, 256)

	rt := reactor.New(listener, toDriver, fromDriver, logger.With().Str("component", "reactor").Logger(), reactor.DefaultSettings())
	drv := driver.New(state, toDriver, fromDriver, logger.With().Str("component", "driver").Logger(), quartz.NewReal())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return rt.Run(gctx) })
	group.Go(func() error { return drv.Run(gctx) })

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	case <-gctx.Done():
	}
	cancel()

	if err := group.Wait(); err != nil {
		logger.Error().Err(err).Msg("table exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("table shutdown complete")
}
