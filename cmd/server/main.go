package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saiputravu/ladderbook/internal/config"
	"github.com/saiputravu/ladderbook/internal/engine"
	"github.com/saiputravu/ladderbook/internal/matcher"
	"github.com/saiputravu/ladderbook/internal/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	eng := engine.New(cfg.Symbols, matcher.FIFO{}, cfg.MailboxDepth)
	srv := transport.New(cfg.Address, cfg.Port, eng)

	go func() {
		if err := eng.Run(ctx); err != nil {
			log.Error().Err(err).Msg("engine stopped")
		}
	}()

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("transport stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
}
