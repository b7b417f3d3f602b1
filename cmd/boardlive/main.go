package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/boardlive/internal/config"
	"github.com/gosuda/boardlive/internal/realtime"
	"github.com/gosuda/boardlive/internal/server"
	"github.com/gosuda/boardlive/internal/store/postgres"
	redisstore "github.com/gosuda/boardlive/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("BOARDLIVE_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("BOARDLIVE_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Fail fast: a process that cannot reach the broker would serve writes
	// that no watcher ever hears about.
	broker, err := redisstore.New(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer broker.Close()

	events := realtime.NewService(broker, realtime.Options{
		QueueSize:      cfg.Realtime.QueueSize,
		MaxBackoff:     cfg.Realtime.MaxBackoff,
		HealthInterval: cfg.Realtime.HealthInterval,
	})

	srv := server.New(ctx, cfg, store, events)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		return srv.Start(gctx)
	})

	g.Go(func() error {
		select {
		case <-events.Ready():
			log.Info().Msg("live updates subscribed")
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}
