package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/bootstrap"
	"fenrir/internal/config"
	"fenrir/internal/engine"
	"fenrir/internal/exchange"
	"fenrir/internal/httpapi"
	"fenrir/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg := config.Load()
	cfg.Log(logger)

	st, err := store.Open(cfg.DBPath, cfg.SQLEcho, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	index := store.NewBookIndex()
	if err := bootstrap.WarmBookIndex(ctx, st, index, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to warm book index")
	}

	eng := engine.New(index, newUUIDGen(), time.Now)
	x := exchange.New(st, eng)
	api := httpapi.New(x, eng, st, cfg.OrderBookDepth, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router()}

	var t tomb.Tomb
	t.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	select {
	case <-ctx.Done():
	case <-t.Dying():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("shutdown complete")
}
