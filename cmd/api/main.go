package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_rating/internal/adapters/http_server"
	"hotel_rating/internal/adapters/observability"
	"hotel_rating/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogFile)
	log.Info().Str("config", cfg.String()).Msg("api starting")

	reg := observability.InitRegistry()
	if ms := observability.Serve(cfg.MetricsAddr, reg); ms != nil {
		defer func() { _ = ms.Close() }()
	}

	rt, err := shared.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring failed")
	}
	defer rt.Close()

	// an initial login is optional; clients may POST /v1/session instead
	if cfg.DBUser != "" {
		lctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		c, err := rt.Login(lctx, cfg)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("initial login failed")
		} else {
			log.Info().
				Bool("expected", c.HasExpectedTables).
				Str("namespace", c.ResolvedNamespace).
				Str("diagnostic", c.DiagnosticMessage).
				Msg("initial login ok")
		}
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: rt.S, Q: rt.Q, Admin: rt.Admin})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
