package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"fivechairs_admin/internal/cache"
	"fivechairs_admin/internal/config"
	"fivechairs_admin/internal/handlers"
	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/metrics"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFrom(cmd))
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errNoConfig
	}
	log := logging.With("server")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------- metrics ----------
	metrics.Register()

	// ---------- domain ----------
	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	// ---------- redis (опционально) ----------
	var respCache cache.Cache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rc.Close() }()

		if err := rc.Ping(ctx); err != nil {
			// без кэша работаем, просто медленнее
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, response cache disabled")
		} else {
			respCache = rc
			n, err := cache.ResetGeneration(ctx, rc, a.messages.Generation())
			if err != nil {
				log.Warn().Err(err).Msg("cache invalidation failed")
			} else if n > 0 {
				log.Info().Int("keys", n).Msg("stale cached responses dropped")
			}
			cache.StartRedisSizeCollector(gctx, rc.RawClient(), cfg.Redis.SizeInterval, logging.With("redis"))
		}
	}

	// ---------- db collectors ----------
	if a.db != nil {
		metrics.StartDBCollectors(gctx, a.db, cfg.Database.MetricsInterval, logging.With("db"))
	}

	// ---------- http ----------
	router := handlers.NewRouter(
		handlers.RouterConfig{
			CORSOrigins:       cfg.CORS.AllowedOrigins,
			RateLimitRequests: cfg.RateLimit.Requests,
			RateLimitWindow:   cfg.RateLimit.Window,
			RateLimitDisabled: cfg.RateLimit.Disabled,
		},
		handlers.NewStatsHandler(a.stats),
		handlers.NewMessageHandler(a.messages, respCache, cfg.Redis.TTL),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
