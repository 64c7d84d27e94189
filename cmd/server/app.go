package main

import (
	"context"
	"fmt"
	"time"

	"fivechairs_admin/internal/config"
	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/messages"
	"fivechairs_admin/internal/metrics"
	"fivechairs_admin/internal/repository"
	"fivechairs_admin/internal/service"
	"fivechairs_admin/internal/stats"

	"github.com/jackc/pgx/v5/pgxpool"
)

// app - общая сборка зависимостей для serve и CLI-команд.
type app struct {
	cfg *config.Config
	loc *time.Location

	stats    *service.StatsService
	messages *service.MessageService

	db    *pgxpool.Pool   // nil, если database.dsn не задан
	store *messages.Store // nil, если сообщения берутся из БД
}

// withLatency=false для CLI: задержка мока нужна только дашборду.
func newApp(ctx context.Context, cfg *config.Config, withLatency bool) (*app, error) {
	loc, err := stats.LoadLocation(cfg.Mock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	a := &app{cfg: cfg, loc: loc}

	statsOpts := []stats.Option{stats.WithLocation(loc)}
	if cfg.Mock.Seed != 0 {
		statsOpts = append(statsOpts, stats.WithSeed(cfg.Mock.Seed))
	}

	statsLatency := cfg.Mock.StatsLatency
	listLatency, detailsLatency := cfg.Mock.ListLatency, cfg.Mock.DetailsLatency
	if !withLatency {
		statsLatency, listLatency, detailsLatency = 0, 0, 0
	}
	a.stats = service.NewStatsService(stats.NewGenerator(statsOpts...), statsLatency)

	var (
		src  service.MessageSource
		name string
	)
	if cfg.Database.DSN != "" {
		pool, err := repository.NewPool(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.db = pool
		src, name = repository.NewMessageRepository(pool, time.Now, loc), "postgres"
		// реальная БД: задержку не эмулируем
		listLatency, detailsLatency = 0, 0
	} else {
		storeOpts := []messages.StoreOption{
			messages.WithPoolSize(cfg.Mock.MessagesCount),
			messages.WithLocation(loc),
		}
		if cfg.Mock.Seed != 0 {
			storeOpts = append(storeOpts, messages.WithSeed(cfg.Mock.Seed))
		}
		a.store = messages.NewStore(storeOpts...)
		metrics.SetMessagePoolSize(a.store.Len())
		src, name = a.store, "mock"
	}

	a.messages = service.NewMessageService(src,
		service.WithSourceName(name),
		service.WithLatency(listLatency, detailsLatency),
	)

	logging.L().Info().
		Str("message_source", name).
		Str("timezone", loc.String()).
		Uint64("seed", cfg.Mock.Seed).
		Msg("app initialized")

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
