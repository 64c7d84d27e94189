package service

import (
	"context"
	"time"

	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/metrics"
	"fivechairs_admin/internal/models"
	"fivechairs_admin/internal/stats"
)

const DefaultStatsLatency = 300 * time.Millisecond

type StatsService struct {
	gen     *stats.Generator
	latency time.Duration
}

func NewStatsService(gen *stats.Generator, latency time.Duration) *StatsService {
	if gen == nil {
		gen = stats.NewGenerator()
	}
	if latency < 0 {
		latency = 0
	}
	return &StatsService{gen: gen, latency: latency}
}

// FetchStats - сводка для дашборда. Неизвестный период трактуется как 7d.
func (s *StatsService) FetchStats(ctx context.Context, filters models.StatsFilters) (*models.StatsPayload, error) {
	start := time.Now()
	defer func() { metrics.ObserveServiceCall("fetch_stats", time.Since(start)) }()

	payload, err := s.build(ctx, filters, "payload")
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchCharts - та же сводка, разложенная по сериям графиков.
func (s *StatsService) FetchCharts(ctx context.Context, filters models.StatsFilters) (*models.ChartBundle, error) {
	start := time.Now()
	defer func() { metrics.ObserveServiceCall("fetch_charts", time.Since(start)) }()

	payload, err := s.build(ctx, filters, "charts")
	if err != nil {
		return nil, err
	}
	return stats.Project(payload), nil
}

func (s *StatsService) build(ctx context.Context, filters models.StatsFilters, view string) (*models.StatsPayload, error) {
	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}

	filters.Period = models.ParsePeriod(string(filters.Period))
	payload := s.gen.Generate(filters)

	metrics.IncStatsGenerated(string(filters.Period), view)
	metrics.ObserveTimeseriesPoints(len(payload.Timeseries.NewUsersByDay))

	logging.Ctx(ctx).Debug().
		Str("period", string(filters.Period)).
		Str("source", filters.Source).
		Str("view", view).
		Int("new_users", payload.KPIs.NewUsers).
		Msg("stats generated")

	return payload, nil
}
