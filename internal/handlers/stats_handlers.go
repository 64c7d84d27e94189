package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/models"
)

// StatsService - методы сервисного слоя статистики, нужные хендлерам.
type StatsService interface {
	FetchStats(ctx context.Context, filters models.StatsFilters) (*models.StatsPayload, error)
	FetchCharts(ctx context.Context, filters models.StatsFilters) (*models.ChartBundle, error)
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// GET /admin/stats?period=&source=
// 200: StatsPayload
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.FetchStats(r.Context(), statsFilters(r))
	if err != nil {
		writeServiceError(w, r, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// GET /admin/stats/charts?period=&source=
// 200: ChartBundle
func (h *StatsHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.service.FetchCharts(r.Context(), statsFilters(r))
	if err != nil {
		writeServiceError(w, r, err, "charts")
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// X-Admin-Key читается, но пока не проверяется.
func statsFilters(r *http.Request) models.StatsFilters {
	q := r.URL.Query()
	return models.StatsFilters{
		Period:   models.ParsePeriod(q.Get("period")),
		Source:   strings.TrimSpace(q.Get("source")),
		AdminKey: r.Header.Get("X-Admin-Key"),
	}
}

// writeServiceError: клиент ушёл - ответ никому не нужен, в лог как ошибку не пишем.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, context.Canceled) {
		logging.Ctx(r.Context()).Debug().Str("op", what).Msg("request canceled by client")
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "timeout")
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("op", what).Msg("service call failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
