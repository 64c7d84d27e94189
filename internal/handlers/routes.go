package handlers

import (
	"net/http"
	"time"

	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

func NewRouter(cfg RouterConfig, stats *StatsHandler, msgs *MessageHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.AccessLog)
	r.Use(metrics.HTTPMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Key", "X-Request-Id"},
		ExposedHeaders: []string{headerCache, "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/admin", func(r chi.Router) {
		if !cfg.RateLimitDisabled && cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		RegisterStatsRoutes(r, stats)
		RegisterMessageRoutes(r, msgs)
	})

	return r
}

func RegisterStatsRoutes(r chi.Router, h *StatsHandler) {
	r.Get("/stats", h.GetStats)
	r.Get("/stats/charts", h.GetCharts)
}

func RegisterMessageRoutes(r chi.Router, h *MessageHandler) {
	r.Get("/messages", h.ListMessages)
	r.Get("/messages/{message_uuid}", h.GetMessage)
}
