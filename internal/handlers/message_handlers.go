package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fivechairs_admin/internal/cache"
	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/metrics"
	"fivechairs_admin/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// MessageService - методы сервисного слоя лога сообщений, нужные хендлерам.
type MessageService interface {
	FetchMessages(ctx context.Context, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error)
	FetchMessageDetails(ctx context.Context, messageUUID string) (*models.MessageDetails, error)
	Generation() string
	Cutoff(p models.Period) (time.Time, bool)
}

const (
	kindPage    = "messages_page"
	kindDetails = "message_details"
)

type MessageHandler struct {
	service MessageService
	cache   cache.Cache
	ttl     time.Duration
}

// NewMessageHandler: c == nil выключает кэширование ответов.
func NewMessageHandler(service MessageService, c cache.Cache, ttl time.Duration) *MessageHandler {
	return &MessageHandler{service: service, cache: c, ttl: ttl}
}

// GET /admin/messages?period=&module=&status=&type=&source=&user_id=&search=&cursor=
// 200: { "items": [...], "nextCursor": "...", "total": N }
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.MessageFilters{
		Period: models.Period(q.Get("period")),
		Module: q.Get("module"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Source: q.Get("source"),
		UserID: q.Get("user_id"),
		Search: q.Get("search"),
	}.Normalize()
	cursor := q.Get("cursor")

	key := ""
	if h.cache != nil {
		cutoff, _ := h.service.Cutoff(filters.Period)
		key = cache.MessagesPageKey(h.service.Generation(), filters, cursor, cutoff)
		if h.serveCached(w, r, key, kindPage) {
			return
		}
	}

	resp, err := h.service.FetchMessages(r.Context(), filters, cursor)
	if err != nil {
		writeServiceError(w, r, err, "list messages")
		return
	}
	h.writeAndStore(w, r, key, kindPage, resp)
}

// GET /admin/messages/{message_uuid}
// 200: MessageDetails
// 404: {"error":"message not found"}
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "message_uuid")

	key := ""
	if h.cache != nil {
		key = cache.MessageDetailsKey(h.service.Generation(), id)
		if h.serveCached(w, r, key, kindDetails) {
			return
		}
	}

	d, err := h.service.FetchMessageDetails(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeError(w, http.StatusNotFound, "message not found")
		default:
			writeServiceError(w, r, err, "message details")
		}
		return
	}
	h.writeAndStore(w, r, key, kindDetails, d)
}

func (h *MessageHandler) serveCached(w http.ResponseWriter, r *http.Request, key, kind string) bool {
	b, ok, err := h.cache.Get(r.Context(), key)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	if !ok {
		return false
	}
	metrics.IncCacheHit(kind)
	w.Header().Set(headerCache, cacheHit)
	writeRawJSON(w, http.StatusOK, b)
	return true
}

func (h *MessageHandler) writeAndStore(w http.ResponseWriter, r *http.Request, key, kind string, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("marshal response")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.cache != nil {
		metrics.IncCacheMiss(kind)
		w.Header().Set(headerCache, cacheMiss)
		if err := cache.Remember(r.Context(), h.cache, key, b, h.ttl); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("cache store failed")
		}
	}
	writeRawJSON(w, http.StatusOK, b)
}
