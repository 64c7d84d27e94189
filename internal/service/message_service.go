package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fivechairs_admin/internal/logging"
	"fivechairs_admin/internal/metrics"
	"fivechairs_admin/internal/models"
)

const (
	DefaultListLatency    = 200 * time.Millisecond
	DefaultDetailsLatency = 150 * time.Millisecond
)

// MessageSource - откуда берётся лог сообщений: мок-хранилище или PostgreSQL.
type MessageSource interface {
	List(ctx context.Context, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error)
	Details(ctx context.Context, messageUUID string) (*models.MessageDetails, error)
	// Generation меняется, когда меняется набор записей (для ключей кэша).
	Generation() string
	// Cutoff - текущая нижняя граница planned_at для периода; ok=false для "all".
	Cutoff(p models.Period) (time.Time, bool)
}

type MessageService struct {
	src            MessageSource
	name           string
	listLatency    time.Duration
	detailsLatency time.Duration
}

type MessageServiceOption func(*MessageService)

// WithLatency задаёт задержки списка и карточки. Нули выключают эмуляцию.
func WithLatency(list, details time.Duration) MessageServiceOption {
	return func(s *MessageService) {
		s.listLatency = max(list, 0)
		s.detailsLatency = max(details, 0)
	}
}

// WithSourceName - метка источника в метриках и логах (mock|postgres).
func WithSourceName(name string) MessageServiceOption {
	return func(s *MessageService) {
		if name != "" {
			s.name = name
		}
	}
}

func NewMessageService(src MessageSource, opts ...MessageServiceOption) *MessageService {
	s := &MessageService{
		src:            src,
		name:           "mock",
		listLatency:    DefaultListLatency,
		detailsLatency: DefaultDetailsLatency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MessageService) Generation() string { return s.src.Generation() }

func (s *MessageService) Cutoff(p models.Period) (time.Time, bool) {
	return s.src.Cutoff(models.ParsePeriod(string(p)))
}

// FetchMessages - страница лога по фильтрам. Пустой или битый курсор -> первая страница.
func (s *MessageService) FetchMessages(ctx context.Context, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error) {
	start := time.Now()
	defer func() { metrics.ObserveServiceCall("fetch_messages", time.Since(start)) }()

	if err := wait(ctx, s.listLatency); err != nil {
		return nil, err
	}

	filters = filters.Normalize()
	resp, err := s.src.List(ctx, filters, cursor)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	metrics.ObserveMessageList(s.name, resp.Total, resp.NextCursor != "")
	logging.Ctx(ctx).Debug().
		Str("source", s.name).
		Interface("filters", filters).
		Int("total", resp.Total).
		Int("page", len(resp.Items)).
		Bool("has_next", resp.NextCursor != "").
		Msg("messages listed")

	return resp, nil
}

// FetchMessageDetails - карточка сообщения. Неизвестный uuid -> models.ErrNotFound.
func (s *MessageService) FetchMessageDetails(ctx context.Context, messageUUID string) (*models.MessageDetails, error) {
	start := time.Now()
	defer func() { metrics.ObserveServiceCall("fetch_message_details", time.Since(start)) }()

	messageUUID = strings.TrimSpace(messageUUID)
	// пустой uuid в пуле не встречается: тот же NotFound без обращения к источнику
	if messageUUID == "" {
		metrics.IncMessageDetails(s.name, "not_found")
		return nil, fmt.Errorf("empty message_uuid: %w", models.ErrNotFound)
	}

	if err := wait(ctx, s.detailsLatency); err != nil {
		return nil, err
	}

	d, err := s.src.Details(ctx, messageUUID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		metrics.IncMessageDetails(s.name, "not_found")
		return nil, err
	case err != nil:
		metrics.IncMessageDetails(s.name, "error")
		return nil, fmt.Errorf("message details: %w", err)
	}

	metrics.IncMessageDetails(s.name, "found")
	return d, nil
}
