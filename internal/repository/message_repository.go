package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fivechairs_admin/internal/messages"
	"fivechairs_admin/internal/metrics"
	"fivechairs_admin/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const messageTable = "message_log"

var itemColumns = []string{
	"message_uuid", "bot_id", "module", "user_id", "chat_id",
	"username", "source", "template_id", "type", "status",
	"planned_at", "sent_at", "failed_at", "telegram_message_id",
	"rendered_message", "content_hash", "http_status",
}

// MessageRepository - лог сообщений из PostgreSQL с тем же контрактом фильтров
// и пагинации, что у мок-хранилища.
type MessageRepository struct {
	db  Querier
	sb  sq.StatementBuilderType
	now func() time.Time
	loc *time.Location
}

func NewMessageRepository(db Querier, now func() time.Time, loc *time.Location) *MessageRepository {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = models.DefaultLocation()
	}
	return &MessageRepository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now: now,
		loc: loc,
	}
}

// Generation для ключей кэша: содержимое таблицы меняется само, полагаемся на TTL.
func (r *MessageRepository) Generation() string { return "pg" }

func (r *MessageRepository) Cutoff(p models.Period) (time.Time, bool) {
	return messages.PeriodCutoff(p, r.now(), r.loc)
}

func (r *MessageRepository) List(ctx context.Context, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error) {
	c := messages.ParseCursor(cursor)
	countQ, dataQ := r.listQueries(filters, c)

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count messages sql: %w", err)
	}

	var total int64
	start := time.Now()
	err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total)
	observe("count_messages", start, err)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	dataSQL, dataArgs, err := dataQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select messages sql: %w", err)
	}

	start = time.Now()
	rows, err := r.db.Query(ctx, dataSQL, dataArgs...)
	observe("list_messages", start, err)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	items := make([]models.MessageItem, 0, messages.PageSize)
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	resp := &models.MessagesResponse{Items: items, Total: int(total)}
	if c.Offset+messages.PageSize < int(total) {
		resp.NextCursor = messages.Cursor{Offset: c.Offset + messages.PageSize}.Token()
	}
	return resp, nil
}

func (r *MessageRepository) Details(ctx context.Context, messageUUID string) (*models.MessageDetails, error) {
	cols := append(append([]string{}, itemColumns...), "request_body", "response_body", "versions", "events")
	q := r.sb.Select(cols...).
		From(messageTable).
		Where(sq.Eq{"message_uuid": messageUUID})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build message details sql: %w", err)
	}

	var (
		d                 models.MessageDetails
		reqBody, respBody pgtype.Text
		versions, events  []byte
	)

	start := time.Now()
	row := r.db.QueryRow(ctx, sqlStr, args...)
	d.MessageItem, err = scanItem(row, &reqBody, &respBody, &versions, &events)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("message_details", start, nil)
		return nil, fmt.Errorf("message %q: %w", messageUUID, models.ErrNotFound)
	}
	observe("message_details", start, err)
	if err != nil {
		return nil, err
	}

	d.RequestBody = textPtr(reqBody)
	d.ResponseBody = textPtr(respBody)
	if len(versions) > 0 {
		if err := json.Unmarshal(versions, &d.Versions); err != nil {
			return nil, fmt.Errorf("decode versions: %w", err)
		}
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &d.Events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
	}
	return &d, nil
}

// listQueries строит COUNT и страницу по одному и тому же WHERE.
func (r *MessageRepository) listQueries(filters models.MessageFilters, c messages.Cursor) (count, data sq.SelectBuilder) {
	where := r.where(filters.Normalize())

	count = r.sb.Select("COUNT(*)").From(messageTable).Where(where)
	data = r.sb.Select(itemColumns...).
		From(messageTable).
		Where(where).
		OrderBy("planned_at DESC", "message_uuid ASC").
		Limit(uint64(messages.PageSize)).
		Offset(uint64(c.Offset))
	return count, data
}

// where повторяет порядок предикатов мок-фильтра: period, module, status, type, source, user_id, search.
func (r *MessageRepository) where(f models.MessageFilters) sq.And {
	where := sq.And{}

	if cutoff, ok := messages.PeriodCutoff(f.Period, r.now(), r.loc); ok {
		where = append(where, sq.GtOrEq{"planned_at": cutoff})
	}
	if f.Module != models.FilterAll {
		where = append(where, sq.Eq{"module": f.Module})
	}
	if f.Status != models.FilterAll {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.Type != models.FilterAll {
		where = append(where, sq.Eq{"type": f.Type})
	}
	// NULL ILIKE даёт NULL: записи без source/username отсекаются сами
	if f.Source != "" {
		where = append(where, sq.ILike{"source": containsPattern(f.Source)})
	}
	if f.UserID != "" {
		p := containsPattern(f.UserID)
		where = append(where, sq.Or{sq.ILike{"user_id": p}, sq.ILike{"username": p}})
	}
	if f.Search != "" {
		where = append(where, sq.Expr(
			"COALESCE(NULLIF(rendered_message->>'text', ''), rendered_message->>'caption') ILIKE ?",
			containsPattern(f.Search),
		))
	}
	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern экранирует спецсимволы LIKE: подстрока ищется буквально.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// scanItem читает колонки itemColumns и, при необходимости, дополнительные.
func scanItem(row pgx.Row, extra ...any) (models.MessageItem, error) {
	var (
		m                          models.MessageItem
		username, source, template pgtype.Text
		sentAt, failedAt           pgtype.Timestamptz
		telegramID                 pgtype.Int8
		httpStatus                 pgtype.Int4
		rendered                   []byte
	)

	dest := []any{
		&m.MessageUUID, &m.BotID, &m.Module, &m.UserID, &m.ChatID,
		&username, &source, &template, &m.Type, &m.Status,
		&m.PlannedAt, &sentAt, &failedAt, &telegramID,
		&rendered, &m.ContentHash, &httpStatus,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan message row: %w", err)
	}

	m.Username = textPtr(username)
	m.Source = textPtr(source)
	m.TemplateID = textPtr(template)
	m.SentAt = timePtr(sentAt)
	m.FailedAt = timePtr(failedAt)
	if telegramID.Valid {
		v := telegramID.Int64
		m.TelegramMessageID = &v
	}
	if httpStatus.Valid {
		v := int(httpStatus.Int32)
		m.HTTPStatus = &v
	}
	if err := json.Unmarshal(rendered, &m.RenderedMessage); err != nil {
		return m, fmt.Errorf("decode rendered_message: %w", err)
	}
	return m, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func observe(query string, start time.Time, err error) {
	metrics.ObserveDBQuery(query, time.Since(start))
	if err != nil && !errors.Is(err, context.Canceled) {
		metrics.IncDBError(query)
	}
}
