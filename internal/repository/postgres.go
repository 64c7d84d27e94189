package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier - то, что нужно репозиторию от пула (и от транзакции в тестах/миграциях).
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("db dsn is empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}

	// админка читает редко и немного
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 1 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// Schema таблицы лога исходящих сообщений, которую читает MessageRepository.
// Пишет в неё отправщик бота.
const Schema = `
CREATE TABLE IF NOT EXISTS message_log (
	message_uuid        TEXT PRIMARY KEY,
	bot_id              TEXT        NOT NULL,
	module              TEXT        NOT NULL,
	user_id             TEXT        NOT NULL,
	chat_id             TEXT        NOT NULL,
	username            TEXT,
	source              TEXT,
	template_id         TEXT,
	type                TEXT        NOT NULL,
	status              TEXT        NOT NULL,
	planned_at          TIMESTAMPTZ NOT NULL,
	sent_at             TIMESTAMPTZ,
	failed_at           TIMESTAMPTZ,
	telegram_message_id BIGINT,
	rendered_message    JSONB       NOT NULL,
	content_hash        TEXT        NOT NULL,
	http_status         INT,
	request_body        TEXT,
	response_body       TEXT,
	versions            JSONB,
	events              JSONB
);
CREATE INDEX IF NOT EXISTS message_log_planned_at_idx ON message_log (planned_at DESC, message_uuid);
`

// EnsureSchema создаёт таблицу, если её нет.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure message_log schema: %w", err)
	}
	return nil
}
