package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// StartDBCollectors периодически обновляет message_log_status_count.
// Останавливается вместе с ctx.
func StartDBCollectors(ctx context.Context, db *pgxpool.Pool, interval time.Duration, logger zerolog.Logger) {
	if db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		updateDBGauges(ctx, db, logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				updateDBGauges(ctx, db, logger)
			}
		}
	}()
}

func updateDBGauges(ctx context.Context, db *pgxpool.Pool, logger zerolog.Logger) {
	start := time.Now()
	rows, err := db.Query(ctx, `SELECT status, COUNT(*) FROM message_log GROUP BY status`)
	ObserveDBQuery("status_counts", time.Since(start))
	if err != nil {
		if ctx.Err() == nil {
			IncDBError("status_counts")
			logger.Warn().Err(err).Msg("metrics: message_log status query failed")
		}
		return
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var cnt int64
		if err := rows.Scan(&status, &cnt); err != nil {
			logger.Warn().Err(err).Msg("metrics: message_log status scan failed")
			continue
		}
		SetMessageLogStatusCount(status, cnt)
	}
}
