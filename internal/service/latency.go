package service

import (
	"context"
	"time"
)

// wait эмулирует сетевую задержку. Отмена ctx прерывает ожидание.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
