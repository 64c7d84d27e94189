package cache

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"fivechairs_admin/internal/messages"
	"fivechairs_admin/internal/models"
)

// Ключи содержат поколение пула сообщений: после рестарта с другим seed
// старые страницы не совпадут с новыми uuid.

// GET /admin/messages
// admin:messages:{gen}:period=..&module=..&status=..&type=..&source=..&user_id=..&search=..:c={cutoff}:o={offset}
//
// cutoff - граница периода с точностью до минуты (нулевое время для "all"):
// страница "today", закэшированная до полуночи, после полуночи не совпадёт по ключу.
func MessagesPageKey(generation string, filters models.MessageFilters, cursor string, cutoff time.Time) string {
	f := filters.Normalize()

	q := url.Values{}
	q.Set("period", string(f.Period))
	q.Set("module", f.Module)
	q.Set("status", f.Status)
	q.Set("type", f.Type)
	q.Set("source", strings.ToLower(f.Source))
	q.Set("user_id", strings.ToLower(f.UserID))
	q.Set("search", strings.ToLower(f.Search))

	// разные токены одного смещения дают один ключ
	offset := messages.ParseCursor(cursor).Offset

	var bucket int64
	if !cutoff.IsZero() {
		bucket = cutoff.Truncate(time.Minute).Unix()
	}

	return fmt.Sprintf("admin:messages:%s:%s:c=%d:o=%d", generation, q.Encode(), bucket, offset)
}

// GET /admin/messages/{message_uuid}
// admin:message:{gen}:{uuid}
func MessageDetailsKey(generation, messageUUID string) string {
	return fmt.Sprintf("admin:message:%s:%s", generation, url.PathEscape(strings.TrimSpace(messageUUID)))
}

// Множество всех выданных ключей ответов (инвалидация без SCAN).
func ResponseKeysSetKey() string { return "admin:cache:keys" }

// Текущее поколение пула, записанное последним стартовавшим процессом.
func GenerationKey() string { return "admin:cache:generation" }
