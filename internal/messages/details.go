package messages

import (
	"math/rand/v2"
	"time"

	"fivechairs_admin/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

const chatNotFound = "Bad Request: chat not found"

var lifecycleEvents = []models.MessageEvent{
	{EventType: models.EventDeleted, Details: "Deleted by user"},
	{EventType: models.EventPinned, Details: "Pinned by admin"},
	{EventType: models.EventUnpinned, Details: "Unpinned by admin"},
	{EventType: models.EventEdited, Details: "Edited by operator"},
}

type botAPIResult struct {
	MessageID int64 `json:"message_id"`
}

// ответ Bot API в том виде, как его сохраняет отправщик
type botAPIResponse struct {
	OK          bool          `json:"ok"`
	Result      *botAPIResult `json:"result,omitempty"`
	ErrorCode   int           `json:"error_code,omitempty"`
	Description string        `json:"description,omitempty"`
}

// buildDetails детерминирован для пары (seed, uuid): история версий и события
// каждый раз одинаковые для одной записи.
func buildDetails(m models.MessageItem, seed uint64) *models.MessageDetails {
	rnd := rand.New(rand.NewPCG(seed, xxhash.Sum64String(m.MessageUUID)))

	d := &models.MessageDetails{MessageItem: m}

	if body, err := json.MarshalIndent(m.RenderedMessage, "", "  "); err == nil {
		s := string(body)
		d.RequestBody = &s
	}
	d.ResponseBody = responseBody(m)

	if rnd.Float64() > 0.7 {
		d.Versions = []models.MessageVersion{{
			Version:         1,
			ModifiedAt:      m.PlannedAt.Add(-time.Hour),
			RenderedMessage: m.RenderedMessage.Clone(),
		}}
	}

	if rnd.Float64() > 0.8 {
		base := m.PlannedAt
		if m.SentAt != nil {
			base = *m.SentAt
		}
		ev := lifecycleEvents[rnd.IntN(len(lifecycleEvents))]
		ev.OccurredAt = base.Add(2 * time.Hour)
		d.Events = []models.MessageEvent{ev}
	}

	return d
}

// responseBody: sent -> ok + message_id, failed -> 400 chat not found, иначе ответа нет.
func responseBody(m models.MessageItem) *string {
	var resp botAPIResponse
	switch m.Status {
	case models.StatusSent:
		var id int64
		if m.TelegramMessageID != nil {
			id = *m.TelegramMessageID
		}
		resp = botAPIResponse{OK: true, Result: &botAPIResult{MessageID: id}}
	case models.StatusFailed:
		resp = botAPIResponse{OK: false, ErrorCode: 400, Description: chatNotFound}
	default:
		return nil
	}

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
