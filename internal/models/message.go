package models

import (
	"slices"
	"strings"
	"time"
)

type MessageModule string

const (
	ModuleUserBot    MessageModule = "user_bot"
	ModuleAutomation MessageModule = "automation"
	ModuleAdminBot   MessageModule = "admin_bot"
)

type MessageStatus string

const (
	StatusQueued   MessageStatus = "queued"
	StatusSent     MessageStatus = "sent"
	StatusFailed   MessageStatus = "failed"
	StatusCanceled MessageStatus = "canceled"
)

type MessageType string

const (
	TypeText       MessageType = "text"
	TypePhoto      MessageType = "photo"
	TypeVideo      MessageType = "video"
	TypeDocument   MessageType = "document"
	TypeInvoice    MessageType = "invoice"
	TypeMediaGroup MessageType = "media_group"
	TypeAudio      MessageType = "audio"
	TypeVoice      MessageType = "voice"
	TypeSticker    MessageType = "sticker"
)

// FilterAll отключает фильтр по module/status/type.
const FilterAll = "all"

type TelegramEntity struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Type   string `json:"type"` // bold, italic, code, pre, text_link, mention, hashtag, url
	URL    string `json:"url,omitempty"`
}

type InlineButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

type ReplyMarkup struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

type InputMedia struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// RenderedMessage - тело запроса к Bot API. Заполнена ровно одна форма:
// текст (entities + клавиатура), одно медиа с подписью, медиагруппа или инвойс.
type RenderedMessage struct {
	Method      string           `json:"method"`
	ChatID      string           `json:"chat_id"`
	Text        string           `json:"text,omitempty"`
	Caption     string           `json:"caption,omitempty"`
	Entities    []TelegramEntity `json:"entities,omitempty"`
	ReplyMarkup *ReplyMarkup     `json:"reply_markup,omitempty"`

	Photo    string `json:"photo,omitempty"`
	Video    string `json:"video,omitempty"`
	Document string `json:"document,omitempty"`
	Audio    string `json:"audio,omitempty"`
	Voice    string `json:"voice,omitempty"`
	Sticker  string `json:"sticker,omitempty"`

	Media []InputMedia `json:"media,omitempty"`

	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Payload       string         `json:"payload,omitempty"`
	ProviderToken string         `json:"provider_token,omitempty"`
	Currency      string         `json:"currency,omitempty"`
	Prices        []LabeledPrice `json:"prices,omitempty"`
}

// SearchableText - текст сообщения, а если его нет - подпись.
func (m RenderedMessage) SearchableText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

type MessageItem struct {
	MessageUUID       string          `json:"message_uuid"`
	BotID             string          `json:"bot_id"`
	Module            MessageModule   `json:"module"`
	UserID            string          `json:"user_id"`
	ChatID            string          `json:"chat_id"`
	Username          *string         `json:"username,omitempty"`
	Source            *string         `json:"source,omitempty"`
	TemplateID        *string         `json:"template_id,omitempty"`
	Type              MessageType     `json:"type"`
	Status            MessageStatus   `json:"status"`
	PlannedAt         time.Time       `json:"planned_at"`
	SentAt            *time.Time      `json:"sent_at,omitempty"`
	FailedAt          *time.Time      `json:"failed_at,omitempty"`
	TelegramMessageID *int64          `json:"telegram_message_id,omitempty"`
	RenderedMessage   RenderedMessage `json:"rendered_message"`
	ContentHash       string          `json:"content_hash"`
	HTTPStatus        *int            `json:"http_status,omitempty"`
}

// Clone - глубокая копия: указатели и слайсы не разделяются с исходной записью.
func (m MessageItem) Clone() MessageItem {
	m.Username = clonePtr(m.Username)
	m.Source = clonePtr(m.Source)
	m.TemplateID = clonePtr(m.TemplateID)
	m.SentAt = clonePtr(m.SentAt)
	m.FailedAt = clonePtr(m.FailedAt)
	m.TelegramMessageID = clonePtr(m.TelegramMessageID)
	m.HTTPStatus = clonePtr(m.HTTPStatus)
	m.RenderedMessage = m.RenderedMessage.Clone()
	return m
}

func (m RenderedMessage) Clone() RenderedMessage {
	m.Entities = slices.Clone(m.Entities)
	m.Media = slices.Clone(m.Media)
	m.Prices = slices.Clone(m.Prices)
	if m.ReplyMarkup != nil {
		rows := make([][]InlineButton, len(m.ReplyMarkup.InlineKeyboard))
		for i, row := range m.ReplyMarkup.InlineKeyboard {
			rows[i] = slices.Clone(row)
		}
		m.ReplyMarkup = &ReplyMarkup{InlineKeyboard: rows}
	}
	return m
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type MessageVersion struct {
	Version         int             `json:"version"`
	ModifiedAt      time.Time       `json:"modified_at"`
	RenderedMessage RenderedMessage `json:"rendered_message"`
}

type MessageEventType string

const (
	EventDeleted  MessageEventType = "deleted"
	EventPinned   MessageEventType = "pinned"
	EventUnpinned MessageEventType = "unpinned"
	EventEdited   MessageEventType = "edited"
)

type MessageEvent struct {
	EventType  MessageEventType `json:"event_type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Details    string           `json:"details,omitempty"`
}

type MessageDetails struct {
	MessageItem
	RequestBody  *string          `json:"request_body,omitempty"`
	ResponseBody *string          `json:"response_body,omitempty"`
	Versions     []MessageVersion `json:"versions,omitempty"`
	Events       []MessageEvent   `json:"events,omitempty"`
}

type MessageFilters struct {
	Period Period `json:"period"`
	Module string `json:"module,omitempty"`
	Status string `json:"status,omitempty"`
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Search string `json:"search,omitempty"`
}

// Normalize приводит фильтры к каноническому виду: пустые enum-фильтры -> all,
// неизвестный период -> 7d, пробелы по краям срезаны.
func (f MessageFilters) Normalize() MessageFilters {
	f.Period = ParsePeriod(string(f.Period))
	f.Module = enumOrAll(f.Module)
	f.Status = enumOrAll(f.Status)
	f.Type = enumOrAll(f.Type)
	f.Source = strings.TrimSpace(f.Source)
	f.UserID = strings.TrimSpace(f.UserID)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func enumOrAll(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return FilterAll
	}
	return v
}

type MessagesResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
	Total      int           `json:"total"`
}
