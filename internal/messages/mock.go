package messages

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"fivechairs_admin/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const botID = "bot_5chairs_main"

// Веса задаются повторами: sent встречается втрое чаще прочих статусов, text - чаще прочих типов.
var (
	mockModules  = []models.MessageModule{models.ModuleUserBot, models.ModuleAutomation, models.ModuleAdminBot}
	mockStatuses = []models.MessageStatus{
		models.StatusSent, models.StatusSent, models.StatusSent,
		models.StatusQueued, models.StatusFailed, models.StatusCanceled,
	}
	mockTypes = []models.MessageType{
		models.TypeText, models.TypeText, models.TypeText,
		models.TypePhoto, models.TypeVideo, models.TypeDocument, models.TypeInvoice, models.TypeMediaGroup,
		models.TypeAudio, models.TypeVoice, models.TypeSticker,
	}
	mockSources      = []string{"instagram", "telegram", "website", "referral", "organic", "ads"}
	mockTemplates    = []string{"booking_confirmed", "reminder_24h", "payment_invoice", "welcome", "promo"}
	usernamePrefixes = []string{"user", "client", "guest", "member"}
	clientNames      = []string{"Anna", "Maria", "Olga", "Irina", "Daria"}
	mockTexts        = []string{
		"Hi, *%s*! Your slot is confirmed:\n27.10 14:00",
		"Reminder: appointment in 24 hours",
		"Thank you for payment! We are waiting for you 🎉",
		"Special offer just for you",
		"Your order is ready for pickup",
	}
)

var botMethods = map[models.MessageType]string{
	models.TypeText:       "sendMessage",
	models.TypePhoto:      "sendPhoto",
	models.TypeVideo:      "sendVideo",
	models.TypeDocument:   "sendDocument",
	models.TypeInvoice:    "sendInvoice",
	models.TypeMediaGroup: "sendMediaGroup",
	models.TypeAudio:      "sendAudio",
	models.TypeVoice:      "sendVoice",
	models.TypeSticker:    "sendSticker",
}

type mockGenerator struct {
	src *rand.ChaCha8
	rnd *rand.Rand
	now time.Time
}

func newMockGenerator(seed uint64, now time.Time) *mockGenerator {
	src := rand.NewChaCha8(seedBytes(seed))
	return &mockGenerator{
		src: src,
		rnd: rand.New(src),
		now: now,
	}
}

func seedBytes(seed uint64) [32]byte {
	var b [32]byte
	for i := range b {
		b[i] = byte(seed >> (8 * (i % 8)))
		b[i] ^= byte(i * 31)
	}
	return b
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

func (g *mockGenerator) chance(p float64) bool {
	return g.rnd.Float64() < p
}

func (g *mockGenerator) newUUID() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (g *mockGenerator) message(index int) models.MessageItem {
	planned := g.now.
		AddDate(0, 0, -g.rnd.IntN(7)).
		Add(-time.Duration(g.rnd.IntN(24)) * time.Hour).
		Add(-time.Duration(g.rnd.IntN(60)) * time.Minute).
		Truncate(time.Second)

	status := pick(g.rnd, mockStatuses)
	typ := pick(g.rnd, mockTypes)
	module := pick(g.rnd, mockModules)

	userID := fmt.Sprintf("%d", 100000+g.rnd.IntN(900000))

	m := models.MessageItem{
		MessageUUID: g.newUUID(),
		BotID:       botID,
		Module:      module,
		UserID:      userID,
		ChatID:      userID,
		Type:        typ,
		Status:      status,
		PlannedAt:   planned,
	}

	if g.chance(0.7) {
		name := fmt.Sprintf("%s%d", pick(g.rnd, usernamePrefixes), g.rnd.IntN(10000))
		m.Username = &name
	}
	if g.chance(0.6) {
		src := pick(g.rnd, mockSources)
		m.Source = &src
	}
	if g.chance(0.7) {
		tpl := pick(g.rnd, mockTemplates)
		m.TemplateID = &tpl
	}

	switch status {
	case models.StatusSent:
		at := planned.Add(time.Duration(g.rnd.IntN(60)) * time.Second)
		msgID := int64(g.rnd.IntN(1000000))
		code := 200
		m.SentAt, m.TelegramMessageID, m.HTTPStatus = &at, &msgID, &code
	case models.StatusFailed:
		at := planned.Add(time.Duration(g.rnd.IntN(60)) * time.Second)
		code := 400
		m.FailedAt, m.HTTPStatus = &at, &code
	}

	m.RenderedMessage = g.render(index, typ, m.ChatID)
	m.ContentHash = contentHash(m.RenderedMessage)
	return m
}

func (g *mockGenerator) render(index int, typ models.MessageType, chatID string) models.RenderedMessage {
	rm := models.RenderedMessage{
		Method: botMethods[typ],
		ChatID: chatID,
	}

	switch typ {
	case models.TypeText:
		text := pick(g.rnd, mockTexts)
		if strings.Contains(text, "%s") {
			text = fmt.Sprintf(text, pick(g.rnd, clientNames))
		}
		rm.Text = text
		if entity, ok := boldEntity(text); ok {
			rm.Entities = []models.TelegramEntity{entity}
		}
		if g.chance(0.4) {
			rm.ReplyMarkup = &models.ReplyMarkup{InlineKeyboard: [][]models.InlineButton{{
				{Text: "Open", URL: "https://5chairs.ru/booking"},
				{Text: "Cancel", CallbackData: "cancel_booking"},
			}}}
		}
	case models.TypePhoto:
		rm.Photo = fmt.Sprintf("https://picsum.photos/800/600?random=%d", index)
		rm.Caption = "Your booking is confirmed"
		rm.Entities = []models.TelegramEntity{{Offset: 0, Length: 4, Type: "bold"}}
	case models.TypeVideo:
		rm.Video = fmt.Sprintf("https://example.com/video_%d.mp4", index)
		rm.Caption = "Educational video"
	case models.TypeDocument:
		rm.Document = fmt.Sprintf("https://example.com/doc_%d.pdf", index)
		rm.Caption = "Your receipt"
	case models.TypeInvoice:
		rm.Title = "Service Payment"
		rm.Description = "Booking for 27.10 14:00"
		rm.Payload = fmt.Sprintf("invoice_%d", index)
		rm.Currency = "RUB"
		rm.Prices = []models.LabeledPrice{{Label: "Haircut", Amount: 150000}}
	case models.TypeMediaGroup:
		rm.Media = []models.InputMedia{
			{Type: "photo", Media: fmt.Sprintf("https://picsum.photos/800/600?random=%da", index), Caption: "Photo 1"},
			{Type: "photo", Media: fmt.Sprintf("https://picsum.photos/800/600?random=%db", index), Caption: "Photo 2"},
		}
	case models.TypeAudio:
		rm.Audio = fmt.Sprintf("https://example.com/audio_%d.mp3", index)
		rm.Caption = "Salon playlist"
	case models.TypeVoice:
		rm.Voice = fmt.Sprintf("https://example.com/voice_%d.ogg", index)
	case models.TypeSticker:
		rm.Sticker = fmt.Sprintf("CAACAgIAAxkBAAE%06d", index)
	}
	return rm
}

// boldEntity размечает *имя* в тексте приветствия.
func boldEntity(text string) (models.TelegramEntity, bool) {
	open := strings.Index(text, "*")
	if open < 0 {
		return models.TelegramEntity{}, false
	}
	closing := strings.Index(text[open+1:], "*")
	if closing < 0 {
		return models.TelegramEntity{}, false
	}
	return models.TelegramEntity{Offset: open + 1, Length: closing, Type: "bold"}, true
}

func contentHash(rm models.RenderedMessage) string {
	b, err := json.Marshal(rm)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
