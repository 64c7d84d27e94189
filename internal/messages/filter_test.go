package messages

import (
	"testing"
	"time"

	"fivechairs_admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func sampleMessages() []models.MessageItem {
	return []models.MessageItem{
		{
			MessageUUID: "m1", Module: models.ModuleUserBot, Status: models.StatusSent, Type: models.TypeText,
			UserID: "123456", Username: strPtr("client42"), Source: strPtr("Instagram"),
			PlannedAt:       testNow.Add(-1 * time.Hour),
			RenderedMessage: models.RenderedMessage{Text: "Reminder: appointment in 24 hours"},
		},
		{
			MessageUUID: "m2", Module: models.ModuleAutomation, Status: models.StatusFailed, Type: models.TypePhoto,
			UserID:          "654321",
			PlannedAt:       testNow.Add(-50 * time.Hour),
			RenderedMessage: models.RenderedMessage{Caption: "Your booking is confirmed"},
		},
		{
			MessageUUID: "m3", Module: models.ModuleAdminBot, Status: models.StatusQueued, Type: models.TypeInvoice,
			UserID: "111111", Username: strPtr("guest7"), Source: strPtr("ads"),
			PlannedAt: testNow.AddDate(0, 0, -10),
		},
		{
			MessageUUID: "m4", Module: models.ModuleUserBot, Status: models.StatusSent, Type: models.TypeText,
			UserID: "222222", Source: strPtr("organic"),
			PlannedAt:       testNow.AddDate(0, 0, -7),
			RenderedMessage: models.RenderedMessage{Text: "Special offer just for you", Caption: "ignored"},
		},
	}
}

func uuids(items []models.MessageItem) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.MessageUUID)
	}
	return out
}

func TestPeriodCutoff(t *testing.T) {
	_, ok := PeriodCutoff(models.PeriodAll, testNow, time.UTC)
	assert.False(t, ok)

	c, ok := PeriodCutoff(models.PeriodToday, testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), c)

	c, _ = PeriodCutoff(models.Period3D, testNow, time.UTC)
	assert.Equal(t, testNow.AddDate(0, 0, -3), c.UTC())

	c, _ = PeriodCutoff(models.Period30D, testNow, time.UTC)
	assert.Equal(t, testNow.AddDate(0, 0, -30), c.UTC())

	// неизвестный период ведёт себя как 7d
	c, _ = PeriodCutoff(models.Period("weird"), testNow, time.UTC)
	assert.Equal(t, testNow.AddDate(0, 0, -7), c.UTC())
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		filters models.MessageFilters
		want    []string
	}{
		{"all", models.MessageFilters{Period: models.PeriodAll}, []string{"m1", "m2", "m3", "m4"}},
		{"today", models.MessageFilters{Period: models.PeriodToday}, []string{"m1"}},
		{"3d", models.MessageFilters{Period: models.Period3D}, []string{"m1", "m2"}},
		// граница включается: m4 ровно 7 дней назад
		{"7d inclusive", models.MessageFilters{Period: models.Period7D}, []string{"m1", "m2", "m4"}},
		{"module", models.MessageFilters{Period: models.PeriodAll, Module: "user_bot"}, []string{"m1", "m4"}},
		{"module all", models.MessageFilters{Period: models.PeriodAll, Module: "all"}, []string{"m1", "m2", "m3", "m4"}},
		{"status", models.MessageFilters{Period: models.PeriodAll, Status: "sent"}, []string{"m1", "m4"}},
		{"type", models.MessageFilters{Period: models.PeriodAll, Type: "invoice"}, []string{"m3"}},
		{"unknown type", models.MessageFilters{Period: models.PeriodAll, Type: "carrier_pigeon"}, []string{}},
		{"source substring ci", models.MessageFilters{Period: models.PeriodAll, Source: "INSTA"}, []string{"m1"}},
		{"source excludes missing", models.MessageFilters{Period: models.PeriodAll, Source: "a"}, []string{"m1", "m3", "m4"}},
		{"user id", models.MessageFilters{Period: models.PeriodAll, UserID: "4321"}, []string{"m2"}},
		{"username ci", models.MessageFilters{Period: models.PeriodAll, UserID: "GUEST"}, []string{"m3"}},
		{"search text", models.MessageFilters{Period: models.PeriodAll, Search: "REMINDER"}, []string{"m1"}},
		{"search caption fallback", models.MessageFilters{Period: models.PeriodAll, Search: "booking"}, []string{"m2"}},
		{"search prefers text", models.MessageFilters{Period: models.PeriodAll, Search: "ignored"}, []string{}},
		{"conjunction", models.MessageFilters{Period: models.Period7D, Module: "user_bot", Status: "sent", Search: "offer"}, []string{"m4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleMessages(), tt.filters, testNow, time.UTC)
			assert.Equal(t, tt.want, uuids(got))
		})
	}
}

func TestApply_SubsetAndIdempotent(t *testing.T) {
	store := newTestStore()
	pool := store.Messages()

	periods := []models.Period{models.PeriodToday, models.Period3D, models.Period7D, models.Period30D, models.PeriodAll}
	statuses := []string{"all", "sent", "queued", "failed", "canceled"}
	modules := []string{"", "user_bot", "automation", "admin_bot"}
	searches := []string{"", "booking", "you"}

	inPool := make(map[string]bool, len(pool))
	for _, m := range pool {
		inPool[m.MessageUUID] = true
	}

	for _, p := range periods {
		for _, st := range statuses {
			for _, mod := range modules {
				for _, q := range searches {
					f := models.MessageFilters{Period: p, Status: st, Module: mod, Search: q}
					once := Apply(pool, f, testNow, time.UTC)
					for _, m := range once {
						require.True(t, inPool[m.MessageUUID])
					}
					twice := Apply(once, f, testNow, time.UTC)
					require.Equal(t, uuids(once), uuids(twice), "filters %+v", f)
				}
			}
		}
	}
}

func TestPeriodCutoff_DefaultZone(t *testing.T) {
	c, ok := PeriodCutoff(models.PeriodToday, testNow, nil)
	require.True(t, ok)
	assert.Equal(t, "Europe/Warsaw", c.Location().String())
	assert.True(t, c.Equal(time.Date(2026, 10, 17, 22, 0, 0, 0, time.UTC)), "got %s", c)
}
