package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"today":  PeriodToday,
		" 3D ":   Period3D,
		"7d":     Period7D,
		"30d":    Period30D,
		"all":    PeriodAll,
		"":       DefaultPeriod,
		"1y":     DefaultPeriod,
		"yearly": DefaultPeriod,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParsePeriod(in), "input %q", in)
	}
}

func TestMessageFilters_Normalize(t *testing.T) {
	f := MessageFilters{
		Period: "bogus",
		Module: "",
		Status: " SENT ",
		Type:   "All",
		Source: "  insta ",
		UserID: " 42",
		Search: "hello  ",
	}.Normalize()

	assert.Equal(t, Period7D, f.Period)
	assert.Equal(t, FilterAll, f.Module)
	assert.Equal(t, "sent", f.Status)
	assert.Equal(t, FilterAll, f.Type)
	assert.Equal(t, "insta", f.Source)
	assert.Equal(t, "42", f.UserID)
	assert.Equal(t, "hello", f.Search)
}

func TestRenderedMessage_SearchableText(t *testing.T) {
	assert.Equal(t, "hi", RenderedMessage{Text: "hi", Caption: "cap"}.SearchableText())
	assert.Equal(t, "cap", RenderedMessage{Caption: "cap"}.SearchableText())
	assert.Empty(t, RenderedMessage{}.SearchableText())
}

func TestDefaultLocation(t *testing.T) {
	assert.Equal(t, DefaultTimeZone, DefaultLocation().String())
}
