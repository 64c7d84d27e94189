package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorTokenRoundTrip(t *testing.T) {
	for _, off := range []int{0, 20, 40, 1000} {
		c := Cursor{Offset: off}
		assert.Equal(t, c, ParseCursor(c.Token()))
	}
}

func TestParseCursor_Normalizes(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"not base64", "!!!"},
		{"plain number", "20"},
		{"wrong prefix", "eDoyMA"}, // "x:20"
		{"negative", "bzotNQ"}, // "o:-5"
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Cursor{}, ParseCursor(tt.token))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	page, next := Paginate(items, Cursor{}, 20)
	assert.Equal(t, items[:20], page)
	require.NotNil(t, next)
	assert.Equal(t, 20, next.Offset)

	page, next = Paginate(items, *next, 20)
	assert.Equal(t, items[20:40], page)
	require.NotNil(t, next)

	page, next = Paginate(items, *next, 20)
	assert.Equal(t, items[40:], page)
	assert.Nil(t, next)
}

func TestPaginate_ExactMultipleHasNoNext(t *testing.T) {
	items := make([]int, 40)
	_, next := Paginate(items, Cursor{Offset: 20}, 20)
	assert.Nil(t, next)
}

func TestPaginate_BeyondEnd(t *testing.T) {
	items := []int{1, 2, 3}
	page, next := Paginate(items, Cursor{Offset: 500}, 20)
	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.Nil(t, next)
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	items := []int{1, 2, 3}
	page, _ := Paginate(items, Cursor{}, 20)
	page[0] = 100
	assert.Equal(t, 1, items[0])
}
