package messages

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// PageSize - фиксированный размер страницы лога сообщений.
const PageSize = 20

const cursorPrefix = "o:"

// Cursor - смещение в отфильтрованной выборке. Наружу уходит только как
// непрозрачный токен (Token / ParseCursor).
type Cursor struct {
	Offset int
}

func (c Cursor) Token() string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(max(c.Offset, 0))))
}

// ParseCursor не возвращает ошибок: пустой или битый токен -> начало выборки,
// отрицательное смещение -> 0.
func ParseCursor(token string) Cursor {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}
	}
	num, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return Cursor{}
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Cursor{}
	}
	return Cursor{Offset: n}
}

// Paginate режет страницу size элементов начиная с c.Offset.
// next != nil тогда и только тогда, когда после страницы ещё есть элементы;
// смещение за концом выборки даёт пустую последнюю страницу.
func Paginate[T any](items []T, c Cursor, size int) (page []T, next *Cursor) {
	if size <= 0 {
		size = PageSize
	}
	start := min(max(c.Offset, 0), len(items))
	end := min(start+size, len(items))

	page = make([]T, 0, end-start)
	page = append(page, items[start:end]...)

	if start+size < len(items) {
		next = &Cursor{Offset: start + size}
	}
	return page, next
}
