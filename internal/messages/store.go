package messages

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"fivechairs_admin/internal/models"

	"github.com/cespare/xxhash/v2"
)

// DefaultPoolSize - размер пула синтетических сообщений.
const DefaultPoolSize = 100

// Store - мок-хранилище лога исходящих сообщений. Пул генерируется один раз
// при первом обращении и дальше не меняется, поэтому чтение без блокировок.
type Store struct {
	size int
	seed uint64
	now  func() time.Time
	loc  *time.Location

	once       sync.Once
	pool       []models.MessageItem
	index      map[string]int
	generation string
}

type StoreOption func(*Store)

func WithPoolSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.size = n
		}
	}
}

func WithSeed(seed uint64) StoreOption {
	return func(s *Store) { s.seed = seed }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		size: DefaultPoolSize,
		seed: rand.Uint64(),
		now:  time.Now,
		loc:  models.DefaultLocation(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ensure() {
	s.once.Do(s.populate)
}

func (s *Store) populate() {
	now := s.now()
	gen := newMockGenerator(s.seed, now)

	pool := make([]models.MessageItem, 0, s.size)
	for i := range s.size {
		pool = append(pool, gen.message(i))
	}

	// свежие сверху
	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].PlannedAt.Equal(pool[j].PlannedAt) {
			return pool[i].PlannedAt.After(pool[j].PlannedAt)
		}
		return pool[i].MessageUUID < pool[j].MessageUUID
	})

	index := make(map[string]int, len(pool))
	for i, m := range pool {
		index[m.MessageUUID] = i
	}

	s.pool = pool
	s.index = index
	s.generation = fmt.Sprintf("%016x", xxhash.Sum64String(fmt.Sprintf("%d:%d:%d", s.seed, s.size, now.Unix())))
}

// Len - размер пула (инициализирует его при необходимости).
func (s *Store) Len() int {
	s.ensure()
	return len(s.pool)
}

// Generation - отпечаток пула: seed, размер и момент генерации.
func (s *Store) Generation() string {
	s.ensure()
	return s.generation
}

// Cutoff - граница периода по часам и зоне хранилища.
func (s *Store) Cutoff(p models.Period) (time.Time, bool) {
	return PeriodCutoff(p, s.now(), s.loc)
}

// Messages возвращает глубокую копию всего пула в порядке хранения.
func (s *Store) Messages() []models.MessageItem {
	s.ensure()
	return cloneItems(s.pool)
}

// пул не меняется после populate: наружу уходят только копии
func cloneItems(items []models.MessageItem) []models.MessageItem {
	out := make([]models.MessageItem, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// List фильтрует пул и отдаёт страницу по курсору. total считается до пагинации.
func (s *Store) List(ctx context.Context, filters models.MessageFilters, cursor string) (*models.MessagesResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.ensure()

	filtered := Apply(s.pool, filters, s.now(), s.loc)
	page, next := Paginate(filtered, ParseCursor(cursor), PageSize)

	resp := &models.MessagesResponse{
		Items: cloneItems(page),
		Total: len(filtered),
	}
	if next != nil {
		resp.NextCursor = next.Token()
	}
	return resp, nil
}

// Details - запись с телами запроса/ответа и историей. Неизвестный uuid -> models.ErrNotFound.
func (s *Store) Details(ctx context.Context, messageUUID string) (*models.MessageDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.ensure()

	i, ok := s.index[messageUUID]
	if !ok {
		return nil, fmt.Errorf("message %q: %w", messageUUID, models.ErrNotFound)
	}
	return buildDetails(s.pool[i].Clone(), s.seed), nil
}
