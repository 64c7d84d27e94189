package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fivechairs_admin/internal/cache"
	"fivechairs_admin/internal/messages"
	"fivechairs_admin/internal/models"
	"fivechairs_admin/internal/service"
	"fivechairs_admin/internal/stats"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type testEnv struct {
	router chi.Router
	store  *messages.Store
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T, withCache bool) *testEnv {
	t.Helper()

	gen := stats.NewGenerator(stats.WithSeed(1), stats.WithClock(clock), stats.WithLocation(time.UTC))
	store := messages.NewStore(messages.WithSeed(5), messages.WithClock(clock), messages.WithLocation(time.UTC))

	env := &testEnv{store: store}

	var c cache.Cache
	if withCache {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		t.Cleanup(func() {
			_ = rc.Close()
			mr.Close()
		})
		env.mr = mr
		c = rc
	}

	env.router = NewRouter(
		RouterConfig{CORSOrigins: []string{"*"}, RateLimitDisabled: true},
		NewStatsHandler(service.NewStatsService(gen, 0)),
		NewMessageHandler(service.NewMessageService(store, service.WithLatency(0, 0)), c, time.Minute),
	)
	return env
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := newTestEnv(t, false).get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/admin/stats?period=3d")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var p models.StatsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Len(t, p.Timeseries.NewUsersByDay, 3)
	assert.Equal(t, "2026-10-18", p.Timeseries.NewUsersByDay[2].Date)
	assert.Len(t, p.Funnel, 9)
	assert.Equal(t, 5420, p.KPIs.TotalUsers)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "kpis")
	assert.Contains(t, raw, "timeseries")
}

func TestGetStats_SourceFilterAndBadPeriod(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/admin/stats?period=yesterday&source=instagram")
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.StatsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Len(t, p.Timeseries.NewUsersByDay, 7)
	assert.Equal(t, []models.SourceItem{{Source: "instagram", Users: 280}}, p.Sources)
}

func TestGetCharts(t *testing.T) {
	rec := newTestEnv(t, false).get(t, "/admin/stats/charts?period=today")
	require.Equal(t, http.StatusOK, rec.Code)

	var b models.ChartBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, []string{"18.10"}, b.NewUsers.Labels)
	assert.Len(t, b.Funnel.Percents, 9)
	assert.InDelta(t, 1.0, b.Funnel.Percents[0], 1e-9)
}

func TestListMessages(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/admin/messages?period=7d&status=sent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(headerCache))

	var resp models.MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.LessOrEqual(t, len(resp.Items), messages.PageSize)
	for _, m := range resp.Items {
		assert.Equal(t, models.StatusSent, m.Status)
	}

	want := messages.Apply(env.store.Messages(), models.MessageFilters{Period: models.Period7D, Status: "sent"}, testNow, time.UTC)
	assert.Equal(t, len(want), resp.Total)
}

func TestListMessages_WalkAllPages(t *testing.T) {
	env := newTestEnv(t, false)

	seen := 0
	target := "/admin/messages?period=all"
	for range 10 {
		rec := env.get(t, target)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.MessagesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		seen += len(resp.Items)
		if resp.NextCursor == "" {
			break
		}
		target = "/admin/messages?period=all&cursor=" + resp.NextCursor
	}
	assert.Equal(t, env.store.Len(), seen)
}

func TestListMessages_EmptyResultHasItemsArray(t *testing.T) {
	rec := newTestEnv(t, false).get(t, "/admin/messages?period=all&search=zzz-nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func TestGetMessage(t *testing.T) {
	env := newTestEnv(t, false)
	first := env.store.Messages()[0]

	rec := env.get(t, "/admin/messages/"+first.MessageUUID)
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.MessageDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, first.MessageUUID, d.MessageUUID)
	assert.NotNil(t, d.RequestBody)
}

func TestGetMessage_NotFound(t *testing.T) {
	rec := newTestEnv(t, false).get(t, "/admin/messages/nonexistent-uuid")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"message not found"}`, rec.Body.String())
}

func TestMessages_CacheAside(t *testing.T) {
	env := newTestEnv(t, true)

	first := env.get(t, "/admin/messages?period=all&module=user_bot")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, cacheMiss, first.Header().Get(headerCache))

	second := env.get(t, "/admin/messages?period=all&module=USER_BOT")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, cacheHit, second.Header().Get(headerCache))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	id := env.store.Messages()[3].MessageUUID
	assert.Equal(t, cacheMiss, env.get(t, "/admin/messages/"+id).Header().Get(headerCache))
	assert.Equal(t, cacheHit, env.get(t, "/admin/messages/"+id).Header().Get(headerCache))

	members, err := env.mr.Members(cache.ResponseKeysSetKey())
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestMessages_TodayPageNotServedAfterMidnight(t *testing.T) {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 10, 18, 23, 59, 50, 0, time.UTC)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	store := messages.NewStore(messages.WithSeed(5), messages.WithClock(clock), messages.WithLocation(time.UTC))
	router := NewRouter(
		RouterConfig{RateLimitDisabled: true},
		NewStatsHandler(service.NewStatsService(nil, 0)),
		NewMessageHandler(service.NewMessageService(store, service.WithLatency(0, 0)), rc, time.Hour),
	)
	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/messages?period=today", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return rec
	}

	assert.Equal(t, cacheMiss, get().Header().Get(headerCache))
	assert.Equal(t, cacheHit, get().Header().Get(headerCache))

	mu.Lock()
	now = now.Add(20 * time.Second)
	mu.Unlock()

	rec := get()
	assert.Equal(t, cacheMiss, rec.Header().Get(headerCache))

	var resp models.MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// весь пул сгенерирован до полуночи
	assert.Zero(t, resp.Total)
}

func TestMessages_NotFoundIsNotCached(t *testing.T) {
	env := newTestEnv(t, true)

	for range 2 {
		rec := env.get(t, "/admin/messages/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get(headerCache))
	}
}

func TestMessages_CacheDownFallsBackToService(t *testing.T) {
	env := newTestEnv(t, true)
	env.mr.Close()

	rec := env.get(t, "/admin/messages?period=all")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/admin/messages", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	store := messages.NewStore(messages.WithSeed(5), messages.WithClock(clock))
	r := NewRouter(
		RouterConfig{CORSOrigins: []string{"*"}, RateLimitRequests: 2, RateLimitWindow: time.Minute},
		NewStatsHandler(service.NewStatsService(stats.NewGenerator(), 0)),
		NewMessageHandler(service.NewMessageService(store, service.WithLatency(0, 0)), nil, 0),
	)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type stubStats struct{ err error }

func (s stubStats) FetchStats(context.Context, models.StatsFilters) (*models.StatsPayload, error) {
	return nil, s.err
}

func (s stubStats) FetchCharts(context.Context, models.StatsFilters) (*models.ChartBundle, error) {
	return nil, s.err
}

func TestStatsErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errors.New("boom"), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		h := NewStatsHandler(stubStats{err: tt.err})
		rec := httptest.NewRecorder()
		h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}
