package stats

import (
	"testing"
	"time"

	"fivechairs_admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	loc, err := LoadLocation("")
	require.NoError(t, err)
	return NewGenerator(
		WithSeed(42),
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(loc),
	)
}

func TestWindowDays(t *testing.T) {
	tests := []struct {
		period models.Period
		want   int
	}{
		{models.PeriodToday, 1},
		{models.Period3D, 3},
		{models.Period7D, 7},
		{models.Period30D, 30},
		{models.PeriodAll, AllTimeWindowDays},
		{models.Period("90d"), 7},
		{models.Period(""), 7},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			assert.Equal(t, tt.want, WindowDays(tt.period))
		})
	}
}

func TestGenerate_TimeseriesLength(t *testing.T) {
	g := newTestGenerator(t)

	for _, p := range []models.Period{models.PeriodToday, models.Period3D, models.Period7D, models.Period30D, models.PeriodAll} {
		stats := g.Generate(models.StatsFilters{Period: p})
		want := WindowDays(p)

		assert.Len(t, stats.Timeseries.NewUsersByDay, want, "period %s", p)
		assert.Len(t, stats.Timeseries.PaymentsBreakdownByDay, want, "period %s", p)
	}
}

func TestGenerate_TodayHasSinglePoint(t *testing.T) {
	g := newTestGenerator(t)
	stats := g.Generate(models.StatsFilters{Period: models.PeriodToday})

	require.Len(t, stats.Timeseries.NewUsersByDay, 1)
	require.Len(t, stats.Timeseries.PaymentsBreakdownByDay, 1)
	// 23:30 UTC - это уже 19 октября по Варшаве
	assert.Equal(t, "2026-10-19", stats.Timeseries.NewUsersByDay[0].Date)
}

func TestGenerate_DatesAscendEndingToday(t *testing.T) {
	g := newTestGenerator(t)
	stats := g.Generate(models.StatsFilters{Period: models.Period7D})

	series := stats.Timeseries.NewUsersByDay
	assert.Equal(t, "2026-10-13", series[0].Date)
	assert.Equal(t, "2026-10-19", series[len(series)-1].Date)
	for i, p := range stats.Timeseries.PaymentsBreakdownByDay {
		assert.Equal(t, series[i].Date, p.Date)
	}
}

func TestGenerate_ValuesAndPayments(t *testing.T) {
	g := newTestGenerator(t)
	stats := g.Generate(models.StatsFilters{Period: models.Period30D})

	sum := 0
	for i, p := range stats.Timeseries.NewUsersByDay {
		assert.GreaterOrEqual(t, p.Value, 30)
		assert.Less(t, p.Value, 50)
		sum += p.Value

		pay := stats.Timeseries.PaymentsBreakdownByDay[i]
		assert.Equal(t, int(float64(p.Value)*0.12), pay.New)
		assert.Equal(t, int(float64(pay.New)*0.3), pay.Repeat)
	}
	assert.Equal(t, sum, stats.KPIs.NewUsers)
	assert.Equal(t, 5420, stats.KPIs.TotalUsers)
	require.NotNil(t, stats.KPIs.AOV)
	require.NotNil(t, stats.KPIs.LTVAvg)
	assert.InDelta(t, 95.0, *stats.KPIs.AOV, 1e-9)
	assert.InDelta(t, 180.0, *stats.KPIs.LTVAvg, 1e-9)
}

func TestGenerate_SeedIsDeterministic(t *testing.T) {
	a := newTestGenerator(t).Generate(models.StatsFilters{Period: models.Period30D})
	b := newTestGenerator(t).Generate(models.StatsFilters{Period: models.Period30D})
	assert.Equal(t, a, b)
}

func TestGenerate_FunnelInvariants(t *testing.T) {
	stats := newTestGenerator(t).Generate(models.StatsFilters{Period: models.Period7D})
	f := stats.Funnel

	require.Len(t, f, 9)
	assert.Equal(t, "Bot Start", f[0].Stage)
	assert.Equal(t, "Payment Success", f[8].Stage)
	assert.InDelta(t, 1.0, f[0].PctFromPrev, 1e-9)

	for i := range f {
		assert.InDelta(t, float64(f[i].Users)/float64(f[0].Users), f[i].PctFromStart, 1e-9)
		if i > 0 {
			assert.LessOrEqual(t, f[i].Users, f[i-1].Users)
			assert.InDelta(t, float64(f[i].Users)/float64(f[i-1].Users), f[i].PctFromPrev, 1e-9)
		}
	}
}

func TestGenerate_Sources(t *testing.T) {
	g := newTestGenerator(t)

	all := g.Generate(models.StatsFilters{Period: models.Period7D}).Sources
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Users, all[i].Users)
	}

	one := g.Generate(models.StatsFilters{Period: models.Period7D, Source: "instagram"}).Sources
	assert.Equal(t, []models.SourceItem{{Source: "instagram", Users: 280}}, one)

	none := g.Generate(models.StatsFilters{Period: models.Period7D, Source: "tiktok"}).Sources
	assert.Empty(t, none)
}

func TestGenerate_Concurrent(t *testing.T) {
	g := newTestGenerator(t)
	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 50 {
				_ = g.Generate(models.StatsFilters{Period: models.Period7D})
			}
		}()
	}
	for range 8 {
		<-done
	}
}

func TestGenerator_DefaultZoneIsWarsaw(t *testing.T) {
	g := NewGenerator(WithSeed(42), WithClock(func() time.Time { return fixedNow }))

	p := g.Generate(models.StatsFilters{Period: models.PeriodToday})
	require.Len(t, p.Timeseries.NewUsersByDay, 1)
	// 23:30 UTC - уже следующий день в Варшаве
	assert.Equal(t, "2026-10-19", p.Timeseries.NewUsersByDay[0].Date)
}
