package stats

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"fivechairs_admin/internal/models"
)

const (
	totalUsers      = 5420
	firstPurchaseCR = 0.12
	repeatShare     = 0.28
	aov             = 95.0
	ltvAvg          = 180.0

	// новые пользователи за день: 30..49
	baseDailyUsers   = 30
	dailyUsersSpread = 20

	// артефакты генератора, а не доменная истина
	newPaymentRate    = 0.12
	repeatPaymentRate = 0.3
)

// Воронка до первой оплаты: каждый этап пользователь прошёл до момента первого платежа.
var funnelStages = []struct {
	name  string
	users int
}{
	{"Bot Start", 1000},
	{"Form Started", 850},
	{"Form Completed", 800},
	{"Menu Opened", 750},
	{"Time Search", 550},
	{"Request Sent", 400},
	{"Payment Pre-menu", 350},
	{"Payment Window Opened", 280},
	{"Payment Success", 120},
}

var defaultSources = []models.SourceItem{
	{Source: "afisha", Users: 350},
	{Source: "instagram", Users: 280},
	{Source: "facebook", Users: 180},
	{Source: "organic", Users: 120},
	{Source: "partners", Users: 50},
	{Source: "other", Users: 20},
}

// Generator собирает синтетический StatsPayload. Безопасен для конкурентного вызова.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand

	now func() time.Time
	loc *time.Location
}

type Option func(*Generator)

func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now: time.Now,
		loc: models.DefaultLocation(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

func (g *Generator) Generate(filters models.StatsFilters) *models.StatsPayload {
	days := WindowDays(filters.Period)
	dates := g.dates(days)
	values := g.dailyUsers(days)

	newUsersByDay := make([]models.TimeseriesPoint, 0, days)
	payments := make([]models.PaymentsBreakdownPoint, 0, days)
	newUsers := 0

	for i := range days {
		v := values[i]
		newUsers += v
		newUsersByDay = append(newUsersByDay, models.TimeseriesPoint{Date: dates[i], Value: v})

		newPayments := int(float64(v) * newPaymentRate)
		payments = append(payments, models.PaymentsBreakdownPoint{
			Date:   dates[i],
			New:    newPayments,
			Repeat: int(float64(newPayments) * repeatPaymentRate),
		})
	}

	aovV, ltvV := aov, ltvAvg

	return &models.StatsPayload{
		KPIs: models.KPI{
			NewUsers:        newUsers,
			TotalUsers:      totalUsers,
			FirstPurchaseCR: firstPurchaseCR,
			RepeatShare:     repeatShare,
			AOV:             &aovV,
			LTVAvg:          &ltvV,
		},
		Timeseries: models.Timeseries{
			NewUsersByDay:          newUsersByDay,
			PaymentsBreakdownByDay: payments,
		},
		Sources: sources(filters.Source),
		Funnel:  funnel(),
	}
}

func (g *Generator) dailyUsers(days int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]int, days)
	for i := range out {
		out[i] = baseDailyUsers + g.rnd.IntN(dailyUsersSpread)
	}
	return out
}

// dates - последние days календарных дней по зоне отчёта, от старых к сегодняшнему.
func (g *Generator) dates(days int) []string {
	today := g.now().In(g.loc)
	out := make([]string, days)
	for i := range days {
		out[i] = today.AddDate(0, 0, -(days - i - 1)).Format(time.DateOnly)
	}
	return out
}

func sources(only string) []models.SourceItem {
	out := make([]models.SourceItem, 0, len(defaultSources))
	for _, s := range defaultSources {
		if only != "" && s.Source != only {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Users > out[j].Users })
	return out
}

func funnel() []models.FunnelStage {
	out := make([]models.FunnelStage, 0, len(funnelStages))
	first := float64(funnelStages[0].users)

	for i, st := range funnelStages {
		prev := 1.0
		if i > 0 {
			prev = float64(st.users) / float64(funnelStages[i-1].users)
		}
		out = append(out, models.FunnelStage{
			Stage:        st.name,
			Users:        st.users,
			PctFromStart: float64(st.users) / first,
			PctFromPrev:  prev,
		})
	}
	return out
}
