package models

import (
	"strings"
	"time"
	_ "time/tzdata" // Europe/Warsaw должна грузиться и в контейнере без zoneinfo
)

// Типы данных дашборда статистики 5Chairs.
// Воронка считается до первой оплаты, повторные покупки идут отдельным блоком.

type Period string

const (
	PeriodToday Period = "today"
	Period3D    Period = "3d"
	Period7D    Period = "7d"
	Period30D   Period = "30d"
	PeriodAll   Period = "all"

	DefaultPeriod = Period7D
)

// DefaultTimeZone - зона отчёта дашборда: границы дней считаются по ней.
const DefaultTimeZone = "Europe/Warsaw"

// DefaultLocation - Europe/Warsaw; UTC, только если зону не удалось загрузить.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParsePeriod нормализует строку периода: неизвестное значение -> 7d.
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, Period3D, Period7D, Period30D, PeriodAll:
		return p
	default:
		return DefaultPeriod
	}
}

type StatsFilters struct {
	Period Period `json:"period"`
	Source string `json:"source,omitempty"`
	// AdminKey пока не используется: заготовка под X-Admin-Key реального API.
	AdminKey string `json:"-"`
}

type KPI struct {
	NewUsers        int      `json:"new_users"`
	TotalUsers      int      `json:"total_users"`
	FirstPurchaseCR float64  `json:"first_purchase_cr"`
	RepeatShare     float64  `json:"repeat_share"`
	AOV             *float64 `json:"aov,omitempty"`
	LTVAvg          *float64 `json:"ltv_avg,omitempty"`
}

type TimeseriesPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

type PaymentsBreakdownPoint struct {
	Date   string `json:"date"`
	New    int    `json:"new"`
	Repeat int    `json:"repeat"`
}

type SourceItem struct {
	Source string `json:"source"`
	Users  int    `json:"users"`
}

type FunnelStage struct {
	Stage        string  `json:"stage"`
	Users        int     `json:"users"`
	PctFromStart float64 `json:"pct_from_start"`
	PctFromPrev  float64 `json:"pct_from_prev"`
}

type Timeseries struct {
	NewUsersByDay          []TimeseriesPoint        `json:"new_users_by_day"`
	PaymentsBreakdownByDay []PaymentsBreakdownPoint `json:"payments_breakdown_by_day"`
}

type StatsPayload struct {
	KPIs       KPI           `json:"kpis"`
	Timeseries Timeseries    `json:"timeseries"`
	Sources    []SourceItem  `json:"sources"`
	Funnel     []FunnelStage `json:"funnel"`
}
