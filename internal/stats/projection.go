package stats

import (
	"fmt"
	"time"

	"fivechairs_admin/internal/models"
)

const (
	topSources       = 5
	otherSourceLabel = "Other"

	// длиннее месяца - в подписи появляется год
	shortLabelMaxDays = 30
)

var sourceDisplayNames = map[string]string{
	"afisha":    "Afisha",
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"organic":   "Organic",
	"partners":  "Partners",
	"other":     "Other",
}

// Project раскладывает StatsPayload по сериям графиков. Чистая функция:
// проценты воронки не пересчитываются, порядок источников сохраняется.
func Project(s *models.StatsPayload) *models.ChartBundle {
	if s == nil {
		s = &models.StatsPayload{}
	}

	byDay := s.Timeseries.NewUsersByDay
	newUsers := models.SeriesChart{
		Labels: make([]string, 0, len(byDay)),
		Data:   make([]int, 0, len(byDay)),
	}
	for _, p := range byDay {
		newUsers.Labels = append(newUsers.Labels, FormatDateLabel(p.Date, len(byDay)))
		newUsers.Data = append(newUsers.Data, p.Value)
	}

	funnel := models.FunnelChart{
		Labels:   make([]string, 0, len(s.Funnel)),
		Data:     make([]int, 0, len(s.Funnel)),
		Percents: make([]float64, 0, len(s.Funnel)),
	}
	for _, f := range s.Funnel {
		funnel.Labels = append(funnel.Labels, f.Stage)
		funnel.Data = append(funnel.Data, f.Users)
		funnel.Percents = append(funnel.Percents, f.PctFromStart)
	}

	pays := s.Timeseries.PaymentsBreakdownByDay
	payments := models.PaymentsChart{
		Labels:     make([]string, 0, len(pays)),
		NewData:    make([]int, 0, len(pays)),
		RepeatData: make([]int, 0, len(pays)),
	}
	for _, p := range pays {
		payments.Labels = append(payments.Labels, FormatDateLabel(p.Date, len(pays)))
		payments.NewData = append(payments.NewData, p.New)
		payments.RepeatData = append(payments.RepeatData, p.Repeat)
	}

	return &models.ChartBundle{
		NewUsers: newUsers,
		Sources:  projectSources(s.Sources),
		Funnel:   funnel,
		Payments: payments,
	}
}

func projectSources(items []models.SourceItem) models.SeriesChart {
	n := min(len(items), topSources)
	out := models.SeriesChart{
		Labels: make([]string, 0, n+1),
		Data:   make([]int, 0, n+1),
	}

	for _, s := range items[:n] {
		out.Labels = append(out.Labels, SourceDisplayName(s.Source))
		out.Data = append(out.Data, s.Users)
	}

	rest := 0
	for _, s := range items[n:] {
		rest += s.Users
	}
	if rest > 0 {
		out.Labels = append(out.Labels, otherSourceLabel)
		out.Data = append(out.Data, rest)
	}
	return out
}

// SourceDisplayName - имя источника для подписи; неизвестные как есть.
func SourceDisplayName(source string) string {
	if name, ok := sourceDisplayNames[source]; ok {
		return name
	}
	return source
}

// FormatDateLabel: "2026-10-18" -> "18.10", для окна больше 30 дней -> "18.10.26".
func FormatDateLabel(date string, totalDays int) string {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	if totalDays <= shortLabelMaxDays {
		return fmt.Sprintf("%02d.%02d", d.Day(), int(d.Month()))
	}
	return fmt.Sprintf("%02d.%02d.%02d", d.Day(), int(d.Month()), d.Year()%100)
}
