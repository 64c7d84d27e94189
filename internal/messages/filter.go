package messages

import (
	"strings"
	"time"

	"fivechairs_admin/internal/models"
)

type predicate func(m *models.MessageItem) bool

// PeriodCutoff возвращает нижнюю границу planned_at для периода.
// ok=false для "all": фильтр по времени выключен.
func PeriodCutoff(p models.Period, now time.Time, loc *time.Location) (cutoff time.Time, ok bool) {
	if loc == nil {
		loc = models.DefaultLocation()
	}
	local := now.In(loc)

	switch models.ParsePeriod(string(p)) {
	case models.PeriodAll:
		return time.Time{}, false
	case models.PeriodToday:
		y, m, d := local.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	case models.Period3D:
		return local.AddDate(0, 0, -3), true
	case models.Period30D:
		return local.AddDate(0, 0, -30), true
	default:
		return local.AddDate(0, 0, -7), true
	}
}

// Apply оставляет записи, прошедшие все фильтры (логическое И).
// Порядок записей сохраняется, исходный срез не меняется.
func Apply(items []models.MessageItem, filters models.MessageFilters, now time.Time, loc *time.Location) []models.MessageItem {
	preds := predicates(filters.Normalize(), now, loc)

	out := make([]models.MessageItem, 0, len(items))
	for i := range items {
		if matches(&items[i], preds) {
			out = append(out, items[i])
		}
	}
	return out
}

func matches(m *models.MessageItem, preds []predicate) bool {
	for _, p := range preds {
		if !p(m) {
			return false
		}
	}
	return true
}

// predicates строит фильтры в порядке: period, module, status, type, source, user_id, search.
func predicates(f models.MessageFilters, now time.Time, loc *time.Location) []predicate {
	var preds []predicate

	if cutoff, ok := PeriodCutoff(f.Period, now, loc); ok {
		preds = append(preds, func(m *models.MessageItem) bool {
			return !m.PlannedAt.Before(cutoff)
		})
	}

	if f.Module != models.FilterAll {
		module := models.MessageModule(f.Module)
		preds = append(preds, func(m *models.MessageItem) bool { return m.Module == module })
	}

	if f.Status != models.FilterAll {
		status := models.MessageStatus(f.Status)
		preds = append(preds, func(m *models.MessageItem) bool { return m.Status == status })
	}

	if f.Type != models.FilterAll {
		typ := models.MessageType(f.Type)
		preds = append(preds, func(m *models.MessageItem) bool { return m.Type == typ })
	}

	if f.Source != "" {
		needle := strings.ToLower(f.Source)
		preds = append(preds, func(m *models.MessageItem) bool {
			return m.Source != nil && containsFold(*m.Source, needle)
		})
	}

	if f.UserID != "" {
		needle := strings.ToLower(f.UserID)
		preds = append(preds, func(m *models.MessageItem) bool {
			if containsFold(m.UserID, needle) {
				return true
			}
			return m.Username != nil && containsFold(*m.Username, needle)
		})
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		preds = append(preds, func(m *models.MessageItem) bool {
			text := m.RenderedMessage.SearchableText()
			return text != "" && containsFold(text, needle)
		})
	}

	return preds
}

// needle уже в нижнем регистре
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
