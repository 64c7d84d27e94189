package stats

import (
	"time"

	"fivechairs_admin/internal/models"
)

const (
	// AllTimeWindowDays - окно для периода "all". Сейчас совпадает с 30d;
	// настоящая "вся история" меняется здесь.
	AllTimeWindowDays = 30

	defaultWindowDays = 7

	DefaultTimeZone = models.DefaultTimeZone
)

// WindowDays переводит период в число дней; неизвестный период -> 7.
func WindowDays(p models.Period) int {
	switch p {
	case models.PeriodToday:
		return 1
	case models.Period3D:
		return 3
	case models.Period7D:
		return 7
	case models.Period30D:
		return 30
	case models.PeriodAll:
		return AllTimeWindowDays
	default:
		return defaultWindowDays
	}
}

// LoadLocation возвращает зону отчёта; пустое имя -> Europe/Warsaw.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone
	}
	return time.LoadLocation(name)
}
