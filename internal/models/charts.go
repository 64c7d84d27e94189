package models

import "errors"

// ErrNotFound - единственная доменная ошибка: неизвестный message_uuid.
var ErrNotFound = errors.New("not found")

type SeriesChart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type FunnelChart struct {
	Labels   []string  `json:"labels"`
	Data     []int     `json:"data"`
	Percents []float64 `json:"percents"`
}

type PaymentsChart struct {
	Labels     []string `json:"labels"`
	NewData    []int    `json:"newData"`
	RepeatData []int    `json:"repeatData"`
}

// ChartBundle - StatsPayload, разложенный по сериям графиков дашборда.
type ChartBundle struct {
	NewUsers SeriesChart   `json:"newUsersChart"`
	Sources  SeriesChart   `json:"sourcesChart"`
	Funnel   FunnelChart   `json:"funnelChart"`
	Payments PaymentsChart `json:"paymentsChart"`
}
