package analytics

import "github.com/creatorpulse/creator-backend/internal/models"

// Trend computes the period-over-period percentage change. A zero or absent
// baseline yields nil: a trend is never fabricated without one, and zero
// never divides anything.
func Trend(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	change := (current - previous) / previous * 100
	return &change
}

// MetricTrend pairs the raw values with the computed change.
func MetricTrend(current, previous float64) models.MetricTrend {
	return models.MetricTrend{
		Current:   current,
		Previous:  previous,
		ChangePct: Trend(current, previous),
	}
}
