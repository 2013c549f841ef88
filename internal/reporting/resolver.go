package reporting

import "github.com/radiusdt/vector-insights/internal/models"

// ResolveBucket maps a user-facing period onto the upstream bucket that
// answers it. The upstream only serves 7 and 30 day windows, so 24h, 3j and
// 14j all collapse onto 7d: a 24h request is answered with 7 days of data.
// Anything unrecognized falls back to 30d.
func ResolveBucket(p models.Period) models.Bucket {
	switch p {
	case models.PeriodLast30Days:
		return models.Bucket30Days
	case models.PeriodLast14Days, models.PeriodLast7Days, models.PeriodLast3Days, models.PeriodLast24Hours:
		return models.Bucket7Days
	default:
		return models.Bucket30Days
	}
}

// IsDegraded reports whether bucket b covers a different window than period p.
func IsDegraded(p models.Period, b models.Bucket) bool {
	return p.Days() != b.Days()
}
