package reporting

import (
	"sort"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Series groups rows by date and derives each day's ratios from that day's
// sums. Rows sharing a date are folded together; rows without a date are
// grouped under the empty date, which sorts first.
func Series(rows []models.MetricRow) []models.SeriesPoint {
	byDate := make(map[string][]models.MetricRow)
	for _, row := range rows {
		byDate[row.Date] = append(byDate[row.Date], row)
	}

	points := make([]models.SeriesPoint, 0, len(byDate))
	for date, day := range byDate {
		t := Aggregate(day)
		points = append(points, models.SeriesPoint{
			Date:   date,
			Totals: t,
			CTR:    safeDiv(float64(t.Clicks), float64(t.Impressions)) * 100,
			CPC:    safeDiv(t.CostUnits, float64(t.Clicks)),
			ROAS:   safeDiv(t.ConversionValue, t.CostUnits),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
