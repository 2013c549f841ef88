package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func TestSeriesGroupsAndOrdersByDate(t *testing.T) {
	rows := []models.MetricRow{
		{Date: "2024-03-02", Impressions: 2000, Clicks: 100, CostMicros: 20_000_000, ConversionValue: 400},
		{Date: "2024-03-01", Impressions: 1000, Clicks: 50, CostMicros: 10_000_000, ConversionValue: 200},
		{Date: "2024-03-02", Impressions: 1000, Clicks: 0, CostMicros: 0},
	}

	points := Series(rows)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-03-01", points[0].Date)
	assert.Equal(t, int64(1000), points[0].Impressions)
	assert.InDelta(t, 5.0, points[0].CTR, 1e-9)
	assert.InDelta(t, 0.2, points[0].CPC, 1e-9)
	assert.InDelta(t, 20.0, points[0].ROAS, 1e-9)

	// Same-day rows are summed before dividing.
	assert.Equal(t, "2024-03-02", points[1].Date)
	assert.Equal(t, int64(3000), points[1].Impressions)
	assert.InDelta(t, 100.0/3000*100, points[1].CTR, 1e-9)
}

func TestSeriesEmpty(t *testing.T) {
	points := Series(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestSeriesZeroDay(t *testing.T) {
	points := Series([]models.MetricRow{{Date: "2024-03-01"}})
	require.Len(t, points, 1)
	assert.Equal(t, models.SeriesPoint{Date: "2024-03-01"}, points[0])
}

func TestSeriesMatchesAggregateTotals(t *testing.T) {
	rows := []models.MetricRow{
		{Date: "2024-03-01", Impressions: 7, Clicks: 3, CostMicros: 1_000_000, Conversions: 1},
		{Date: "2024-03-02", Impressions: 11, Clicks: 2, CostMicros: 2_000_000, Conversions: 2},
		{Date: "2024-03-03", Impressions: 13, Clicks: 5, CostMicros: 4_000_000, Conversions: 4},
	}

	var impressions, clicks int64
	var cost float64
	for _, p := range Series(rows) {
		impressions += p.Impressions
		clicks += p.Clicks
		cost += p.CostUnits
	}
	total := Aggregate(rows)
	assert.Equal(t, total.Impressions, impressions)
	assert.Equal(t, total.Clicks, clicks)
	assert.InDelta(t, total.CostUnits, cost, 1e-9)
}
