package reporting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radiusdt/vector-insights/internal/models"
)

func int64p(v int64) *int64 { return &v }

var scenarioA = []models.MetricRow{
	{Impressions: 1000, Clicks: 50, CostMicros: 10_000_000, Conversions: 5, ConversionValue: 200},
	{Impressions: 2000, Clicks: 100, CostMicros: 20_000_000, Conversions: 10, ConversionValue: 400},
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, models.Totals{}, Aggregate(nil))
	assert.Equal(t, models.Totals{}, Aggregate([]models.MetricRow{}))
}

func TestAggregateScenarioA(t *testing.T) {
	got := Aggregate(scenarioA)

	assert.Equal(t, models.Totals{
		Impressions:     3000,
		Clicks:          150,
		CostUnits:       30,
		Conversions:     15,
		ConversionValue: 600,
	}, got)
}

func TestAggregateAdditive(t *testing.T) {
	a := []models.MetricRow{
		{Impressions: 7, Clicks: 3, CostMicros: 1_234_567, Conversions: 0.5, ConversionValue: 1.25, VideoViews: int64p(4)},
		{Impressions: 11, Clicks: 0, CostMicros: 1, VideoViews: int64p(9)},
	}
	b := []models.MetricRow{
		{Impressions: 13, Clicks: 5, CostMicros: 999_999, Conversions: 2, ConversionValue: 3.5},
	}

	whole := Aggregate(append(append([]models.MetricRow{}, a...), b...))
	ta, tb := Aggregate(a), Aggregate(b)

	assert.Equal(t, ta.Impressions+tb.Impressions, whole.Impressions)
	assert.Equal(t, ta.Clicks+tb.Clicks, whole.Clicks)
	assert.Equal(t, ta.Views+tb.Views, whole.Views)
	assert.InDelta(t, ta.CostUnits+tb.CostUnits, whole.CostUnits, 1e-9)
	assert.InDelta(t, ta.Conversions+tb.Conversions, whole.Conversions, 1e-9)
	assert.InDelta(t, ta.ConversionValue+tb.ConversionValue, whole.ConversionValue, 1e-9)
	assert.Equal(t, int64(13), whole.Views)
	assert.Equal(t, 2.234567, whole.CostUnits)
}

func TestAggregateOrderIndependent(t *testing.T) {
	reversed := []models.MetricRow{scenarioA[1], scenarioA[0]}
	assert.Equal(t, Aggregate(scenarioA), Aggregate(reversed))
}

// A row without cost decodes to CostMicros 0 and must not poison the fold.
func TestAggregateScenarioDMissingCost(t *testing.T) {
	rows := []models.MetricRow{
		{Impressions: 500, Clicks: 10},
		{Impressions: 500, Clicks: 10, CostMicros: 4_000_000},
	}
	got := Aggregate(rows)
	assert.Equal(t, int64(1000), got.Impressions)
	assert.Equal(t, 4.0, got.CostUnits)
}

func TestAggregateClampsNegatives(t *testing.T) {
	got := Aggregate([]models.MetricRow{
		{Impressions: -5, Clicks: -1, CostMicros: -1_000_000, Conversions: -2, VideoViews: int64p(-3)},
		{Impressions: 10, Clicks: 2, CostMicros: 1_000_000},
	})
	assert.Equal(t, models.Totals{Impressions: 10, Clicks: 2, CostUnits: 1}, got)
}

func TestMicrosToUnitsAvoidsDrift(t *testing.T) {
	rows := make([]models.MetricRow, 10)
	for i := range rows {
		rows[i].CostMicros = 100_000 // 0.1
	}
	assert.Equal(t, 1.0, Aggregate(rows).CostUnits)
	assert.Equal(t, 0.000001, MicrosToUnits(1))
}

func TestAggregateSaturatesOnOverflow(t *testing.T) {
	big := int64(math.MaxInt64 - 10)
	got := Aggregate([]models.MetricRow{
		{Impressions: big, Clicks: big, CostMicros: big, VideoViews: int64p(big)},
		{Impressions: big, Clicks: 100, CostMicros: big, VideoViews: int64p(big)},
	})

	assert.Equal(t, int64(math.MaxInt64), got.Impressions)
	assert.Equal(t, int64(math.MaxInt64), got.Clicks)
	assert.Equal(t, int64(math.MaxInt64), got.Views)
	assert.Greater(t, got.CostUnits, 0.0)

	kpi := Derive(got, models.PeriodLast7Days)
	assert.GreaterOrEqual(t, kpi.CTR, 0.0)
	assert.GreaterOrEqual(t, kpi.CPC, 0.0)
	assert.GreaterOrEqual(t, kpi.CPV, 0.0)
}
