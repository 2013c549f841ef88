package reporting

import (
	"math"

	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/shopspring/decimal"
)

// Aggregate folds rows into additive totals. Row order is irrelevant and an
// empty input yields all-zero totals. Negative counts are treated as 0 and
// integer sums saturate at math.MaxInt64.
//
// Cost is summed in integer micros and converted to currency units once, so
// per-row rounding never accumulates.
func Aggregate(rows []models.MetricRow) models.Totals {
	var (
		t          models.Totals
		costMicros int64
	)
	for _, r := range rows {
		t.Impressions = addSat(t.Impressions, r.Impressions)
		t.Clicks = addSat(t.Clicks, r.Clicks)
		costMicros = addSat(costMicros, r.CostMicros)
		t.Conversions += maxf(r.Conversions)
		t.ConversionValue += maxf(r.ConversionValue)
		if r.VideoViews != nil {
			t.Views = addSat(t.Views, *r.VideoViews)
		}
	}
	t.CostUnits = MicrosToUnits(costMicros)
	return t
}

// MicrosToUnits converts an amount in millionths of a currency unit to units.
func MicrosToUnits(micros int64) float64 {
	f, _ := decimal.New(micros, -6).Float64()
	return f
}

// addSat adds max0(v) to a non-negative sum without wrapping.
func addSat(sum, v int64) int64 {
	v = max0(v)
	if sum > math.MaxInt64-v {
		return math.MaxInt64
	}
	return sum + v
}

func max0(i int64) int64 {
	if i < 0 {
		return 0
	}
	return i
}

func maxf(f float64) float64 {
	if f < 0 || f != f {
		return 0
	}
	return f
}
