package reporting

import "github.com/radiusdt/vector-insights/internal/models"

// Derive computes ratio KPIs from aggregated totals. Ratios are always taken
// over the sums, never averaged across rows, and every ratio is 0 when its
// denominator is 0.
//
// CPC and CPV are always recomputed here; upstream-supplied averages on the
// individual rows are ignored.
func Derive(t models.Totals, period models.Period) models.AggregatedKPI {
	bucket := ResolveBucket(period)
	return models.AggregatedKPI{
		Totals:   t,
		CTR:      safeDiv(float64(t.Clicks), float64(t.Impressions)) * 100,
		CPC:      safeDiv(t.CostUnits, float64(t.Clicks)),
		CPV:      safeDiv(t.CostUnits, float64(t.Views)),
		ROAS:     safeDiv(t.ConversionValue, t.CostUnits),
		Period:   period,
		Bucket:   bucket,
		Degraded: IsDegraded(period, bucket),
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
