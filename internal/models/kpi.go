package models

// MetricRow is one reporting bucket (usually one day) of raw measurements for
// a campaign, as delivered by a metrics source. Absent numeric values are 0.
type MetricRow struct {
	Date            string  `json:"date,omitempty"`
	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	CostMicros      int64   `json:"cost_micros"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`

	// Upstream-computed averages, in micros. Kept for pass-through only.
	AverageCPC *int64 `json:"average_cpc,omitempty"`
	AverageCPV *int64 `json:"average_cpv,omitempty"`
	VideoViews *int64 `json:"video_views,omitempty"`
}

// Totals is the additive fold of a set of MetricRows.
type Totals struct {
	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	CostUnits       float64 `json:"cost"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`
	Views           int64   `json:"views"`
}

// AggregatedKPI is the totals for a (campaign, period) pair together with the
// ratios derived from them.
type AggregatedKPI struct {
	Totals

	CTR  float64 `json:"ctr"`  // Click-through rate (%)
	CPC  float64 `json:"cpc"`  // Cost per click
	CPV  float64 `json:"cpv"`  // Cost per view
	ROAS float64 `json:"roas"` // Return on ad spend

	Period Period `json:"period"`
	Bucket Bucket `json:"bucket"`
	// Degraded is set when the bucket does not cover the requested period
	// exactly (e.g. 24h answered with 7 days of data).
	Degraded bool `json:"degraded"`
	RowCount int  `json:"row_count"`
}

// SeriesPoint is one day of a campaign time series with that day's ratios.
type SeriesPoint struct {
	Date string `json:"date"`
	Totals

	CTR  float64 `json:"ctr"`
	CPC  float64 `json:"cpc"`
	ROAS float64 `json:"roas"`
}

// TimeSeries is the per-day breakdown behind an AggregatedKPI, ordered by
// date ascending.
type TimeSeries struct {
	CampaignID string        `json:"campaign_id"`
	Period     Period        `json:"period"`
	Bucket     Bucket        `json:"bucket"`
	Degraded   bool          `json:"degraded"`
	Points     []SeriesPoint `json:"points"`
}
