package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radiusdt/vector-insights/internal/models"
)

func TestResolveBucket(t *testing.T) {
	tests := []struct {
		period   models.Period
		bucket   models.Bucket
		degraded bool
	}{
		{models.PeriodLast30Days, models.Bucket30Days, false},
		{models.PeriodLast14Days, models.Bucket7Days, true},
		{models.PeriodLast7Days, models.Bucket7Days, false},
		{models.PeriodLast3Days, models.Bucket7Days, true},
		{models.PeriodLast24Hours, models.Bucket7Days, true},
		{models.Period("90j"), models.Bucket30Days, true},
		{models.Period(""), models.Bucket30Days, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			b := ResolveBucket(tt.period)
			assert.Equal(t, tt.bucket, b)
			assert.Equal(t, b, ResolveBucket(tt.period), "resolver must be idempotent")
			assert.Equal(t, tt.degraded, IsDegraded(tt.period, b))
		})
	}
}

// 24h is answered with the same 7-day bucket as 7j.
func TestResolveBucketCollapses24hOnto7Days(t *testing.T) {
	assert.Equal(t, ResolveBucket(models.PeriodLast7Days), ResolveBucket(models.PeriodLast24Hours))
}

func TestResolveBucketIsTotal(t *testing.T) {
	for _, p := range models.Periods {
		b := ResolveBucket(p)
		_, err := models.ParseBucket(string(b))
		assert.NoError(t, err, p)
	}
}
