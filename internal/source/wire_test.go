package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func decode(t *testing.T, body string) []models.MetricRow {
	t.Helper()
	var w wireReport
	require.NoError(t, json.Unmarshal([]byte(body), &w))
	return w.rows()
}

func TestDecodeMalformedFieldsAreZero(t *testing.T) {
	rows := decode(t, `{"results":[{"segments":{"date":"2024-03-01"},"metrics":{
		"impressions":"1000",
		"clicks":50,
		"cost_micros":null,
		"conversions":"abc",
		"conversions_value":200.5,
		"video_views":{"nested":1},
		"average_cpc":true
	}}]}`)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "2024-03-01", r.Date)
	assert.Equal(t, int64(1000), r.Impressions)
	assert.Equal(t, int64(50), r.Clicks)
	assert.Zero(t, r.CostMicros)
	assert.Zero(t, r.Conversions)
	assert.Equal(t, 200.5, r.ConversionValue)
	assert.Nil(t, r.VideoViews)
	assert.Nil(t, r.AverageCPC)
}

func TestDecodeMissingFields(t *testing.T) {
	rows := decode(t, `{"results":[{"metrics":{"impressions":10}},{}]}`)

	require.Len(t, rows, 2)
	assert.Equal(t, models.MetricRow{Impressions: 10}, rows[0])
	assert.Equal(t, models.MetricRow{}, rows[1])
}

func TestDecodeGoogleCamelCase(t *testing.T) {
	rows := decode(t, `{"results":[{"segments":{"date":"2024-03-02"},"metrics":{
		"impressions":"2000",
		"clicks":"100",
		"costMicros":"20000000",
		"conversions":10,
		"conversionsValue":"400.25",
		"averageCpc":200000.7,
		"videoViews":"3"
	}}],"nextPageToken":"abc"}`)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, int64(20_000_000), r.CostMicros)
	assert.Equal(t, 400.25, r.ConversionValue)
	require.NotNil(t, r.AverageCPC)
	assert.Equal(t, int64(200000), *r.AverageCPC)
	require.NotNil(t, r.VideoViews)
	assert.Equal(t, int64(3), *r.VideoViews)
}

func TestEncodeReportIsDecodable(t *testing.T) {
	views := int64(42)
	in := []models.MetricRow{{
		Date:            "2024-03-03",
		Impressions:     1000,
		Clicks:          50,
		CostMicros:      10_000_000,
		Conversions:     5,
		ConversionValue: 200,
		VideoViews:      &views,
	}}

	b, err := json.Marshal(EncodeReport(in))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"conversions_value":200`)
	assert.Contains(t, string(b), `"segments":{"date":"2024-03-03"}`)
	assert.NotContains(t, string(b), "average_cpc")

	assert.Equal(t, in, decode(t, string(b)))
}

func TestEncodeReportEmpty(t *testing.T) {
	b, err := json.Marshal(EncodeReport(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(b))
}

func TestDecodeBadRowKeepsGoodRows(t *testing.T) {
	tests := []struct {
		name string
		body string
		bad  models.MetricRow
	}{
		{
			name: "numeric date",
			body: `{"results":[{"segments":{"date":20240301},"metrics":{"impressions":5}},{"metrics":{"impressions":10,"clicks":2}}]}`,
			bad:  models.MetricRow{Impressions: 5},
		},
		{
			name: "metrics array",
			body: `{"results":[{"metrics":[]},{"metrics":{"impressions":10,"clicks":2}}]}`,
		},
		{
			name: "metrics string",
			body: `{"results":[{"segments":{"date":"2024-03-01"},"metrics":"n/a"},{"metrics":{"impressions":10,"clicks":2}}]}`,
			bad:  models.MetricRow{Date: "2024-03-01"},
		},
		{
			name: "segments array",
			body: `{"results":[{"segments":[1],"metrics":{"impressions":5}},{"metrics":{"impressions":10,"clicks":2}}]}`,
			bad:  models.MetricRow{Impressions: 5},
		},
		{
			name: "row not an object",
			body: `{"results":[42,{"metrics":{"impressions":10,"clicks":2}}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := decode(t, tt.body)

			require.Len(t, rows, 2)
			assert.Equal(t, tt.bad, rows[0])
			assert.Equal(t, models.MetricRow{Impressions: 10, Clicks: 2}, rows[1])
		})
	}
}

func TestDecodeIntOutOfRange(t *testing.T) {
	rows := decode(t, `{"results":[{"metrics":{
		"impressions":9223372036854775808,
		"average_cpc":9223372036854775808,
		"video_views":"1e19",
		"clicks":9223372036854775807
	}}]}`)

	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Impressions)
	assert.Nil(t, rows[0].AverageCPC)
	assert.Nil(t, rows[0].VideoViews)
	assert.Equal(t, int64(9223372036854775807), rows[0].Clicks)
}
