package source

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// mockProfile describes the daily shape of a demo campaign.
type mockProfile struct {
	impressions float64 // per day
	ctr         float64 // clicks / impressions
	cpc         float64 // currency units per click
	convRate    float64 // conversions / clicks
	roas        float64 // conversion value / cost
	viewRate    float64 // views / impressions, 0 for non-video
}

var (
	pmaxProfile    = mockProfile{impressions: 4000, ctr: 0.073, cpc: 0.51, convRate: 0.105, roas: 3.2}
	videoProfile   = mockProfile{impressions: 8333, ctr: 0.052, cpc: 0.48, convRate: 0.025, roas: 2.8, viewRate: 0.72}
	defaultProfile = mockProfile{impressions: 2833, ctr: 0.049, cpc: 0.67, convRate: 0.076, roas: 2.4}
)

var mockProfiles = map[string]mockProfile{
	"camp1": pmaxProfile,
	"camp2": videoProfile,
	"camp3": defaultProfile,
	"camp4": defaultProfile,
}

// MockSource generates plausible daily rows for the demo campaigns after a
// simulated network delay. Output is deterministic for a given account,
// campaign, bucket and day. Unknown campaigns yield no rows.
type MockSource struct {
	latency time.Duration
	now     func() time.Time
}

// NewMockSource creates a mock source that waits latency before answering.
func NewMockSource(latency time.Duration) *MockSource {
	return &MockSource{latency: latency, now: time.Now}
}

func (s *MockSource) Name() string { return "mock" }

func (s *MockSource) FetchRows(ctx context.Context, q Query) ([]models.MetricRow, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, transportError(ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, transportError(err)
	}

	p, ok := mockProfiles[q.CampaignID]
	if !ok {
		return []models.MetricRow{}, nil
	}

	days := q.Bucket.Days()
	if days == 0 {
		return nil, &UpstreamError{Message: models.ErrUnknownBucket.Error(), Status: 400}
	}

	// Upstream "last N days" windows end yesterday.
	end := s.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -1)
	rows := make([]models.MetricRow, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		rows = append(rows, p.row(date, seed(q.AccountID, q.CampaignID, string(q.Bucket), date)))
	}
	return rows, nil
}

func (p mockProfile) row(date string, seed int64) models.MetricRow {
	rng := rand.New(rand.NewSource(seed))
	jitter := func() float64 { return 0.85 + rng.Float64()*0.3 }

	imps := int64(p.impressions * jitter())
	clicks := int64(float64(imps) * p.ctr * jitter())
	costMicros := int64(float64(clicks) * p.cpc * jitter() * 1e6)
	cost := float64(costMicros) / 1e6

	r := models.MetricRow{
		Date:            date,
		Impressions:     imps,
		Clicks:          clicks,
		CostMicros:      costMicros,
		Conversions:     round2(float64(clicks) * p.convRate * jitter()),
		ConversionValue: round2(cost * p.roas * jitter()),
	}
	if clicks > 0 {
		cpc := costMicros / clicks
		r.AverageCPC = &cpc
	}
	if p.viewRate > 0 {
		views := int64(float64(imps) * p.viewRate * jitter())
		r.VideoViews = &views
		if views > 0 {
			cpv := costMicros / views
			r.AverageCPV = &cpv
		}
	}
	return r
}

func seed(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
