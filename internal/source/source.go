// Package source provides the upstream backends that deliver raw per-day
// campaign metric rows.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// Query identifies one raw metrics fetch. The account is passed on every call;
// sources never keep per-account state between requests.
type Query struct {
	AccountID  string
	CampaignID string
	Bucket     models.Bucket
}

// MetricsSource delivers raw metric rows for a (campaign, bucket) pair.
// An empty result is not an error.
type MetricsSource interface {
	FetchRows(ctx context.Context, q Query) ([]models.MetricRow, error)
	Name() string
}

// HTTPClient is the subset of *http.Client the HTTP-backed sources need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client with a blanket timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
