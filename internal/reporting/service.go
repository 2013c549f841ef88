// Package reporting turns raw per-day metric rows into period KPIs.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/source"
)

// ErrMissingCampaign is returned when a request names no campaign.
var ErrMissingCampaign = errors.New("campaign id is required")

// KPIRequest identifies one KPI query. The account travels with the request.
type KPIRequest struct {
	AccountID  string
	CampaignID string
	Period     models.Period
}

// Service computes aggregated KPIs from a MetricsSource.
type Service struct {
	source  source.MetricsSource
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a reporting service. logger and m may be nil.
func NewService(src source.MetricsSource, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  src,
		logger:  logger.Named("reporting"),
		metrics: m,
	}
}

// SourceName returns the name of the underlying metrics source.
func (s *Service) SourceName() string {
	return s.source.Name()
}

// FetchRows returns the raw rows for a campaign bucket, recording upstream
// latency and volume.
func (s *Service) FetchRows(ctx context.Context, q source.Query) ([]models.MetricRow, error) {
	if q.CampaignID == "" {
		return nil, ErrMissingCampaign
	}

	start := time.Now()
	rows, err := s.source.FetchRows(ctx, q)
	s.metrics.RecordUpstreamFetch(s.source.Name(), err, time.Since(start), len(rows))
	if err != nil {
		s.logger.Warn("upstream fetch failed",
			zap.String("source", s.source.Name()),
			zap.String("account_id", q.AccountID),
			zap.String("campaign_id", q.CampaignID),
			zap.String("bucket", string(q.Bucket)),
			zap.Error(err),
		)
		return nil, err
	}
	return rows, nil
}

// GetKPIByPeriod resolves req.Period to an upstream bucket, fetches the raw
// rows and folds them into an AggregatedKPI. It either returns a complete
// result or the upstream error unchanged. Zero rows yield an all-zero KPI.
func (s *Service) GetKPIByPeriod(ctx context.Context, req KPIRequest) (*models.AggregatedKPI, error) {
	start := time.Now()
	bucket := ResolveBucket(req.Period)

	rows, err := s.FetchRows(ctx, source.Query{
		AccountID:  req.AccountID,
		CampaignID: req.CampaignID,
		Bucket:     bucket,
	})
	if err != nil {
		s.metrics.RecordKPIRequest(string(req.Period), "error", time.Since(start))
		if errors.Is(err, ErrMissingCampaign) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch rows for %s/%s: %w", req.CampaignID, bucket, err)
	}

	kpi := Derive(Aggregate(rows), req.Period)
	kpi.RowCount = len(rows)

	if kpi.Degraded {
		s.metrics.RecordDegradedPeriod(string(req.Period), string(bucket))
	}
	s.metrics.RecordKPIRequest(string(req.Period), "ok", time.Since(start))

	s.logger.Debug("kpi computed",
		zap.String("account_id", req.AccountID),
		zap.String("campaign_id", req.CampaignID),
		zap.String("period", string(req.Period)),
		zap.String("bucket", string(bucket)),
		zap.Bool("degraded", kpi.Degraded),
		zap.Int("rows", kpi.RowCount),
	)
	return &kpi, nil
}

// GetTimeSeries returns the per-day breakdown for the bucket that
// GetKPIByPeriod would aggregate.
func (s *Service) GetTimeSeries(ctx context.Context, req KPIRequest) (*models.TimeSeries, error) {
	bucket := ResolveBucket(req.Period)

	rows, err := s.FetchRows(ctx, source.Query{
		AccountID:  req.AccountID,
		CampaignID: req.CampaignID,
		Bucket:     bucket,
	})
	if err != nil {
		if errors.Is(err, ErrMissingCampaign) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch rows for %s/%s: %w", req.CampaignID, bucket, err)
	}

	return &models.TimeSeries{
		CampaignID: req.CampaignID,
		Period:     req.Period,
		Bucket:     bucket,
		Degraded:   IsDegraded(req.Period, bucket),
		Points:     Series(rows),
	}, nil
}
