package source

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ClickHouseConn is the part of driver.Conn used by ClickHouseSource.
type ClickHouseConn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Exec(ctx context.Context, query string, args ...any) error
}

// ClickHouseSource reads daily campaign rows from a warehouse table.
type ClickHouseSource struct {
	conn  ClickHouseConn
	table string
}

// NewClickHouseSource creates a source reading from table. The table name is
// interpolated into SQL and must be a plain identifier.
func NewClickHouseSource(conn ClickHouseConn, table string) (*ClickHouseSource, error) {
	if !validIdentifier(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return &ClickHouseSource{conn: conn, table: table}, nil
}

func (s *ClickHouseSource) Name() string { return "clickhouse" }

// EnsureSchema creates the metrics table if it does not exist.
func (s *ClickHouseSource) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			account_id        String,
			campaign_id       String,
			date              Date,
			impressions       UInt64,
			clicks            UInt64,
			cost_micros       Int64,
			conversions       Float64,
			conversions_value Float64,
			video_views       UInt64
		) ENGINE = SummingMergeTree
		ORDER BY (account_id, campaign_id, date)`, s.table)
	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return nil
}

func (s *ClickHouseSource) FetchRows(ctx context.Context, q Query) ([]models.MetricRow, error) {
	days := q.Bucket.Days()
	if days == 0 {
		return nil, &UpstreamError{Message: models.ErrUnknownBucket.Error(), Status: 400}
	}

	query := fmt.Sprintf(`
		SELECT
			toString(date),
			toInt64(sum(impressions)),
			toInt64(sum(clicks)),
			toInt64(sum(cost_micros)),
			toFloat64(sum(conversions)),
			toFloat64(sum(conversions_value)),
			toInt64(sum(video_views))
		FROM %s
		WHERE account_id = ? AND campaign_id = ?
			AND date >= today() - ? AND date < today()
		GROUP BY date
		ORDER BY date`, s.table)

	rows, err := s.conn.Query(ctx, query, q.AccountID, q.CampaignID, days)
	if err != nil {
		return nil, transportError(fmt.Errorf("query daily metrics: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []models.MetricRow{}
	for rows.Next() {
		var (
			r     models.MetricRow
			views int64
		)
		if err := rows.Scan(&r.Date, &r.Impressions, &r.Clicks, &r.CostMicros,
			&r.Conversions, &r.ConversionValue, &views); err != nil {
			return nil, transportError(fmt.Errorf("scan daily metrics: %w", err))
		}
		if views > 0 {
			r.VideoViews = &views
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, transportError(err)
	}
	return out, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '.':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
