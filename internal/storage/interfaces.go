package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the requesting account.
var ErrNotFound = errors.New("not found")

// =============================================
// CAMPAIGN CATALOG
// =============================================

// CampaignRepo stores the campaigns each account can report on. Campaigns
// with an empty AccountID are demo entries visible to every account.
type CampaignRepo interface {
	ListByAccount(ctx context.Context, accountID string) ([]*models.Campaign, error)
	GetByID(ctx context.Context, accountID, id string) (*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
}

// =============================================
// KPI CACHE
// =============================================

// KPIKey identifies a cached KPI result.
type KPIKey struct {
	AccountID  string
	CampaignID string
	Period     models.Period
}

func (k KPIKey) String() string {
	return fmt.Sprintf("kpi:%s:%s:%s", k.AccountID, k.CampaignID, k.Period)
}

// KPICache holds computed KPIs for a short freshness window. A miss is
// reported as (nil, false, nil).
type KPICache interface {
	Get(ctx context.Context, key KPIKey) (*models.AggregatedKPI, bool, error)
	Set(ctx context.Context, key KPIKey, kpi *models.AggregatedKPI) error
}

func visibleTo(c *models.Campaign, accountID string) bool {
	return c.AccountID == "" || c.AccountID == accountID
}
