package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/radiusdt/vector-insights/internal/models"
)

// DemoCampaigns returns the catalog served when no database is configured.
func DemoCampaigns() []*models.Campaign {
	return []*models.Campaign{
		{ID: "camp1", Name: "Campagne Performance Max - Musique Pop", Type: models.CampaignTypePerformanceMax, Status: models.CampaignStatusEnabled, BiddingStrategy: "MAXIMIZE_CONVERSION_VALUE"},
		{ID: "camp2", Name: "Campagne Vidéo - Clips Officiels", Type: models.CampaignTypeVideo, Status: models.CampaignStatusEnabled, BiddingStrategy: "TARGET_CPV"},
		{ID: "camp3", Name: "Campagne Display - Artistes Émergents", Type: models.CampaignTypeDisplay, Status: models.CampaignStatusEnabled, BiddingStrategy: "MAXIMIZE_CLICKS"},
		{ID: "camp4", Name: "Campagne Search - Titres Albums", Type: models.CampaignTypeSearch, Status: models.CampaignStatusEnabled, BiddingStrategy: "TARGET_ROAS"},
	}
}

// InMemoryCampaignRepo is a map-backed CampaignRepo. Stored values are
// copied on the way in and out.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

// NewInMemoryCampaignRepo creates a repo holding seed.
func NewInMemoryCampaignRepo(seed ...*models.Campaign) *InMemoryCampaignRepo {
	r := &InMemoryCampaignRepo{campaigns: make(map[string]*models.Campaign, len(seed))}
	for _, c := range seed {
		cp := *c
		r.campaigns[c.ID] = &cp
	}
	return r
}

func (r *InMemoryCampaignRepo) ListByAccount(_ context.Context, accountID string) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if visibleTo(c, accountID) {
			cp := *c
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *InMemoryCampaignRepo) GetByID(_ context.Context, accountID, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok || !visibleTo(c, accountID) {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCampaignRepo) Upsert(_ context.Context, c *models.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	cp.AccountID = models.NormalizeAccountID(cp.AccountID)
	now := time.Now().UTC()
	if prev, ok := r.campaigns[c.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.campaigns[c.ID] = &cp
	return nil
}
