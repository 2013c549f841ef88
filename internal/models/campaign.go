package models

import (
	"errors"
	"strings"
	"time"
)

// AccountHeader carries the advertiser account (CID) on every proxied request.
const AccountHeader = "X-Google-Ads-CID"

// NormalizeAccountID strips the dashes of the 123-456-7890 display form so
// both spellings of a CID compare equal.
func NormalizeAccountID(cid string) string {
	return strings.ReplaceAll(strings.TrimSpace(cid), "-", "")
}

// CampaignType mirrors the upstream advertising channel type.
type CampaignType string

const (
	CampaignTypePerformanceMax CampaignType = "PERFORMANCE_MAX"
	CampaignTypeVideo          CampaignType = "VIDEO"
	CampaignTypeDisplay        CampaignType = "DISPLAY"
	CampaignTypeSearch         CampaignType = "SEARCH"
)

const (
	CampaignStatusEnabled = "ENABLED"
	CampaignStatusPaused  = "PAUSED"
	CampaignStatusRemoved = "REMOVED"
)

// Campaign is a catalog entry for an advertising campaign. An empty
// AccountID marks a demo campaign visible to every account.
type Campaign struct {
	ID              string       `json:"id"`
	AccountID       string       `json:"account_id,omitempty"`
	Name            string       `json:"name"`
	Type            CampaignType `json:"type"`
	Status          string       `json:"status"`
	BiddingStrategy string       `json:"bidding_strategy,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsPerformanceMax reports whether the campaign is a Performance Max campaign.
func (c *Campaign) IsPerformanceMax() bool {
	return c.Type == CampaignTypePerformanceMax
}

// IsVideo reports whether the campaign is a video campaign.
func (c *Campaign) IsVideo() bool {
	return c.Type == CampaignTypeVideo
}

// Validate checks that required fields are present.
func (c *Campaign) Validate() error {
	if c == nil {
		return errors.New("campaign is nil")
	}
	if c.ID == "" {
		return errors.New("id is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	switch c.Status {
	case CampaignStatusEnabled, CampaignStatusPaused, CampaignStatusRemoved:
	default:
		return errors.New("invalid status")
	}
	return nil
}
