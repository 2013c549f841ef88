package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ProxySource fetches raw rows from a running insights server. The account ID
// travels as a header on each request; the client itself holds no account
// state and is safe to share across goroutines.
type ProxySource struct {
	baseURL string
	apiKey  string
	httpc   HTTPClient
}

// NewProxySource creates a client for the server at baseURL (e.g.
// http://localhost:3001). apiKey may be empty.
func NewProxySource(baseURL, apiKey string, httpc HTTPClient) *ProxySource {
	return &ProxySource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   httpc,
	}
}

func (s *ProxySource) Name() string { return "proxy" }

func (s *ProxySource) FetchRows(ctx context.Context, q Query) ([]models.MetricRow, error) {
	path := fmt.Sprintf("/api/google-ads/reports/%s/%s", url.PathEscape(q.CampaignID), url.PathEscape(string(q.Bucket)))
	body, err := s.get(ctx, path, q.AccountID)
	if err != nil {
		return nil, err
	}

	var report wireReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, transportError(fmt.Errorf("decode report: %w", err))
	}
	return report.rows(), nil
}

// ListCampaigns returns the campaigns visible to accountID. Both a plain JSON
// list and the upstream {"results":[{"campaign":{...}}]} layout are accepted.
func (s *ProxySource) ListCampaigns(ctx context.Context, accountID string) ([]models.Campaign, error) {
	body, err := s.get(ctx, "/api/google-ads/campaigns", accountID)
	if err != nil {
		return nil, err
	}
	campaigns, err := decodeCampaigns(body)
	if err != nil {
		return nil, transportError(err)
	}
	return campaigns, nil
}

func (s *ProxySource) get(ctx context.Context, path, accountID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if accountID != "" {
		req.Header.Set(models.AccountHeader, accountID)
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	return body, nil
}

type wireCampaign struct {
	ID                     flexID `json:"id"`
	Name                   string `json:"name"`
	Status                 string `json:"status"`
	Type                   string `json:"type"`
	AdvertisingChannelType string `json:"advertising_channel_type"`
	BiddingStrategy        string `json:"bidding_strategy"`
	BiddingStrategyType    string `json:"bidding_strategy_type"`
}

func (w wireCampaign) campaign() models.Campaign {
	c := models.Campaign{
		ID:              string(w.ID),
		Name:            w.Name,
		Status:          w.Status,
		Type:            models.CampaignType(w.Type),
		BiddingStrategy: w.BiddingStrategy,
	}
	if w.AdvertisingChannelType != "" {
		c.Type = models.CampaignType(w.AdvertisingChannelType)
	}
	if w.BiddingStrategyType != "" {
		c.BiddingStrategy = w.BiddingStrategyType
	}
	return c
}

func decodeCampaigns(body []byte) ([]models.Campaign, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []wireCampaign
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode campaigns: %w", err)
		}
		out := make([]models.Campaign, 0, len(list))
		for _, w := range list {
			out = append(out, w.campaign())
		}
		return out, nil
	}

	var wrapped struct {
		Results []struct {
			Campaign wireCampaign `json:"campaign"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}
	out := make([]models.Campaign, 0, len(wrapped.Results))
	for _, r := range wrapped.Results {
		out = append(out, r.Campaign.campaign())
	}
	return out, nil
}

// flexID accepts campaign IDs encoded either as strings or as numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexID(b)
	return nil
}
