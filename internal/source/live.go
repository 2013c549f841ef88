package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/radiusdt/vector-insights/internal/models"
)

// AdWordsScope is the OAuth2 scope required by the Google Ads API.
const AdWordsScope = "https://www.googleapis.com/auth/adwords"

// maxPages bounds pagination of a single search.
const maxPages = 50

// LiveConfig configures the Google Ads REST source.
type LiveConfig struct {
	Endpoint        string
	DeveloperToken  string
	LoginCustomerID string

	// Either a refresh token with client credentials, or a static access token.
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string

	Timeout time.Duration
}

// LiveSource queries the Google Ads search endpoint for daily campaign
// metrics.
type LiveSource struct {
	endpoint        string
	developerToken  string
	loginCustomerID string
	httpc           HTTPClient
}

// NewLiveSource builds a LiveSource with an OAuth2-authenticated client. ctx
// is used for token refreshes, not for individual fetches.
func NewLiveSource(ctx context.Context, cfg LiveConfig) *LiveSource {
	base := NewHTTPClient(cfg.Timeout)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var ts oauth2.TokenSource
	if cfg.RefreshToken != "" {
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{AdWordsScope},
			Endpoint:     google.Endpoint,
		}
		ts = oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	} else {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = cfg.Timeout

	return &LiveSource{
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		developerToken:  cfg.DeveloperToken,
		loginCustomerID: models.NormalizeAccountID(cfg.LoginCustomerID),
		httpc:           client,
	}
}

func (s *LiveSource) Name() string { return "live" }

func (s *LiveSource) FetchRows(ctx context.Context, q Query) ([]models.MetricRow, error) {
	gaql, err := searchQuery(q)
	if err != nil {
		return nil, err
	}
	cid := models.NormalizeAccountID(q.AccountID)
	if cid == "" {
		return nil, &UpstreamError{Message: "missing customer id", Status: http.StatusBadRequest}
	}
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", s.endpoint, cid)

	rows := []models.MetricRow{}
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		report, err := s.search(ctx, url, gaql, pageToken)
		if err != nil {
			return nil, err
		}
		rows = append(rows, report.rows()...)
		if report.NextPageToken == "" {
			return rows, nil
		}
		pageToken = report.NextPageToken
	}
	return nil, &UpstreamError{Message: "too many result pages", Status: http.StatusBadGateway}
}

func (s *LiveSource) search(ctx context.Context, url, gaql, pageToken string) (*wireReport, error) {
	body, err := json.Marshal(struct {
		Query     string `json:"query"`
		PageToken string `json:"pageToken,omitempty"`
	}{Query: gaql, PageToken: pageToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("developer-token", s.developerToken)
	if s.loginCustomerID != "" {
		req.Header.Set("login-customer-id", s.loginCustomerID)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var report wireReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, transportError(fmt.Errorf("decode search response: %w", err))
	}
	return &report, nil
}

// searchQuery builds the GAQL query for q. Campaign IDs must be numeric.
func searchQuery(q Query) (string, error) {
	id, err := strconv.ParseInt(q.CampaignID, 10, 64)
	if err != nil || id <= 0 {
		return "", &UpstreamError{Message: fmt.Sprintf("invalid campaign id %q", q.CampaignID), Status: http.StatusBadRequest}
	}

	var during string
	switch q.Bucket {
	case models.Bucket7Days:
		during = "LAST_7_DAYS"
	case models.Bucket30Days:
		during = "LAST_30_DAYS"
	default:
		return "", &UpstreamError{Message: models.ErrUnknownBucket.Error(), Status: http.StatusBadRequest}
	}

	return fmt.Sprintf(`SELECT segments.date, metrics.impressions, metrics.clicks, metrics.cost_micros, `+
		`metrics.conversions, metrics.conversions_value, metrics.average_cpc, metrics.average_cpv, metrics.video_views `+
		`FROM campaign WHERE campaign.id = %d AND segments.date DURING %s ORDER BY segments.date`, id, during), nil
}
