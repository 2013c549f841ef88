package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-insights/internal/models"
)

func newTestLive(endpoint string) *LiveSource {
	return NewLiveSource(context.Background(), LiveConfig{
		Endpoint:        endpoint,
		DeveloperToken:  "dev-token",
		LoginCustomerID: "111-222-3333",
		AccessToken:     "access-token",
		Timeout:         5 * time.Second,
	})
}

func TestLiveSourceSearchPaginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers/1234567890/googleAds:search", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		assert.Equal(t, "dev-token", r.Header.Get("developer-token"))
		assert.Equal(t, "1112223333", r.Header.Get("login-customer-id"))

		var body struct {
			Query     string `json:"query"`
			PageToken string `json:"pageToken"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "campaign.id = 42")
		assert.Contains(t, body.Query, "DURING LAST_7_DAYS")

		w.Header().Set("Content-Type", "application/json")
		if body.PageToken == "" {
			_, _ = w.Write([]byte(`{"results":[
				{"segments":{"date":"2024-03-01"},"metrics":{"impressions":"1000","clicks":"50","costMicros":"10000000"}},
				{"segments":{"date":"2024-03-02"},"metrics":{"impressions":"2000","clicks":"100","costMicros":"20000000"}}
			],"nextPageToken":"page-2"}`))
			return
		}
		assert.Equal(t, "page-2", body.PageToken)
		_, _ = w.Write([]byte(`{"results":[{"segments":{"date":"2024-03-03"},"metrics":{"impressions":"5"}}]}`))
	}))
	defer srv.Close()

	rows, err := newTestLive(srv.URL).FetchRows(context.Background(), Query{
		AccountID:  "123-456-7890",
		CampaignID: "42",
		Bucket:     models.Bucket7Days,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), int64(atomic.LoadInt32(&calls)))
	assert.Equal(t, int64(20_000_000), rows[1].CostMicros)
	assert.Equal(t, "2024-03-03", rows[2].Date)
}

func TestLiveSourceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	_, err := newTestLive(srv.URL).FetchRows(context.Background(), Query{AccountID: "1", CampaignID: "42", Bucket: models.Bucket30Days})
	ue, ok := IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Equal(t, "The caller does not have permission", ue.Message)
}

func TestLiveSourceRejectsBadInput(t *testing.T) {
	s := newTestLive("http://127.0.0.1:0")

	_, err := s.FetchRows(context.Background(), Query{AccountID: "1", CampaignID: "camp1", Bucket: models.Bucket7Days})
	ue, ok := IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ue.Status)

	_, err = s.FetchRows(context.Background(), Query{AccountID: "", CampaignID: "42", Bucket: models.Bucket7Days})
	ue, ok = IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ue.Status)
}

func TestSearchQuery(t *testing.T) {
	q, err := searchQuery(Query{CampaignID: "987", Bucket: models.Bucket30Days})
	require.NoError(t, err)
	assert.Contains(t, q, "FROM campaign WHERE campaign.id = 987 AND segments.date DURING LAST_30_DAYS")
	assert.Contains(t, q, "metrics.conversions_value")

	_, err = searchQuery(Query{CampaignID: "987", Bucket: "90d"})
	assert.Error(t, err)
}
