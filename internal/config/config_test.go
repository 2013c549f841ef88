package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, SourceModeMock, cfg.Source.Mode)
	assert.Equal(t, "1234567890", cfg.Source.DefaultAccountID)
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.KPITTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INSIGHTS_HTTP_ADDR", ":9999")
	t.Setenv("INSIGHTS_SOURCE_MODE", "CLICKHOUSE")
	t.Setenv("INSIGHTS_CLICKHOUSE_ADDRS", "ch1:9000, ch2:9000")
	t.Setenv("INSIGHTS_MOCK_LATENCY", "0s")
	t.Setenv("INSIGHTS_RATE_LIMIT_REPORT_RPS", "12.5")
	t.Setenv("INSIGHTS_DB_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, SourceModeClickHouse, cfg.Source.Mode)
	assert.Equal(t, []string{"ch1:9000", "ch2:9000"}, cfg.ClickHouse.Addrs)
	assert.Equal(t, time.Duration(0), cfg.Source.MockLatency)
	assert.Equal(t, 12.5, cfg.RateLimit.ReportRPS)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"auth without key", map[string]string{"INSIGHTS_AUTH_ENABLED": "true"}, true},
		{"auth with key", map[string]string{"INSIGHTS_AUTH_ENABLED": "true", "INSIGHTS_API_KEY_MASTER": "k"}, false},
		{"unknown mode", map[string]string{"INSIGHTS_SOURCE_MODE": "carrier-pigeon"}, true},
		{"live without token", map[string]string{"INSIGHTS_SOURCE_MODE": "live"}, true},
		{"live with access token", map[string]string{
			"INSIGHTS_SOURCE_MODE":                "live",
			"INSIGHTS_GOOGLE_ADS_DEVELOPER_TOKEN": "dev",
			"INSIGHTS_GOOGLE_ADS_ACCESS_TOKEN":    "tok",
		}, false},
		{"live with partial oauth", map[string]string{
			"INSIGHTS_SOURCE_MODE":                "live",
			"INSIGHTS_GOOGLE_ADS_DEVELOPER_TOKEN": "dev",
			"INSIGHTS_GOOGLE_ADS_REFRESH_TOKEN":   "refresh",
		}, true},
		{"live with full oauth", map[string]string{
			"INSIGHTS_SOURCE_MODE":                "live",
			"INSIGHTS_GOOGLE_ADS_DEVELOPER_TOKEN": "dev",
			"INSIGHTS_GOOGLE_ADS_REFRESH_TOKEN":   "refresh",
			"INSIGHTS_GOOGLE_ADS_CLIENT_ID":       "id",
			"INSIGHTS_GOOGLE_ADS_CLIENT_SECRET":   "secret",
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, DBName: "insights", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/insights?sslmode=disable", d.DSN())
}
