package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source modes select the MetricsSource implementation.
const (
	SourceModeMock       = "mock"
	SourceModeLive       = "live"
	SourceModeClickHouse = "clickhouse"
)

// Config holds all configuration for the insights service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Source     SourceConfig
	Cache      CacheConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the metrics warehouse used in clickhouse mode.
type ClickHouseConfig struct {
	Addrs       []string
	Database    string
	Username    string
	Password    string
	Table       string
	DialTimeout time.Duration
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled     bool
	ReportRPS   float64
	ReportBurst int
	MgmtRPS     float64
	MgmtBurst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// SourceConfig selects and configures the upstream metrics source.
type SourceConfig struct {
	Mode string
	// DefaultAccountID is used when a request carries no account header.
	DefaultAccountID string
	// Timeout is the blanket timeout for upstream HTTP calls.
	Timeout time.Duration
	// MockLatency simulates network delay in mock mode.
	MockLatency time.Duration

	// Google Ads REST settings (live mode).
	LiveEndpoint    string
	DeveloperToken  string
	LoginCustomerID string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
	AccessToken     string
}

// CacheConfig holds the freshness window for computed KPIs.
type CacheConfig struct {
	KPITTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("INSIGHTS_HTTP_ADDR", ":3001"),
			Env:             getEnv("INSIGHTS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("INSIGHTS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("INSIGHTS_DB_ENABLED", false),
			Host:     getEnv("INSIGHTS_DB_HOST", "localhost"),
			Port:     getIntEnv("INSIGHTS_DB_PORT", 5432),
			User:     getEnv("INSIGHTS_DB_USER", "insights"),
			Password: getEnv("INSIGHTS_DB_PASSWORD", "insights_secret"),
			DBName:   getEnv("INSIGHTS_DB_NAME", "insights"),
			SSLMode:  getEnv("INSIGHTS_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("INSIGHTS_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("INSIGHTS_DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("INSIGHTS_REDIS_ENABLED", false),
			Addr:     getEnv("INSIGHTS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("INSIGHTS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("INSIGHTS_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Addrs:       getSliceEnv("INSIGHTS_CLICKHOUSE_ADDRS", []string{"localhost:9000"}),
			Database:    getEnv("INSIGHTS_CLICKHOUSE_DB", "default"),
			Username:    getEnv("INSIGHTS_CLICKHOUSE_USER", "default"),
			Password:    getEnv("INSIGHTS_CLICKHOUSE_PASSWORD", ""),
			Table:       getEnv("INSIGHTS_CLICKHOUSE_TABLE", "campaign_daily_metrics"),
			DialTimeout: getDurationEnv("INSIGHTS_CLICKHOUSE_DIAL_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("INSIGHTS_AUTH_ENABLED", false),
			MasterKey: getEnv("INSIGHTS_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("INSIGHTS_AUTH_SKIP_PATHS", []string{"/api/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("INSIGHTS_RATE_LIMIT_ENABLED", true),
			ReportRPS:   getFloatEnv("INSIGHTS_RATE_LIMIT_REPORT_RPS", 50),
			ReportBurst: getIntEnv("INSIGHTS_RATE_LIMIT_REPORT_BURST", 20),
			MgmtRPS:     getFloatEnv("INSIGHTS_RATE_LIMIT_MGMT_RPS", 100),
			MgmtBurst:   getIntEnv("INSIGHTS_RATE_LIMIT_MGMT_BURST", 50),
		},
		Log: LogConfig{
			Level:  getEnv("INSIGHTS_LOG_LEVEL", "info"),
			Format: getEnv("INSIGHTS_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("INSIGHTS_METRICS_ENABLED", true),
			Path:      getEnv("INSIGHTS_METRICS_PATH", "/metrics"),
			Namespace: getEnv("INSIGHTS_METRICS_NAMESPACE", "insights"),
		},
		Source: SourceConfig{
			Mode:             strings.ToLower(getEnv("INSIGHTS_SOURCE_MODE", SourceModeMock)),
			DefaultAccountID: getEnv("INSIGHTS_DEFAULT_CID", "1234567890"),
			Timeout:          getDurationEnv("INSIGHTS_UPSTREAM_TIMEOUT", 10*time.Second),
			MockLatency:      getDurationEnv("INSIGHTS_MOCK_LATENCY", 700*time.Millisecond),
			LiveEndpoint:     getEnv("INSIGHTS_GOOGLE_ADS_ENDPOINT", "https://googleads.googleapis.com/v14"),
			DeveloperToken:   getEnv("INSIGHTS_GOOGLE_ADS_DEVELOPER_TOKEN", ""),
			LoginCustomerID:  getEnv("INSIGHTS_GOOGLE_ADS_LOGIN_CUSTOMER_ID", ""),
			ClientID:         getEnv("INSIGHTS_GOOGLE_ADS_CLIENT_ID", ""),
			ClientSecret:     getEnv("INSIGHTS_GOOGLE_ADS_CLIENT_SECRET", ""),
			RefreshToken:     getEnv("INSIGHTS_GOOGLE_ADS_REFRESH_TOKEN", ""),
			AccessToken:      getEnv("INSIGHTS_GOOGLE_ADS_ACCESS_TOKEN", ""),
		},
		Cache: CacheConfig{
			KPITTL: getDurationEnv("INSIGHTS_KPI_CACHE_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("INSIGHTS_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Source.DefaultAccountID == "" {
		return fmt.Errorf("INSIGHTS_DEFAULT_CID must not be empty")
	}

	switch c.Source.Mode {
	case SourceModeMock:
	case SourceModeLive:
		if c.Source.DeveloperToken == "" {
			return fmt.Errorf("INSIGHTS_GOOGLE_ADS_DEVELOPER_TOKEN is required in live mode")
		}
		hasRefresh := c.Source.RefreshToken != "" && c.Source.ClientID != "" && c.Source.ClientSecret != ""
		if !hasRefresh && c.Source.AccessToken == "" {
			return fmt.Errorf("live mode needs either an OAuth refresh token with client credentials or an access token")
		}
	case SourceModeClickHouse:
		if len(c.ClickHouse.Addrs) == 0 {
			return fmt.Errorf("INSIGHTS_CLICKHOUSE_ADDRS is required in clickhouse mode")
		}
	default:
		return fmt.Errorf("unknown INSIGHTS_SOURCE_MODE %q", c.Source.Mode)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
