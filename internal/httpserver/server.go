package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/database"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/reporting"
	"github.com/radiusdt/vector-insights/internal/source"
	"github.com/radiusdt/vector-insights/internal/storage"
)

// Dependencies holds all external dependencies for the server. DB and Redis
// are optional; without them the campaign catalog is the in-memory demo set
// and KPI caching is off. Campaigns and Cache override the store choice.
type Dependencies struct {
	DB      *database.PostgresDB
	Redis   *database.RedisDB
	Source  source.MetricsSource
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Campaigns storage.CampaignRepo
	Cache     storage.KPICache
	Checkers  []database.Checker
}

// Server wraps the HTTP handlers and reporting services.
type Server struct {
	reporting *reporting.Service
	campaigns storage.CampaignRepo
	cache     storage.KPICache
	checkers  []database.Checker
	logger    *zap.Logger
	config    *config.Config
	metrics   *metrics.Metrics
}

// NewServer constructs the http.Handler with all routes and middleware.
func NewServer(deps *Dependencies) http.Handler {
	cRepo := deps.Campaigns
	if cRepo == nil {
		if deps.DB != nil {
			cRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		} else {
			cRepo = storage.NewInMemoryCampaignRepo(storage.DemoCampaigns()...)
		}
	}

	cache := deps.Cache
	if cache == nil {
		if deps.Redis != nil && deps.Config.Cache.KPITTL > 0 {
			cache = storage.NewRedisKPICache(deps.Redis.Client, deps.Config.Cache.KPITTL)
		} else {
			cache = storage.NoopKPICache{}
		}
	}

	checkers := append([]database.Checker(nil), deps.Checkers...)
	if deps.DB != nil {
		checkers = append(checkers, deps.DB)
	}
	if deps.Redis != nil {
		checkers = append(checkers, deps.Redis)
	}

	s := &Server{
		reporting: reporting.NewService(deps.Source, deps.Logger, deps.Metrics),
		campaigns: cRepo,
		cache:     cache,
		checkers:  checkers,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, "/api/health", deps.Config.Metrics.Path).Handler)
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger).Handler)
	r.Use(middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger).Handler)
	r.Use(middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger, deps.Metrics).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/api/health", s.handleHealth)
	if deps.Config.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/api/google-ads", func(r chi.Router) {
		r.Use(middleware.NewAccountMiddleware(deps.Config.Source.DefaultAccountID).Handler)

		r.Get("/campaigns", s.handleCampaigns)
		r.Get("/campaigns/{id}", s.handleCampaignByID)
		r.Get("/reports/{id}/{bucket}", s.handleReport)
		r.Get("/campaign/{id}/kpi", s.handleKPI)
		r.Get("/campaign/{id}/series", s.handleSeries)
	})

	return r
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := make(map[string]string, len(s.checkers))
	for _, c := range s.checkers {
		if err := c.Health(ctx); err != nil {
			checks[c.Name()] = err.Error()
			status = "degraded"
			continue
		}
		checks[c.Name()] = "ok"
	}

	body := map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    s.reporting.SourceName(),
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.jsonStatus(w, code, body)
}

// ---- Campaign catalog ----

// campaignView is the catalog entry as served to dashboards.
type campaignView struct {
	*models.Campaign
	IsPerformanceMax bool `json:"is_performance_max"`
	IsVideo          bool `json:"is_video"`
}

func newCampaignView(c *models.Campaign) campaignView {
	return campaignView{Campaign: c, IsPerformanceMax: c.IsPerformanceMax(), IsVideo: c.IsVideo()}
}

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	list, err := s.campaigns.ListByAccount(r.Context(), accountID)
	if err != nil {
		s.logger.Error("failed to list campaigns", zap.String("account_id", accountID), zap.Error(err))
		s.errorResponse(w, "failed to list campaigns", http.StatusInternalServerError)
		return
	}

	views := make([]campaignView, 0, len(list))
	for _, c := range list {
		views = append(views, newCampaignView(c))
	}
	s.jsonResponse(w, views)
}

func (s *Server) handleCampaignByID(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	id := chi.URLParam(r, "id")

	c, err := s.campaigns.GetByID(r.Context(), accountID, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.errorResponse(w, "campaign not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("failed to get campaign", zap.String("campaign_id", id), zap.Error(err))
		s.errorResponse(w, "failed to get campaign", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, newCampaignView(c))
}

// ---- Reporting ----

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	bucket, err := models.ParseBucket(chi.URLParam(r, "bucket"))
	if err != nil {
		s.errorResponse(w, "unknown bucket, expected 7d or 30d", http.StatusBadRequest)
		return
	}

	rows, err := s.reporting.FetchRows(r.Context(), source.Query{
		AccountID:  middleware.AccountID(r.Context()),
		CampaignID: chi.URLParam(r, "id"),
		Bucket:     bucket,
	})
	if err != nil {
		s.fetchError(w, r, err)
		return
	}
	s.jsonResponse(w, source.EncodeReport(rows))
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	req, ok := s.kpiRequest(w, r)
	if !ok {
		return
	}
	key := storage.KPIKey{AccountID: req.AccountID, CampaignID: req.CampaignID, Period: req.Period}

	cached, ok, err := s.cache.Get(r.Context(), key)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("kpi cache read failed", zap.String("key", key.String()), zap.Error(err))
	case ok:
		s.metrics.RecordCacheLookup("hit")
		w.Header().Set("X-KPI-Cache", "hit")
		s.jsonResponse(w, cached)
		return
	default:
		s.metrics.RecordCacheLookup("miss")
	}

	kpi, err := s.reporting.GetKPIByPeriod(r.Context(), req)
	if err != nil {
		s.fetchError(w, r, err)
		return
	}

	if err := s.cache.Set(r.Context(), key, kpi); err != nil {
		s.logger.Warn("kpi cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
	w.Header().Set("X-KPI-Cache", "miss")
	s.jsonResponse(w, kpi)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	req, ok := s.kpiRequest(w, r)
	if !ok {
		return
	}

	series, err := s.reporting.GetTimeSeries(r.Context(), req)
	if err != nil {
		s.fetchError(w, r, err)
		return
	}
	s.jsonResponse(w, series)
}

// kpiRequest builds a KPIRequest from the route and the period query
// parameter, which defaults to 30j. It writes a 400 for unknown periods.
func (s *Server) kpiRequest(w http.ResponseWriter, r *http.Request) (reporting.KPIRequest, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(models.PeriodLast30Days)
	}
	period, err := models.ParsePeriod(raw)
	if err != nil {
		s.errorResponse(w, "unknown period, expected one of 24h, 3j, 7j, 14j, 30j", http.StatusBadRequest)
		return reporting.KPIRequest{}, false
	}
	return reporting.KPIRequest{
		AccountID:  middleware.AccountID(r.Context()),
		CampaignID: chi.URLParam(r, "id"),
		Period:     period,
	}, true
}

// fetchError maps a reporting failure to the {"error": msg} response with the
// upstream status.
func (s *Server) fetchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, reporting.ErrMissingCampaign) {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, message := http.StatusInternalServerError, source.FallbackMessage
	if ue, ok := source.IsUpstreamError(err); ok {
		message = ue.Message
		if ue.Status >= 400 && ue.Status <= 599 {
			status = ue.Status
		}
	}
	s.logger.Error("report fetch failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	s.errorResponse(w, message, status)
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	s.jsonStatus(w, http.StatusOK, data)
}

func (s *Server) jsonStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	s.jsonStatus(w, code, map[string]string{"error": message})
}
