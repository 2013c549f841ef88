// Command kpi queries a running insights server for campaign KPIs.
//
//	kpi -campaign camp1 -period 7j
//	kpi -list -cid 123-456-7890
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/reporting"
	"github.com/radiusdt/vector-insights/internal/source"
)

func main() {
	var (
		server   = flag.String("server", envOr("INSIGHTS_SERVER", "http://localhost:3001"), "insights server base URL")
		cid      = flag.String("cid", envOr("INSIGHTS_CID", "1234567890"), "Google Ads customer id")
		campaign = flag.String("campaign", "", "campaign id")
		period   = flag.String("period", "30j", "reporting period (24h, 3j, 7j, 14j, 30j)")
		apiKey   = flag.String("api-key", os.Getenv("INSIGHTS_API_KEY"), "API key for the insights server")
		timeout  = flag.Duration("timeout", 10*time.Second, "request timeout")
		list     = flag.Bool("list", false, "list campaigns instead of computing KPIs")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := middleware.NewLogger(level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	proxy := source.NewProxySource(*server, *apiKey, source.NewHTTPClient(*timeout))

	if *list {
		campaigns, err := proxy.ListCampaigns(ctx, *cid)
		if err != nil {
			fail(logger, err)
		}
		printJSON(campaigns)
		return
	}

	if *campaign == "" {
		fmt.Fprintln(os.Stderr, "kpi: -campaign is required")
		flag.Usage()
		os.Exit(2)
	}
	p, err := models.ParsePeriod(*period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kpi: %v: %q\n", err, *period)
		os.Exit(2)
	}

	svc := reporting.NewService(proxy, logger, nil)
	kpi, err := svc.GetKPIByPeriod(ctx, reporting.KPIRequest{
		AccountID:  *cid,
		CampaignID: *campaign,
		Period:     p,
	})
	if err != nil {
		fail(logger, err)
	}
	if kpi.Degraded {
		logger.Warn("period served from a coarser bucket",
			zap.String("period", string(kpi.Period)),
			zap.String("bucket", string(kpi.Bucket)),
		)
	}
	printJSON(kpi)
}

func fail(logger *zap.Logger, err error) {
	if ue, ok := source.IsUpstreamError(err); ok {
		logger.Error("request failed", zap.Int("status", ue.Status), zap.Error(err))
		fmt.Fprintf(os.Stderr, "kpi: %s (status %d)\n", ue.Message, ue.Status)
	} else {
		fmt.Fprintf(os.Stderr, "kpi: %v\n", err)
	}
	_ = logger.Sync()
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "kpi: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
