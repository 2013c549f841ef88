package source

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/radiusdt/vector-insights/internal/models"
)

// ReportResponse is the raw report payload served by the proxy endpoint. It
// follows the upstream search response layout with snake_case metric names.
type ReportResponse struct {
	Results []ReportResult `json:"results"`
}

type ReportResult struct {
	Segments ReportSegments `json:"segments"`
	Metrics  ReportMetrics  `json:"metrics"`
}

type ReportSegments struct {
	Date string `json:"date,omitempty"`
}

type ReportMetrics struct {
	Impressions      int64   `json:"impressions"`
	Clicks           int64   `json:"clicks"`
	CostMicros       int64   `json:"cost_micros"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversions_value"`
	AverageCPC       *int64  `json:"average_cpc,omitempty"`
	AverageCPV       *int64  `json:"average_cpv,omitempty"`
	VideoViews       *int64  `json:"video_views,omitempty"`
}

// EncodeReport converts rows into the proxy report payload.
func EncodeReport(rows []models.MetricRow) ReportResponse {
	out := ReportResponse{Results: make([]ReportResult, 0, len(rows))}
	for _, r := range rows {
		out.Results = append(out.Results, ReportResult{
			Segments: ReportSegments{Date: r.Date},
			Metrics: ReportMetrics{
				Impressions:      r.Impressions,
				Clicks:           r.Clicks,
				CostMicros:       r.CostMicros,
				Conversions:      r.Conversions,
				ConversionsValue: r.ConversionValue,
				AverageCPC:       r.AverageCPC,
				AverageCPV:       r.AverageCPV,
				VideoViews:       r.VideoViews,
			},
		})
	}
	return out
}

// wireReport decodes both the proxy payload and the Google Ads search
// response, which share a layout but differ in metric key casing.
type wireReport struct {
	Results       []wireResult `json:"results"`
	NextPageToken string       `json:"nextPageToken"`
}

type wireResult struct {
	Date    string
	Metrics wireMetrics
}

// UnmarshalJSON decodes one result leniently: a segments or metrics value
// of the wrong shape leaves that part zero instead of failing the report.
func (r *wireResult) UnmarshalJSON(b []byte) error {
	*r = wireResult{}
	var raw struct {
		Segments json.RawMessage `json:"segments"`
		Metrics  json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	var seg struct {
		Date json.RawMessage `json:"date"`
	}
	if json.Unmarshal(raw.Segments, &seg) == nil {
		var date string
		if json.Unmarshal(seg.Date, &date) == nil {
			r.Date = strings.TrimSpace(date)
		}
	}

	if len(raw.Metrics) > 0 && json.Unmarshal(raw.Metrics, &r.Metrics) != nil {
		r.Metrics = wireMetrics{}
	}
	return nil
}

type wireMetrics struct {
	Impressions           flexInt   `json:"impressions"`
	Clicks                flexInt   `json:"clicks"`
	Conversions           flexFloat `json:"conversions"`
	CostMicros            flexInt   `json:"cost_micros"`
	CostMicrosCamel       flexInt   `json:"costMicros"`
	ConversionsValue      flexFloat `json:"conversions_value"`
	ConversionsValueCamel flexFloat `json:"conversionsValue"`
	AverageCPC            flexInt   `json:"average_cpc"`
	AverageCPCCamel       flexInt   `json:"averageCpc"`
	AverageCPV            flexInt   `json:"average_cpv"`
	AverageCPVCamel       flexInt   `json:"averageCpv"`
	VideoViews            flexInt   `json:"video_views"`
	VideoViewsCamel       flexInt   `json:"videoViews"`
}

func (r wireResult) row() models.MetricRow {
	m := r.Metrics
	return models.MetricRow{
		Date:            r.Date,
		Impressions:     m.Impressions.v,
		Clicks:          m.Clicks.v,
		CostMicros:      pickInt(m.CostMicros, m.CostMicrosCamel).v,
		Conversions:     m.Conversions.v,
		ConversionValue: pickFloat(m.ConversionsValue, m.ConversionsValueCamel).v,
		AverageCPC:      pickInt(m.AverageCPC, m.AverageCPCCamel).ptr(),
		AverageCPV:      pickInt(m.AverageCPV, m.AverageCPVCamel).ptr(),
		VideoViews:      pickInt(m.VideoViews, m.VideoViewsCamel).ptr(),
	}
}

func (w wireReport) rows() []models.MetricRow {
	rows := make([]models.MetricRow, 0, len(w.Results))
	for _, r := range w.Results {
		rows = append(rows, r.row())
	}
	return rows
}

// flexInt decodes a JSON number, a numeric string or null. Anything else
// decodes to 0 without failing the enclosing document.
type flexInt struct {
	v   int64
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = flexInt{}
	s, ok := flexText(b)
	if !ok {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt{v: i, set: true}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if fl >= math.MaxInt64 || fl < math.MinInt64 {
			return nil
		}
		*f = flexInt{v: int64(fl), set: true}
	}
	return nil
}

func (f flexInt) ptr() *int64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

type flexFloat struct {
	v   float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	s, ok := flexText(b)
	if !ok {
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		*f = flexFloat{v: fl, set: true}
	}
	return nil
}

// flexText returns the textual form of a scalar JSON number or string.
func flexText(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	if b[0] == '{' || b[0] == '[' || b[0] == 't' || b[0] == 'f' {
		return "", false
	}
	return string(b), true
}

func pickInt(a, b flexInt) flexInt {
	if a.set {
		return a
	}
	return b
}

func pickFloat(a, b flexFloat) flexFloat {
	if a.set {
		return a
	}
	return b
}
