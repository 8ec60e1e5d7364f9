// Package pagespeed fetches performance audit data for a URL, either from
// the real PageSpeed API or from a deterministic simulation of it.
package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/greenhost"
	"github.com/ecograde/ecograde/internal/models"
)

// Source tags the results this package produces.
const Source = "pagespeed"

// ErrMissingAPIKey means the client cannot run because no API key is
// configured. Callers treat it as a signal to fall back, not a hard failure.
var ErrMissingAPIKey = errors.New("pagespeed: API key not configured")

// StatusError is a non-2xx answer from the audit API.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pagespeed: HTTP %d: %s", e.Code, e.Detail)
}

// Client calls the performance audit API.
type Client struct {
	client *http.Client
	config config.PageSpeedConfig
	green  *greenhost.Checker
	logger *slog.Logger
}

// NewClient creates a new audit API client.
func NewClient(cfg config.PageSpeedConfig, green *greenhost.Checker, logger *slog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		green:  green,
		logger: logger,
	}
}

// Fetch runs a live audit for the URL and maps it onto an AnalysisResult.
// Audit fields the API did not report stay at their zero values.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*models.AnalysisResult, error) {
	if c.config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("key", c.config.APIKey)
	query.Set("strategy", c.config.Strategy)
	query.Set("locale", c.config.Locale)
	for _, cat := range []string{"performance", "accessibility", "best-practices", "seo"} {
		query.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: failed to create request: %w", err)
	}

	c.logger.Info("Requesting audit", "url", pageURL, "strategy", c.config.Strategy)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Detail: errorDetail(body)}
	}

	var audit auditResponse
	if err := json.Unmarshal(body, &audit); err != nil {
		return nil, fmt.Errorf("pagespeed: failed to parse response: %w", err)
	}

	result := audit.toAnalysisResult(pageURL)
	result.GreenHosting = c.green.IsGreen(pageURL)
	return result, nil
}

// errorDetail pulls the message out of the API's error envelope, falling
// back to the raw body.
func errorDetail(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// auditResponse mirrors the slice of the API response we consume. Absent
// audits and fields decode to zero values rather than errors.
type auditResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score *float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]auditEntry `json:"audits"`
	} `json:"lighthouseResult"`
}

type auditEntry struct {
	Score        *float64 `json:"score"`
	NumericValue float64  `json:"numericValue"`
	Details      struct {
		OverallSavingsBytes int64 `json:"overallSavingsBytes"`
		Items               []struct {
			ResourceType string `json:"resourceType"`
			TransferSize int64  `json:"transferSize"`
			RequestCount int    `json:"requestCount"`
		} `json:"items"`
	} `json:"details"`
}

func (r *auditResponse) categoryScore(name string) int {
	cat, ok := r.LighthouseResult.Categories[name]
	if !ok || cat.Score == nil {
		return 0
	}
	return int(math.Round(*cat.Score * 100))
}

func (r *auditResponse) audit(name string) auditEntry {
	return r.LighthouseResult.Audits[name]
}

// auditPassed reports whether a scored audit came back as passing.
func (r *auditResponse) auditPassed(name string) bool {
	a := r.audit(name)
	return a.Score != nil && *a.Score >= 0.9
}

func (r *auditResponse) toAnalysisResult(pageURL string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		URL:       pageURL,
		Source:    Source,
		Audited:   true,
		FetchedAt: time.Now(),

		PerformanceScore:   r.categoryScore("performance"),
		AccessibilityScore: r.categoryScore("accessibility"),
		BestPracticesScore: r.categoryScore("best-practices"),
		SEOScore:           r.categoryScore("seo"),

		FirstContentfulPaint:   r.audit("first-contentful-paint").NumericValue / 1000,
		LargestContentfulPaint: r.audit("largest-contentful-paint").NumericValue / 1000,
		CumulativeLayoutShift:  r.audit("cumulative-layout-shift").NumericValue,
		TotalBlockingTime:      r.audit("total-blocking-time").NumericValue,
		SpeedIndex:             r.audit("speed-index").NumericValue / 1000,
		TimeToInteractive:      r.audit("interactive").NumericValue / 1000,

		PageSizeBytes: int64(r.audit("total-byte-weight").NumericValue),

		UnusedCSSBytes:        r.audit("unused-css-rules").Details.OverallSavingsBytes,
		UnusedJSBytes:         r.audit("unused-javascript").Details.OverallSavingsBytes,
		UnoptimizedImageBytes: r.audit("uses-optimized-images").Details.OverallSavingsBytes,

		ServerResponseTime:  r.audit("server-response-time").NumericValue,
		RenderBlockingCount: len(r.audit("render-blocking-resources").Details.Items),
		DOMElements:         int(r.audit("dom-size").NumericValue),

		HasCompression: r.auditPassed("uses-text-compression"),
		UsesCDN:        r.auditPassed("uses-long-cache-ttl"),
	}

	// Time to interactive doubles as the load time; the audit has no single
	// "loaded" figure.
	result.LoadTime = result.TimeToInteractive

	var totalFromSummary int64
	for _, item := range r.audit("resource-summary").Details.Items {
		switch item.ResourceType {
		case "document":
			result.ResourceBytes.HTML = item.TransferSize
		case "stylesheet":
			result.ResourceBytes.CSS = item.TransferSize
			result.StylesheetCount = item.RequestCount
		case "script":
			result.ResourceBytes.JavaScript = item.TransferSize
			result.ScriptCount = item.RequestCount
		case "image":
			result.ResourceBytes.Images = item.TransferSize
			result.ImageCount = item.RequestCount
		case "font":
			result.ResourceBytes.Fonts = item.TransferSize
			result.FontCount = item.RequestCount
		case "media":
			result.ResourceBytes.Media = item.TransferSize
			result.VideoCount = item.RequestCount
		case "third-party":
			result.ResourceBytes.ThirdParty = item.TransferSize
		case "total":
			totalFromSummary = item.TransferSize
		}
	}
	if result.PageSizeBytes == 0 {
		result.PageSizeBytes = totalFromSummary
	}

	return result
}
