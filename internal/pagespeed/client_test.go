package pagespeed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/greenhost"
)

const fullAuditResponse = `{
	"lighthouseResult": {
		"categories": {
			"performance": {"score": 0.93},
			"accessibility": {"score": 0.88},
			"best-practices": {"score": 0.92},
			"seo": {"score": 0.9}
		},
		"audits": {
			"first-contentful-paint": {"numericValue": 1200},
			"largest-contentful-paint": {"numericValue": 2400},
			"cumulative-layout-shift": {"numericValue": 0.05},
			"total-blocking-time": {"numericValue": 150},
			"speed-index": {"numericValue": 2100},
			"interactive": {"numericValue": 3500},
			"server-response-time": {"numericValue": 420},
			"total-byte-weight": {"numericValue": 1500000},
			"dom-size": {"numericValue": 847},
			"uses-text-compression": {"score": 1},
			"uses-long-cache-ttl": {"score": 0.95},
			"unused-css-rules": {"details": {"overallSavingsBytes": 30000}},
			"unused-javascript": {"details": {"overallSavingsBytes": 150000}},
			"uses-optimized-images": {"details": {"overallSavingsBytes": 80000}},
			"render-blocking-resources": {"details": {"items": [{}, {}, {}]}},
			"resource-summary": {"details": {"items": [
				{"resourceType": "total", "transferSize": 1500000, "requestCount": 60},
				{"resourceType": "document", "transferSize": 40000, "requestCount": 1},
				{"resourceType": "script", "transferSize": 600000, "requestCount": 22},
				{"resourceType": "stylesheet", "transferSize": 90000, "requestCount": 4},
				{"resourceType": "image", "transferSize": 650000, "requestCount": 18},
				{"resourceType": "font", "transferSize": 80000, "requestCount": 3},
				{"resourceType": "media", "transferSize": 40000, "requestCount": 1},
				{"resourceType": "third-party", "transferSize": 500000, "requestCount": 25}
			]}}
		}
	}
}`

func testClient(endpoint, key string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.PageSpeedConfig{
		APIKey:   key,
		Endpoint: endpoint,
		Strategy: "mobile",
		Locale:   "en",
		Timeout:  5 * time.Second,
	}
	return NewClient(cfg, greenhost.New(), logger)
}

func TestFetchMissingAPIKey(t *testing.T) {
	c := testClient("http://unused.invalid", "")

	_, err := c.Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestFetchFullAudit(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fullAuditResponse))
	}))
	defer server.Close()

	c := testClient(server.URL, "test-key")
	result, err := c.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotQuery["url"][0] != "https://example.com" {
		t.Errorf("Expected url parameter, got %v", gotQuery["url"])
	}
	if gotQuery["key"][0] != "test-key" {
		t.Errorf("Expected key parameter, got %v", gotQuery["key"])
	}
	if gotQuery["strategy"][0] != "mobile" {
		t.Errorf("Expected strategy mobile, got %v", gotQuery["strategy"])
	}
	if len(gotQuery["category"]) != 4 {
		t.Errorf("Expected 4 category parameters, got %v", gotQuery["category"])
	}

	if result.Source != Source {
		t.Errorf("Expected source %q, got %q", Source, result.Source)
	}
	if !result.Audited {
		t.Error("Expected an audited result")
	}
	if result.PerformanceScore != 93 {
		t.Errorf("Expected performance 93, got %d", result.PerformanceScore)
	}
	if result.AccessibilityScore != 88 {
		t.Errorf("Expected accessibility 88, got %d", result.AccessibilityScore)
	}
	if result.BestPracticesScore != 92 {
		t.Errorf("Expected best practices 92, got %d", result.BestPracticesScore)
	}
	if result.SEOScore != 90 {
		t.Errorf("Expected SEO 90, got %d", result.SEOScore)
	}
	if result.FirstContentfulPaint != 1.2 {
		t.Errorf("Expected FCP 1.2s, got %v", result.FirstContentfulPaint)
	}
	if result.LargestContentfulPaint != 2.4 {
		t.Errorf("Expected LCP 2.4s, got %v", result.LargestContentfulPaint)
	}
	if result.TotalBlockingTime != 150 {
		t.Errorf("Expected TBT 150ms, got %v", result.TotalBlockingTime)
	}
	if result.LoadTime != 3.5 {
		t.Errorf("Expected load time 3.5s from interactive, got %v", result.LoadTime)
	}
	if result.PageSizeBytes != 1500000 {
		t.Errorf("Expected 1.5MB page size, got %d", result.PageSizeBytes)
	}
	if result.ScriptCount != 22 {
		t.Errorf("Expected 22 scripts, got %d", result.ScriptCount)
	}
	if result.ImageCount != 18 {
		t.Errorf("Expected 18 images, got %d", result.ImageCount)
	}
	if result.ResourceBytes.JavaScript != 600000 {
		t.Errorf("Expected 600000 script bytes, got %d", result.ResourceBytes.JavaScript)
	}
	if result.ResourceBytes.ThirdParty != 500000 {
		t.Errorf("Expected 500000 third-party bytes, got %d", result.ResourceBytes.ThirdParty)
	}
	if result.UnusedJSBytes != 150000 {
		t.Errorf("Expected 150000 unused JS bytes, got %d", result.UnusedJSBytes)
	}
	if result.RenderBlockingCount != 3 {
		t.Errorf("Expected 3 render-blocking resources, got %d", result.RenderBlockingCount)
	}
	if result.DOMElements != 847 {
		t.Errorf("Expected 847 DOM elements, got %d", result.DOMElements)
	}
	if !result.HasCompression {
		t.Error("Expected compression flag from passing audit")
	}
	if !result.UsesCDN {
		t.Error("Expected CDN flag from passing cache audit")
	}
}

func TestFetchTolerantParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"lighthouseResult": {"categories": {"performance": {"score": 0.5}}, "audits": {}}}`))
	}))
	defer server.Close()

	c := testClient(server.URL, "test-key")
	result, err := c.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Expected missing audits to parse cleanly, got %v", err)
	}

	if result.PerformanceScore != 50 {
		t.Errorf("Expected performance 50, got %d", result.PerformanceScore)
	}
	if result.AccessibilityScore != 0 {
		t.Errorf("Expected missing accessibility to be 0, got %d", result.AccessibilityScore)
	}
	if result.PageSizeBytes != 0 {
		t.Errorf("Expected missing byte weight to be 0, got %d", result.PageSizeBytes)
	}
	if result.HasCompression {
		t.Error("Expected missing compression audit to leave the flag unset")
	}
}

func TestFetchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient(server.URL, "test-key")
	result, err := c.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Expected empty response to parse cleanly, got %v", err)
	}
	if result.PerformanceScore != 0 || result.SEOScore != 0 {
		t.Error("Expected all scores to be zero for an empty response")
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Quota exceeded"}}`))
	}))
	defer server.Close()

	c := testClient(server.URL, "test-key")
	_, err := c.Fetch(context.Background(), "https://example.com")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected code 429, got %d", statusErr.Code)
	}
	if statusErr.Detail != "Quota exceeded" {
		t.Errorf("Expected detail from error envelope, got %q", statusErr.Detail)
	}
}

func TestFetchGreenHostingFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient(server.URL, "test-key")

	result, err := c.Fetch(context.Background(), "https://www.netlify.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.GreenHosting {
		t.Error("Expected a known green host to be flagged")
	}

	result, err = c.Fetch(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.GreenHosting {
		t.Error("Did not expect example.com to be flagged green")
	}
}
