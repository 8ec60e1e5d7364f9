// Package analyzer fetches a page directly and derives sustainability
// metrics from its markup and response headers. It is the fallback when no
// audit data is available, so everything here is heuristic.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/greenhost"
	"github.com/ecograde/ecograde/internal/models"
)

// Source tags results produced by a direct page fetch.
const Source = "basic"

// Linear carbon estimate coefficients for the basic path. The report-level
// figure uses the full emissions model; this one only annotates the raw
// analysis.
const (
	gramsPerMB    = 0.5
	gramsPerImage = 0.02
	gramsPerVideo = 0.5
)

// cdnHeaders identify responses served through a CDN.
var cdnHeaders = []string{
	"CF-Ray",
	"X-Amz-Cf-Id",
	"X-Served-By",
	"X-Fastly-Request-Id",
	"X-Vercel-Id",
	"X-Azure-Ref",
	"X-Akamai-Transformed",
	"X-CDN",
}

// FetchError means the page itself could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Analyzer handles direct page analysis
type Analyzer struct {
	client *http.Client
	config config.AnalyzerConfig
	green  *greenhost.Checker
	logger *slog.Logger
}

// New creates a new Analyzer
func New(cfg config.AnalyzerConfig, green *greenhost.Checker, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
		green:  green,
		logger: logger,
	}
}

// Analyze fetches a webpage and returns heuristic sustainability metrics
func (a *Analyzer) Analyze(ctx context.Context, urlStr string) (*models.AnalysisResult, error) {
	// Parse URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Ensure scheme is set
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "https"
		urlStr = parsedURL.String()
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set User-Agent
	req.Header.Set("User-Agent", a.config.UserAgent)

	// Record time to first byte
	start := time.Now()
	var ttfb time.Duration
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			ttfb = time.Since(start)
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(ctx, trace))

	// Send request
	a.logger.Info("Fetching page", "url", urlStr)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Err: err}
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: urlStr, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	loadTime := time.Since(start)

	// Parse HTML
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	analysis := &models.AnalysisResult{
		URL:           urlStr,
		Source:        Source,
		FetchedAt:     time.Now(),
		LoadTime:      loadTime.Seconds(),
		PageSizeBytes: int64(len(body)),

		// The transport strips Content-Encoding when it decompressed the
		// body itself, so check both signals.
		HasCompression:     resp.Uncompressed || resp.Header.Get("Content-Encoding") != "",
		UsesCDN:            detectCDN(resp.Header),
		GreenHosting:       a.green.IsGreen(urlStr),
		ServerResponseTime: float64(ttfb.Milliseconds()),
	}

	a.analyzeDocument(doc, analysis)

	analysis.PerformanceScore = performanceHeuristic(analysis.LoadTime, analysis.PageSizeBytes)
	analysis.EstimatedCO2Grams = linearCO2(analysis.PageSizeBytes, analysis.ImageCount, analysis.VideoCount)

	return analysis, nil
}

// analyzeDocument walks the parsed document and fills the counts and the
// markup-derived scores.
func (a *Analyzer) analyzeDocument(doc *html.Node, analysis *models.AnalysisResult) {
	var (
		images, imagesWithAlt int
		headings, h1s         int
		inputs, labels        int
		domElements           int
		renderBlocking        int
		hasSemantic           bool
		hasTitle, hasMetaDesc bool
		hasCanonical          bool
	)

	var processNode func(*html.Node)
	processNode = func(n *html.Node) {
		if n.Type == html.ElementNode {
			domElements++
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode && strings.TrimSpace(n.FirstChild.Data) != "" {
					hasTitle = true
				}
			case "meta":
				var name, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = attr.Val
					case "content":
						content = attr.Val
					}
				}
				if strings.EqualFold(name, "description") && content != "" {
					hasMetaDesc = true
				}
			case "img":
				images++
				for _, attr := range n.Attr {
					if attr.Key == "alt" && strings.TrimSpace(attr.Val) != "" {
						imagesWithAlt++
						break
					}
				}
			case "script":
				analysis.ScriptCount++
				var src string
				blocking := true
				for _, attr := range n.Attr {
					switch attr.Key {
					case "src":
						src = attr.Val
					case "async", "defer":
						blocking = false
					case "type":
						if attr.Val == "module" {
							blocking = false
						}
					}
				}
				if src != "" && blocking {
					renderBlocking++
				}
			case "link":
				var rel, as, href, media string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "rel":
						rel = strings.ToLower(attr.Val)
					case "as":
						as = strings.ToLower(attr.Val)
					case "href":
						href = attr.Val
					case "media":
						media = strings.ToLower(attr.Val)
					}
				}
				switch {
				case rel == "stylesheet":
					analysis.StylesheetCount++
					if media != "print" {
						renderBlocking++
					}
				case rel == "canonical":
					hasCanonical = true
				case rel == "preload" && as == "font", isFontFile(href):
					analysis.FontCount++
				}
			case "style":
				analysis.StylesheetCount++
			case "video":
				analysis.VideoCount++
			case "iframe":
				for _, attr := range n.Attr {
					if attr.Key == "src" && isVideoEmbed(attr.Val) {
						analysis.VideoCount++
						break
					}
				}
			case "h1":
				headings++
				h1s++
			case "h2", "h3", "h4", "h5", "h6":
				headings++
			case "main", "nav", "header", "footer", "article", "section", "aside":
				hasSemantic = true
			case "input":
				inputType := ""
				for _, attr := range n.Attr {
					if attr.Key == "type" {
						inputType = attr.Val
					}
				}
				if inputType != "hidden" {
					inputs++
				}
			case "label":
				labels++
			}
		}

		// Recursively process child nodes
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			processNode(c)
		}
	}

	processNode(doc)

	analysis.ImageCount = images
	analysis.DOMElements = domElements
	analysis.RenderBlockingCount = renderBlocking
	analysis.AccessibilityScore = accessibilityHeuristic(images, imagesWithAlt, hasSemantic, headings, inputs, labels)
	analysis.SEOScore = seoHeuristic(hasTitle, hasMetaDesc, h1s, hasCanonical)
}

// accessibilityHeuristic scores markup-level accessibility signals.
func accessibilityHeuristic(images, withAlt int, semantic bool, headings, inputs, labels int) int {
	score := 100.0
	if images > 0 {
		missing := float64(images-withAlt) / float64(images)
		score -= 30 * missing
	}
	if !semantic {
		score -= 10
	}
	if headings == 0 {
		score -= 10
	}
	if inputs > labels {
		score -= float64(inputs-labels) * 2
	}
	return clampScore(score)
}

// seoHeuristic scores the basic head-of-document SEO signals.
func seoHeuristic(hasTitle, hasMetaDesc bool, h1s int, hasCanonical bool) int {
	score := 100.0
	if !hasTitle {
		score -= 15
	}
	if !hasMetaDesc {
		score -= 15
	}
	if h1s == 0 {
		score -= 10
	}
	if h1s > 1 {
		score -= 5
	}
	if !hasCanonical {
		score -= 5
	}
	return clampScore(score)
}

// performanceHeuristic approximates an audit performance score from load
// time and transfer size alone.
func performanceHeuristic(loadTime float64, bytes int64) int {
	score := 100.0
	if loadTime > 1.5 {
		score -= (loadTime - 1.5) * 15
	}
	mb := float64(bytes) / (1024 * 1024)
	if mb > 1 {
		score -= (mb - 1) * 10
	}
	return clampScore(score)
}

// linearCO2 is the quick per-page estimate shown alongside basic results.
func linearCO2(bytes int64, images, videos int) float64 {
	mb := float64(bytes) / (1024 * 1024)
	grams := mb*gramsPerMB + float64(images)*gramsPerImage + float64(videos)*gramsPerVideo
	return math.Round(grams*1000) / 1000
}

func detectCDN(h http.Header) bool {
	for _, name := range cdnHeaders {
		if h.Get(name) != "" {
			return true
		}
	}
	return strings.EqualFold(h.Get("Server"), "cloudflare")
}

func isFontFile(href string) bool {
	href = strings.ToLower(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	for _, ext := range []string{".woff2", ".woff", ".ttf", ".otf", ".eot"} {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}

func isVideoEmbed(src string) bool {
	src = strings.ToLower(src)
	for _, host := range []string{"youtube.com", "youtube-nocookie.com", "youtu.be", "vimeo.com", "dailymotion.com"} {
		if strings.Contains(src, host) {
			return true
		}
	}
	return false
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
