package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportRequest represents the request to generate a sustainability report.
// The payload wrapper matches the envelope the frontend already speaks.
type ReportRequest struct {
	Payload struct {
		URL string `json:"url"`
	} `json:"payload"`
}

// BatchReportRequest represents a request to analyze several URLs at once.
type BatchReportRequest struct {
	Payload struct {
		URLs []string `json:"urls"`
	} `json:"payload"`
}

// AnnotateRequest carries a previously generated report for prose annotation.
type AnnotateRequest struct {
	Payload map[string]interface{} `json:"payload"`
}

// ResourceBytes holds the transferred bytes per resource type.
type ResourceBytes struct {
	HTML       int64 `json:"html" bson:"html"`
	CSS        int64 `json:"css" bson:"css"`
	JavaScript int64 `json:"javascript" bson:"javascript"`
	Images     int64 `json:"images" bson:"images"`
	Fonts      int64 `json:"fonts" bson:"fonts"`
	Media      int64 `json:"media" bson:"media"`
	ThirdParty int64 `json:"third_party" bson:"third_party"`
}

// AnalysisResult represents the raw measurements for a webpage, produced by
// exactly one data source per request. Audited results carry the Core Web
// Vitals and opportunity fields; basic results leave them zero.
type AnalysisResult struct {
	URL       string    `json:"url" bson:"url"`
	Source    string    `json:"source" bson:"source"`
	Audited   bool      `json:"audited" bson:"audited"`
	FetchedAt time.Time `json:"fetched_at" bson:"fetched_at"`

	LoadTime      float64 `json:"load_time" bson:"load_time"`
	PageSizeBytes int64   `json:"page_size_bytes" bson:"page_size_bytes"`

	ImageCount      int `json:"image_count" bson:"image_count"`
	ScriptCount     int `json:"script_count" bson:"script_count"`
	StylesheetCount int `json:"stylesheet_count" bson:"stylesheet_count"`
	FontCount       int `json:"font_count" bson:"font_count"`
	VideoCount      int `json:"video_count" bson:"video_count"`

	PerformanceScore   int `json:"performance_score" bson:"performance_score"`
	AccessibilityScore int `json:"accessibility_score" bson:"accessibility_score"`
	BestPracticesScore int `json:"best_practices_score" bson:"best_practices_score"`
	SEOScore           int `json:"seo_score" bson:"seo_score"`

	HasCompression bool `json:"has_compression" bson:"has_compression"`
	UsesCDN        bool `json:"uses_cdn" bson:"uses_cdn"`
	GreenHosting   bool `json:"green_hosting" bson:"green_hosting"`

	FirstContentfulPaint   float64 `json:"first_contentful_paint,omitempty" bson:"first_contentful_paint"`
	LargestContentfulPaint float64 `json:"largest_contentful_paint,omitempty" bson:"largest_contentful_paint"`
	CumulativeLayoutShift  float64 `json:"cumulative_layout_shift,omitempty" bson:"cumulative_layout_shift"`
	TotalBlockingTime      float64 `json:"total_blocking_time,omitempty" bson:"total_blocking_time"`
	SpeedIndex             float64 `json:"speed_index,omitempty" bson:"speed_index"`
	TimeToInteractive      float64 `json:"time_to_interactive,omitempty" bson:"time_to_interactive"`

	ResourceBytes ResourceBytes `json:"resource_bytes" bson:"resource_bytes"`

	UnusedCSSBytes        int64 `json:"unused_css_bytes" bson:"unused_css_bytes"`
	UnusedJSBytes         int64 `json:"unused_js_bytes" bson:"unused_js_bytes"`
	UnoptimizedImageBytes int64 `json:"unoptimized_image_bytes" bson:"unoptimized_image_bytes"`

	ServerResponseTime  float64 `json:"server_response_time" bson:"server_response_time"`
	RenderBlockingCount int     `json:"render_blocking_count" bson:"render_blocking_count"`
	DOMElements         int     `json:"dom_elements" bson:"dom_elements"`

	// EstimatedCO2Grams is the basic fetcher's simple linear estimate. The
	// report-level emissions figure always comes from the full model.
	EstimatedCO2Grams float64 `json:"estimated_co2_grams,omitempty" bson:"estimated_co2_grams"`
}

// EmissionsBreakdown splits an emissions total across the system segments of
// the Sustainable Web Design model.
type EmissionsBreakdown struct {
	DataCenterGrams  float64 `json:"data_center_grams" bson:"data_center_grams"`
	NetworkGrams     float64 `json:"network_grams" bson:"network_grams"`
	DeviceGrams      float64 `json:"device_grams" bson:"device_grams"`
	ProductionGrams  float64 `json:"production_grams" bson:"production_grams"`
	OperationalGrams float64 `json:"operational_grams" bson:"operational_grams"`
}

// GreenSavings describes what green hosting saves against a grid baseline.
// Realized is true when the site is already on green hosting.
type GreenSavings struct {
	Grams    float64 `json:"grams" bson:"grams"`
	Percent  float64 `json:"percent" bson:"percent"`
	Realized bool    `json:"realized" bson:"realized"`
}

// OptimizationPotential estimates the emissions tied up in removable bytes.
type OptimizationPotential struct {
	UnusedCSSGrams        float64 `json:"unused_css_grams" bson:"unused_css_grams"`
	UnusedJSGrams         float64 `json:"unused_js_grams" bson:"unused_js_grams"`
	UnoptimizedImageGrams float64 `json:"unoptimized_image_grams" bson:"unoptimized_image_grams"`
	TotalGrams            float64 `json:"total_grams" bson:"total_grams"`
}

// EmissionsEstimate is the full carbon assessment for one page view.
// It is recomputed on every request and has no identity of its own.
type EmissionsEstimate struct {
	TotalCO2Grams float64               `json:"total_co2_grams" bson:"total_co2_grams"`
	CO2PerVisit   float64               `json:"co2_per_visit" bson:"co2_per_visit"`
	Rating        string                `json:"rating" bson:"rating"`
	GreenHosting  bool                  `json:"green_hosting" bson:"green_hosting"`
	Breakdown     EmissionsBreakdown    `json:"breakdown" bson:"breakdown"`
	GreenSavings  GreenSavings          `json:"green_savings" bson:"green_savings"`
	Optimization  OptimizationPotential `json:"optimization_potential" bson:"optimization_potential"`
}

// ScoreBreakdown holds the scored pillars and the weighted overall result.
// All values are integers in [0,100]. Strategy names the weighting formula.
type ScoreBreakdown struct {
	Overall       int    `json:"overall" bson:"overall"`
	Energy        int    `json:"energy" bson:"energy"`
	Carbon        int    `json:"carbon" bson:"carbon"`
	Resources     int    `json:"resources" bson:"resources"`
	Accessibility int    `json:"accessibility" bson:"accessibility"`
	Strategy      string `json:"strategy" bson:"strategy"`
}

// SustainabilityReport is the complete result returned to callers.
type SustainabilityReport struct {
	RequestID       string            `json:"request_id,omitempty" bson:"request_id"`
	URL             string            `json:"url" bson:"url"`
	AnalyzedAt      time.Time         `json:"analyzed_at" bson:"analyzed_at"`
	AnalysisMethod  string            `json:"analysis_method" bson:"analysis_method"`
	Scores          ScoreBreakdown    `json:"scores" bson:"scores"`
	Emissions       EmissionsEstimate `json:"emissions" bson:"emissions"`
	Analysis        *AnalysisResult   `json:"analysis" bson:"analysis"`
	Recommendations []string          `json:"recommendations" bson:"recommendations"`
}

// ReportRecord is the archived form of a report. The archive is write-behind
// only; report computation never reads from it.
type ReportRecord struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID string               `json:"request_id" bson:"request_id"`
	URL       string               `json:"url" bson:"url"`
	Method    string               `json:"analysis_method" bson:"analysis_method"`
	Report    SustainabilityReport `json:"report" bson:"report"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

// ChatMessage matches the message shape of chat-completion APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice wraps a single completion message.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatResponse is the envelope the report endpoint answers with. The report
// JSON travels as the message content so the existing frontend can consume
// it like a completion result.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stats represents archive statistics.
type Stats struct {
	TotalReports   int            `json:"total_reports" bson:"total_reports"`
	UniqueURLs     int            `json:"unique_urls" bson:"unique_urls"`
	ReportsLast24h int            `json:"reports_last_24h" bson:"reports_last_24h"`
	ByMethod       map[string]int `json:"by_method" bson:"by_method"`
	LastUpdated    time.Time      `json:"last_updated" bson:"last_updated"`
}
