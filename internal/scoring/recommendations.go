package scoring

import (
	"fmt"

	"github.com/ecograde/ecograde/internal/models"
)

// Disclaimers name the data source so readers know how far to trust the
// numbers. One of them always opens the recommendation list.
const (
	disclaimerAudit     = "Analysis based on live performance audit data."
	disclaimerBasic     = "Analysis based on a basic page fetch; advanced metrics were estimated."
	disclaimerSimulated = "Simulated analysis for demonstration; metrics are representative, not measured."
)

const (
	maxRecommendationsBasic = 10
	maxRecommendationsAudit = 12
)

// Recommendations builds the ordered advice list for a report. Rules fire
// on fixed thresholds, duplicates are dropped keeping first occurrence, and
// the list is capped.
func Recommendations(a *models.AnalysisResult, e *models.EmissionsEstimate) []string {
	recs := []string{disclaimerFor(a.Source)}

	mb := megabytes(a.PageSizeBytes)
	if mb > 1.5 {
		recs = append(recs, fmt.Sprintf("Reduce total page weight (currently %.1f MB); aim for under 1 MB.", mb))
	}
	if !a.HasCompression {
		recs = append(recs, "Enable text compression (gzip or brotli) on the server.")
	}
	if a.LoadTime > 3 {
		recs = append(recs, fmt.Sprintf("Improve load time (currently %.1fs); slow pages keep radios and CPUs awake.", a.LoadTime))
	}
	if a.UnusedJSBytes > 100_000 {
		recs = append(recs, fmt.Sprintf("Remove or code-split unused JavaScript (%d KB shipped but never run).", a.UnusedJSBytes/1024))
	}
	if a.UnusedCSSBytes > 50_000 {
		recs = append(recs, fmt.Sprintf("Strip unused CSS rules (%d KB shipped but never applied).", a.UnusedCSSBytes/1024))
	}
	if a.UnoptimizedImageBytes > 100_000 {
		recs = append(recs, fmt.Sprintf("Serve images in modern formats; roughly %d KB can be saved.", a.UnoptimizedImageBytes/1024))
	}
	if a.ImageCount > 20 {
		recs = append(recs, fmt.Sprintf("Reduce the number of images (%d found) or lazy-load those below the fold.", a.ImageCount))
	}
	if a.VideoCount > 0 {
		recs = append(recs, "Replace autoplaying video with click-to-load embeds.")
	}
	if a.ScriptCount > 15 {
		recs = append(recs, fmt.Sprintf("Trim JavaScript bundles (%d scripts); every script costs transfer and CPU.", a.ScriptCount))
	}
	if a.FontCount > 3 {
		recs = append(recs, "Limit custom web fonts or subset them to the characters you use.")
	}
	if a.RenderBlockingCount > 5 {
		recs = append(recs, "Defer render-blocking scripts and inline the critical CSS.")
	}
	if a.DOMElements > 1500 {
		recs = append(recs, fmt.Sprintf("Simplify the page structure (%d DOM elements).", a.DOMElements))
	}
	if a.ServerResponseTime > 600 {
		recs = append(recs, "Speed up the server response; a slow first byte delays everything after it.")
	}
	if a.Audited && a.LargestContentfulPaint > 2.5 {
		recs = append(recs, "Preload the largest contentful element so it renders sooner.")
	}
	if a.Audited && a.CumulativeLayoutShift > 0.1 {
		recs = append(recs, "Reserve space for media and embeds to avoid layout shifts.")
	}
	if a.Audited && a.TotalBlockingTime > 300 {
		recs = append(recs, "Break up long main-thread tasks to cut total blocking time.")
	}
	if !a.UsesCDN {
		recs = append(recs, "Serve static assets from a CDN to shorten delivery paths.")
	}
	if !a.GreenHosting {
		recs = append(recs, "Consider a verified green hosting provider for the remaining footprint.")
	}
	if a.AccessibilityScore < 70 {
		recs = append(recs, "Raise accessibility: add alt text, form labels, and semantic landmarks.")
	}
	if r := e.Rating; r == "D" || r == "E" || r == "F" {
		recs = append(recs, fmt.Sprintf("This page emits %.2fg CO2 per visit (rating %s); prioritize the items above.", e.CO2PerVisit, r))
	}

	recs = dedupe(recs)

	limit := maxRecommendationsBasic
	if a.Audited {
		limit = maxRecommendationsAudit
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func disclaimerFor(source string) string {
	switch source {
	case "pagespeed":
		return disclaimerAudit
	case "basic":
		return disclaimerBasic
	default:
		return disclaimerSimulated
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
