package pagespeed

import (
	"context"
	"math"
	"time"

	"github.com/ecograde/ecograde/internal/models"
	"github.com/ecograde/ecograde/internal/seeded"
)

// SimulatedSource tags results produced without any network access.
const SimulatedSource = "simulated"

// Each simulated field draws from its own fixed index so every value is
// independently reproducible for a URL.
const (
	idxPerformance = iota
	idxAccessibility
	idxBestPractices
	idxSEO
	idxFCP
	idxLCP
	idxCLS
	idxTBT
	idxSpeedIndex
	idxTTI
	idxTotalBytes
	idxImageShare
	idxScriptShare
	idxCSSShare
	idxFontShare
	idxMediaShare
	idxThirdPartyShare
	idxImageCount
	idxScriptCount
	idxStylesheetCount
	idxFontCount
	idxVideoCount
	idxUnusedCSS
	idxUnusedJS
	idxUnoptImages
	idxServerResponse
	idxRenderBlocking
	idxDOMElements
	idxCompression
	idxCDN
	idxGreenHost
)

// Simulate produces an audit-shaped result from the seeded generator. It
// never contacts the network and only fails when the context is already
// done, so it can close out the fallback chain.
func Simulate(ctx context.Context, pageURL string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totalBytes := int64(seeded.Between(pageURL, idxTotalBytes, 500_000, 2_500_000))

	result := &models.AnalysisResult{
		URL:       pageURL,
		Source:    SimulatedSource,
		Audited:   true,
		FetchedAt: time.Now(),

		PerformanceScore:   seeded.IntBetween(pageURL, idxPerformance, 50, 90),
		AccessibilityScore: seeded.IntBetween(pageURL, idxAccessibility, 60, 95),
		BestPracticesScore: seeded.IntBetween(pageURL, idxBestPractices, 60, 95),
		SEOScore:           seeded.IntBetween(pageURL, idxSEO, 65, 95),

		FirstContentfulPaint:   round2(seeded.Between(pageURL, idxFCP, 0.8, 2.8)),
		LargestContentfulPaint: round2(seeded.Between(pageURL, idxLCP, 1.5, 4.5)),
		CumulativeLayoutShift:  round3(seeded.Between(pageURL, idxCLS, 0, 0.25)),
		TotalBlockingTime:      math.Round(seeded.Between(pageURL, idxTBT, 50, 650)),
		SpeedIndex:             round2(seeded.Between(pageURL, idxSpeedIndex, 1.2, 5.2)),
		TimeToInteractive:      round2(seeded.Between(pageURL, idxTTI, 2, 7)),

		PageSizeBytes: totalBytes,

		ImageCount:      seeded.IntBetween(pageURL, idxImageCount, 5, 45),
		ScriptCount:     seeded.IntBetween(pageURL, idxScriptCount, 5, 35),
		StylesheetCount: seeded.IntBetween(pageURL, idxStylesheetCount, 1, 9),
		FontCount:       seeded.IntBetween(pageURL, idxFontCount, 0, 6),
		VideoCount:      seeded.IntBetween(pageURL, idxVideoCount, 0, 2),

		UnusedCSSBytes:        int64(seeded.Between(pageURL, idxUnusedCSS, 0, 120_000)),
		UnusedJSBytes:         int64(seeded.Between(pageURL, idxUnusedJS, 0, 350_000)),
		UnoptimizedImageBytes: int64(seeded.Between(pageURL, idxUnoptImages, 0, 400_000)),

		ServerResponseTime:  math.Round(seeded.Between(pageURL, idxServerResponse, 100, 700)),
		RenderBlockingCount: seeded.IntBetween(pageURL, idxRenderBlocking, 0, 12),
		DOMElements:         seeded.IntBetween(pageURL, idxDOMElements, 300, 2300),

		HasCompression: seeded.Chance(pageURL, idxCompression, 0.7),
		UsesCDN:        seeded.Chance(pageURL, idxCDN, 0.5),
		GreenHosting:   seeded.Chance(pageURL, idxGreenHost, 0.3),
	}
	result.LoadTime = result.TimeToInteractive

	// Per-type byte shares stay under 100% by construction; the document
	// itself takes the remainder.
	images := int64(float64(totalBytes) * seeded.Between(pageURL, idxImageShare, 0.25, 0.45))
	scripts := int64(float64(totalBytes) * seeded.Between(pageURL, idxScriptShare, 0.15, 0.30))
	css := int64(float64(totalBytes) * seeded.Between(pageURL, idxCSSShare, 0.04, 0.10))
	fonts := int64(float64(totalBytes) * seeded.Between(pageURL, idxFontShare, 0.02, 0.06))
	media := int64(float64(totalBytes) * seeded.Between(pageURL, idxMediaShare, 0, 0.06))
	result.ResourceBytes = models.ResourceBytes{
		Images:     images,
		JavaScript: scripts,
		CSS:        css,
		Fonts:      fonts,
		Media:      media,
		HTML:       totalBytes - images - scripts - css - fonts - media,
		ThirdParty: int64(float64(totalBytes) * seeded.Between(pageURL, idxThirdPartyShare, 0.1, 0.4)),
	}

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
