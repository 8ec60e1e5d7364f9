package analyzer

import (
	"context"
	"math"
	"time"

	"github.com/ecograde/ecograde/internal/models"
	"github.com/ecograde/ecograde/internal/seeded"
)

// SimulatedSource tags results invented by the simulators.
const SimulatedSource = "simulated"

// Index offsets for the basic-shaped simulation. They start at 40 so a URL
// never draws the same stream as the audit-shaped simulation.
const (
	idxLoadTime = iota + 40
	idxPageSize
	idxImages
	idxScripts
	idxStylesheets
	idxFonts
	idxVideos
	idxAccessibility
	idxSEO
	idxPerformance
	idxServerTime
	idxDOMElements
	idxRenderBlocking
	idxCompression
	idxCDN
	idxGreenHost
)

// Simulate fabricates a plausible basic analysis for the URL. The same URL
// always yields the same result.
func Simulate(ctx context.Context, pageURL string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &models.AnalysisResult{
		URL:       pageURL,
		Source:    SimulatedSource,
		FetchedAt: time.Now(),

		LoadTime:      round2(seeded.Between(pageURL, idxLoadTime, 1.5, 6.0)),
		PageSizeBytes: int64(seeded.Between(pageURL, idxPageSize, 300_000, 2_000_000)),

		ImageCount:      seeded.IntBetween(pageURL, idxImages, 5, 40),
		ScriptCount:     seeded.IntBetween(pageURL, idxScripts, 3, 25),
		StylesheetCount: seeded.IntBetween(pageURL, idxStylesheets, 1, 8),
		FontCount:       seeded.IntBetween(pageURL, idxFonts, 0, 5),
		VideoCount:      seeded.IntBetween(pageURL, idxVideos, 0, 2),

		AccessibilityScore: seeded.IntBetween(pageURL, idxAccessibility, 55, 95),
		SEOScore:           seeded.IntBetween(pageURL, idxSEO, 60, 95),
		PerformanceScore:   seeded.IntBetween(pageURL, idxPerformance, 40, 85),

		ServerResponseTime:  math.Round(seeded.Between(pageURL, idxServerTime, 120, 800)),
		DOMElements:         seeded.IntBetween(pageURL, idxDOMElements, 250, 2000),
		RenderBlockingCount: seeded.IntBetween(pageURL, idxRenderBlocking, 0, 10),

		HasCompression: seeded.Chance(pageURL, idxCompression, 0.65),
		UsesCDN:        seeded.Chance(pageURL, idxCDN, 0.45),
		GreenHosting:   seeded.Chance(pageURL, idxGreenHost, 0.30),
	}

	analysis.EstimatedCO2Grams = linearCO2(analysis.PageSizeBytes, analysis.ImageCount, analysis.VideoCount)

	return analysis, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
