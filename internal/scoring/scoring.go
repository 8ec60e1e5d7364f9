// Package scoring turns analysis metrics and emission estimates into the
// report's 0-100 sub-scores and its recommendation list.
package scoring

import (
	"math"

	"github.com/ecograde/ecograde/internal/models"
)

// Strategy names recorded in the score breakdown. Audited results carry
// enough signal to weight the pillars; basic results average them.
const (
	StrategyBalanced = "balanced"
	StrategyAudit    = "audit-weighted"
)

var ratingBonus = map[string]float64{
	"A+": 10,
	"A":  8,
	"B":  5,
	"C":  0,
	"D":  -3,
	"E":  -6,
	"F":  -10,
}

// Compute scores the analysis. The strategy follows the data shape: audit
// results get the weighted formula, everything else the balanced average.
func Compute(a *models.AnalysisResult, e *models.EmissionsEstimate) models.ScoreBreakdown {
	energy := energyScore(a)
	carbon := carbonScore(a, e)
	resources := resourceScore(a)
	accessibility := clampScore(float64(a.AccessibilityScore))

	if a.Audited {
		overall := 0.25*float64(energy) +
			0.35*float64(carbon) +
			0.25*float64(resources) +
			0.15*float64(a.PerformanceScore)
		return models.ScoreBreakdown{
			Overall:       clampScore(overall),
			Energy:        energy,
			Carbon:        carbon,
			Resources:     resources,
			Accessibility: accessibility,
			Strategy:      StrategyAudit,
		}
	}

	overall := 0.25 * float64(energy+carbon+resources+accessibility)
	return models.ScoreBreakdown{
		Overall:       clampScore(overall),
		Energy:        energy,
		Carbon:        carbon,
		Resources:     resources,
		Accessibility: accessibility,
		Strategy:      StrategyBalanced,
	}
}

// energyScore penalizes slow loads and heavy transfers, the two main
// drivers of device and network energy.
func energyScore(a *models.AnalysisResult) int {
	score := 100.0

	if a.LoadTime > 2 {
		score -= (a.LoadTime - 2) * 10
	}
	if a.LoadTime > 3 {
		score -= (a.LoadTime - 3) * 5
	}

	mb := megabytes(a.PageSizeBytes)
	if mb > 1 {
		score -= (mb - 1) * 15
	}
	if mb > 2 {
		score -= (mb - 2) * 10
	}

	if a.VideoCount > 2 {
		score -= float64(a.VideoCount-2) * 5
	}
	if a.HasCompression {
		score += 5
	}
	if a.UsesCDN {
		score += 5
	}

	if a.Audited {
		if a.LargestContentfulPaint > 2.5 {
			score -= (a.LargestContentfulPaint - 2.5) * 8
		}
		if a.TotalBlockingTime > 300 {
			score -= math.Floor((a.TotalBlockingTime-300)/50) * 2
		}
		switch {
		case a.PerformanceScore >= 90:
			score += 10
		case a.PerformanceScore >= 75:
			score += 5
		}
	}

	return clampScore(score)
}

// carbonScore works from the per-visit emission estimate.
func carbonScore(a *models.AnalysisResult, e *models.EmissionsEstimate) int {
	score := 100.0

	if e.CO2PerVisit > 0.5 {
		score -= (e.CO2PerVisit - 0.5) * 20
	}
	if e.CO2PerVisit > 1.0 {
		score -= (e.CO2PerVisit - 1.0) * 20
	}

	if a.GreenHosting {
		score += 15
	}
	if a.HasCompression {
		score += 5
	}
	if a.UsesCDN {
		score += 5
	}

	if a.Audited {
		score += ratingBonus[e.Rating]

		if e.TotalCO2Grams > 0 {
			waste := e.Optimization.TotalGrams / e.TotalCO2Grams
			switch {
			case waste > 0.30:
				score -= 10
			case waste > 0.15:
				score -= 5
			}
		}

		if e.GreenSavings.Realized {
			score += math.Round(e.GreenSavings.Percent / 2)
		}
	}

	return clampScore(score)
}

// resourceScore penalizes asset sprawl and, for audited results, the waste
// the audit measured directly.
func resourceScore(a *models.AnalysisResult) int {
	score := 100.0

	if a.ScriptCount > 10 {
		score -= float64(a.ScriptCount-10) * 2
	}
	if a.StylesheetCount > 5 {
		score -= float64(a.StylesheetCount-5) * 3
	}
	if a.FontCount > 3 {
		score -= float64(a.FontCount-3) * 3
	}

	mb := megabytes(a.PageSizeBytes)
	if mb > 1.5 {
		score -= (mb - 1.5) * 10
	}

	if a.Audited {
		switch {
		case a.UnusedCSSBytes > 150_000:
			score -= 10
		case a.UnusedCSSBytes > 50_000:
			score -= 5
		}
		switch {
		case a.UnusedJSBytes > 300_000:
			score -= 10
		case a.UnusedJSBytes > 100_000:
			score -= 5
		}
		switch {
		case a.UnoptimizedImageBytes > 400_000:
			score -= 10
		case a.UnoptimizedImageBytes > 100_000:
			score -= 5
		}
		if a.RenderBlockingCount > 5 {
			score -= math.Min(float64(a.RenderBlockingCount-5)*2, 10)
		}
		switch {
		case a.DOMElements > 1500:
			score -= 10
		case a.DOMElements > 1000:
			score -= 5
		}
		if a.BestPracticesScore >= 90 {
			score += 5
		}
	}

	return clampScore(score)
}

func megabytes(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
