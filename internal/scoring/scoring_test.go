package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecograde/ecograde/internal/models"
)

func TestComputeBalanced(t *testing.T) {
	a := &models.AnalysisResult{
		Source:             "basic",
		LoadTime:           1.2,
		PageSizeBytes:      400_000,
		ScriptCount:        5,
		StylesheetCount:    2,
		FontCount:          1,
		AccessibilityScore: 90,
		HasCompression:     true,
		UsesCDN:            true,
	}
	e := &models.EmissionsEstimate{CO2PerVisit: 0.11, TotalCO2Grams: 0.14, Rating: "A"}

	scores := Compute(a, e)

	assert.Equal(t, StrategyBalanced, scores.Strategy)
	assert.Equal(t, 100, scores.Energy)
	assert.Equal(t, 100, scores.Carbon)
	assert.Equal(t, 100, scores.Resources)
	assert.Equal(t, 90, scores.Accessibility)
	// 0.25 * (100 + 100 + 100 + 90) rounds to 98.
	assert.Equal(t, 98, scores.Overall)
}

func TestComputeAuditWeighted(t *testing.T) {
	a := &models.AnalysisResult{
		Source:                 "pagespeed",
		Audited:                true,
		LoadTime:               3.5,
		PageSizeBytes:          2_621_440, // 2.5 MB
		VideoCount:             3,
		LargestContentfulPaint: 4.0,
		TotalBlockingTime:      500,
		PerformanceScore:       95,
		BestPracticesScore:     92,
		AccessibilityScore:     88,
		ScriptCount:            22,
		StylesheetCount:        7,
		FontCount:              5,
		UnusedCSSBytes:         160_000,
		UnusedJSBytes:          150_000,
		UnoptimizedImageBytes:  450_000,
		RenderBlockingCount:    12,
		DOMElements:            1800,
	}
	e := &models.EmissionsEstimate{
		CO2PerVisit:   1.2,
		TotalCO2Grams: 1.6,
		Rating:        "E",
		Optimization:  models.OptimizationPotential{TotalGrams: 0.6},
	}

	scores := Compute(a, e)

	assert.Equal(t, StrategyAudit, scores.Strategy)
	assert.Equal(t, 40, scores.Energy)
	assert.Equal(t, 66, scores.Carbon)
	assert.Equal(t, 14, scores.Resources)
	assert.Equal(t, 88, scores.Accessibility)
	// 0.25*40 + 0.35*66 + 0.25*14 + 0.15*95 rounds to 51.
	assert.Equal(t, 51, scores.Overall)
}

func TestComputeClampsToRange(t *testing.T) {
	a := &models.AnalysisResult{
		Source:             "basic",
		LoadTime:           20,
		PageSizeBytes:      20 << 20,
		VideoCount:         8,
		ScriptCount:        60,
		StylesheetCount:    20,
		FontCount:          10,
		AccessibilityScore: 120,
	}
	e := &models.EmissionsEstimate{CO2PerVisit: 5.0, TotalCO2Grams: 6.6, Rating: "F"}

	scores := Compute(a, e)

	assert.Equal(t, 0, scores.Energy)
	assert.Equal(t, 0, scores.Carbon)
	assert.Equal(t, 0, scores.Resources)
	assert.Equal(t, 100, scores.Accessibility, "out-of-range input clamps")
	assert.GreaterOrEqual(t, scores.Overall, 0)
	assert.LessOrEqual(t, scores.Overall, 100)
}

func TestCarbonRatingBonus(t *testing.T) {
	tests := []struct {
		rating string
		want   int
	}{
		{"A+", 100},
		{"A", 98},
		{"B", 95},
		{"C", 90},
		{"D", 87},
		{"E", 84},
		{"F", 80},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			a := &models.AnalysisResult{Source: "pagespeed", Audited: true}
			e := &models.EmissionsEstimate{CO2PerVisit: 1.0, TotalCO2Grams: 1.3, Rating: tt.rating}
			assert.Equal(t, tt.want, carbonScore(a, e))
		})
	}
}

func TestCarbonRealizedGreenSavings(t *testing.T) {
	a := &models.AnalysisResult{Source: "pagespeed", Audited: true, GreenHosting: true}
	e := &models.EmissionsEstimate{
		CO2PerVisit:   1.5,
		TotalCO2Grams: 2.0,
		Rating:        "C",
		GreenHosting:  true,
		GreenSavings:  models.GreenSavings{Grams: 0.26, Percent: 13.27, Realized: true},
	}

	// Base 70, +15 green hosting, +round(13.27/2).
	assert.Equal(t, 92, carbonScore(a, e))
}

func TestEnergyAuditBonuses(t *testing.T) {
	base := &models.AnalysisResult{Source: "pagespeed", Audited: true, LoadTime: 1.0}

	fast := *base
	fast.PerformanceScore = 92
	assert.Equal(t, 100, energyScore(&fast), "bonus clamps at 100")

	slow := *base
	slow.PerformanceScore = 60
	slow.LargestContentfulPaint = 3.5
	// 100 - (3.5-2.5)*8 = 92.
	assert.Equal(t, 92, energyScore(&slow))
}
