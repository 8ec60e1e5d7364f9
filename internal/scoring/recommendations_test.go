package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecograde/ecograde/internal/models"
)

func cleanResult(source string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Source:             source,
		LoadTime:           1.0,
		PageSizeBytes:      200_000,
		ScriptCount:        4,
		StylesheetCount:    2,
		AccessibilityScore: 92,
		HasCompression:     true,
		UsesCDN:            true,
		GreenHosting:       true,
	}
}

func TestRecommendationsDisclaimerFirst(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"pagespeed", disclaimerAudit},
		{"basic", disclaimerBasic},
		{"simulated", disclaimerSimulated},
	}

	e := &models.EmissionsEstimate{CO2PerVisit: 0.05, Rating: "A+"}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			recs := Recommendations(cleanResult(tt.source), e)
			require.NotEmpty(t, recs)
			assert.Equal(t, tt.want, recs[0])
		})
	}
}

func TestRecommendationsCleanPage(t *testing.T) {
	e := &models.EmissionsEstimate{CO2PerVisit: 0.05, Rating: "A+"}
	recs := Recommendations(cleanResult("basic"), e)

	assert.Equal(t, []string{disclaimerBasic}, recs, "a clean page earns only the disclaimer")
}

func heavyResult(audited bool) *models.AnalysisResult {
	a := &models.AnalysisResult{
		Source:              "basic",
		LoadTime:            6.2,
		PageSizeBytes:       4 << 20,
		ImageCount:          35,
		VideoCount:          2,
		ScriptCount:         28,
		FontCount:           6,
		AccessibilityScore:  55,
		RenderBlockingCount: 9,
		DOMElements:         2200,
		ServerResponseTime:  750,
	}
	if audited {
		a.Source = "pagespeed"
		a.Audited = true
		a.LargestContentfulPaint = 4.8
		a.CumulativeLayoutShift = 0.3
		a.TotalBlockingTime = 600
		a.UnusedCSSBytes = 120_000
		a.UnusedJSBytes = 320_000
		a.UnoptimizedImageBytes = 380_000
	}
	return a
}

func TestRecommendationsCaps(t *testing.T) {
	e := &models.EmissionsEstimate{CO2PerVisit: 1.8, Rating: "F"}

	basic := Recommendations(heavyResult(false), e)
	assert.Len(t, basic, maxRecommendationsBasic)
	assert.Equal(t, disclaimerBasic, basic[0])

	audit := Recommendations(heavyResult(true), e)
	assert.Len(t, audit, maxRecommendationsAudit)
	assert.Equal(t, disclaimerAudit, audit[0])
}

func TestRecommendationsNoDuplicates(t *testing.T) {
	e := &models.EmissionsEstimate{CO2PerVisit: 1.8, Rating: "F"}
	recs := Recommendations(heavyResult(true), e)

	seen := make(map[string]bool)
	for _, r := range recs {
		assert.False(t, seen[r], "duplicate recommendation: %s", r)
		seen[r] = true
	}
}

func TestRecommendationsInterpolateMetrics(t *testing.T) {
	a := cleanResult("basic")
	a.PageSizeBytes = 2_621_440 // 2.5 MB
	e := &models.EmissionsEstimate{CO2PerVisit: 0.4, Rating: "B"}

	recs := Recommendations(a, e)

	found := false
	for _, r := range recs {
		if strings.Contains(r, "2.5 MB") {
			found = true
		}
	}
	assert.True(t, found, "expected the page weight line to name the size, got %v", recs)
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
