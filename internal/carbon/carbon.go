// Package carbon estimates website CO2 emissions with the Sustainable Web
// Design model: transferred bytes become energy at a fixed kWh/GB rate, the
// energy is split across system segments, and each segment is multiplied by
// a grid or renewable carbon intensity.
package carbon

import (
	"github.com/ecograde/ecograde/internal/models"
)

const (
	// Energy per gigabyte transferred, across the whole system.
	kWhPerGB   = 0.81
	bytesPerGB = 1e9

	// Segment shares of the system energy.
	dataCenterShare = 0.15
	networkShare    = 0.14
	deviceShare     = 0.52
	productionShare = 0.19

	// Carbon intensity in grams CO2e per kWh.
	gridIntensity      = 442.0
	renewableIntensity = 50.9

	// Visit mix: 75% first-time visitors load everything, 25% returning
	// visitors re-fetch 2% of the data.
	firstVisitShare    = 0.75
	returningShare     = 0.25
	returningDataRatio = 0.02
)

// Rating boundaries in grams CO2 per visit, from the model's percentile
// bands. Values at or under a bound earn that letter.
var ratingBounds = []struct {
	limit  float64
	letter string
}{
	{0.095, "A+"},
	{0.186, "A"},
	{0.341, "B"},
	{0.493, "C"},
	{0.656, "D"},
	{0.846, "E"},
}

// energyKWh converts transferred bytes to system energy.
func energyKWh(bytes int64) float64 {
	return float64(bytes) / bytesPerGB * kWhPerGB
}

// totalGrams returns the full per-load emissions for the transfer size.
// Green hosting only changes the data center segment's intensity.
func totalGrams(bytes int64, green bool) float64 {
	b := breakdown(bytes, green)
	return b.DataCenterGrams + b.NetworkGrams + b.DeviceGrams + b.ProductionGrams
}

func breakdown(bytes int64, green bool) models.EmissionsBreakdown {
	energy := energyKWh(bytes)
	dcIntensity := gridIntensity
	if green {
		dcIntensity = renewableIntensity
	}
	b := models.EmissionsBreakdown{
		DataCenterGrams: energy * dataCenterShare * dcIntensity,
		NetworkGrams:    energy * networkShare * gridIntensity,
		DeviceGrams:     energy * deviceShare * gridIntensity,
		ProductionGrams: energy * productionShare * gridIntensity,
	}
	b.OperationalGrams = b.DataCenterGrams + b.NetworkGrams + b.DeviceGrams
	return b
}

// Rating maps grams CO2 per visit onto the model's letter scale.
func Rating(perVisitGrams float64) string {
	for _, b := range ratingBounds {
		if perVisitGrams <= b.limit {
			return b.letter
		}
	}
	return "F"
}

// Estimate computes the emissions for one page load of the given size.
func Estimate(bytes int64, green bool) models.EmissionsEstimate {
	total := totalGrams(bytes, green)
	perVisit := total * (firstVisitShare + returningShare*returningDataRatio)
	return models.EmissionsEstimate{
		TotalCO2Grams: total,
		CO2PerVisit:   perVisit,
		Rating:        Rating(perVisit),
		GreenHosting:  green,
		Breakdown:     breakdown(bytes, green),
	}
}

// GreenHostingSavings reports what green hosting saves against the grid
// baseline for the transfer size. For sites already on green hosting the
// savings are realized; for the rest they are the available potential.
// A zero-byte page yields zero grams and zero percent.
func GreenHostingSavings(bytes int64, green bool) models.GreenSavings {
	baseline := totalGrams(bytes, false)
	withGreen := totalGrams(bytes, true)
	saved := baseline - withGreen
	var pct float64
	if baseline > 0 {
		pct = saved / baseline * 100
	}
	return models.GreenSavings{
		Grams:    saved,
		Percent:  pct,
		Realized: green,
	}
}

// OptimizationPotential estimates the grams tied up in bytes the audit
// flagged as removable. The categories use the grid intensity so the figure
// reads as worst-case waste.
func OptimizationPotential(a *models.AnalysisResult) models.OptimizationPotential {
	p := models.OptimizationPotential{
		UnusedCSSGrams:        totalGrams(a.UnusedCSSBytes, false),
		UnusedJSGrams:         totalGrams(a.UnusedJSBytes, false),
		UnoptimizedImageGrams: totalGrams(a.UnoptimizedImageBytes, false),
	}
	p.TotalGrams = p.UnusedCSSGrams + p.UnusedJSGrams + p.UnoptimizedImageGrams
	return p
}

// FromAnalysis assembles the complete emissions estimate for an analysis.
func FromAnalysis(a *models.AnalysisResult) models.EmissionsEstimate {
	e := Estimate(a.PageSizeBytes, a.GreenHosting)
	e.GreenSavings = GreenHostingSavings(a.PageSizeBytes, a.GreenHosting)
	e.Optimization = OptimizationPotential(a)
	return e
}
