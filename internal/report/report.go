// Package report runs the analysis producer chain and assembles the final
// sustainability report.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ecograde/ecograde/internal/analyzer"
	"github.com/ecograde/ecograde/internal/carbon"
	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/metrics"
	"github.com/ecograde/ecograde/internal/models"
	"github.com/ecograde/ecograde/internal/pagespeed"
	"github.com/ecograde/ecograde/internal/scoring"
)

var (
	// ErrExhausted means every producer in the chain failed.
	ErrExhausted = errors.New("report: all analysis sources failed")
	// ErrTimeout means the overall deadline fired before any producer finished.
	ErrTimeout = errors.New("report: generation timed out")
)

// Producer is one way of obtaining an analysis. Producers run strictly in
// order; the first success wins and exactly one result feeds a report.
type Producer struct {
	Name string
	Run  func(ctx context.Context, url string) (*models.AnalysisResult, error)
}

// DefaultChain builds the standard producer order: the real audit API, the
// simulated audit unless disabled, the direct page fetch, and the simulated
// basic analysis as the last resort.
func DefaultChain(ps *pagespeed.Client, an *analyzer.Analyzer, simulateAudit bool) []Producer {
	producers := []Producer{{Name: "pagespeed", Run: ps.Fetch}}
	if simulateAudit {
		producers = append(producers, Producer{Name: "simulated-audit", Run: pagespeed.Simulate})
	}
	return append(producers,
		Producer{Name: "basic", Run: an.Analyze},
		Producer{Name: "simulated-basic", Run: analyzer.Simulate},
	)
}

// Generator drives the producer chain and scores whatever it yields.
type Generator struct {
	producers []Producer
	cfg       config.ReportConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewGenerator creates a Generator over the given chain.
func NewGenerator(cfg config.ReportConfig, producers []Producer, m *metrics.Metrics, logger *slog.Logger) *Generator {
	return &Generator{
		producers: producers,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// Generate races the producer chain against the overall deadline. The
// deadline only abandons the chain; in-flight producer calls keep their own
// shorter timeouts and are never cancelled from here.
func (g *Generator) Generate(ctx context.Context, url string) (*models.SustainabilityReport, error) {
	type outcome struct {
		report *models.SustainabilityReport
		err    error
	}

	chainCtx := context.WithoutCancel(ctx)
	done := make(chan outcome, 1)
	go func() {
		rep, err := g.run(chainCtx, url)
		done <- outcome{rep, err}
	}()

	timer := time.NewTimer(g.cfg.Timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.report, out.err
	case <-timer.C:
		g.logger.Warn("report generation timed out", "url", url, "timeout", g.cfg.Timeout)
		return nil, ErrTimeout
	}
}

func (g *Generator) run(ctx context.Context, url string) (*models.SustainabilityReport, error) {
	for _, p := range g.producers {
		analysis, err := p.Run(ctx, url)
		if err != nil {
			g.logger.Warn("analysis source failed, falling back", "source", p.Name, "url", url, "error", err)
			g.metrics.FallbackTriggered(p.Name)
			continue
		}
		return g.assemble(analysis), nil
	}
	return nil, ErrExhausted
}

// assemble scores one analysis into the final report. The producer's source
// tag doubles as the report's analysis method.
func (g *Generator) assemble(a *models.AnalysisResult) *models.SustainabilityReport {
	emissions := carbon.FromAnalysis(a)
	scores := scoring.Compute(a, &emissions)

	return &models.SustainabilityReport{
		URL:             a.URL,
		AnalyzedAt:      time.Now().UTC(),
		AnalysisMethod:  a.Source,
		Scores:          scores,
		Emissions:       emissions,
		Analysis:        a,
		Recommendations: scoring.Recommendations(a, &emissions),
	}
}
