package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ecograde/ecograde/internal/models"
)

var (
	// ErrBatchEmpty means the batch carried no URLs.
	ErrBatchEmpty = errors.New("report: batch needs at least one url")
	// ErrBatchTooLarge means the batch exceeded the configured limit.
	ErrBatchTooLarge = errors.New("report: batch exceeds the url limit")
)

// BatchResult carries the per-URL outcomes of one batch request.
type BatchResult struct {
	Count   int                            `json:"count"`
	Reports []*models.SustainabilityReport `json:"reports"`
	Errors  map[string]string              `json:"errors,omitempty"`
}

// GenerateBatch analyzes up to the configured number of URLs with bounded
// concurrency under a shared rate limit. Per-URL failures land in the
// result's error map; only an invalid batch fails as a whole.
func (g *Generator) GenerateBatch(ctx context.Context, urls []string) (*BatchResult, error) {
	if len(urls) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(urls) > g.cfg.MaxBatchURLs {
		return nil, fmt.Errorf("%w: at most %d urls per batch", ErrBatchTooLarge, g.cfg.MaxBatchURLs)
	}

	var (
		mu       sync.Mutex
		failures = make(map[string]string)
	)
	// Each goroutine owns its slice slot; only the failure map is shared.
	reports := make([]*models.SustainabilityReport, len(urls))

	sem := semaphore.NewWeighted(g.cfg.BatchWorkers)
	limiter := rate.NewLimiter(rate.Limit(g.cfg.BatchRequestsPerSecond), 1)

	grp, grpCtx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		grp.Go(func() error {
			if err := sem.Acquire(grpCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if err := limiter.Wait(grpCtx); err != nil {
				return err
			}

			rep, err := g.Generate(grpCtx, u)
			if err != nil {
				mu.Lock()
				failures[u] = err.Error()
				mu.Unlock()
				return nil
			}
			reports[i] = rep
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Reports: make([]*models.SustainabilityReport, 0, len(urls)),
		Errors:  failures,
	}
	for _, rep := range reports {
		if rep != nil {
			result.Reports = append(result.Reports, rep)
		}
	}
	result.Count = len(result.Reports)
	return result, nil
}
