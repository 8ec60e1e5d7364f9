package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecograde/ecograde/internal/models"
)

// defaultMemoryLimit bounds the in-memory archive.
const defaultMemoryLimit = 200

// MemoryRepository keeps the newest records in a bounded slice. It backs
// the archive when no MongoDB URI is configured, so a bare deployment still
// serves the history endpoints.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []*models.ReportRecord
	limit   int
}

// NewMemoryRepository creates an in-memory archive holding at most limit
// records; limit <= 0 selects the default.
func NewMemoryRepository(limit int) *MemoryRepository {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &MemoryRepository{limit: limit}
}

// SaveReport archives one generated report, dropping the oldest record once
// the limit is reached.
func (r *MemoryRepository) SaveReport(ctx context.Context, record *models.ReportRecord) error {
	clone := *record
	if clone.ID.IsZero() {
		clone.ID = primitive.NewObjectID()
	}
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, &clone)
	if len(r.records) > r.limit {
		r.records = r.records[len(r.records)-r.limit:]
	}

	record.ID = clone.ID
	record.CreatedAt = clone.CreatedAt
	return nil
}

// GetReport retrieves a record by document ID or request ID.
func (r *MemoryRepository) GetReport(ctx context.Context, id string) (*models.ReportRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.ID.Hex() == id || rec.RequestID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil // Not found
}

// GetRecentReports returns up to limit records, newest first. A zero or
// negative limit yields an empty list.
func (r *MemoryRepository) GetRecentReports(ctx context.Context, limit int) ([]*models.ReportRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 0 {
		limit = 0
	}
	if limit > len(r.records) {
		limit = len(r.records)
	}

	out := make([]*models.ReportRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *r.records[i]
		out = append(out, &clone)
	}
	return out, nil
}

// GetStats summarizes the in-memory archive.
func (r *MemoryRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make(map[string]struct{}, len(r.records))
	byMethod := make(map[string]int)
	recent := 0
	since := time.Now().Add(-24 * time.Hour)

	for _, rec := range r.records {
		urls[rec.URL] = struct{}{}
		byMethod[rec.Method]++
		if rec.CreatedAt.After(since) {
			recent++
		}
	}

	return &models.Stats{
		TotalReports:   len(r.records),
		UniqueURLs:     len(urls),
		ReportsLast24h: recent,
		ByMethod:       byMethod,
		LastUpdated:    time.Now(),
	}, nil
}

// Close is a no-op for the in-memory archive.
func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}
