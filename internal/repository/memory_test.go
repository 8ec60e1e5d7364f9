package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ecograde/ecograde/internal/models"
)

func record(url, requestID, method string) *models.ReportRecord {
	return &models.ReportRecord{
		RequestID: requestID,
		URL:       url,
		Method:    method,
		Report: models.SustainabilityReport{
			URL:            url,
			AnalysisMethod: method,
			AnalyzedAt:     time.Now(),
		},
	}
}

func TestMemorySaveAssignsIdentity(t *testing.T) {
	repo := NewMemoryRepository(10)
	rec := record("https://example.com", "req-1", "basic")

	if err := repo.SaveReport(context.Background(), rec); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.ID.IsZero() {
		t.Error("Expected an assigned document ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected an assigned creation time")
	}
}

func TestMemoryGetReport(t *testing.T) {
	repo := NewMemoryRepository(10)
	rec := record("https://example.com", "req-1", "basic")
	if err := repo.SaveReport(context.Background(), rec); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	byID, err := repo.GetReport(context.Background(), rec.ID.Hex())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if byID == nil || byID.URL != "https://example.com" {
		t.Errorf("Expected the record by document ID, got %+v", byID)
	}

	byRequest, err := repo.GetReport(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if byRequest == nil || byRequest.RequestID != "req-1" {
		t.Errorf("Expected the record by request ID, got %+v", byRequest)
	}

	missing, err := repo.GetReport(context.Background(), "req-none")
	if err != nil {
		t.Fatalf("Expected no error for a missing record, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for a missing record, got %+v", missing)
	}
}

func TestMemoryRecentNewestFirst(t *testing.T) {
	repo := NewMemoryRepository(10)
	for i := 0; i < 3; i++ {
		rec := record(fmt.Sprintf("https://example.com/%d", i), fmt.Sprintf("req-%d", i), "basic")
		if err := repo.SaveReport(context.Background(), rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	recent, err := repo.GetRecentReports(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	if recent[0].URL != "https://example.com/2" || recent[1].URL != "https://example.com/1" {
		t.Errorf("Expected newest first, got %s then %s", recent[0].URL, recent[1].URL)
	}
}

func TestMemoryRecentNonPositiveLimit(t *testing.T) {
	repo := NewMemoryRepository(10)
	rec := record("https://example.com", "req-1", "basic")
	if err := repo.SaveReport(context.Background(), rec); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, limit := range []int{0, -5} {
		recent, err := repo.GetRecentReports(context.Background(), limit)
		if err != nil {
			t.Fatalf("Expected no error for limit %d, got %v", limit, err)
		}
		if len(recent) != 0 {
			t.Errorf("Expected no records for limit %d, got %d", limit, len(recent))
		}
	}
}

func TestMemoryLimitDropsOldest(t *testing.T) {
	repo := NewMemoryRepository(3)
	for i := 0; i < 5; i++ {
		rec := record(fmt.Sprintf("https://example.com/%d", i), fmt.Sprintf("req-%d", i), "basic")
		if err := repo.SaveReport(context.Background(), rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	all, err := repo.GetRecentReports(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected the limit to hold 3 records, got %d", len(all))
	}
	if all[len(all)-1].URL != "https://example.com/2" {
		t.Errorf("Expected the two oldest records dropped, oldest kept is %s", all[len(all)-1].URL)
	}

	dropped, err := repo.GetReport(context.Background(), "req-0")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if dropped != nil {
		t.Error("Expected the oldest record to be gone")
	}
}

func TestMemoryStats(t *testing.T) {
	repo := NewMemoryRepository(10)
	seed := []struct {
		url    string
		method string
	}{
		{"https://example.com", "basic"},
		{"https://example.com", "pagespeed"},
		{"https://other.example.org", "simulated"},
	}
	for i, s := range seed {
		rec := record(s.url, fmt.Sprintf("req-%d", i), s.method)
		if err := repo.SaveReport(context.Background(), rec); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	stats, err := repo.GetStats(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.TotalReports != 3 {
		t.Errorf("Expected 3 reports, got %d", stats.TotalReports)
	}
	if stats.UniqueURLs != 2 {
		t.Errorf("Expected 2 unique URLs, got %d", stats.UniqueURLs)
	}
	if stats.ReportsLast24h != 3 {
		t.Errorf("Expected 3 recent reports, got %d", stats.ReportsLast24h)
	}
	if stats.ByMethod["basic"] != 1 || stats.ByMethod["pagespeed"] != 1 || stats.ByMethod["simulated"] != 1 {
		t.Errorf("Expected one report per method, got %v", stats.ByMethod)
	}
}
