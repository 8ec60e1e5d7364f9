package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecograde/ecograde/internal/llm"
	"github.com/ecograde/ecograde/internal/middleware"
	"github.com/ecograde/ecograde/internal/models"
	"github.com/ecograde/ecograde/internal/report"
)

// reportHandler handles requests to generate a sustainability report
func (s *Server) reportHandler(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	pageURL := strings.TrimSpace(req.Payload.URL)
	if err := validateURL(pageURL); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("Generating report", "url", pageURL, "request_id", middleware.GetRequestID(c))

	start := time.Now()
	rep, err := s.generator.Generate(c.Request.Context(), pageURL)
	if err != nil {
		if errors.Is(err, report.ErrTimeout) {
			s.metrics.ReportGenerated("none", "timeout", time.Since(start).Seconds())
			c.JSON(http.StatusRequestTimeout, models.ErrorResponse{Error: err.Error()})
			return
		}
		s.metrics.ReportGenerated("none", "failed", time.Since(start).Seconds())
		s.logger.Error("Failed to generate report", "url", pageURL, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	rep.RequestID = middleware.GetRequestID(c)
	s.metrics.ReportGenerated(rep.AnalysisMethod, "ok", time.Since(start).Seconds())

	// Archive the report
	record := &models.ReportRecord{
		RequestID: rep.RequestID,
		URL:       rep.URL,
		Method:    rep.AnalysisMethod,
		Report:    *rep,
	}
	if err := s.repo.SaveReport(c.Request.Context(), record); err != nil {
		s.logger.Error("Failed to archive report", "error", err)
		// Continue anyway, just log the error
	}

	reportJSON, err := json.Marshal(rep)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to encode report"})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Choices: []models.ChatChoice{
			{Message: models.ChatMessage{Role: "assistant", Content: string(reportJSON)}},
		},
	})
}

// batchReportHandler handles requests to analyze several URLs at once
func (s *Server) batchReportHandler(c *gin.Context) {
	var req models.BatchReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	urls := make([]string, 0, len(req.Payload.URLs))
	for _, raw := range req.Payload.URLs {
		u := strings.TrimSpace(raw)
		if err := validateURL(u); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("%q: %s", raw, err)})
			return
		}
		urls = append(urls, u)
	}

	result, err := s.generator.GenerateBatch(c.Request.Context(), urls)
	if err != nil {
		if errors.Is(err, report.ErrBatchEmpty) || errors.Is(err, report.ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("Failed to generate batch", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// annotateHandler forwards a precomputed report for prose annotation
func (s *Server) annotateHandler(c *gin.Context) {
	var req models.AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Payload) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "payload is required"})
		return
	}

	reportJSON, err := json.Marshal(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "payload is not valid JSON"})
		return
	}

	raw, err := s.annotator.Annotate(c.Request.Context(), reportJSON)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("Annotation failed", "error", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// getRecentReportsHandler handles requests to list archived reports
func (s *Server) getRecentReportsHandler(c *gin.Context) {
	// Default limit to 10
	limit := 10

	// Try to get limit from query parameter
	if limitParam := c.Query("limit"); limitParam != "" {
		if n, err := fmt.Sscanf(limitParam, "%d", &limit); err != nil || n != 1 {
			// Invalid limit, use default
			limit = 10
		}
	}

	// Keep the limit in a sane window; zero or negative values would
	// otherwise mean "nothing" on one backend and "everything" on the other.
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	ctx := c.Request.Context()
	results, err := s.repo.GetRecentReports(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get recent reports", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get recent reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"reports": results,
	})
}

// getReportHandler handles requests to get an archived report by ID
func (s *Server) getReportHandler(c *gin.Context) {
	id := c.Param("id")

	record, err := s.repo.GetReport(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("Failed to get report", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get report"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// getStatsHandler handles requests for archive statistics
func (s *Server) getStatsHandler(c *gin.Context) {
	stats, err := s.repo.GetStats(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return errors.New("url is not valid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("url must use http or https")
	}
	if u.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}
