// Package llm forwards finished reports to a chat-completion API for prose
// annotation. It plays no part in report computation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/models"
)

// ErrNotConfigured means no API credential is set.
var ErrNotConfigured = errors.New("llm: no API key configured")

// systemPrompt pins the annotator's job: prose only, numbers untouched.
const systemPrompt = "You are a web sustainability analyst. You receive a JSON sustainability " +
	"report for a web page. Validate that the scores are within 0-100 and the emission figures " +
	"are plausible, then write four short prose sections: strengths, risks, recommendations, " +
	"and a summary. Never alter, recompute, or contradict the numbers in the report."

// Client calls the configured chat-completion endpoint.
type Client struct {
	client *http.Client
	config config.LLMConfig
	logger *slog.Logger
}

// NewClient creates an annotation client.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}
}

// Annotate sends the report JSON for annotation and returns the raw
// completion response body.
func (c *Client) Annotate(ctx context.Context, report []byte) ([]byte, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	payload := struct {
		Model    string               `json:"model"`
		Messages []models.ChatMessage `json:"messages"`
	}{
		Model: c.config.Model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(report)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.Info("Requesting report annotation", "model", c.config.Model)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm: HTTP %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
