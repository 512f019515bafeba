// Package languagetool is a client for the LanguageTool HTTP API.
package languagetool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prepscore/internal/domain"
	"github.com/kailas-cloud/prepscore/internal/metrics"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client checks text against a LanguageTool server.
type Client struct {
	baseURL  string
	language string
	http     *http.Client
	logger   *zap.Logger
}

// Config holds the LanguageTool endpoint settings.
type Config struct {
	BaseURL    string
	Language   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a LanguageTool client.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		http:     hc,
		logger:   cfg.Logger,
	}
}

type checkResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Offset  int    `json:"offset"`
		Length  int    `json:"length"`
		Rule    struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check submits text and returns the number of flagged issues.
func (c *Client) Check(ctx context.Context, text string) (int, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GrammarRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return 0, fmt.Errorf("grammar check: %w: %w", err, domain.ErrGrammarServiceError)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GrammarRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("grammar check status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrGrammarServiceError)
	}

	var parsed checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.GrammarRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return 0, fmt.Errorf("decode grammar response: %w: %w", err, domain.ErrGrammarServiceError)
	}
	duration := time.Since(start)
	metrics.GrammarRequestDuration.WithLabelValues("success").Observe(duration.Seconds())

	c.logger.Debug("Grammar check completed",
		zap.Int("text_length", len(text)),
		zap.Int("matches", len(parsed.Matches)),
		zap.Duration("duration", duration),
	)
	return len(parsed.Matches), nil
}

// HealthCheck verifies the server answers its languages endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/languages", nil)
	if err != nil {
		return fmt.Errorf("build languages request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("languages status %d: %w", resp.StatusCode, domain.ErrGrammarServiceError)
	}
	return nil
}
