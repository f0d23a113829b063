// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// extractorBase is the structured content-extraction service endpoint.
// Declared as a var so tests can substitute an httptest server.
var extractorBase = "https://api.firecrawl.dev/v1/scrape"

// extractorStrategy asks the external scraping service for main-content
// text. The service renders dynamic pages, so it is tried first, but it is
// also the least reliable collaborator: paywalls, anti-bot challenges, and
// plain downtime all surface as failed attempts, never as pipeline errors.
type extractorStrategy struct {
	client     *http.Client
	apiKey     string
	renderWait time.Duration
	minLen     int
}

func (s *extractorStrategy) Name() string { return "extractor" }

func (s *extractorStrategy) Run(ctx context.Context, rawURL string) Attempt {
	a := Attempt{Strategy: s.Name()}

	body := extractorRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		WaitFor:         int(s.renderWait.Milliseconds()),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		a.Err = fmt.Errorf("encoding extractor request: %w", err)
		return a
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, extractorBase, bytes.NewReader(payload))
	if err != nil {
		a.Err = fmt.Errorf("creating extractor request: %w", err)
		return a
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		a.Err = fmt.Errorf("extractor request: %w", err)
		return a
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.Err = fmt.Errorf("extractor returned HTTP %d", resp.StatusCode)
		return a
	}

	var er extractorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		a.Err = fmt.Errorf("parsing extractor response: %w", err)
		return a
	}
	if !er.Success {
		a.Err = fmt.Errorf("extractor reported failure")
		return a
	}

	text := collapseWhitespace(er.Data.Markdown)
	if len(text) < s.minLen {
		a.Err = fmt.Errorf("extractor returned %d chars, below threshold %d", len(text), s.minLen)
		return a
	}

	a.Content = text
	return a
}

// Extraction service JSON structures.
type extractorRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor,omitempty"`
}

type extractorResponse struct {
	Success bool          `json:"success"`
	Data    extractorData `json:"data"`
}

type extractorData struct {
	Markdown string `json:"markdown"`
}
