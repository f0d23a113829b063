// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch obtains article body text for a URL. Strategies are tried
// in order — structured extraction service first, then a direct HTTP GET
// with heuristic HTML extraction — and the first attempt meeting the
// minimum-length threshold wins. Fetch never fails: total failure is the
// empty string, and callers keep whatever snippet the provider supplied.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/metrics"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	defaultMinContentLen = 100
	defaultMaxContentLen = 10000
	defaultRenderWait    = 3 * time.Second
	truncationMarker     = "... [truncated]"
)

// Fetcher runs the content strategy chain for one URL at a time. Safe for
// concurrent use.
type Fetcher struct {
	strategies []Strategy
	minLen     int
	maxLen     int
	logger     *zap.Logger
}

// New builds a Fetcher from configuration. The extraction-service strategy
// is included only when an API key is configured; the direct-HTTP fallback
// is always present.
func New(cfg types.FetchConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	minLen := cfg.MinContentLen
	if minLen <= 0 {
		minLen = defaultMinContentLen
	}
	maxLen := cfg.MaxContentLen
	if maxLen <= 0 {
		maxLen = defaultMaxContentLen
	}
	renderWait := cfg.RenderWait
	if renderWait <= 0 {
		renderWait = defaultRenderWait
	}

	client := httputil.NewClient(cfg.HTTPConfig)

	var strategies []Strategy
	if cfg.ExtractorAPIKey != "" {
		strategies = append(strategies, &extractorStrategy{
			client:     client,
			apiKey:     cfg.ExtractorAPIKey,
			renderWait: renderWait,
			minLen:     minLen,
		})
	}
	strategies = append(strategies, &directStrategy{client: client})

	return &Fetcher{
		strategies: strategies,
		minLen:     minLen,
		maxLen:     maxLen,
		logger:     logger,
	}
}

// Fetch returns the article text for rawURL, or "" when nothing usable
// could be obtained. It never returns an error: a fetch miss means the
// caller falls back to the provider snippet, not that the pipeline stops.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	if !validURL(rawURL) {
		f.logger.Debug("skipping malformed url", zap.String("url", rawURL))
		return ""
	}

	attempt := first(ctx, f.strategies, rawURL, f.minLen, func(a Attempt) {
		outcome := "ok"
		if !a.Satisfies(f.minLen) {
			outcome = "miss"
			f.logger.Debug("fetch attempt failed",
				zap.String("strategy", a.Strategy),
				zap.String("url", rawURL),
				zap.Error(a.Err))
		}
		metrics.FetchAttempts.WithLabelValues(a.Strategy, outcome).Inc()
	})

	return truncate(attempt.Content, f.maxLen)
}

// validURL reports whether rawURL is a well-formed absolute http(s) URL.
func validURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + truncationMarker
}

// directStrategy fetches the page itself and extracts text heuristically.
// It trades precision for availability: no rendering, but no external
// dependency either.
type directStrategy struct {
	client *http.Client
}

func (s *directStrategy) Name() string { return "direct" }

func (s *directStrategy) Run(ctx context.Context, rawURL string) Attempt {
	a := Attempt{Strategy: s.Name()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		a.Err = fmt.Errorf("creating request: %w", err)
		return a
	}
	req.Header.Set("User-Agent", httputil.BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		a.Err = fmt.Errorf("request: %w", err)
		return a
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.Err = fmt.Errorf("HTTP %d", resp.StatusCode)
		return a
	}

	text, err := extractArticleText(resp.Body)
	if err != nil {
		a.Err = fmt.Errorf("parsing HTML: %w", err)
		return a
	}

	a.Content = text
	return a
}
