// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/internal/fetch"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// serperBase is the metadata-rich web search endpoint. Declared as a var so
// tests can substitute an httptest server.
var serperBase = "https://google.serper.dev/search"

// domainDenylist removes low-value hosts: general encyclopedias, Q&A
// sites, code hosts, and generic blogging platforms rarely carry citable
// debate evidence.
var domainDenylist = []string{
	"wikipedia.org",
	"wikihow.com",
	"quora.com",
	"reddit.com",
	"stackexchange.com",
	"stackoverflow.com",
	"github.com",
	"medium.com",
	"blogspot.com",
	"wordpress.com",
	"pinterest.com",
	"facebook.com",
	"youtube.com",
}

const (
	pdfExclusion         = "-filetype:pdf"
	defaultSerperResults = 10
	defaultMinContentLen = 100
)

// SerperProvider implements the single-query metadata-rich strategy: one
// call over the raw argument with fixed exclusion filters, a domain
// denylist, mandatory full-text fetch, and author/date lifted from the
// result's structured attributes.
type SerperProvider struct {
	Client        *http.Client
	APIKey        string
	Fetcher       *fetch.Fetcher
	MaxResults    int
	MinContentLen int
	Logger        *zap.Logger
}

// Name returns the provider identifier.
func (p *SerperProvider) Name() string { return "serper" }

// Search issues the filtered query, retrying once with the plain argument
// when the filtered call fails, then fetches content for each surviving
// hit and drops anything below the minimum-length threshold.
func (p *SerperProvider) Search(ctx context.Context, argument string) ([]types.Article, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hits, err := p.searchOne(ctx, argument+" "+pdfExclusion)
	if err != nil {
		// One retry with the filter terms dropped; some query shapes trip
		// the provider's parser.
		logger.Warn("filtered web query failed, retrying simplified", zap.Error(err))
		hits, err = p.searchOne(ctx, argument)
		if err != nil {
			return nil, fmt.Errorf("web search: %w", err)
		}
	}

	minLen := p.MinContentLen
	if minLen <= 0 {
		minLen = defaultMinContentLen
	}

	candidates := make([]types.Article, 0, len(hits))
	for _, hit := range hits {
		if hit.URL == "" || denied(hit.URL) {
			continue
		}
		candidates = append(candidates, hit)
	}

	// This strategy requires real article text: hits whose fetch comes up
	// short are dropped rather than kept as bare snippets.
	contents := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)
	for i := range candidates {
		g.Go(func() error {
			if p.Fetcher != nil {
				contents[i] = p.Fetcher.Fetch(gctx, candidates[i].URL)
			}
			return nil
		})
	}
	g.Wait()

	var articles []types.Article
	for i, a := range candidates {
		if len(contents[i]) < minLen {
			logger.Debug("dropping thin result", zap.String("url", a.URL), zap.Int("content_len", len(contents[i])))
			continue
		}
		a.Content = contents[i]
		articles = append(articles, a)
	}
	return articles, nil
}

// searchOne issues one provider call and normalizes the organic results.
func (p *SerperProvider) searchOne(ctx context.Context, q string) ([]types.Article, error) {
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSerperResults
	}

	payload, err := json.Marshal(serperRequest{Query: q, Num: maxResults})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.APIKey)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 1)
	if err != nil {
		return nil, fmt.Errorf("web API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web API returned HTTP %d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing web API response: %w", err)
	}

	var articles []types.Article
	for _, hit := range sr.Organic {
		a := types.Article{
			Title:   hit.Title,
			URL:     hit.Link,
			Content: hit.Snippet,
			Source:  hostOf(hit.Link),
		}
		// Prefer the most specific metadata source: explicit attributes
		// first, then the loose date field.
		if author, ok := hit.Attributes["author"]; ok {
			a.Author = author
		}
		if date, ok := hit.Attributes["date"]; ok {
			a.PublishYear = yearOf(date)
		}
		if a.PublishYear == 0 {
			a.PublishYear = yearOf(hit.Date)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// denied reports whether the URL's host matches the denylist.
func denied(rawURL string) bool {
	host := hostOf(rawURL)
	for _, d := range domainDenylist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Serper API JSON structures.
type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []serperHit `json:"organic"`
}

type serperHit struct {
	Title      string            `json:"title"`
	Link       string            `json:"link"`
	Snippet    string            `json:"snippet"`
	Date       string            `json:"date"`
	Attributes map[string]string `json:"attributes"`
}
