// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/internal/fetch"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/query"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// newsAPIBase is the keyword news search endpoint. Declared as a var so
// tests can substitute an httptest server.
var newsAPIBase = "https://newsapi.org/v2/everything"

const defaultPerQuery = 5

// backfillConcurrency bounds parallel content fetches per provider call.
const backfillConcurrency = 4

// NewsAPIProvider implements the multi-query keyword strategy: the argument
// is expanded into several complementary queries, each issued separately,
// and article content is seeded from the provider's description field then
// backfilled with fetched full text.
type NewsAPIProvider struct {
	Client    *http.Client
	APIKey    string
	Fetcher   *fetch.Fetcher
	PerQuery  int
	UserAgent string
	Logger    *zap.Logger
}

// Name returns the provider identifier.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

// Search expands the argument into queries, issues one call per query, and
// returns normalized deduplicated articles. A failed query contributes
// nothing; only a failure of every query surfaces as an error.
func (p *NewsAPIProvider) Search(ctx context.Context, argument string) ([]types.Article, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	queries := query.Build(argument)

	seen := make(map[string]bool)
	var articles []types.Article
	failures := 0

	for _, q := range queries {
		hits, err := p.searchOne(ctx, q)
		if err != nil {
			logger.Warn("news query failed", zap.String("query", q), zap.Error(err))
			failures++
			continue
		}
		for _, a := range hits {
			if a.URL == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			articles = append(articles, a)
		}
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d queries failed", len(queries))
	}

	p.backfill(ctx, articles)
	return articles, nil
}

// searchOne issues a single keyword query.
func (p *NewsAPIProvider) searchOne(ctx context.Context, q string) ([]types.Article, error) {
	perQuery := p.PerQuery
	if perQuery <= 0 {
		perQuery = defaultPerQuery
	}

	params := url.Values{
		"q":        {q},
		"pageSize": {fmt.Sprintf("%d", perQuery)},
		"language": {"en"},
		"sortBy":   {"relevancy"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 1)
	if err != nil {
		return nil, fmt.Errorf("news API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API returned HTTP %d", resp.StatusCode)
	}

	var nr newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("parsing news API response: %w", err)
	}
	if nr.Status != "ok" {
		return nil, fmt.Errorf("news API status %q: %s", nr.Status, nr.Message)
	}

	var articles []types.Article
	for _, hit := range nr.Articles {
		seed := hit.Content
		if len(hit.Description) > len(seed) {
			seed = hit.Description
		}
		source := hit.Source.Name
		if source == "" {
			source = p.Name()
		}
		articles = append(articles, types.Article{
			Title:       hit.Title,
			URL:         hit.URL,
			Content:     seed,
			Author:      hit.Author,
			PublishYear: yearOf(hit.PublishedAt),
			Source:      source,
		})
	}
	return articles, nil
}

// backfill upgrades snippet seeds to fetched full text in place, bounded
// concurrency, completion order irrelevant because each goroutine owns one
// slice element.
func (p *NewsAPIProvider) backfill(ctx context.Context, articles []types.Article) {
	if p.Fetcher == nil {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)
	for i := range articles {
		g.Go(func() error {
			fetched := p.Fetcher.Fetch(ctx, articles[i].URL)
			articles[i].Content = betterContent(articles[i].Content, fetched)
			return nil
		})
	}
	g.Wait()
}

// News API JSON structures.
type newsAPIResponse struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	Articles []newsAPIHit `json:"articles"`
}

type newsAPIHit struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	Name string `json:"name"`
}
