// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the evidence search: provider fan-out,
// URL-level deduplication, relevance ranking, and the best-article
// recommendation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/evidence-engine/internal/cut"
	"github.com/pdiddy/evidence-engine/internal/fetch"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/internal/metrics"
	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/internal/provider"
	"github.com/pdiddy/evidence-engine/internal/rank"
	"github.com/pdiddy/evidence-engine/internal/recommend"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Engine runs the full search pipeline. Build one per process; it is safe
// for concurrent use.
type Engine struct {
	providers   []provider.Provider
	ranker      *rank.Ranker
	recommender *recommend.Recommender
	cutter      *cut.Cutter
	fetcher     *fetch.Fetcher
	logger      *zap.Logger
}

// New assembles an Engine from configuration: one provider per configured
// credential (plus the keyless RSS provider when enabled), a shared content
// fetcher, and the oracle-backed ranking and recommendation stages.
func New(cfg types.PipelineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	fetcher := fetch.New(cfg.Fetch, logger.Named("fetch"))
	oracleClient := oracle.New(cfg.Oracle)
	searchClient := httputil.NewClient(cfg.Search.HTTPConfig)

	var providers []provider.Provider
	if cfg.Search.NewsAPIKey != "" {
		providers = append(providers, &provider.NewsAPIProvider{
			Client:    searchClient,
			APIKey:    cfg.Search.NewsAPIKey,
			Fetcher:   fetcher,
			PerQuery:  cfg.Search.ResultsPerQuery,
			UserAgent: cfg.Search.UserAgent,
			Logger:    logger.Named("newsapi"),
		})
	}
	if cfg.Search.SerperAPIKey != "" {
		providers = append(providers, &provider.SerperProvider{
			Client:        searchClient,
			APIKey:        cfg.Search.SerperAPIKey,
			Fetcher:       fetcher,
			MaxResults:    cfg.Search.MaxResults,
			MinContentLen: cfg.Fetch.MinContentLen,
			Logger:        logger.Named("serper"),
		})
	}
	if cfg.Search.EnableGoogleNews {
		providers = append(providers, &provider.GoogleNewsProvider{
			Client:     searchClient,
			Fetcher:    fetcher,
			MaxResults: cfg.Search.MaxResults,
			Logger:     logger.Named("googlenews"),
		})
	}

	ranker := rank.New(oracleClient, cfg.Oracle.MaxConcurrent, logger.Named("rank"))
	ranker.Limit = cfg.Search.MaxResults

	return &Engine{
		providers:   providers,
		ranker:      ranker,
		recommender: recommend.New(oracleClient, logger.Named("recommend")),
		cutter:      cut.New(oracleClient, logger.Named("cut")),
		fetcher:     fetcher,
		logger:      logger,
	}
}

// NewWithProviders assembles an Engine over explicit stages. Tests and
// embedders use it to bypass configuration-driven construction.
func NewWithProviders(providers []provider.Provider, ranker *rank.Ranker, recommender *recommend.Recommender, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		providers:   providers,
		ranker:      ranker,
		recommender: recommender,
		logger:      logger,
	}
}

// WithCutter attaches the cutting stage and its fetcher. Returns e for
// chaining after NewWithProviders.
func (e *Engine) WithCutter(cutter *cut.Cutter, fetcher *fetch.Fetcher) *Engine {
	e.cutter = cutter
	e.fetcher = fetcher
	return e
}

// Configured reports whether at least one search provider is available.
func (e *Engine) Configured() bool {
	return len(e.providers) > 0
}

// Search runs the full pipeline for one argument. Zero results is a valid
// success; provider failures are absorbed. Results never exceed the rank
// cap, every URL is unique, and a non-nil recommendation always indexes
// into Results.
func (e *Engine) Search(ctx context.Context, argument string) (*types.SearchResponse, error) {
	argument = strings.TrimSpace(argument)
	if argument == "" {
		metrics.SearchesTotal.WithLabelValues("client_error").Inc()
		return nil, ErrEmptyArgument
	}
	if !e.Configured() {
		metrics.SearchesTotal.WithLabelValues("config_error").Inc()
		return nil, ErrNotConfigured
	}

	start := time.Now()
	logger := e.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("argument", argument),
	)
	logger.Info("starting evidence search", zap.Int("providers", len(e.providers)))

	candidates := e.collect(ctx, logger, argument)
	ranked := e.ranker.Rank(ctx, argument, candidates)
	recommendation := e.recommender.Pick(ctx, argument, ranked)

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	status := "ok"
	if len(ranked) == 0 {
		status = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(status).Inc()

	logger.Info("evidence search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(ranked)),
		zap.Bool("recommended", recommendation != nil),
		zap.Duration("elapsed", time.Since(start)))

	if ranked == nil {
		ranked = []types.Article{}
	}
	return &types.SearchResponse{
		Results:            ranked,
		RecommendedArticle: recommendation,
	}, nil
}

// Cut produces an evidence card for the request. When Content is empty and
// a URL is given, the article is fetched first; a fetch that comes up empty
// is a client error because there is nothing to cut.
func (e *Engine) Cut(ctx context.Context, req types.CutRequest) (*types.CutResult, error) {
	if e.cutter == nil {
		return nil, cut.ErrNotConfigured
	}
	if strings.TrimSpace(req.Content) == "" && req.URL != "" && e.fetcher != nil {
		req.Content = e.fetcher.Fetch(ctx, req.URL)
		if req.Content == "" {
			return nil, fmt.Errorf("no article text could be fetched from %s", req.URL)
		}
	}
	return e.cutter.Cut(ctx, req)
}

type providerResult struct {
	index    int
	articles []types.Article
}

// collect fans out across providers and merges results in provider order,
// first writer wins per URL. A failed provider contributes nothing.
func (e *Engine) collect(ctx context.Context, logger *zap.Logger, argument string) []types.Article {
	results := make(chan providerResult, len(e.providers))

	for i, p := range e.providers {
		go func() {
			articles, err := p.Search(ctx, argument)
			if err != nil {
				logger.Warn("provider failed, skipping",
					zap.String("provider", p.Name()),
					zap.Error(err))
				metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
				results <- providerResult{index: i}
				return
			}
			logger.Debug("provider returned",
				zap.String("provider", p.Name()),
				zap.Int("articles", len(articles)))
			results <- providerResult{index: i, articles: articles}
		}()
	}

	byProvider := make([][]types.Article, len(e.providers))
	for range e.providers {
		r := <-results
		byProvider[r.index] = r.articles
	}

	seen := make(map[string]bool)
	var merged []types.Article
	for _, articles := range byProvider {
		for _, a := range articles {
			if a.URL == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			merged = append(merged, a)
		}
	}
	return merged
}
