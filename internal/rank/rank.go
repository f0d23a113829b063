// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders candidate articles by relevance to the argument and
// truncates to the response cap.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/internal/keyterms"
	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	// MaxResults caps the ranked list returned to callers.
	MaxResults = 10

	// neutralScore is assigned when model scoring fails for an article, so
	// one flaky call cannot sink an otherwise good result.
	neutralScore = 5.0

	defaultScoreConcurrency = 4
)

const scoreSystemPrompt = "You rate how useful a news article is as debate evidence " +
	"for a given argument. Reply with a single integer from 1 (irrelevant) to 10 " +
	"(directly supports or refutes the argument with specific facts). Reply with " +
	"the integer only, no other text."

// Ranker scores and orders articles. When Oracle is nil or unconfigured it
// falls back to deterministic keyword scoring.
type Ranker struct {
	Oracle      oracle.Completer
	Concurrency int
	// Limit caps the ranked list below MaxResults when positive; values
	// above MaxResults are clamped to it.
	Limit  int
	Logger *zap.Logger
}

// New returns a Ranker over the given oracle client, which may be nil.
func New(client oracle.Completer, concurrency int, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{Oracle: client, Concurrency: concurrency, Logger: logger}
}

// Rank returns the articles ordered by descending relevance to the argument,
// truncated to the limit (MaxResults, or Limit when lower). The sort is
// stable: equally scored articles keep their provider order. The input slice
// is not modified.
func (r *Ranker) Rank(ctx context.Context, argument string, articles []types.Article) []types.Article {
	if len(articles) == 0 {
		return nil
	}

	scores := r.score(ctx, argument, articles)

	ranked := make([]types.Article, len(articles))
	copy(ranked, articles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].URL] > scores[ranked[j].URL]
	})

	limit := MaxResults
	if r.Limit > 0 && r.Limit < MaxResults {
		limit = r.Limit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// score computes one relevance score per article, keyed by URL.
func (r *Ranker) score(ctx context.Context, argument string, articles []types.Article) map[string]float64 {
	if r.Oracle != nil && r.Oracle.Enabled() {
		return r.modelScores(ctx, argument, articles)
	}
	terms := keyterms.Extract(argument)
	scores := make(map[string]float64, len(articles))
	for _, a := range articles {
		scores[a.URL] = keywordScore(terms, a)
	}
	return scores
}

// keywordScore counts how many of the argument's key terms appear in the
// article title or content, case-insensitive. Each term counts at most
// once, so the score is the number of distinct terms matched.
func keywordScore(terms []string, a types.Article) float64 {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)
	var score float64
	for _, term := range terms {
		if strings.Contains(title, term) || strings.Contains(content, term) {
			score++
		}
	}
	return score
}

// modelScores asks the model to rate each article on a 1-10 scale, bounded
// concurrency. Any failure for an article degrades to the neutral score.
func (r *Ranker) modelScores(ctx context.Context, argument string, articles []types.Article) map[string]float64 {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaultScoreConcurrency
	}

	results := make([]float64, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range articles {
		g.Go(func() error {
			results[i] = r.modelScoreOne(gctx, argument, articles[i])
			return nil
		})
	}
	g.Wait()

	scores := make(map[string]float64, len(articles))
	for i, a := range articles {
		scores[a.URL] = results[i]
	}
	return scores
}

func (r *Ranker) modelScoreOne(ctx context.Context, argument string, a types.Article) float64 {
	prompt := fmt.Sprintf("Argument: %s\n\nArticle title: %s\nArticle text:\n%s",
		argument, a.Title, clip(a.Content, 2000))

	reply, err := r.Oracle.Complete(ctx, scoreSystemPrompt, prompt)
	if err != nil {
		r.Logger.Warn("model scoring failed", zap.String("url", a.URL), zap.Error(err))
		return neutralScore
	}

	score, err := parseScore(reply)
	if err != nil {
		r.Logger.Warn("unparseable model score", zap.String("url", a.URL), zap.String("reply", clip(reply, 80)))
		return neutralScore
	}
	return score
}

// parseScore extracts a 1-10 integer from the model reply, tolerating
// surrounding whitespace or a trailing period.
func parseScore(reply string) (float64, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimSuffix(s, ".")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing score %q: %w", reply, err)
	}
	if n < 1 || n > 10 {
		return 0, fmt.Errorf("score %d out of range", n)
	}
	return float64(n), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
