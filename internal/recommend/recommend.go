// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend picks the single best article out of a ranked list,
// with a reason a debater can act on. The recommendation is strictly
// best-effort: every failure mode degrades to no recommendation, never to
// an error.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const systemPrompt = "You select the single strongest piece of debate evidence from a " +
	"numbered list of articles. Judge by how directly the article supports or refutes " +
	"the argument, the specificity of its facts, and the credibility of its source. " +
	"Reply with JSON only, no prose, in exactly this shape: " +
	`{"recommendedIndex": <1-based article number>, "reason": "<one sentence>"}`

// replySchema validates the model reply on ingress. The model is untrusted;
// anything that does not match is discarded.
var replySchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["recommendedIndex", "reason"],
	"properties": {
		"recommendedIndex": {"type": "integer", "minimum": 1},
		"reason": {"type": "string", "minLength": 1}
	}
}`)

const maxContentExcerpt = 500

// Recommender asks the oracle to pick the strongest article.
type Recommender struct {
	Oracle oracle.Completer
	Logger *zap.Logger
}

// New returns a Recommender over the given oracle client, which may be nil.
func New(client oracle.Completer, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{Oracle: client, Logger: logger}
}

type modelReply struct {
	RecommendedIndex int    `json:"recommendedIndex"`
	Reason           string `json:"reason"`
}

// Pick returns a recommendation for the given ranked articles, or nil when
// the oracle is unavailable, its reply is malformed, or the index it names
// is out of range. The returned index is zero-based into articles.
func (r *Recommender) Pick(ctx context.Context, argument string, articles []types.Article) *types.Recommendation {
	if len(articles) == 0 || r.Oracle == nil || !r.Oracle.Enabled() {
		return nil
	}

	reply, err := r.Oracle.Complete(ctx, systemPrompt, buildPrompt(argument, articles))
	if err != nil {
		r.Logger.Warn("recommendation call failed", zap.Error(err))
		return nil
	}

	parsed, err := parseReply(reply)
	if err != nil {
		r.Logger.Warn("discarding malformed recommendation", zap.Error(err))
		return nil
	}

	// The model speaks 1-based; the response is 0-based.
	index := parsed.RecommendedIndex - 1
	if index < 0 || index >= len(articles) {
		r.Logger.Warn("recommendation index out of range",
			zap.Int("recommendedIndex", parsed.RecommendedIndex),
			zap.Int("articles", len(articles)))
		return nil
	}

	return &types.Recommendation{
		Index:  index,
		Reason: strings.TrimSpace(parsed.Reason),
	}
}

// buildPrompt numbers the articles 1-based with title, source, and a content
// excerpt.
func buildPrompt(argument string, articles []types.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Argument: %s\n\nArticles:\n", argument)
	for i, a := range articles {
		excerpt := a.Content
		if len(excerpt) > maxContentExcerpt {
			excerpt = excerpt[:maxContentExcerpt]
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, a.Title, a.Source, excerpt)
	}
	return b.String()
}

// parseReply validates the raw model reply against the schema and decodes
// it. Models sometimes wrap JSON in a code fence; that is stripped first.
func parseReply(reply string) (*modelReply, error) {
	raw := strings.TrimSpace(reply)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	result, err := gojsonschema.Validate(replySchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating reply: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("reply does not match schema: %v", result.Errors())
	}

	var parsed modelReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return &parsed, nil
}
