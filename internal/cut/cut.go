// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cut turns a fetched article into an evidence card: the body with
// emphasis markup on the lines that carry the argument, a one-line tag, and
// an assembled citation.
package cut

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const systemPrompt = "You cut debate evidence. Given an argument and an article, " +
	"reply with JSON only: {\"cutContent\": \"<the full article text with <mark> tags " +
	"around the sentences that most directly support or refute the argument>\", " +
	"\"tag\": \"<one declarative sentence stating what the card proves>\"}. " +
	"Never rewrite, reorder, or omit article text; only add <mark> and </mark> tags."

var replySchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["cutContent", "tag"],
	"properties": {
		"cutContent": {"type": "string", "minLength": 1},
		"tag": {"type": "string", "minLength": 1}
	}
}`)

const unattributed = "n.a."

// ErrNotConfigured reports that no oracle is available. Unlike ranking and
// recommendation, cutting has no local fallback transform.
var ErrNotConfigured = errors.New("card cutting requires a configured oracle")

// Cutter produces evidence cards. The oracle supplies markup and tag; when
// it fails the card falls back to unhighlighted content with a tag derived
// from the argument.
type Cutter struct {
	Oracle oracle.Completer
	Logger *zap.Logger
}

// New returns a Cutter over the given oracle client, which may be nil.
func New(client oracle.Completer, logger *zap.Logger) *Cutter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cutter{Oracle: client, Logger: logger}
}

type modelReply struct {
	CutContent string `json:"cutContent"`
	Tag        string `json:"tag"`
}

// Cut produces a card for the request. Content and Argument are required;
// everything else only feeds the citation. Oracle failure degrades to an
// unhighlighted card, never to an error.
func (c *Cutter) Cut(ctx context.Context, req types.CutRequest) (*types.CutResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("cut: content must not be empty")
	}
	if strings.TrimSpace(req.Argument) == "" {
		return nil, fmt.Errorf("cut: argument must not be empty")
	}

	if c.Oracle == nil || !c.Oracle.Enabled() {
		return nil, ErrNotConfigured
	}

	// The transient-failure fallback: the card survives without markup.
	result := &types.CutResult{
		CutContent: req.Content,
		Tag:        fallbackTag(req.Argument),
		Citation:   Citation(req),
	}

	reply, err := c.Oracle.Complete(ctx, systemPrompt, buildPrompt(req))
	if err != nil {
		c.Logger.Warn("cut call failed, returning unhighlighted card", zap.Error(err))
		return result, nil
	}

	parsed, err := parseReply(reply)
	if err != nil {
		c.Logger.Warn("discarding malformed cut reply", zap.Error(err))
		return result, nil
	}

	result.CutContent = parsed.CutContent
	result.Tag = strings.TrimSpace(parsed.Tag)
	return result, nil
}

// Citation assembles the card citation: `LastName Year - Source, "Title," URL`.
// Missing author, year, source, or title degrade to "n.a."; a missing URL is
// simply omitted.
func Citation(req types.CutRequest) string {
	lastName := unattributed
	if fields := strings.Fields(req.Author); len(fields) > 0 {
		lastName = fields[len(fields)-1]
	}

	year := unattributed
	if req.PublishYear > 0 {
		year = fmt.Sprintf("%d", req.PublishYear)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = unattributed
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = unattributed
	}

	citation := fmt.Sprintf(`%s %s - %s, "%s,"`, lastName, year, source, title)
	if req.URL != "" {
		citation += " " + req.URL
	}
	return citation
}

// fallbackTag derives a tag from the argument when the oracle cannot supply
// one.
func fallbackTag(argument string) string {
	tag := strings.TrimSpace(argument)
	if !strings.HasSuffix(tag, ".") {
		tag += "."
	}
	return "Evidence on: " + tag
}

func buildPrompt(req types.CutRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Argument: %s\n\n", req.Argument)
	if req.Title != "" {
		fmt.Fprintf(&b, "Article title: %s\n", req.Title)
	}
	fmt.Fprintf(&b, "Article text:\n%s", req.Content)
	return b.String()
}

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
