// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider adapts external search backends into a common article
// shape. Each provider is a Strategy-pattern implementation: the pipeline
// fans out across whichever providers are configured and treats any single
// provider failure as a skipped source, never as a pipeline error.
package provider

import (
	"context"
	"strconv"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Provider searches a single external backend and returns normalized
// articles. URL is the only required field of each article; Content must be
// non-nil (empty string when nothing was obtainable).
type Provider interface {
	Name() string
	Search(ctx context.Context, argument string) ([]types.Article, error)
}

// dateLayouts covers the formats the backends actually emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
}

// yearOf reduces a provider date string to a four-digit year. Malformed
// dates degrade to 0, never to an error.
func yearOf(date string) int {
	if date == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Year()
		}
	}
	// Last resort: a leading literal year.
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil && y >= 1000 && y <= 9999 {
			return y
		}
	}
	return 0
}

// betterContent applies the content-backfill rule: the fetched full text
// replaces the provider seed only when it is longer than half the seed,
// so a good snippet is never traded for fetch noise.
func betterContent(seed, fetched string) string {
	if fetched != "" && len(fetched) > len(seed)/2 {
		return fetched
	}
	return seed
}
