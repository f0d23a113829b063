// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "context"

// Attempt is the outcome of running one fetch strategy against a URL.
// A failed strategy records its error here instead of propagating it; the
// chain in Fetcher decides what runs next.
type Attempt struct {
	Strategy string
	Content  string
	Err      error
}

// Satisfies reports whether the attempt produced usable content: no error
// and at least minLen characters of text.
func (a Attempt) Satisfies(minLen int) bool {
	return a.Err == nil && len(a.Content) >= minLen
}

// Strategy obtains article text for a URL in one particular way. Strategies
// never panic and report failure through Attempt.Err.
type Strategy interface {
	Name() string
	Run(ctx context.Context, rawURL string) Attempt
}

// first runs strategies in order and returns the first satisfying attempt,
// or a zero-content attempt when every strategy fails. observe, when
// non-nil, sees every attempt as it completes.
func first(ctx context.Context, strategies []Strategy, rawURL string, minLen int, observe func(Attempt)) Attempt {
	var last Attempt
	for _, s := range strategies {
		last = s.Run(ctx, rawURL)
		if observe != nil {
			observe(last)
		}
		if last.Satisfies(minLen) {
			return last
		}
	}
	last.Content = ""
	return last
}
