// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine
// pipeline: normalized articles, pipeline responses, evidence cards, and
// per-stage configuration.
package types

// Article is a normalized candidate source produced by a search provider.
// URL is the dedup key across providers and queries; Content is never null,
// the empty string is the "nothing fetched" value and callers fall back to
// whatever snippet the provider supplied.
type Article struct {
	// Title is the article headline as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical article location. Unique across a final result set.
	URL string `json:"url" yaml:"url"`

	// Content is the article body text: full text when a fetch succeeded,
	// the provider snippet otherwise, never null.
	Content string `json:"content" yaml:"content"`

	// Author is the byline when a provider or metadata block supplied one.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishYear is the four-digit publication year, 0 when unknown.
	// Malformed provider dates degrade to 0, never to an error.
	PublishYear int `json:"publishDate,omitempty" yaml:"publish_year,omitempty"`

	// Source names the publication when the provider supplied one, else
	// the provider itself (e.g. "Reuters", "serper").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Recommendation singles out the strongest article in a result set.
// Index is zero-based into SearchResponse.Results and always refers to a
// real element; selectors that cannot produce a valid index return nil
// instead.
type Recommendation struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// SearchResponse is the sole externally visible artifact of one pipeline
// run. Results holds at most MaxResults deduplicated articles in relevance
// order. RecommendedArticle is advisory and may be nil.
type SearchResponse struct {
	Results            []Article       `json:"results"`
	RecommendedArticle *Recommendation `json:"recommendedArticle"`
}
