// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keyterms reduces a free-text argument to its salient search terms.
// The same term set feeds query construction and the keyword-overlap
// fallback scorer, so extraction is deterministic: first-seen order, no
// stemming, no duplicates.
package keyterms

import "strings"

// stopWords is the fixed exclusion set: articles, auxiliary verbs, pronouns,
// conjunctions, and a handful of high-frequency prepositions. Deliberately
// small; domain words like "requires" or "immediate" stay in.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "had": true, "have": true, "this": true, "that": true,
	"with": true, "they": true, "them": true, "their": true, "then": true,
	"than": true, "will": true, "would": true, "could": true, "should": true,
	"been": true, "being": true, "were": true, "does": true, "did": true,
	"from": true, "into": true, "your": true, "what": true, "when": true,
	"which": true, "while": true, "where": true, "there": true, "these": true,
	"those": true, "because": true, "about": true, "also": true, "more": true,
	"most": true, "some": true, "such": true, "only": true, "other": true,
	"its": true, "it's": true, "may": true, "must": true, "shall": true,
}

const minTermLen = 3

// Extract returns the argument's key terms: lowercase alphanumeric tokens of
// length >= 3, stop words removed, duplicates collapsed, first-seen order
// preserved. Non-alphanumeric characters act as separators.
func Extract(argument string) []string {
	lower := strings.ToLower(argument)

	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	seen := make(map[string]bool, len(tokens))
	var terms []string
	for _, tok := range tokens {
		if len(tok) < minTermLen || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}
