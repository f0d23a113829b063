// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articleSelectors lists container patterns tried in order when isolating
// the main article body. Class-substring selectors cover the common CMS
// naming conventions; the document body is the last resort.
var articleSelectors = []string{
	"article",
	"[itemprop='articleBody']",
	"[class*='article-body']",
	"[class*='article-content']",
	"[class*='story-body']",
	"[class*='post-content']",
	"[class*='entry-content']",
	"main",
}

// boilerplateTerms flag navigation and consent chrome that survives tag
// stripping. Lines containing one of these are dropped when short enough
// to plausibly be chrome rather than prose.
var boilerplateTerms = []string{
	"cookie",
	"privacy policy",
	"subscribe",
	"newsletter",
	"sign up",
	"advertisement",
	"all rights reserved",
}

const boilerplateLineMax = 120

// extractArticleText parses HTML and returns the heuristically chosen main
// content as collapsed plain text. It prefers the densest article-like
// container and falls back to the whole body.
func extractArticleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, iframe").Remove()

	sel := doc.Find("body")
	best := 0
	for _, pattern := range articleSelectors {
		candidate := doc.Find(pattern).First()
		if candidate.Length() == 0 {
			continue
		}
		length := len(strings.TrimSpace(candidate.Text()))
		if length > best {
			sel = candidate
			best = length
		}
	}

	return cleanText(sel.Text()), nil
}

// cleanText collapses whitespace and drops short boilerplate lines.
func cleanText(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = collapseWhitespace(line)
		if line == "" {
			continue
		}
		if len(line) <= boilerplateLineMax && containsBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

func containsBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, term := range boilerplateTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// collapseWhitespace squeezes all runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
