// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// FormatTable writes the response as a human-readable table to w. The
// recommended article, when present, is flagged in the first column and
// its reason printed after the table.
func FormatTable(resp *types.SearchResponse, w io.Writer) {
	if resp == nil || len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	recommended := -1
	if resp.RecommendedArticle != nil {
		recommended = resp.RecommendedArticle.Index
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n",
		"Rank", "Title", "Source", "Year", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, a := range resp.Results {
		title := a.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		source := a.Source
		if len(source) > 20 {
			source = source[:17] + "..."
		}
		year := ""
		if a.PublishYear > 0 {
			year = fmt.Sprintf("%d", a.PublishYear)
		}
		rank := fmt.Sprintf("%d", i+1)
		if i == recommended {
			rank += "*"
		}
		fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n",
			rank, title, source, year, a.URL)
	}

	fmt.Fprintf(w, "\n%d results\n", len(resp.Results))
	if recommended >= 0 {
		fmt.Fprintf(w, "Recommended: #%d - %s\n", recommended+1, resp.RecommendedArticle.Reason)
	}
}

// FormatJSON writes the response as indented JSON to w.
func FormatJSON(resp *types.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
