// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query expands one argument into complementary search queries.
// Providers rank very differently, so recall and precision are traded off
// across several query shapes rather than tuned within one.
package query

import (
	"strings"

	"github.com/pdiddy/evidence-engine/internal/keyterms"
)

const (
	maxQuotedTerms = 4
	maxPlainTerms  = 4
	maxBiasedTerms = 3
	academicSuffix = "research study"
)

// Build returns the ordered query list for an argument:
//
//  1. the argument verbatim (broad recall);
//  2. up to four key terms individually quoted (exact-phrase precision),
//     when at least two terms exist;
//  3. up to four key terms unquoted (plain keyword search), when at least
//     three terms exist;
//  4. up to three key terms with an academic-bias suffix, when at least
//     two terms exist.
//
// The argument is assumed non-empty; empty input is rejected upstream
// before query construction.
func Build(argument string) []string {
	terms := keyterms.Extract(argument)
	queries := []string{argument}

	if len(terms) >= 2 {
		n := min(len(terms), maxQuotedTerms)
		quoted := make([]string, n)
		for i, term := range terms[:n] {
			quoted[i] = `"` + term + `"`
		}
		queries = append(queries, strings.Join(quoted, " "))
	}

	if len(terms) >= 3 {
		n := min(len(terms), maxPlainTerms)
		queries = append(queries, strings.Join(terms[:n], " "))
	}

	if len(terms) >= 2 {
		n := min(len(terms), maxBiasedTerms)
		queries = append(queries, strings.Join(terms[:n], " ")+" "+academicSuffix)
	}

	return queries
}
