// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CutRequest carries one article into the card-cutting transform.
// Content and Argument are required; the rest feeds citation assembly.
type CutRequest struct {
	Content     string `json:"content" yaml:"content"`
	Title       string `json:"title" yaml:"title"`
	Argument    string `json:"argument" yaml:"argument"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	PublishYear int    `json:"publishDate,omitempty" yaml:"publish_year,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// CutResult is a finished evidence card: the article body with emphasis
// markup, a one-line tag, and an assembled citation string.
type CutResult struct {
	CutContent string `json:"cutContent" yaml:"cut_content"`
	Tag        string `json:"tag" yaml:"tag"`
	Citation   string `json:"citation" yaml:"citation"`
}

// Card is a stored evidence card.
type Card struct {
	ID          string    `json:"id" yaml:"id"`
	Argument    string    `json:"argument" yaml:"argument"`
	Tag         string    `json:"tag" yaml:"tag"`
	Citation    string    `json:"citation" yaml:"citation"`
	CutContent  string    `json:"cut_content" yaml:"cut_content"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	PublishYear int       `json:"publish_year,omitempty" yaml:"publish_year,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
