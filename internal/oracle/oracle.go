// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle is the client for the external text-generation judgment
// service. The oracle is untrusted and fallible: callers validate every
// reply on ingress and carry a documented fallback, so this package only
// transports prompts and raw completions.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// messagesBase is the oracle messages endpoint. Declared as a var so tests
// can substitute an httptest server.
var messagesBase = "https://api.anthropic.com/v1/messages"

const (
	apiVersion       = "2023-06-01"
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
)

// Completer is the judgment capability consumed by the ranking,
// recommendation, and cutting stages. *Client implements it; tests
// substitute stubs.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client calls the oracle messages API with bearer-style key authentication.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
}

// New builds an oracle client from configuration. The client is usable even
// without an API key; Enabled reports whether calls can actually be made.
func New(cfg types.OracleConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		HTTPClient: httputil.NewClient(cfg.HTTPConfig),
		APIKey:     cfg.APIKey,
		Model:      model,
	}
}

// Enabled reports whether the oracle is configured for real calls.
func (c *Client) Enabled() bool {
	return c != nil && c.APIKey != ""
}

// Complete sends one system+user prompt pair and returns the text of the
// first completion block. Any transport failure, non-2xx status, or
// empty completion is an error; callers translate errors into their own
// fallback behavior.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("oracle not configured")
	}

	body := messagesRequest{
		Model:     c.Model,
		MaxTokens: defaultMaxTokens,
		System:    system,
		Messages: []message{
			{Role: "user", Content: user},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesBase, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return "", fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle returned HTTP %d", resp.StatusCode)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("parsing oracle response: %w", err)
	}

	for _, block := range mr.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("oracle response contained no text")
}

// Oracle messages API JSON structures.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
