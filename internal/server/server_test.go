package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/internal/cut"
	"github.com/pdiddy/evidence-engine/internal/pipeline"
	"github.com/pdiddy/evidence-engine/internal/provider"
	"github.com/pdiddy/evidence-engine/internal/rank"
	"github.com/pdiddy/evidence-engine/internal/recommend"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

type stubProvider struct {
	articles []types.Article
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Search(context.Context, string) ([]types.Article, error) {
	return s.articles, nil
}

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Enabled() bool { return true }

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.reply, nil
}

func newTestServer(t *testing.T, providers ...provider.Provider) *httptest.Server {
	t.Helper()
	engine := pipeline.NewWithProviders(providers, rank.New(nil, 0, nil), recommend.New(nil, nil), nil)
	ts := httptest.NewServer(New(engine, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubProvider{articles: []types.Article{
		{Title: "A", URL: "https://x.example/a", Content: "text"},
	}})

	resp := postJSON(t, ts.URL+"/api/search", `{"query": "carbon tax works"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr types.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	require.Len(t, sr.Results, 1)
	assert.Equal(t, "https://x.example/a", sr.Results[0].URL)
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	ts := newTestServer(t, &stubProvider{})

	for _, body := range []string{`{"query": ""}`, `{"query": "   "}`, `{}`} {
		resp := postJSON(t, ts.URL+"/api/search", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
	}
}

func TestSearchEndpointNotConfigured(t *testing.T) {
	ts := newTestServer(t) // no providers

	resp := postJSON(t, ts.URL+"/api/search", `{"query": "valid"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var er struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.NotEmpty(t, er.Error)
}

func TestSearchEndpointBadJSON(t *testing.T) {
	ts := newTestServer(t, &stubProvider{})

	resp := postJSON(t, ts.URL+"/api/search", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCutEndpoint(t *testing.T) {
	completer := &stubCompleter{reply: `{"cutContent": "<mark>key line</mark>", "tag": "Proves the point."}`}
	engine := pipeline.NewWithProviders(nil, rank.New(nil, 0, nil), recommend.New(nil, nil), nil).
		WithCutter(cut.New(completer, nil), nil)
	ts := httptest.NewServer(New(engine, nil).Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/cut", `{"content": "key line and more", "argument": "the point"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cr types.CutResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cr))
	assert.Contains(t, cr.CutContent, "<mark>")
	assert.Equal(t, "Proves the point.", cr.Tag)
}

func TestCutEndpointNotConfigured(t *testing.T) {
	ts := newTestServer(t, &stubProvider{}) // engine without a cutter oracle

	resp := postJSON(t, ts.URL+"/api/cut", `{"content": "text", "argument": "a"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCutEndpointMissingFields(t *testing.T) {
	completer := &stubCompleter{reply: `{"cutContent": "x", "tag": "t"}`}
	engine := pipeline.NewWithProviders(nil, rank.New(nil, 0, nil), recommend.New(nil, nil), nil).
		WithCutter(cut.New(completer, nil), nil)
	ts := httptest.NewServer(New(engine, nil).Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/cut", `{"argument": "a"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubProvider{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubProvider{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
