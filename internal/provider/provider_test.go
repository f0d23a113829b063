package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/evidence-engine/internal/fetch"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 // nanosecond; keep 429 retries instant in tests
}

// --- shared helpers ---

func TestYearOf(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2024-03-15T10:30:00Z", 2024},
		{"2023-01-02", 2023},
		{"Mon, 02 Jan 2006 15:04:05 -0700", 2006},
		{"Jan 2, 2019", 2019},
		{"2021", 2021},
		{"last week", 0},
		{"", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := yearOf(tt.input); got != tt.want {
				t.Errorf("yearOf(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestBetterContent(t *testing.T) {
	seed := strings.Repeat("s", 100)
	tests := []struct {
		name    string
		fetched string
		want    string
	}{
		{"longer than half replaces", strings.Repeat("f", 51), strings.Repeat("f", 51)},
		{"half or less keeps seed", strings.Repeat("f", 50), seed},
		{"empty keeps seed", "", seed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := betterContent(seed, tt.fetched); got != tt.want {
				t.Errorf("betterContent length = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestDenied(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://en.wikipedia.org/wiki/Carbon_tax", true},
		{"https://www.quora.com/question", true},
		{"https://github.com/some/repo", true},
		{"https://www.reuters.com/business/article", false},
		{"https://apnews.com/story", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := denied(tt.url); got != tt.want {
				t.Errorf("denied(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// --- NewsAPI provider ---

const sampleNewsJSON = `{
  "status": "ok",
  "articles": [
    {
      "source": {"name": "Reuters"},
      "author": "Jane Smith",
      "title": "Carbon tax gains support",
      "description": "A majority of economists now back carbon pricing as the main abatement tool.",
      "url": "https://example.com/a",
      "publishedAt": "2024-03-15T10:30:00Z",
      "content": "short"
    },
    {
      "source": {"name": ""},
      "title": "Second story",
      "description": "Another relevant article body.",
      "url": "https://example.com/b",
      "publishedAt": "bad date"
    }
  ]
}`

func TestNewsAPISearch(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("X-Api-Key") != "nk_test" {
			t.Errorf("X-Api-Key = %q", r.Header.Get("X-Api-Key"))
		}
		if r.URL.Query().Get("pageSize") != "5" {
			t.Errorf("pageSize = %q", r.URL.Query().Get("pageSize"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleNewsJSON)
	}))
	defer ts.Close()

	old := newsAPIBase
	newsAPIBase = ts.URL
	defer func() { newsAPIBase = old }()

	p := &NewsAPIProvider{Client: ts.Client(), APIKey: "nk_test"}
	articles, err := p.Search(context.Background(), "carbon taxes reduce emissions")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Four queries issued, duplicate URLs collapsed to two articles.
	if atomic.LoadInt32(&calls) != 4 {
		t.Errorf("provider calls = %d, want 4 (one per query)", calls)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}

	a := articles[0]
	if a.URL != "https://example.com/a" {
		t.Errorf("URL = %q", a.URL)
	}
	if a.Author != "Jane Smith" {
		t.Errorf("Author = %q", a.Author)
	}
	if a.PublishYear != 2024 {
		t.Errorf("PublishYear = %d, want 2024", a.PublishYear)
	}
	if a.Source != "Reuters" {
		t.Errorf("Source = %q, want publication name", a.Source)
	}
	// Description is longer than content, so it seeds Content.
	if !strings.Contains(a.Content, "majority of economists") {
		t.Errorf("Content = %q, want description seed", a.Content)
	}

	// Malformed date degrades to zero, empty source falls back to provider name.
	b := articles[1]
	if b.PublishYear != 0 {
		t.Errorf("PublishYear = %d, want 0 for malformed date", b.PublishYear)
	}
	if b.Source != "newsapi" {
		t.Errorf("Source = %q, want provider fallback", b.Source)
	}
}

func TestNewsAPIRateLimitedQuerySkipped(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		// First query (and its one retry) rate-limited; the rest succeed.
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleNewsJSON)
	}))
	defer ts.Close()

	old := newsAPIBase
	newsAPIBase = ts.URL
	defer func() { newsAPIBase = old }()

	p := &NewsAPIProvider{Client: ts.Client(), APIKey: "nk_test"}
	articles, err := p.Search(context.Background(), "carbon taxes reduce emissions")
	if err != nil {
		t.Fatalf("Search should absorb a single failed query: %v", err)
	}
	if len(articles) != 2 {
		t.Errorf("len(articles) = %d, want 2 from remaining queries", len(articles))
	}
}

func TestNewsAPIAllQueriesFailed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := newsAPIBase
	newsAPIBase = ts.URL
	defer func() { newsAPIBase = old }()

	p := &NewsAPIProvider{Client: ts.Client(), APIKey: "bad"}
	_, err := p.Search(context.Background(), "carbon taxes reduce emissions")
	if err == nil {
		t.Fatal("Search should error when every query fails")
	}
}

// --- Serper provider ---

func serperJSON(link string) string {
	return fmt.Sprintf(`{
  "organic": [
    {
      "title": "State carbon program analysis",
      "link": %q,
      "snippet": "snippet text",
      "date": "Mar 15, 2024",
      "attributes": {"author": "John Doe", "date": "2024-03-15"}
    },
    {
      "title": "Wikipedia overview",
      "link": "https://en.wikipedia.org/wiki/Carbon_tax",
      "snippet": "encyclopedia text"
    }
  ]
}`, link)
}

func TestSerperSearch(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body><article>%s</article></body></html>",
			strings.Repeat("Full article text about carbon programs. ", 10))
	}))
	defer article.Close()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "srp_test" {
			t.Errorf("X-API-KEY = %q", r.Header.Get("X-API-KEY"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, serperJSON(article.URL))
	}))
	defer ts.Close()

	old := serperBase
	serperBase = ts.URL
	defer func() { serperBase = old }()

	p := &SerperProvider{
		Client:  ts.Client(),
		APIKey:  "srp_test",
		Fetcher: fetch.New(types.FetchConfig{}, nil),
	}
	articles, err := p.Search(context.Background(), "state carbon programs work")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The wikipedia hit is denylisted; only the fetchable article survives.
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1: %+v", len(articles), articles)
	}
	a := articles[0]
	if a.Author != "John Doe" {
		t.Errorf("Author = %q, want attributes author", a.Author)
	}
	if a.PublishYear != 2024 {
		t.Errorf("PublishYear = %d, want 2024", a.PublishYear)
	}
	if !strings.Contains(a.Content, "Full article text") {
		t.Errorf("Content = %q, want fetched text", a.Content)
	}
}

func TestSerperDropsUnfetchable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, serperJSON("https://unreachable.invalid/article"))
	}))
	defer ts.Close()

	old := serperBase
	serperBase = ts.URL
	defer func() { serperBase = old }()

	// No fetcher: every hit's content stays empty and is dropped.
	p := &SerperProvider{Client: ts.Client(), APIKey: "srp_test"}
	articles, err := p.Search(context.Background(), "state carbon programs work")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("len(articles) = %d, want 0 when nothing is fetchable", len(articles))
	}
}

func TestSerperRetriesSimplifiedQuery(t *testing.T) {
	var calls int32
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var body serperRequest
		if err := jsonDecode(r, &body); err == nil {
			queries = append(queries, body.Query)
		}
		if n == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"organic":[]}`)
	}))
	defer ts.Close()

	old := serperBase
	serperBase = ts.URL
	defer func() { serperBase = old }()

	p := &SerperProvider{Client: ts.Client(), APIKey: "srp_test"}
	_, err := p.Search(context.Background(), "carbon programs")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("queries captured = %d, want 2", len(queries))
	}
	if !strings.Contains(queries[0], pdfExclusion) {
		t.Errorf("first query %q should carry the filter", queries[0])
	}
	if strings.Contains(queries[1], pdfExclusion) {
		t.Errorf("retry query %q should drop the filter", queries[1])
	}
}

// --- Google News provider ---

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>results</title>
<item>
  <title>City council passes transit levy</title>
  <link>https://news.google.com/rss/articles/abc123</link>
  <pubDate>Fri, 15 Mar 2024 10:30:00 GMT</pubDate>
  <description>&lt;a href="https://example.com/levy-story"&gt;City council passes transit levy&lt;/a&gt; Local outlet coverage of the vote.</description>
</item>
<item>
  <title>Duplicate of first</title>
  <link>https://news.google.com/rss/articles/abc123dup</link>
  <pubDate>Fri, 15 Mar 2024 11:00:00 GMT</pubDate>
  <description>&lt;a href="https://example.com/levy-story"&gt;same link&lt;/a&gt;</description>
</item>
</channel></rss>`

func TestGoogleNewsSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "transit levy" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	old := googleNewsBase
	googleNewsBase = ts.URL
	defer func() { googleNewsBase = old }()

	p := &GoogleNewsProvider{}
	articles, err := p.Search(context.Background(), "transit levy")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1 after publisher-URL dedup", len(articles))
	}
	a := articles[0]
	if a.URL != "https://example.com/levy-story" {
		t.Errorf("URL = %q, want unwrapped publisher link", a.URL)
	}
	if a.PublishYear != 2024 {
		t.Errorf("PublishYear = %d, want 2024", a.PublishYear)
	}
	if a.Source != "example.com" {
		t.Errorf("Source = %q", a.Source)
	}
	if strings.Contains(a.Content, "<a") {
		t.Errorf("Content = %q, want HTML stripped", a.Content)
	}
}

func TestGoogleNewsUsesConfiguredClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	old := googleNewsBase
	googleNewsBase = ts.URL
	defer func() { googleNewsBase = old }()

	// The RSS call must go through the injected client so its timeout bounds
	// the request.
	p := &GoogleNewsProvider{Client: &http.Client{Timeout: 20 * time.Millisecond}}
	_, err := p.Search(context.Background(), "transit levy")
	if err == nil {
		t.Fatal("Search should time out via the provider's client")
	}
}

func jsonDecode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
