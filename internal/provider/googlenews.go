// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/internal/fetch"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// googleNewsBase is the Google News RSS search endpoint. Declared as a var
// so tests can substitute an httptest server.
var googleNewsBase = "https://news.google.com/rss/search"

// GoogleNewsProvider searches the public Google News RSS feed. It needs no
// credential, so it keeps the tool usable when no API-key provider is
// configured; results carry snippet seeds that are backfilled like the
// keyword strategy's.
type GoogleNewsProvider struct {
	Client     *http.Client
	Fetcher    *fetch.Fetcher
	MaxResults int
	Logger     *zap.Logger
}

// Name returns the provider identifier.
func (p *GoogleNewsProvider) Name() string { return "googlenews" }

// Search queries the RSS feed over the raw argument and normalizes items.
// Google wraps article links in its own redirect URLs; the publisher link
// inside the item description is preferred when present.
func (p *GoogleNewsProvider) Search(ctx context.Context, argument string) ([]types.Article, error) {
	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSerperResults
	}

	params := url.Values{
		"q":    {argument},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}

	parser := gofeed.NewParser()
	parser.UserAgent = httputil.BrowserUserAgent
	// gofeed's default client has no timeout; always feed it a bounded one.
	parser.Client = p.Client
	if parser.Client == nil {
		parser.Client = httputil.NewClient(types.HTTPConfig{})
	}

	feed, err := parser.ParseURLWithContext(googleNewsBase+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var articles []types.Article
	for _, item := range feed.Items {
		if len(articles) >= maxResults {
			break
		}
		link := publisherLink(item)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		year := 0
		if item.PublishedParsed != nil {
			year = item.PublishedParsed.Year()
		}

		source := hostOf(link)
		if source == "" {
			source = p.Name()
		}

		articles = append(articles, types.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         link,
			Content:     snippetOf(item.Description),
			PublishYear: year,
			Source:      source,
		})
	}

	p.backfill(ctx, articles)
	return articles, nil
}

func (p *GoogleNewsProvider) backfill(ctx context.Context, articles []types.Article) {
	if p.Fetcher == nil {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)
	for i := range articles {
		g.Go(func() error {
			fetched := p.Fetcher.Fetch(ctx, articles[i].URL)
			articles[i].Content = betterContent(articles[i].Content, fetched)
			return nil
		})
	}
	g.Wait()
}

// publisherLink extracts the real article URL for a feed item: the first
// non-Google anchor inside the HTML description, else the item link.
func publisherLink(item *gofeed.Item) string {
	if item.Description != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Description))
		if err == nil {
			var found string
			doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				href, _ := s.Attr("href")
				if isPublisherURL(href) {
					found = href
					return false
				}
				return true
			})
			if found != "" {
				return found
			}
		}
	}
	link := strings.TrimSpace(item.Link)
	if link != "" {
		return link
	}
	return ""
}

// snippetOf strips description HTML down to plain text.
func snippetOf(description string) string {
	if description == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// isPublisherURL reports whether the URL points at an external publisher
// rather than a Google redirect.
func isPublisherURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host != "news.google.com" && host != "google.com" && !strings.HasSuffix(host, ".google.com")
}
