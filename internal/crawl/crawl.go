// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl walks paginated listing pages, fetches the article pages
// they link to, and persists extracted metadata. Listing pages advance
// strictly in sequence; the articles of one page fetch concurrently and are
// all joined before the next page is resolved.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-harvest/internal/dispatch"
	"github.com/pdiddy/paper-harvest/internal/extract"
	"github.com/pdiddy/paper-harvest/internal/httputil"
	"github.com/pdiddy/paper-harvest/internal/sites"
	"github.com/pdiddy/paper-harvest/internal/store"
	"github.com/pdiddy/paper-harvest/internal/textutil"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Summary holds counts from one crawl traversal.
type Summary struct {
	Pages      int
	Discovered int
	Dispatched int
	Persisted  int
	Skipped    int
	Failed     int
}

// HasFailures reports whether any article unit failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) add(o Summary) {
	s.Pages += o.Pages
	s.Discovered += o.Discovered
	s.Dispatched += o.Dispatched
	s.Persisted += o.Persisted
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// Crawler drives one listing traversal. The store, client, and pacer may be
// shared across crawlers; traversal state lives in Run.
type Crawler struct {
	store  *store.Store
	client *httputil.Client
	pacer  *dispatch.Pacer
	cfg    types.CrawlConfig
	log    zerolog.Logger
}

// New builds a Crawler for one search URL.
func New(s *store.Store, client *httputil.Client, pacer *dispatch.Pacer, cfg types.CrawlConfig, log zerolog.Logger) *Crawler {
	return &Crawler{
		store:  s,
		client: client,
		pacer:  pacer,
		cfg:    cfg,
		log:    log,
	}
}

// Run walks listing pages from the configured search URL until a terminal
// condition: no next page, a pagination cycle, the page bound, or the
// article quota. A listing fetch failure aborts the traversal and returns
// the progress made so far; article failures only count against the unit.
func (c *Crawler) Run(ctx context.Context, w io.Writer) (Summary, error) {
	var summary Summary

	seedURL, err := url.Parse(c.cfg.SearchURL)
	if err != nil {
		return summary, fmt.Errorf("parsing search URL %q: %w", c.cfg.SearchURL, err)
	}
	family := sites.Detect(seedURL.Host)
	defaults := sites.ListingDefaults(seedURL)

	seen := make(map[string]bool)
	pageURL := c.cfg.SearchURL
	pageCount := 0
	var mu sync.Mutex

	for pageURL != "" {
		if seen[pageURL] {
			c.log.Info().Str("page", pageURL).Msg("pagination cycle detected, stopping")
			break
		}
		seen[pageURL] = true

		pageCount++
		if c.cfg.MaxPages > 0 && pageCount > c.cfg.MaxPages {
			break
		}
		if c.cfg.LimitArticles > 0 && summary.Persisted >= c.cfg.LimitArticles {
			break
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return summary, fmt.Errorf("waiting for rate limit: %w", err)
		}
		doc, err := c.client.GetDocument(ctx, pageURL)
		if err != nil {
			return summary, fmt.Errorf("fetching listing page: %w", err)
		}
		summary.Pages++

		base, err := url.Parse(pageURL)
		if err != nil {
			return summary, fmt.Errorf("parsing listing page URL %q: %w", pageURL, err)
		}

		links := ArticleLinks(doc, base, family)
		summary.Discovered += len(links)

		if c.cfg.LimitArticles > 0 {
			if remain := c.cfg.LimitArticles - summary.Persisted; len(links) > remain {
				links = links[:remain]
			}
		}

		// Resume checks run before any unit starts, so an error here
		// aborts with no units in flight.
		pageSkipped := 0
		var toFetch []string
		for _, link := range links {
			if c.cfg.Resume {
				ok, err := c.store.HasAbstractEN(ctx, link)
				if err != nil {
					return summary, fmt.Errorf("checking resume state for %s: %w", link, err)
				}
				if ok {
					summary.Skipped++
					pageSkipped++
					continue
				}
			}
			toFetch = append(toFetch, link)
		}

		batch := dispatch.NewBatch(c.cfg.Concurrency)
		for _, link := range toFetch {
			summary.Dispatched++
			batch.Go(ctx, func(ctx context.Context) error {
				if err := c.processArticle(ctx, link, defaults); err != nil {
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					c.log.Warn().Err(err).Str("url", link).Msg("article unit failed")
					return err
				}
				mu.Lock()
				summary.Persisted++
				mu.Unlock()
				return nil
			})
		}
		batch.Wait()

		c.log.Debug().
			Int("page", pageCount).
			Int("links", len(links)).
			Int("persisted", summary.Persisted).
			Int("skipped", pageSkipped).
			Msg("listing page processed")
		fmt.Fprintf(w, "page %d: %d links, %d persisted, %d skipped\n",
			pageCount, len(links), summary.Persisted, pageSkipped)

		pageURL = NextPageURL(doc, base)
	}

	return summary, nil
}

// processArticle fetches one article page, extracts its fields with the
// strategy of the article's own host, and upserts the record.
func (c *Crawler) processArticle(ctx context.Context, articleURL string, defaults sites.Defaults) error {
	u, err := url.Parse(articleURL)
	if err != nil {
		return fmt.Errorf("parsing article URL: %w", err)
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}
	doc, err := c.client.GetDocument(ctx, articleURL)
	if err != nil {
		return err
	}

	fields := extract.Extract(doc, sites.Detect(u.Host), defaults)

	article := &types.Article{
		URL:           articleURL,
		SearchURL:     c.cfg.SearchURL,
		Title:         fields.Title,
		Journal:       fields.Journal,
		PublishedDate: fields.Published,
		AbstractEN:    fields.Abstract,
		CrawledAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if article.HasAbstract() {
		article.AbstractENHash = textutil.Hash(article.AbstractEN)
	}
	return c.store.UpsertArticle(ctx, article)
}
