// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-harvest/internal/sites"
	"github.com/pdiddy/paper-harvest/internal/textutil"
)

// ArticleLinks returns the deduplicated, lexically sorted article URLs
// reachable from a listing document. Hrefs resolve against base with
// fragments stripped; the family decides what counts as an article link.
func ArticleLinks(doc *goquery.Document, base *url.URL, family sites.Family) []string {
	set := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u := resolveHref(base, href)
		if u == nil {
			return
		}
		if family.IsArticleLink(u) {
			set[u.String()] = true
		}
	})

	links := make([]string, 0, len(set))
	for link := range set {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// NextPageURL returns the next listing page, or "" when the document links
// no further page. Candidates in order, first usable href wins: a
// link[rel=next] element, an a[rel=next] anchor, then any anchor whose
// visible text reads "next" or "next page".
func NextPageURL(doc *goquery.Document, base *url.URL) string {
	if href, ok := doc.Find(`link[rel="next"]`).First().Attr("href"); ok {
		if u := resolveHref(base, href); u != nil {
			return u.String()
		}
	}
	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok {
		if u := resolveHref(base, href); u != nil {
			return u.String()
		}
	}

	var next string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(textutil.Clean(s.Text()))
		if text != "next" && text != "next page" {
			return true
		}
		href, _ := s.Attr("href")
		if u := resolveHref(base, href); u != nil {
			next = u.String()
			return false
		}
		return true
	})
	return next
}

// resolveHref resolves href against base and strips any fragment. Returns
// nil for empty or unparseable hrefs.
func resolveHref(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil
	}
	u.Fragment = ""
	return u
}
