// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-harvest/internal/sites"
)

func parseListing(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestArticleLinks(t *testing.T) {
	base := mustParseURL(t, "https://www.nature.com/search?q=ai")

	tests := []struct {
		name   string
		html   string
		family sites.Family
		want   []string
	}{
		{
			name: "resolves and sorts relative links",
			html: `<body>
				<a href="/articles/s2-second">B</a>
				<a href="/articles/s1-first">A</a>
			</body>`,
			family: sites.Generic,
			want: []string{
				"https://www.nature.com/articles/s1-first",
				"https://www.nature.com/articles/s2-second",
			},
		},
		{
			name: "deduplicates repeated hrefs",
			html: `<body>
				<a href="/articles/one">title</a>
				<a href="/articles/one">image link</a>
			</body>`,
			family: sites.Generic,
			want:   []string{"https://www.nature.com/articles/one"},
		},
		{
			name: "strips fragments before deduplication",
			html: `<body>
				<a href="/articles/one#abstract">jump</a>
				<a href="/articles/one">plain</a>
			</body>`,
			family: sites.Generic,
			want:   []string{"https://www.nature.com/articles/one"},
		},
		{
			name: "ignores navigation links",
			html: `<body>
				<a href="/articles/keep">article</a>
				<a href="/subjects/physics">subject</a>
				<a href="https://example.com/about">offsite</a>
				<a href="">empty</a>
			</body>`,
			family: sites.Generic,
			want:   []string{"https://www.nature.com/articles/keep"},
		},
		{
			name: "conference family uses paper suffix",
			html: `<body>
				<a href="/content/CVPR2024/html/Doe_Paper_CVPR_2024_paper.html">paper</a>
				<a href="/content/CVPR2024/html/index.html">index</a>
				<a href="/articles/not-a-paper">generic path</a>
			</body>`,
			family: sites.Conference,
			want:   []string{"https://www.nature.com/content/CVPR2024/html/Doe_Paper_CVPR_2024_paper.html"},
		},
		{
			name:   "no anchors",
			html:   `<body><p>empty listing</p></body>`,
			family: sites.Generic,
			want:   nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseListing(t, tc.html)
			got := ArticleLinks(doc, base, tc.family)
			if len(got) != len(tc.want) {
				t.Fatalf("ArticleLinks() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("link[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNextPageURL(t *testing.T) {
	base := mustParseURL(t, "https://www.nature.com/search?q=ai&page=1")

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "link rel next wins over anchors",
			html: `<head><link rel="next" href="/search?q=ai&amp;page=2"></head>
				<body><a rel="next" href="/search?q=ai&amp;page=9">Next</a></body>`,
			want: "https://www.nature.com/search?q=ai&page=2",
		},
		{
			name: "anchor rel next",
			html: `<body><a rel="next" href="/search?q=ai&amp;page=2">More</a></body>`,
			want: "https://www.nature.com/search?q=ai&page=2",
		},
		{
			name: "anchor text next is case insensitive",
			html: `<body><a href="/search?q=ai&amp;page=2">NEXT</a></body>`,
			want: "https://www.nature.com/search?q=ai&page=2",
		},
		{
			name: "anchor text next page collapses whitespace",
			html: `<body><a href="/search?q=ai&amp;page=2"> Next
				page </a></body>`,
			want: "https://www.nature.com/search?q=ai&page=2",
		},
		{
			name: "unrelated anchor text is not pagination",
			html: `<body><a href="/search?q=ai&amp;page=2">Next steps in AI</a></body>`,
			want: "",
		},
		{
			name: "empty rel next falls through to text match",
			html: `<body>
				<a rel="next" href="">disabled</a>
				<a href="/search?q=ai&amp;page=2">Next</a>
			</body>`,
			want: "https://www.nature.com/search?q=ai&page=2",
		},
		{
			name: "absolute next link kept as is",
			html: `<body><a rel="next" href="https://www.nature.com/search?page=3">Next</a></body>`,
			want: "https://www.nature.com/search?page=3",
		},
		{
			name: "no pagination markup",
			html: `<body><a href="/articles/one">article</a></body>`,
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseListing(t, tc.html)
			if got := NextPageURL(doc, base); got != tc.want {
				t.Errorf("NextPageURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveHref(t *testing.T) {
	base := mustParseURL(t, "https://www.nature.com/search?q=ai")

	tests := []struct {
		href string
		want string
	}{
		{"/articles/one", "https://www.nature.com/articles/one"},
		{"articles/two", "https://www.nature.com/articles/two"},
		{"  /articles/three  ", "https://www.nature.com/articles/three"},
		{"/articles/four#abstract", "https://www.nature.com/articles/four"},
		{"https://other.org/articles/five", "https://other.org/articles/five"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		u := resolveHref(base, tc.href)
		got := ""
		if u != nil {
			got = u.String()
		}
		if got != tc.want {
			t.Errorf("resolveHref(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}
