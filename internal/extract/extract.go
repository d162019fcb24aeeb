// Package extract resolves bibliographic fields from fetched article pages.
// Each field goes through layered fallbacks: embedded JSON-LD first, then
// declared metadata tags, then DOM heuristics. A stage runs only when the
// previous stages produced nothing for that field.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/paper-harvest/internal/sites"
	"github.com/pdiddy/paper-harvest/internal/textutil"
)

// Fields holds the resolved metadata for one article page. Every field is
// optional; an empty string means the page did not declare it.
type Fields struct {
	Title     string
	Journal   string
	Published string
	Abstract  string
}

// Extract resolves all fields from doc using the strategy for the given
// site family. The defaults fill journal and published date for conference
// pages that declare neither.
func Extract(doc *goquery.Document, family sites.Family, defaults sites.Defaults) Fields {
	var f Fields

	if o := pickArticle(jsonldCandidates(doc)); o != nil {
		f.Title = jsonldString(o, "headline", "name")
		f.Journal = jsonldPartOfName(o)
		f.Published = jsonldString(o, "datePublished", "dateCreated")
		f.Abstract = jsonldString(o, "abstract", "description")
	}

	if f.Title == "" {
		f.Title = metaContent(doc, metaName("citation_title"))
	}
	if f.Title == "" && family == sites.Conference {
		f.Title = textutil.Clean(doc.Find("#papertitle").First().Text())
	}
	if f.Title == "" {
		f.Title = textutil.Clean(doc.Find("title").First().Text())
	}

	if f.Journal == "" {
		f.Journal = metaContent(doc, metaName("citation_journal_title"))
	}
	if f.Published == "" {
		f.Published = metaContent(doc,
			metaName("citation_publication_date"),
			metaProperty("article:published_time"),
		)
	}

	if f.Abstract == "" {
		f.Abstract = resolveAbstract(doc, family)
	}

	if family == sites.Conference {
		if f.Journal == "" {
			f.Journal = defaults.Journal
		}
		if f.Published == "" {
			f.Published = defaults.Published
		}
	}

	return f
}

// resolveAbstract runs the family-specific abstract fallbacks after the
// JSON-LD stage has come up empty.
func resolveAbstract(doc *goquery.Document, family sites.Family) string {
	if family == sites.Conference {
		if v := metaContent(doc, metaName("citation_abstract")); v != "" {
			return v
		}
		if v := textutil.Clean(doc.Find("#abstract").First().Text()); v != "" {
			return v
		}
		return headingAbstract(doc, true)
	}

	if v := metaContent(doc,
		metaName("citation_abstract"),
		metaName("dc.description"),
		metaProperty("og:description"),
		metaName("description"),
	); v != "" {
		return v
	}
	return headingAbstract(doc, false)
}

// metaProbe identifies one meta tag by its name or property attribute.
type metaProbe struct {
	attr  string
	value string
}

func metaName(v string) metaProbe     { return metaProbe{attr: "name", value: v} }
func metaProperty(v string) metaProbe { return metaProbe{attr: "property", value: v} }

// metaContent returns the first non-empty content attribute among the
// probed meta tags, in probe order.
func metaContent(doc *goquery.Document, probes ...metaProbe) string {
	for _, p := range probes {
		sel := fmt.Sprintf("meta[%s=%q]", p.attr, p.value)
		content, _ := doc.Find(sel).First().Attr("content")
		if v := textutil.Clean(content); v != "" {
			return v
		}
	}
	return ""
}

// headingAbstract locates an "abstract" heading (h1 through h4) and gathers
// the paragraph text that follows it in document order, stopping at the next
// heading of equal or higher level. With exact set, the heading text must
// equal "abstract" after normalization; otherwise containing it is enough.
func headingAbstract(doc *goquery.Document, exact bool) string {
	var heading *html.Node
	level := 0
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(textutil.Clean(s.Text()))
		matched := strings.Contains(text, "abstract")
		if exact {
			matched = text == "abstract"
		}
		if !matched {
			return true
		}
		heading = s.Get(0)
		level = headingLevel(heading.Data)
		return false
	})
	if heading == nil {
		return ""
	}

	var parts []string
	for n := nextSkippingChildren(heading); n != nil; n = nextInDocument(n) {
		if n.Type != html.ElementNode {
			continue
		}
		if lvl := headingLevel(n.Data); lvl != 0 && lvl <= level {
			break
		}
		if n.Data == "p" {
			if txt := textutil.Clean(nodeText(n)); txt != "" {
				parts = append(parts, txt)
			}
		}
	}
	return strings.Join(parts, " ")
}

// headingLevel maps h1 through h4 to 1 through 4 and everything else to 0.
func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	}
	return 0
}

// nextInDocument returns the node following n in document order, descending
// into children first.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return nextSkippingChildren(n)
}

// nextSkippingChildren returns the node following n in document order
// without entering n's subtree.
func nextSkippingChildren(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// nodeText concatenates every text node under n, separated by spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
