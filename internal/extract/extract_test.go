// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-harvest/internal/sites"
)

func parseDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestExtractGenericFromJSONLD(t *testing.T) {
	page := `<html><head><title>Fallback Title | Site</title>
<script type="application/ld+json">
{"@type": "ScholarlyArticle",
 "headline": "Deep Learning for Protein Folding",
 "isPartOf": {"@type": "Periodical", "name": "Nature"},
 "datePublished": "2024-03-14",
 "abstract": "We present a method   for folding."}
</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Deep Learning for Protein Folding" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Journal != "Nature" {
		t.Errorf("Journal = %q", f.Journal)
	}
	if f.Published != "2024-03-14" {
		t.Errorf("Published = %q", f.Published)
	}
	if f.Abstract != "We present a method for folding." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractGraphReplacesWrapper(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
{"@context": "https://schema.org",
 "headline": "Wrapper Headline",
 "@graph": [
   {"@type": "WebPage", "name": "Listing"},
   {"@type": "ScholarlyArticle", "headline": "Graph Article", "description": "From the graph."}
 ]}
</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Graph Article" {
		t.Errorf("Title = %q, wrapper object should not be a candidate", f.Title)
	}
	if f.Abstract != "From the graph." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractMainEntityPreferredWhenArticle(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
{"@type": "WebPage", "name": "Host Page",
 "mainEntity": {"@type": "NewsArticle", "headline": "Nested Article", "abstract": "Nested abstract."}}
</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Nested Article" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Abstract != "Nested abstract." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractTypeArray(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
[{"@type": "BreadcrumbList", "name": "crumbs"},
 {"@type": ["CreativeWork", "ScholarlyArticle"], "name": "Array Typed", "description": "Typed by array."}]
</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Array Typed" {
		t.Errorf("Title = %q", f.Title)
	}
}

func TestExtractFirstCandidateWhenNoArticleType(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
{"@type": "WebSite", "name": "Only Candidate", "description": "Site description."}
</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Only Candidate" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Abstract != "Site description." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractSkipsInvalidJSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{not valid json</script>
<script type="application/ld+json">{"@type": "ScholarlyArticle", "headline": "Valid Block"}</script>
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Valid Block" {
		t.Errorf("Title = %q", f.Title)
	}
}

func TestExtractMetaFallbacks(t *testing.T) {
	page := `<html><head><title>Page Title</title>
<meta name="citation_title" content="Meta Title">
<meta name="citation_journal_title" content="Physical Review">
<meta name="citation_publication_date" content="2023/11/02">
<meta property="og:description" content="OG abstract text.">
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Meta Title" {
		t.Errorf("Title = %q, citation_title should win over page title", f.Title)
	}
	if f.Journal != "Physical Review" {
		t.Errorf("Journal = %q", f.Journal)
	}
	if f.Published != "2023/11/02" {
		t.Errorf("Published = %q", f.Published)
	}
	if f.Abstract != "OG abstract text." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractPublishedTimeProperty(t *testing.T) {
	page := `<html><head>
<meta property="article:published_time" content="2022-01-05T10:00:00Z">
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Published != "2022-01-05T10:00:00Z" {
		t.Errorf("Published = %q", f.Published)
	}
}

func TestExtractAbstractMetaOrder(t *testing.T) {
	page := `<html><head>
<meta name="description" content="Generic description.">
<meta name="citation_abstract" content="Citation abstract wins.">
<meta property="og:description" content="OG description.">
</head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Abstract != "Citation abstract wins." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractAbstractStructuredDataWinsConflict(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
{"@type": "ScholarlyArticle", "headline": "Conflicted Paper",
 "abstract": "Structured abstract."}
</script>
<meta name="citation_abstract" content="Declared abstract.">
<meta property="og:description" content="Preview abstract.">
</head><body>
<h2>Abstract</h2>
<p>Heuristic abstract.</p>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Abstract != "Structured abstract." {
		t.Errorf("Abstract = %q, structured data must win over meta tags and DOM", f.Abstract)
	}
}

func TestExtractAbstractMetaWinsOverDOM(t *testing.T) {
	page := `<html><head>
<meta name="citation_abstract" content="Declared abstract.">
</head><body>
<h2>Abstract</h2>
<p>Heuristic abstract.</p>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Abstract != "Declared abstract." {
		t.Errorf("Abstract = %q, declared metadata must win over DOM heuristics", f.Abstract)
	}
}

func TestExtractTitleFallsBackToPageTitle(t *testing.T) {
	page := `<html><head><title>  Bare   Page  </title></head><body></body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Title != "Bare Page" {
		t.Errorf("Title = %q", f.Title)
	}
}

func TestExtractDOMAbstract(t *testing.T) {
	page := `<html><head><title>T</title></head><body>
<h2>Abstract</h2>
<p>First sentence of the abstract.</p>
<h3>Background</h3>
<p>Continues under a deeper heading.</p>
<h2>References</h2>
<p>Not part of the abstract.</p>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	want := "First sentence of the abstract. Continues under a deeper heading."
	if f.Abstract != want {
		t.Errorf("Abstract = %q, want %q", f.Abstract, want)
	}
}

func TestExtractDOMAbstractStopsAtHigherHeading(t *testing.T) {
	page := `<html><body>
<h3>Paper Abstract</h3>
<p>Kept paragraph.</p>
<h4>Note</h4>
<p>Also kept.</p>
<h2>Introduction</h2>
<p>Dropped paragraph.</p>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	want := "Kept paragraph. Also kept."
	if f.Abstract != want {
		t.Errorf("Abstract = %q, want %q", f.Abstract, want)
	}
}

func TestExtractDOMAbstractInlineMarkup(t *testing.T) {
	page := `<html><body>
<h2>Abstract</h2>
<p>Uses <em>inline</em> markup and
   spans lines.</p>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Generic, sites.Defaults{})

	if f.Abstract != "Uses inline markup and spans lines." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractConferenceTitleFallbacks(t *testing.T) {
	withID := `<html><head><title>CVF Open Access</title></head><body>
<div id="papertitle">  Robust Tracking   at Night </div>
</body></html>`

	f := Extract(parseDoc(t, withID), sites.Conference, sites.Defaults{})
	if f.Title != "Robust Tracking at Night" {
		t.Errorf("Title = %q, want papertitle text", f.Title)
	}

	withMeta := `<html><head><title>CVF Open Access</title>
<meta name="citation_title" content="Cited Title">
</head><body><div id="papertitle">Ignored</div></body></html>`

	f = Extract(parseDoc(t, withMeta), sites.Conference, sites.Defaults{})
	if f.Title != "Cited Title" {
		t.Errorf("Title = %q, citation_title should win", f.Title)
	}

	bare := `<html><head><title>CVF Open Access</title></head><body></body></html>`

	f = Extract(parseDoc(t, bare), sites.Conference, sites.Defaults{})
	if f.Title != "CVF Open Access" {
		t.Errorf("Title = %q, want page title", f.Title)
	}
}

func TestExtractConferenceAbstractID(t *testing.T) {
	page := `<html><body>
<div id="abstract">  The abstract lives in a div. </div>
</body></html>`

	f := Extract(parseDoc(t, page), sites.Conference, sites.Defaults{})

	if f.Abstract != "The abstract lives in a div." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractConferenceExactHeadingMatch(t *testing.T) {
	loose := `<html><body>
<h2>Graphical Abstract</h2>
<p>Should not match the conference strategy.</p>
</body></html>`

	f := Extract(parseDoc(t, loose), sites.Conference, sites.Defaults{})
	if f.Abstract != "" {
		t.Errorf("Abstract = %q, want empty for non-exact heading", f.Abstract)
	}

	f = Extract(parseDoc(t, loose), sites.Generic, sites.Defaults{})
	if f.Abstract != "Should not match the conference strategy." {
		t.Errorf("Abstract = %q, generic contains-match should accept it", f.Abstract)
	}

	exact := `<html><body>
<h2>Abstract</h2>
<p>Exact heading matched.</p>
</body></html>`

	f = Extract(parseDoc(t, exact), sites.Conference, sites.Defaults{})
	if f.Abstract != "Exact heading matched." {
		t.Errorf("Abstract = %q", f.Abstract)
	}
}

func TestExtractConferenceDefaults(t *testing.T) {
	defaults := sites.Defaults{Journal: "CVPR2023", Published: "2023-06-20"}

	bare := `<html><head><title>Paper</title></head><body></body></html>`
	f := Extract(parseDoc(t, bare), sites.Conference, defaults)
	if f.Journal != "CVPR2023" {
		t.Errorf("Journal = %q, want listing default", f.Journal)
	}
	if f.Published != "2023-06-20" {
		t.Errorf("Published = %q, want listing default", f.Published)
	}

	declared := `<html><head>
<meta name="citation_journal_title" content="ICCV Proceedings">
<meta name="citation_publication_date" content="2023-10-01">
</head><body></body></html>`
	f = Extract(parseDoc(t, declared), sites.Conference, defaults)
	if f.Journal != "ICCV Proceedings" {
		t.Errorf("Journal = %q, page-declared value should win", f.Journal)
	}
	if f.Published != "2023-10-01" {
		t.Errorf("Published = %q, page-declared value should win", f.Published)
	}

	generic := Extract(parseDoc(t, bare), sites.Generic, defaults)
	if generic.Journal != "" || generic.Published != "" {
		t.Errorf("generic family must ignore defaults, got journal %q published %q",
			generic.Journal, generic.Published)
	}
}
