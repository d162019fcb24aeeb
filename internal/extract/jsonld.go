// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-harvest/internal/textutil"
)

// jsonldCandidates parses every ld+json script block in the document and
// flattens the contained objects into a single candidate list. Blocks that
// fail to parse are skipped.
func jsonldCandidates(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var obj any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return
		}
		collectJSONLD(&out, obj)
	})
	return out
}

// collectJSONLD flattens one decoded JSON-LD value into out. A @graph array
// replaces its wrapper object entirely; mainEntity and mainEntityOfPage
// values are collected after their parent.
func collectJSONLD(out *[]map[string]any, obj any) {
	switch v := obj.(type) {
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			collectJSONLD(out, graph)
			return
		}
		*out = append(*out, v)
		for _, key := range []string{"mainEntity", "mainEntityOfPage"} {
			if nested, ok := v[key]; ok {
				collectJSONLD(out, nested)
			}
		}
	case []any:
		for _, it := range v {
			collectJSONLD(out, it)
		}
	}
}

// pickArticle selects the candidate whose @type mentions an Article variant
// (ScholarlyArticle, NewsArticle, and so on), falling back to the first
// candidate. Returns nil when the list is empty.
func pickArticle(objs []map[string]any) map[string]any {
	for _, o := range objs {
		switch t := o["@type"].(type) {
		case string:
			if strings.Contains(t, "Article") {
				return o
			}
		case []any:
			for _, x := range t {
				if s, ok := x.(string); ok && strings.Contains(s, "Article") {
					return o
				}
			}
		}
	}
	if len(objs) > 0 {
		return objs[0]
	}
	return nil
}

// jsonldString returns the first key whose value is a non-empty string
// after normalization.
func jsonldString(o map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := o[k].(string); ok {
			if v := textutil.Clean(s); v != "" {
				return v
			}
		}
	}
	return ""
}

// jsonldPartOfName extracts isPartOf.name, the journal in schema.org terms.
func jsonldPartOfName(o map[string]any) string {
	part, ok := o["isPartOf"].(map[string]any)
	if !ok {
		return ""
	}
	return jsonldString(part, "name")
}
