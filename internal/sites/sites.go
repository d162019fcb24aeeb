// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sites maps article hosts to the closed set of extraction and
// link-resolution strategies the crawler knows about.
package sites

import (
	"net"
	"net/url"
	"strings"
)

// Family selects the extraction and link-detection strategy for a host.
type Family int

const (
	// Generic covers academic publisher sites that mark article pages with
	// an /articles/ path segment. It is the fallback for unknown hosts.
	Generic Family = iota
	// Conference covers openaccess.thecvf.com proceedings pages.
	Conference
)

const conferenceHost = "openaccess.thecvf.com"

// Detect returns the family for a host. Matching is case-insensitive and
// ignores an explicit port.
func Detect(host string) Family {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if strings.EqualFold(host, conferenceHost) {
		return Conference
	}
	return Generic
}

func (f Family) String() string {
	switch f {
	case Conference:
		return "conference"
	default:
		return "generic"
	}
}

// IsArticleLink reports whether a resolved link points at an article page
// for this family.
func (f Family) IsArticleLink(u *url.URL) bool {
	switch f {
	case Conference:
		return strings.Contains(u.Path, "/content/") && strings.HasSuffix(u.Path, "_paper.html")
	default:
		return strings.Contains(u.Path, "/articles/")
	}
}

// Defaults carries listing-derived fallback values for fields a conference
// page may not declare itself.
type Defaults struct {
	Journal   string
	Published string
}

// ListingDefaults derives fallback metadata from a listing URL: the first
// non-empty path segment becomes the journal default, and the day query
// parameter becomes the published default unless it is absent or "all".
func ListingDefaults(u *url.URL) Defaults {
	var d Defaults
	if u == nil {
		return d
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			d.Journal = seg
			break
		}
	}
	if day := u.Query().Get("day"); day != "" && day != "all" {
		d.Published = day
	}
	return d
}
