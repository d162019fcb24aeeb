// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Article holds the bibliographic record for one crawled article page.
// One record exists per unique article URL: crawl passes merge field-by-field
// into it, and the translation pass fills the Chinese abstract.
type Article struct {
	// ID is the store's creation-order row ID (zero until persisted).
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// URL is the article page URL, the record's identity key.
	URL string `json:"article_url" yaml:"article_url"`

	// SearchURL is the listing URL the article was discovered from.
	SearchURL string `json:"search_url,omitempty" yaml:"search_url,omitempty"`

	// Title is the article title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Journal is the publication venue name.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// PublishedDate is the publication date as declared by the source page.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// AbstractEN is the whitespace-normalized English abstract.
	AbstractEN string `json:"abstract_en,omitempty" yaml:"abstract_en,omitempty"`

	// AbstractENHash is the SHA-256 hex digest of AbstractEN, written
	// whenever AbstractEN is written. It keys the translation cache.
	AbstractENHash string `json:"abstract_en_hash,omitempty" yaml:"abstract_en_hash,omitempty"`

	// AbstractZH is the Simplified-Chinese translation of AbstractEN.
	AbstractZH string `json:"abstract_zh,omitempty" yaml:"abstract_zh,omitempty"`

	// CrawledAt is the ISO-8601 UTC time of the last successful crawl.
	CrawledAt string `json:"crawled_at,omitempty" yaml:"crawled_at,omitempty"`

	// TranslatedAt is the ISO-8601 UTC time AbstractZH was written.
	TranslatedAt string `json:"translated_at,omitempty" yaml:"translated_at,omitempty"`
}

// HasAbstract reports whether the record carries a non-empty English abstract.
func (a *Article) HasAbstract() bool {
	return a.AbstractEN != ""
}
