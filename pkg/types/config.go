package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that fetch pages.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// AcceptLanguage is the Accept-Language header sent with HTTP requests.
	AcceptLanguage string `json:"accept_language" yaml:"accept_language"`
}

// CrawlConfig holds settings for one crawl run.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// SearchURL is the listing page the traversal starts from.
	SearchURL string `json:"search_url" yaml:"search_url"`

	// DBPath is the SQLite database file path.
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxPages caps how many listing pages are visited (0 = unlimited).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// LimitArticles caps how many articles are persisted (0 = unlimited).
	LimitArticles int `json:"limit_articles" yaml:"limit_articles"`

	// Concurrency is the maximum number of in-flight article units.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Rate is the global request pacing in requests per second (0 = unlimited).
	Rate float64 `json:"rate" yaml:"rate"`

	// Resume skips articles whose abstract is already in the store.
	Resume bool `json:"resume" yaml:"resume"`
}

// TranslateConfig holds settings for a translation-enrichment run.
type TranslateConfig struct {
	// DBPath is the SQLite database file path.
	DBPath string `json:"db_path" yaml:"db_path"`

	// Model is the chat-completions model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates against the translation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxItems caps how many pending records are translated (0 = all).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// Concurrency is the maximum number of in-flight translation units.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Rate is the remote-call pacing in requests per second (0 = unlimited).
	Rate float64 `json:"rate" yaml:"rate"`
}

// ExportConfig holds settings for an export run.
type ExportConfig struct {
	// DBPath is the SQLite database file path.
	DBPath string `json:"db_path" yaml:"db_path"`

	// Format selects the output rendering: csv, jsonl, or txt.
	Format string `json:"format" yaml:"format"`

	// OutPath is the file the export is written to.
	OutPath string `json:"out_path" yaml:"out_path"`

	// SearchURL optionally restricts the export to one listing's records.
	SearchURL string `json:"search_url,omitempty" yaml:"search_url,omitempty"`
}
