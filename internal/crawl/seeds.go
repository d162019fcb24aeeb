// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-harvest/internal/dispatch"
	"github.com/pdiddy/paper-harvest/internal/httputil"
	"github.com/pdiddy/paper-harvest/internal/store"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Seed is one listing traversal in a seeds file. MaxPages and LimitArticles
// override the command-level values when present; nil means inherit.
type Seed struct {
	SearchURL     string `yaml:"search_url"`
	MaxPages      *int   `yaml:"max_pages"`
	LimitArticles *int   `yaml:"limit_articles"`
}

// Config applies the seed's overrides to the command-level config.
func (s Seed) Config(base types.CrawlConfig) types.CrawlConfig {
	cfg := base
	cfg.SearchURL = s.SearchURL
	if s.MaxPages != nil {
		cfg.MaxPages = *s.MaxPages
	}
	if s.LimitArticles != nil {
		cfg.LimitArticles = *s.LimitArticles
	}
	return cfg
}

// seedsFile is the on-disk shape of a seeds YAML document.
type seedsFile struct {
	Seeds []Seed `yaml:"seeds"`
}

// LoadSeeds parses a seeds YAML file. Every seed needs a search_url; a file
// with no seeds is an error.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seeds file: %w", err)
	}

	var f seedsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seeds file: %w", err)
	}
	if len(f.Seeds) == 0 {
		return nil, fmt.Errorf("seeds file %s contains no seeds", path)
	}
	for i, s := range f.Seeds {
		if strings.TrimSpace(s.SearchURL) == "" {
			return nil, fmt.Errorf("seed %d: search_url is required", i+1)
		}
	}
	return f.Seeds, nil
}

// RunSeeds crawls each seed in order, sharing the store, fetch client, and
// pacer. A listing-level abort in one seed is logged and the remaining
// seeds still run; the joined abort errors come back with the combined
// summary.
func RunSeeds(ctx context.Context, s *store.Store, client *httputil.Client, pacer *dispatch.Pacer, base types.CrawlConfig, seeds []Seed, log zerolog.Logger, w io.Writer) (Summary, error) {
	var total Summary
	var aborts []error

	for i, seed := range seeds {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(w, "seed %d/%d: %s\n", i+1, len(seeds), seed.SearchURL)

		c := New(s, client, pacer, seed.Config(base), log)
		sum, err := c.Run(ctx, w)
		total.add(sum)
		if err != nil {
			log.Error().Err(err).Str("seed", seed.SearchURL).Msg("seed aborted")
			aborts = append(aborts, fmt.Errorf("seed %s: %w", seed.SearchURL, err))
		}
	}
	return total, errors.Join(aborts...)
}
