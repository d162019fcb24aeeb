// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate enriches stored articles with Simplified Chinese
// abstracts. Articles sharing the same English abstract are translated
// once: concurrent units collapse into a single remote call per content
// hash, and later units reuse the stored result as a cache.
package translate

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/paper-harvest/internal/dispatch"
	"github.com/pdiddy/paper-harvest/internal/store"
	"github.com/pdiddy/paper-harvest/internal/textutil"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// Backend abstracts the remote translation API so tests can supply a mock.
type Backend interface {
	Translate(ctx context.Context, abstract string) (string, error)
}

// Summary holds counts from a translation run.
type Summary struct {
	Pending    int
	Translated int
	CacheHits  int
	Failed     int
}

// HasFailures reports whether any unit failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Translator drives translation of pending articles through a Backend.
type Translator struct {
	store   *store.Store
	backend Backend
	pacer   *dispatch.Pacer
	cfg     types.TranslateConfig
	log     zerolog.Logger

	group singleflight.Group
	mu    sync.Mutex
}

// New builds a Translator. The pacer and concurrency ceiling come from cfg.
func New(s *store.Store, backend Backend, cfg types.TranslateConfig, log zerolog.Logger) *Translator {
	return &Translator{
		store:   s,
		backend: backend,
		pacer:   dispatch.NewPacer(cfg.Rate),
		cfg:     cfg,
		log:     log,
	}
}

// outcome classifies how one unit obtained its translation.
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeTranslated
	outcomeCacheHit
)

// flightResult is the value shared by units that collapsed into one flight.
// ownerURL is empty when the flight was satisfied from the stored cache.
type flightResult struct {
	zh       string
	ownerURL string
}

// Run translates all pending articles, honoring the configured item limit.
// Per-item progress goes to w; unit failures are counted and logged but do
// not stop siblings.
func (t *Translator) Run(ctx context.Context, w io.Writer) (Summary, error) {
	rows, err := t.store.PendingTranslations(ctx, t.cfg.MaxItems)
	if err != nil {
		return Summary{}, fmt.Errorf("listing pending translations: %w", err)
	}

	total := len(rows)
	summary := Summary{Pending: total}
	fmt.Fprintf(w, "pending translations: %d\n", total)
	if total == 0 {
		return summary, nil
	}

	done := 0
	batch := dispatch.NewBatch(t.cfg.Concurrency)
	for _, row := range rows {
		batch.Go(ctx, func(ctx context.Context) error {
			out, err := t.translateRow(ctx, row)

			ident := textutil.Clean(row.Title)
			if ident == "" {
				ident = row.URL
			}

			t.mu.Lock()
			defer t.mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				fmt.Fprintf(w, "failed  %s: %v\n", ident, err)
				t.log.Warn().Err(err).Str("url", row.URL).Msg("translation failed")
				return fmt.Errorf("translating %s: %w", row.URL, err)
			case out == outcomeCacheHit:
				done++
				summary.CacheHits++
				fmt.Fprintf(w, "[%d/%d] cache hit: %s\n", done, total, ident)
			case out == outcomeTranslated:
				done++
				summary.Translated++
				fmt.Fprintf(w, "[%d/%d] translated: %s\n", done, total, ident)
			}
			return nil
		})
	}
	batch.Wait()

	fmt.Fprintf(w, "\ntranslated: %d, cache hits: %d, failed: %d\n",
		summary.Translated, summary.CacheHits, summary.Failed)
	return summary, nil
}

// translateRow resolves one article's translation. Units sharing a content
// hash join the same flight; whichever unit executes the flight persists to
// its own row inside it, and the others persist the shared result after.
func (t *Translator) translateRow(ctx context.Context, row types.Article) (outcome, error) {
	abstract := textutil.Clean(row.AbstractEN)
	if abstract == "" {
		return outcomeSkipped, nil
	}
	hash := row.AbstractENHash
	if hash == "" {
		hash = textutil.Hash(abstract)
	}

	v, err, _ := t.group.Do(hash, func() (any, error) {
		fr, err := t.resolveTranslation(ctx, row.URL, abstract, hash)
		if err != nil {
			return nil, err
		}
		return fr, nil
	})
	if err != nil {
		return 0, err
	}
	fr := v.(flightResult)

	if fr.ownerURL != row.URL {
		if err := t.store.SetTranslation(ctx, row.URL, fr.zh, hash, nowTimestamp()); err != nil {
			return 0, err
		}
		return outcomeCacheHit, nil
	}
	return outcomeTranslated, nil
}

// resolveTranslation is the body of one flight: check the stored cache for
// the hash, otherwise call the backend once and persist to the owner's row
// before returning, so units arriving after the flight see the cache hit.
func (t *Translator) resolveTranslation(ctx context.Context, ownerURL, abstract, hash string) (flightResult, error) {
	cached, err := t.store.CachedTranslation(ctx, hash)
	if err != nil {
		return flightResult{}, err
	}
	if cached != "" {
		return flightResult{zh: cached}, nil
	}

	if err := t.pacer.Wait(ctx); err != nil {
		return flightResult{}, err
	}
	zh, err := t.backend.Translate(ctx, abstract)
	if err != nil {
		return flightResult{}, err
	}
	// Keep the raw response if normalization would empty it.
	if cleaned := textutil.Clean(zh); cleaned != "" {
		zh = cleaned
	}

	if err := t.store.SetTranslation(ctx, ownerURL, zh, hash, nowTimestamp()); err != nil {
		return flightResult{}, err
	}
	return flightResult{zh: zh, ownerURL: ownerURL}, nil
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
