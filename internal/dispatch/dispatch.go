// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch provides the politeness primitives shared by the crawl
// and translation passes: a global request pacer and a bounded unit batch.
package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Pacer enforces a minimum spacing of 1/rate seconds between successive
// grants, globally across all goroutines sharing it.
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer returns a pacer granting at most perSecond acquisitions per
// second. A non-positive perSecond disables pacing entirely.
func NewPacer(perSecond float64) *Pacer {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Pacer{lim: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next grant is due. It returns early with the
// context's error when ctx is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// Batch runs independent units with at most a fixed number in flight.
// A unit failure never cancels its siblings; errors are collected and
// handed back from Wait. A Batch is single-use.
type Batch struct {
	sem *semaphore.Weighted

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewBatch returns a batch admitting at most concurrency units at once.
// Values below 1 are treated as 1.
func NewBatch(concurrency int) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batch{sem: semaphore.NewWeighted(int64(concurrency))}
}

// Go admits fn as one unit. It returns immediately; the unit waits for
// capacity in its own goroutine. A canceled context surfaces as a unit
// error for units still waiting on capacity.
func (b *Batch) Go(ctx context.Context, fn func(context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.sem.Acquire(ctx, 1); err != nil {
			b.record(err)
			return
		}
		defer b.sem.Release(1)
		if err := fn(ctx); err != nil {
			b.record(err)
		}
	}()
}

// Wait blocks until every admitted unit has finished and returns the
// collected unit errors in completion order.
func (b *Batch) Wait() []error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errs
}

func (b *Batch) record(err error) {
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
}
