package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPacerSpacing(t *testing.T) {
	p := NewPacer(100) // 10ms between grants
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// First grant is immediate, the next two are spaced 10ms apart.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("3 grants at 100/s took %v, want >= 20ms", elapsed)
	}
}

func TestPacerConcurrentCallers(t *testing.T) {
	p := NewPacer(100)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Wait(ctx); err != nil {
				t.Errorf("Wait: %v", err)
			}
		}()
	}
	wg.Wait()
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("5 concurrent grants at 100/s took %v, want >= 40ms", elapsed)
	}
}

func TestPacerUnlimited(t *testing.T) {
	for _, perSecond := range []float64{0, -1} {
		p := NewPacer(perSecond)
		start := time.Now()
		for i := 0; i < 1000; i++ {
			if err := p.Wait(context.Background()); err != nil {
				t.Fatalf("Wait: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("unlimited pacer (%v/s) blocked for %v", perSecond, elapsed)
		}
	}
}

func TestPacerCanceledContext(t *testing.T) {
	p := NewPacer(1) // 1s spacing forces the second grant to queue
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("Wait with canceled context returned nil error")
	}
}

func TestBatchConcurrencyCeiling(t *testing.T) {
	const limit = 3
	b := NewBatch(limit)

	var inFlight, peak, ran atomic.Int64
	for i := 0; i < 10; i++ {
		b.Go(context.Background(), func(context.Context) error {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			ran.Add(1)
			return nil
		})
	}

	if errs := b.Wait(); len(errs) != 0 {
		t.Fatalf("unexpected unit errors: %v", errs)
	}
	if ran.Load() != 10 {
		t.Errorf("ran %d units, want 10", ran.Load())
	}
	if peak.Load() > limit {
		t.Errorf("peak in-flight %d exceeds limit %d", peak.Load(), limit)
	}
}

func TestBatchCollectsErrorsWithoutCancelingSiblings(t *testing.T) {
	b := NewBatch(2)

	var completed atomic.Int64
	errBoom := errors.New("boom")
	for i := 0; i < 5; i++ {
		fail := i%2 == 0
		b.Go(context.Background(), func(context.Context) error {
			defer completed.Add(1)
			if fail {
				return errBoom
			}
			return nil
		})
	}

	errs := b.Wait()
	if len(errs) != 3 {
		t.Fatalf("collected %d errors, want 3: %v", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, errBoom) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if completed.Load() != 5 {
		t.Errorf("%d units completed, want all 5", completed.Load())
	}
}

func TestBatchNormalizesConcurrency(t *testing.T) {
	b := NewBatch(0)
	var ran atomic.Int64
	for i := 0; i < 3; i++ {
		b.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	if errs := b.Wait(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if ran.Load() != 3 {
		t.Errorf("ran %d units, want 3", ran.Load())
	}
}

func TestBatchCanceledWhileQueued(t *testing.T) {
	b := NewBatch(1)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	b.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started // the only slot is now held

	var ran atomic.Bool
	b.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	errs := b.Wait()
	if len(errs) != 1 {
		t.Fatalf("collected %d errors, want 1 (queued unit canceled): %v", len(errs), errs)
	}
	if !errors.Is(errs[0], context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", errs[0])
	}
	if ran.Load() {
		t.Error("canceled unit still ran")
	}
}
