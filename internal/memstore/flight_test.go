package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-function-cache/cache"
)

func TestGetOrCompute_HitSkipsCompute(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	s.Set(ctx, "k", "cached", cache.NoExpiration)

	value, err := s.GetOrCompute(ctx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
		t.Fatal("compute must not run on a hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() failed: %v", err)
	}
	if value != "cached" {
		t.Errorf("got %v, want cached", value)
	}
}

func TestGetOrCompute_MissComputesAndStores(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	value, err := s.GetOrCompute(ctx, "k", time.Minute, func(ctx context.Context) (any, error) {
		return "computed", nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() failed: %v", err)
	}
	if value != "computed" {
		t.Errorf("got %v, want computed", value)
	}

	// The result was cached.
	cached, ok := s.Get(ctx, "k")
	if !ok || cached != "computed" {
		t.Errorf("expected cached value, got (%v, %v)", cached, ok)
	}
}

func TestGetOrCompute_InvalidTTLBeforeCompute(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	_, err := s.GetOrCompute(ctx, "k", -5*time.Second, func(ctx context.Context) (any, error) {
		t.Fatal("compute must not run with an invalid ttl")
		return nil, nil
	})
	if !errors.Is(err, cache.ErrInvalidTTL) {
		t.Fatalf("expected ErrInvalidTTL, got %v", err)
	}
}

func TestGetOrCompute_AtMostOneInflight(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	var calls atomic.Int32
	const workers = 20

	g, gctx := errgroup.WithContext(ctx)
	results := make([]any, workers)

	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			value, err := s.GetOrCompute(gctx, "shared", cache.NoExpiration, func(ctx context.Context) (any, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return "result", nil
			})
			results[i] = value
			return err
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent GetOrCompute failed: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("compute ran %d times, want exactly 1", got)
	}
	for i, value := range results {
		if value != "result" {
			t.Errorf("caller %d got %v, want result", i, value)
		}
	}
}

func TestGetOrCompute_ErrorSharedAndRetried(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	boom := errors.New("boom")
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			<-release
			return nil, boom
		}
		return "recovered", nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	run := func(i int) {
		defer wg.Done()
		_, errs[i] = s.GetOrCompute(ctx, "k", cache.NoExpiration, compute)
	}

	wg.Add(1)
	go run(0)

	// Attach the second caller only once the computation is registered, then
	// give it a moment to join before releasing the shared outcome.
	waitForInflight(t, s, "k")
	wg.Add(1)
	go run(1)
	time.Sleep(50 * time.Millisecond)

	close(release)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("caller %d got %v, want shared error", i, err)
		}
	}

	// Errors are not cached; settlement allows a fresh computation.
	value, err := s.GetOrCompute(ctx, "k", cache.NoExpiration, compute)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if value != "recovered" {
		t.Errorf("retry got %v, want recovered", value)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("compute ran %d times, want 2", got)
	}
}

func TestGetOrCompute_WaiterCancellationDetachesAlone(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	release := make(chan struct{})
	started := make(chan struct{})

	var ownerValue any
	var ownerErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		ownerValue, ownerErr = s.GetOrCompute(ctx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()
	<-started

	waiterCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, err := s.GetOrCompute(waiterCtx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
		t.Error("second compute must not start while one is in flight")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter got %v, want context.Canceled", err)
	}

	// The owner is unaffected by the waiter's cancellation.
	close(release)
	<-done
	if ownerErr != nil {
		t.Fatalf("owner failed: %v", ownerErr)
	}
	if ownerValue != "slow" {
		t.Errorf("owner got %v, want slow", ownerValue)
	}
}

func TestGetOrCompute_OwnerCancellationPropagates(t *testing.T) {
	s, _ := newTestStore(t, cache.Config{})

	ownerCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	var ownerErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ownerErr = s.GetOrCompute(ownerCtx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	}()
	<-started
	cancel()
	<-done

	if !errors.Is(ownerErr, context.Canceled) {
		t.Fatalf("owner got %v, want context.Canceled", ownerErr)
	}

	// The pending record is gone; a later call computes afresh.
	value, err := s.GetOrCompute(context.Background(), "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if value != "fresh" {
		t.Errorf("retry got %v, want fresh", value)
	}
}

func TestGetOrCompute_ClearForgetsInflight(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, cache.Config{})

	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		s.GetOrCompute(ctx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started

	s.Clear(ctx)

	// After Clear, a new caller starts a fresh computation instead of
	// attaching to the forgotten one.
	var calls atomic.Int32
	resultCh := make(chan any, 1)
	go func() {
		value, _ := s.GetOrCompute(ctx, "k", cache.NoExpiration, func(ctx context.Context) (any, error) {
			calls.Add(1)
			return "fresh", nil
		})
		resultCh <- value
	}()

	select {
	case value := <-resultCh:
		if value != "fresh" {
			t.Errorf("post-clear caller got %v, want fresh", value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("post-clear caller blocked on the forgotten computation")
	}

	close(release)
	if got := calls.Load(); got != 1 {
		t.Errorf("fresh compute ran %d times, want 1", got)
	}
}

// waitForInflight blocks until a computation for key is registered.
func waitForInflight(t *testing.T, s *Store, key string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		_, ok := s.inflight[key]
		s.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("computation never registered as in flight")
}
