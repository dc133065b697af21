package utils

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterSpacesRequests(t *testing.T) {
	interval := 50 * time.Millisecond
	rl := NewRateLimiter(1, interval)

	var timestamps []time.Time
	for i := 0; i < 3; i++ {
		if err := rl.WaitForSlot(context.Background()); err != nil {
			t.Fatalf("WaitForSlot: %v", err)
		}
		timestamps = append(timestamps, time.Now())
	}

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		if gap < interval-5*time.Millisecond {
			t.Errorf("gap between request %d and %d: %v < minimum %v", i-1, i, gap, interval)
		}
	}
}

func TestRateLimiterAdmitsAllConcurrentCallers(t *testing.T) {
	interval := 20 * time.Millisecond
	rl := NewRateLimiter(1, interval)

	const callers = 5
	var wg sync.WaitGroup
	start := time.Now()
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- rl.WaitForSlot(context.Background())
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Errorf("WaitForSlot: %v", err)
		}
	}
	minTotal := time.Duration(callers-1) * interval
	if elapsed := time.Since(start); elapsed < minTotal-5*time.Millisecond {
		t.Errorf("elapsed %v: %d callers should take at least %v", elapsed, callers, minTotal)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := rl.WaitForSlot(context.Background()); err != nil {
			t.Fatalf("WaitForSlot: %v", err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("disabled limiter should not block")
	}
}

func TestRateLimiterCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.WaitForSlot(context.Background()); err != nil {
		t.Fatalf("first slot: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.WaitForSlot(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestRateLimiterAdmitsInReservationOrder(t *testing.T) {
	rl := NewRateLimiter(1, 40*time.Millisecond)

	const callers = 4
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := rl.WaitForSlot(context.Background()); err != nil {
				t.Errorf("WaitForSlot: %v", err)
				return
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}(i)
		// the next caller reserves only after this one has
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	for i, id := range order {
		if id != i {
			t.Fatalf("admission order: got %v, want callers in reservation order", order)
		}
	}
}
