package utils

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"listing-optimizer/errs"
)

func testRetrier(clock *FakeClock, attempts int) *Retrier {
	return &Retrier{
		Policy: RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Second, MaxDelay: 10 * time.Second},
		Clock:  clock,
		Logger: NewLoggerTo(io.Discard),
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	tests := []struct {
		kind    errs.Kind
		attempt int
		want    time.Duration
	}{
		{errs.RateLimited, 1, 2 * time.Second},
		{errs.RateLimited, 2, 4 * time.Second},
		{errs.RateLimited, 3, 8 * time.Second},
		{errs.RateLimited, 4, 10 * time.Second},
		{errs.RateLimited, 60, 10 * time.Second},
		{errs.NetworkError, 1, time.Second},
		{errs.NetworkError, 3, 3 * time.Second},
		{errs.NetworkError, 20, 10 * time.Second},
		{errs.FetchFailed, 1, 0},
	}
	for _, tt := range tests {
		if got := p.Backoff(tt.kind, tt.attempt); got != tt.want {
			t.Errorf("Backoff(%s, %d) = %v; want %v", tt.kind, tt.attempt, got, tt.want)
		}
	}
}

func TestRetryStateTransitions(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second}
	var s RetryState

	s.Next(p, errs.New(errs.NetworkError, "reset"))
	if s.Phase != RetryBackoff || s.Attempt != 1 || s.Delay != time.Second {
		t.Errorf("after first failure: got %s attempt=%d delay=%v", s.Phase, s.Attempt, s.Delay)
	}

	s.Next(p, errs.New(errs.NetworkError, "reset"))
	if s.Phase != RetryExhausted || s.LastKind != errs.NetworkError {
		t.Errorf("after ceiling: got %s kind=%s", s.Phase, s.LastKind)
	}

	var ok RetryState
	ok.Next(p, nil)
	if ok.Phase != RetrySucceeded {
		t.Errorf("success: got %s, want succeeded", ok.Phase)
	}

	var fatal RetryState
	fatal.Next(p, errs.New(errs.FetchFailed, "404"))
	if fatal.Phase != RetryExhausted || fatal.Attempt != 1 {
		t.Errorf("non-retryable: got %s attempt=%d", fatal.Phase, fatal.Attempt)
	}
}

func TestRetrierStopsAtCeiling(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	r := testRetrier(clock, 3)

	calls := 0
	err := r.Do(context.Background(), "fetch", func(context.Context, int) error {
		calls++
		if calls <= 3 {
			return errs.New(errs.RateLimited, "status 429")
		}
		return nil
	})

	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.RateLimited {
		t.Fatalf("err: got %v, want RateLimited", err)
	}
	if e.Attempts != 3 {
		t.Errorf("Attempts: got %d, want 3", e.Attempts)
	}
	if e.Elapsed != 6*time.Second {
		t.Errorf("Elapsed: got %v, want 6s", e.Elapsed)
	}
	sleeps := clock.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 2*time.Second || sleeps[1] != 4*time.Second {
		t.Errorf("sleeps: got %v, want [2s 4s]", sleeps)
	}
}

func TestRetrierRecoversAfterNetworkError(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	r := testRetrier(clock, 3)

	var attempts []int
	err := r.Do(context.Background(), "fetch", func(_ context.Context, attempt int) error {
		attempts = append(attempts, attempt)
		if attempt == 1 {
			return errs.New(errs.NetworkError, "timeout")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempts) != 2 || attempts[1] != 2 {
		t.Errorf("attempts: got %v, want [1 2]", attempts)
	}
	if sleeps := clock.Sleeps(); len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Errorf("sleeps: got %v, want [1s]", sleeps)
	}
}

func TestRetrierDoesNotRetryFatal(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	r := testRetrier(clock, 5)

	calls := 0
	err := r.Do(context.Background(), "fetch", func(context.Context, int) error {
		calls++
		return errs.New(errs.FetchFailed, "status 404")
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if !errs.Is(err, errs.FetchFailed) {
		t.Errorf("err: got %v, want FetchFailed", err)
	}
	if len(clock.Sleeps()) != 0 {
		t.Error("no backoff expected for a fatal error")
	}
}

func TestRetrierWrapsUnclassified(t *testing.T) {
	r := testRetrier(NewFakeClock(time.Unix(0, 0)), 3)
	boom := errors.New("boom")

	err := r.Do(context.Background(), "op", func(context.Context, int) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("err should wrap the cause, got %v", err)
	}
}
