package utils

import (
	"context"
	"fmt"
	"time"

	"listing-optimizer/errs"
)

// RetryPhase is the state of a RetryState.
type RetryPhase int

const (
	RetryPending RetryPhase = iota
	RetryBackoff
	RetryExhausted
	RetrySucceeded
)

func (p RetryPhase) String() string {
	switch p {
	case RetryPending:
		return "pending"
	case RetryBackoff:
		return "backoff"
	case RetryExhausted:
		return "exhausted"
	case RetrySucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// RetryPolicy holds the parameters for the retry strategy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Backoff returns the wait before the next attempt after attempt attempts
// have failed with kind. RateLimited grows exponentially, NetworkError
// linearly; both are capped at MaxDelay when it is set.
func (p RetryPolicy) Backoff(kind errs.Kind, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	var delay time.Duration
	switch kind {
	case errs.RateLimited:
		shift := attempt
		if shift > 30 {
			shift = 30
		}
		delay = p.BaseDelay * time.Duration(int64(1)<<shift)
	case errs.NetworkError:
		delay = p.BaseDelay * time.Duration(attempt)
	default:
		return 0
	}
	if p.MaxDelay > 0 && (delay > p.MaxDelay || delay < 0) {
		delay = p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// RetryState tracks one retried operation. It is scoped to a single call and
// discarded once it reaches RetrySucceeded or RetryExhausted.
type RetryState struct {
	Phase    RetryPhase
	Attempt  int
	LastKind errs.Kind
	LastErr  error
	Delay    time.Duration
}

// Next records the outcome of the attempt that just finished.
func (s *RetryState) Next(p RetryPolicy, err error) {
	s.Attempt++
	if err == nil {
		s.Phase = RetrySucceeded
		s.Delay = 0
		s.LastErr = nil
		s.LastKind = ""
		return
	}

	s.LastErr = err
	s.LastKind = errs.KindOf(err)
	if !s.LastKind.Retryable() || s.Attempt >= p.maxAttempts() {
		s.Phase = RetryExhausted
		s.Delay = 0
		return
	}
	s.Phase = RetryBackoff
	s.Delay = p.Backoff(s.LastKind, s.Attempt)
}

// Retrier drives a RetryState with an injectable clock.
type Retrier struct {
	Policy RetryPolicy
	Clock  Clock
	Logger *Logger
}

// Do executes fn until it succeeds, fails with a non-retryable error, or the
// attempt ceiling is reached. fn receives the 1-based attempt number.
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context, attempt int) error) error {
	clock := r.Clock
	if clock == nil {
		clock = RealClock()
	}
	start := clock.Now()
	state := RetryState{Phase: RetryPending}

	for {
		err := fn(ctx, state.Attempt+1)
		state.Next(r.Policy, err)

		switch state.Phase {
		case RetrySucceeded:
			return nil

		case RetryBackoff:
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d, %s): %v, retrying in %v",
					operation, state.Attempt, r.Policy.maxAttempts(), state.LastKind, err, state.Delay)
			}
			if sleepErr := clock.Sleep(ctx, state.Delay); sleepErr != nil {
				state.Phase = RetryExhausted
				state.LastErr = errs.Wrap(errs.NetworkError, sleepErr, "%s interrupted during backoff", operation)
				return annotate(operation, &state, clock.Now().Sub(start))
			}

		default:
			return annotate(operation, &state, clock.Now().Sub(start))
		}
	}
}

func annotate(operation string, state *RetryState, elapsed time.Duration) error {
	if e, ok := errs.As(state.LastErr); ok {
		out := *e
		out.Attempts = state.Attempt
		out.Elapsed = elapsed
		return &out
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, state.Attempt, state.LastErr)
}
