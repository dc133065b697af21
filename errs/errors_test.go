package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{RateLimited, true},
		{NetworkError, true},
		{InvalidInput, false},
		{FetchFailed, false},
		{ValidationFailed, false},
		{ConsistencyFailed, false},
		{PipelineFailed, false},
	}
	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable(): got %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := New(FetchFailed, "status %d", 404)
	wrapped := fmt.Errorf("fetch: %w", base)

	if got := KindOf(wrapped); got != FetchFailed {
		t.Errorf("KindOf: got %s, want %s", got, FetchFailed)
	}
	if !Is(wrapped, FetchFailed) {
		t.Error("Is(wrapped, FetchFailed) should be true")
	}
	if got := KindOf(errors.New("boom")); got != PipelineFailed {
		t.Errorf("KindOf(plain): got %s, want %s", got, PipelineFailed)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil): got %q, want empty", got)
	}
}

func TestErrorMessageCarriesContext(t *testing.T) {
	cause := errors.New("connection reset")
	e := Wrap(NetworkError, cause, "giving up")
	e.Stage = "Fetching"
	e.URL = "https://www.ebay.com/itm/123456789"
	e.Attempts = 3
	e.Elapsed = 1500 * time.Millisecond

	msg := e.Error()
	for _, want := range []string{"NetworkError", "stage=Fetching", "attempts=3", "ebay.com", "connection reset"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q; missing %q", msg, want)
		}
	}
	if !errors.Is(e, cause) {
		t.Error("Unwrap should expose the cause")
	}
}
