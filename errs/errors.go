package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-optimizer/models"
)

// Kind classifies a failure.
type Kind string

const (
	InvalidInput      Kind = "InvalidInput"
	RateLimited       Kind = "RateLimited"
	NetworkError      Kind = "NetworkError"
	FetchFailed       Kind = "FetchFailed"
	ValidationFailed  Kind = "ValidationFailed"
	ConsistencyFailed Kind = "ConsistencyFailed"
	PipelineFailed    Kind = "PipelineFailed"
)

// Retryable reports whether the acquisition layer may try again after a
// failure of this kind.
func (k Kind) Retryable() bool {
	return k == RateLimited || k == NetworkError
}

// Error is the single typed failure surfaced by every component.
type Error struct {
	Kind     Kind
	Stage    string
	URL      string
	Attempts int
	Elapsed  time.Duration
	Timings  []models.StageTiming
	Msg      string
	Err      error
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Stage != "" {
		fmt.Fprintf(&b, " [stage=%s]", e.Stage)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " [url=%s]", e.URL)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " [attempts=%d elapsed=%s]", e.Attempts, e.Elapsed.Round(time.Millisecond))
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err. Errors that were never
// classified are PipelineFailed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return PipelineFailed
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
