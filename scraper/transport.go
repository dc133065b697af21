package scraper

import "context"

// Response is what a Transport returns for a completed request, whatever its
// status.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Transport performs a single GET. A non-nil error means the request never
// produced a response (connection, DNS, timeout).
type Transport interface {
	Get(ctx context.Context, url, userAgent string) (*Response, error)
}
