package scraper

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"

	"listing-optimizer/errs"
)

// Markers of an interstitial bot check served with a 200 status.
var botCheckMarkers = [][]byte{
	[]byte("pardon our interruption"),
	[]byte("splashui/challenge"),
	[]byte("splashui/captcha"),
	[]byte("g-recaptcha"),
	[]byte("please verify yourself"),
}

// classify maps a transport outcome onto the error taxonomy. It returns nil
// for a usable response.
func classify(res *Response, err error) error {
	if err != nil {
		return errs.Wrap(errs.NetworkError, err, "%s", describeNetworkError(err))
	}
	if res == nil {
		return errs.New(errs.FetchFailed, "transport returned no response")
	}

	switch {
	case res.StatusCode == http.StatusTooManyRequests, res.StatusCode == http.StatusServiceUnavailable:
		return errs.New(errs.RateLimited, "remote throttled the request (status %d)", res.StatusCode)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return errs.New(errs.FetchFailed, "unexpected status %d", res.StatusCode)
	case len(bytes.TrimSpace(res.Body)) == 0:
		return errs.New(errs.FetchFailed, "empty response body")
	case isBotCheck(res.Body):
		return errs.New(errs.RateLimited, "remote served a bot check page")
	}
	return nil
}

func isBotCheck(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, m := range botCheckMarkers {
		if bytes.Contains(lower, m) {
			return true
		}
	}
	return false
}

func describeNetworkError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &dnsErr):
		return "host could not be resolved"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection reset"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	default:
		return "network failure"
	}
}
