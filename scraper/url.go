package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"listing-optimizer/errs"
)

var (
	sourceHost = regexp.MustCompile(`^(?:www\.)?(ebay\.(?:com|co\.uk|de|fr|it|es|ca|com\.au))$`)
	sourcePath = regexp.MustCompile(`^/itm/(?:[^/]+/)?(\d{9,15})/?$`)
)

// NormalizeURL validates a listing URL against the supported marketplace
// pattern and returns its canonical form (https, www host, no slug, query or
// fragment).
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errs.New(errs.InvalidInput, "empty listing url")
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", errs.Wrap(errs.InvalidInput, err, "unparseable listing url %q", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errs.New(errs.InvalidInput, "unsupported scheme %q", u.Scheme)
	}
	if u.User != nil || u.Port() != "" {
		return "", errs.New(errs.InvalidInput, "listing url must not carry credentials or a port")
	}

	host := sourceHost.FindStringSubmatch(strings.ToLower(u.Hostname()))
	if host == nil {
		return "", errs.New(errs.InvalidInput, "host %q is not a supported marketplace", u.Hostname())
	}
	path := sourcePath.FindStringSubmatch(u.Path)
	if path == nil {
		return "", errs.New(errs.InvalidInput, "path %q is not an item page", u.Path)
	}

	return "https://www." + host[1] + "/itm/" + path[1], nil
}
