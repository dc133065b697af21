package scraper

import (
	"context"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// HTTPOptions configures NewHTTPTransport.
type HTTPOptions struct {
	Timeout          time.Duration
	CloudflareBypass bool
}

// HTTPTransport fetches pages with a plain HTTP client.
type HTTPTransport struct {
	client *resty.Client
}

func NewHTTPTransport(opts HTTPOptions) *HTTPTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Get(ctx context.Context, url, userAgent string) (*Response, error) {
	res, err := t.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
		URL:        url,
	}, nil
}
