package scraper

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"listing-optimizer/errs"
	"listing-optimizer/models"
)

// ParseContent reads the document title and meta tags out of a fetched page.
func ParseContent(url string, status int, body []byte, fetchedAt time.Time) (*models.Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.FetchFailed, err, "malformed document")
	}

	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content := collapse(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		for _, attr := range []string{"property", "name", "itemprop"} {
			key := strings.ToLower(strings.TrimSpace(s.AttrOr(attr, "")))
			if key == "" {
				continue
			}
			if _, seen := meta[key]; !seen {
				meta[key] = content
			}
			return
		}
	})

	title := collapse(doc.Find("title").First().Text())
	if title == "" {
		title = meta["og:title"]
	}

	if title == "" && len(meta) == 0 && collapse(doc.Find("body").Text()) == "" {
		return nil, errs.New(errs.FetchFailed, "document has no readable content")
	}

	return &models.Content{
		URL:        url,
		StatusCode: status,
		Title:      title,
		Meta:       meta,
		Body:       string(body),
		FetchedAt:  fetchedAt,
	}, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
