package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"listing-optimizer/models"
	"listing-optimizer/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// locationRegexp captures "Located in: X" item location lines
	locationRegexp = regexp.MustCompile(`(?i)located in:?\s*([^\n|]+)`)
	// titleSuffixRegexp strips the marketplace suffix from document titles
	titleSuffixRegexp = regexp.MustCompile(`\s*\|\s*eBay.*$`)
)

const maxImages = 12

// Extractor turns fetched listing markup into ListingAttributes.
type Extractor struct {
	logger *utils.Logger
}

// NewExtractor creates an Extractor with the given logger.
func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads the listing fields out of content. Missing fields are left
// empty; deciding whether they are required is up to the caller.
func (e *Extractor) Extract(content *models.Content) (*models.ListingAttributes, error) {
	if content == nil || strings.TrimSpace(content.Body) == "" {
		return nil, fmt.Errorf("extract: no content")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.Body))
	if err != nil {
		return nil, fmt.Errorf("extract: parse document: %w", err)
	}

	attrs := &models.ListingAttributes{
		Title: firstNonEmpty(
			doc.Find(`h1.x-item-title__mainTitle`).First().Text(),
			doc.Find(`h1[itemprop="name"]`).First().Text(),
			content.Meta["og:title"],
			doc.Find("h1").First().Text(),
			titleSuffixRegexp.ReplaceAllString(content.Title, ""),
		),
		Description: firstNonEmpty(
			doc.Find(`[itemprop="description"]`).First().Text(),
			content.Meta["og:description"],
			content.Meta["description"],
		),
		Condition: firstNonEmpty(
			doc.Find(`.x-item-condition-text .ux-textspans`).First().Text(),
			doc.Find(`[itemprop="itemCondition"]`).First().Text(),
			doc.Find(`[itemprop="itemCondition"]`).First().AttrOr("content", ""),
			content.Meta["product:condition"],
		),
		SellerID: firstNonEmpty(
			doc.Find(`.x-sellercard-atf__info__about-seller a`).First().Text(),
			doc.Find(`[data-testid="str-title"] a`).First().Text(),
			content.Meta["seller"],
		),
		Specifications: extractSpecifications(doc),
		Images:         extractImages(doc, content.Meta),
	}

	attrs.Price = e.parsePrice(firstNonEmpty(
		doc.Find(`[itemprop="price"]`).First().AttrOr("content", ""),
		doc.Find(`.x-price-primary .ux-textspans`).First().Text(),
		doc.Find(`[itemprop="price"]`).First().Text(),
		content.Meta["product:price:amount"],
		content.Meta["og:price:amount"],
	))

	attrs.Location = firstNonEmpty(
		doc.Find(`[itemprop="availableAtOrFrom"]`).First().Text(),
		attrs.Specifications["Item location"],
	)
	if attrs.Location == "" {
		if m := locationRegexp.FindStringSubmatch(doc.Find("body").Text()); len(m) == 2 {
			attrs.Location = normaliseText(m[1])
		}
	}

	e.logger.Debug("[extract] %q price=%.2f condition=%q specs=%d images=%d",
		attrs.Title, attrs.Price, attrs.Condition, len(attrs.Specifications), len(attrs.Images))
	return attrs, nil
}

// parsePrice extracts the first numeric price from a raw string.
// Examples:
//
//	"US $899.99" → 899.99
//	"£1,200.50"  → 1200.50
func (e *Extractor) parsePrice(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

func extractSpecifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)
	add := func(k, v string) {
		k = strings.TrimSuffix(normaliseText(k), ":")
		v = normaliseText(v)
		if k == "" || v == "" {
			return
		}
		if _, dup := specs[k]; !dup {
			specs[k] = v
		}
	}

	doc.Find(`.ux-labels-values`).Each(func(_ int, s *goquery.Selection) {
		add(s.Find(`.ux-labels-values__labels`).Text(), s.Find(`.ux-labels-values__values`).Text())
	})
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			add(dt.Text(), dt.NextFiltered("dd").Text())
		})
	})
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() == 2 {
			add(cells.Eq(0).Text(), cells.Eq(1).Text())
		}
	})
	return specs
}

func extractImages(doc *goquery.Document, meta map[string]string) []string {
	seen := make(map[string]struct{})
	var images []string
	add := func(src string) {
		src = strings.TrimSpace(src)
		if !strings.HasPrefix(src, "http") || len(images) >= maxImages {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	}

	add(meta["og:image"])
	doc.Find(`img[itemprop="image"], .ux-image-carousel img`).Each(func(_ int, img *goquery.Selection) {
		add(firstNonEmpty(img.AttrOr("data-zoom-src", ""), img.AttrOr("data-src", ""), img.AttrOr("src", "")))
	})
	return images
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = normaliseText(v); v != "" {
			return v
		}
	}
	return ""
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
