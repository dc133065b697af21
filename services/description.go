package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"listing-optimizer/models"
)

// Description length band, in characters.
const (
	DescriptionMin = 300
	DescriptionMax = 2000
)

const trustBlock = `Why buy from us:
✓ Every item is inspected and described accurately before listing.
✓ Orders are packed carefully and shipped with tracking.
✓ Questions are answered promptly, before and after your purchase.`

const shippingBlock = `Shipping Details:
Orders are dispatched within one business day of cleared payment. Tracking information is provided for every shipment. Items are packed securely to arrive in the condition described.`

// BuildDescription assembles the listing description and fits it into the
// [minLen, maxLen] band.
func BuildDescription(attrs *models.ListingAttributes, minLen, maxLen int) string {
	var b strings.Builder

	if cond := normaliseText(attrs.Condition); cond != "" {
		fmt.Fprintf(&b, "Up for sale: %s in %s condition.", attrs.Title, cond)
	} else {
		fmt.Fprintf(&b, "Up for sale: %s.", attrs.Title)
	}
	if desc := normaliseText(attrs.Description); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}

	var features []string
	for _, k := range sortedKeys(attrs.Specifications) {
		if strings.Contains(strings.ToLower(k), "condition") {
			continue
		}
		features = append(features, fmt.Sprintf("• %s: %s", k, attrs.Specifications[k]))
	}
	if len(features) > 0 {
		b.WriteString("\n\nKey Features:\n")
		b.WriteString(strings.Join(features, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(trustBlock)

	out := b.String()
	if utf8.RuneCountInString(out) < minLen {
		out += "\n\n" + specificationsBlock(attrs) + "\n\n" + shippingBlock
	}
	if utf8.RuneCountInString(out) > maxLen {
		out = truncateDescription(out, minLen, maxLen)
	}
	return out
}

func specificationsBlock(attrs *models.ListingAttributes) string {
	var b strings.Builder
	b.WriteString("Specifications:\n")
	fmt.Fprintf(&b, "This listing is for the %s exactly as described.", attrs.Title)
	for _, k := range sortedKeys(attrs.Specifications) {
		fmt.Fprintf(&b, " %s: %s.", k, attrs.Specifications[k])
	}
	if attrs.Location != "" {
		fmt.Fprintf(&b, " Ships from %s.", attrs.Location)
	}
	return b.String()
}

// truncateDescription cuts at the last sentence end that keeps the text
// within [minLen, maxLen], falling back to the last whole word.
func truncateDescription(s string, minLen, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	for i := maxLen - 1; i >= minLen-1 && i >= 0; i-- {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		return string(runes[:i+1])
	}

	for i := maxLen; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace)
		}
	}
	return string(runes[:maxLen])
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
