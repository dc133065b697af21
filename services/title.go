package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleLimit is the maximum optimized title length in characters.
const TitleLimit = 80

var smallWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {}, "for": {},
	"in": {}, "nor": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

// BuildTitle appends high-scoring keywords that the original title lacks
// while they fit within limit, truncates if the title is still too long, and
// applies title case.
func BuildTitle(original string, keywords []ScoredKeyword, limit int) string {
	title := normaliseText(original)

	for _, kw := range keywords {
		k := normaliseText(kw.Keyword)
		if k == "" || strings.Contains(strings.ToLower(title), strings.ToLower(k)) {
			continue
		}
		candidate := title + " " + k
		if utf8.RuneCountInString(candidate) > limit {
			break
		}
		title = candidate
	}

	if utf8.RuneCountInString(title) > limit {
		title = truncateTitle(title, limit)
	}
	return titleCase(title)
}

// truncateTitle cuts at the last word boundary at or before 80% of limit, or
// hard-cuts at limit when no such boundary exists.
func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}

	cutoff := int(float64(limit) * 0.8)
	for i := cutoff; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return strings.TrimSpace(string(runes[:i]))
		}
	}
	return strings.TrimSpace(string(runes[:limit]))
}

// titleCase capitalises lower-case words except small words after the first.
// Words that already contain capitals (iPhone, USB-C) are kept as written.
func titleCase(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		lower := strings.ToLower(w)
		if _, small := smallWords[lower]; small && i > 0 {
			words[i] = lower
			continue
		}
		if w != lower {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
