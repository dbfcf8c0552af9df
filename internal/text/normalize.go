package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DocumentText is the canonical form of a raw document used by every matcher.
// Cleaned is lower-cased, free of non-printable characters and has every
// whitespace run collapsed to a single space.
type DocumentText struct {
	Raw       string `json:"-"`
	Cleaned   string `json:"cleaned"`
	WordCount int    `json:"wordCount"`
}

// Empty reports whether the document carries no usable text.
func (d DocumentText) Empty() bool {
	return d.WordCount == 0
}

// Normalize never fails: empty or blank input yields an empty document.
func Normalize(raw string) DocumentText {
	var b strings.Builder
	b.Grow(len(raw))

	pendingSpace := false
	for _, r := range norm.NFC.String(strings.ToValidUTF8(raw, " ")) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case !unicode.IsPrint(r):
			// Zero-width and control characters are dropped without
			// splitting the surrounding word.
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}

	cleaned := b.String()

	return DocumentText{
		Raw:       raw,
		Cleaned:   cleaned,
		WordCount: len(strings.Fields(cleaned)),
	}
}

// Fold strips diacritics so that "expérience" and "experience" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
