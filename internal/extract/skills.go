package extract

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/cvrank/internal/text"
)

// SkillSet maps a canonical skill name to its weight in [0,1]. The heaviest
// skill of a non-empty set always weighs exactly 1.
type SkillSet map[string]float64

// Names returns skills ordered by weight descending, then by name.
func (s SkillSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s[names[i]] != s[names[j]] {
			return s[names[i]] > s[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Skills extracts the weighted skill set of a document. A skill mentioned n
// times weighs 1+ln(n) before normalization.
func (e *Extractor) Skills(doc text.DocumentText) SkillSet {
	skills := make(SkillSet)
	if doc.Empty() || e.vocabulary == nil {
		return skills
	}

	maxWeight := 0.0
	for _, entry := range e.vocabulary.entries {
		count := countEntry(doc.Cleaned, entry)
		if count == 0 {
			continue
		}
		w := 1 + math.Log(float64(count))
		skills[entry.name] = w
		maxWeight = math.Max(maxWeight, w)
	}

	for name, w := range skills {
		skills[name] = w / maxWeight
	}

	return skills
}

type span struct {
	start, end int
}

// countEntry counts non-overlapping whole-word occurrences of any form of the
// entry, so "vue.js" is not counted twice through its "vue" alias.
func countEntry(haystack string, entry vocabularyEntry) int {
	var spans []span
	for _, form := range entry.forms {
		for offset := 0; offset < len(haystack); {
			idx := strings.Index(haystack[offset:], form)
			if idx < 0 {
				break
			}
			start := offset + idx
			end := start + len(form)
			if isBoundary(haystack, start, end) {
				spans = append(spans, span{start: start, end: end})
			}
			offset = start + 1
		}
	}

	if len(spans) == 0 {
		return 0
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	count := 0
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		count++
		lastEnd = s.end
	}
	return count
}

// isBoundary rejects matches glued to a word, an email or a dotted token, so
// "js" does not match inside "node.js".
func isBoundary(s string, start, end int) bool {
	if start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) || r == '_' || r == '@' {
			return false
		}
		if r == '.' && start-size > 0 {
			prev, _ := utf8.DecodeLastRuneInString(s[:start-size])
			if isWordRune(prev) {
				return false
			}
		}
	}
	if end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) || r == '_' || r == '@' {
			return false
		}
		if r == '.' && end+size < len(s) {
			next, _ := utf8.DecodeRuneInString(s[end+size:])
			if isWordRune(next) {
				return false
			}
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
