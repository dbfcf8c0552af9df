package extract

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/spigell/cvrank/internal/text"
)

// ExperienceSource names the strategy that resolved the years of experience.
type ExperienceSource string

const (
	ExperienceExplicit   ExperienceSource = "explicit"
	ExperienceDateRanges ExperienceSource = "date_ranges"
	ExperienceMentioned  ExperienceSource = "mentioned"
	ExperienceNone       ExperienceSource = "none"
)

type experienceStrategy struct {
	source ExperienceSource
	match  func(folded string) (int, bool)
}

// Patterns run on accent-folded text. The first explicit pattern that matches
// wins, French claims before English ones.
var (
	explicitExperiencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,3})\s*\+?\s*(?:ans?|annees?)\s+(?:d\s*['’]\s*|de\s+)?(?:experience|exp\b)`),
		regexp.MustCompile(`experience\s*(?::|-|–)\s*(\d{1,3})\s*\+?\s*(?:years?|yrs?|ans?|annees?)`),
		regexp.MustCompile(`(\d{1,3})\s*\+?\s*(?:years?|yrs?)\s+(?:of\s+)?(?:professional\s+|relevant\s+|hands-on\s+|industry\s+)?(?:experience|exp\b)`),
	}

	dateRangePattern = regexp.MustCompile(
		`\b((?:19|20)\d{2})\s*(?:-|–|—|to|a|au|until|jusqu\s*['’]?\s*(?:a|en))\s*((?:19|20)\d{2}|present|current|now|today|aujourd\s*['’]\s*hui|actuel(?:lement)?|ce jour)\b`,
	)

	experienceMentionPattern = regexp.MustCompile(`\b(?:experiences?|experienced|experimentee?)\b`)
)

const earliestCareerYear = 1950

// ExperienceYears estimates years of experience in [0, max], trying explicit
// claims first, then employment date ranges, then a bare mention of experience.
func (e *Extractor) ExperienceYears(doc text.DocumentText) (int, ExperienceSource) {
	if doc.Empty() {
		return 0, ExperienceNone
	}

	folded := text.Fold(doc.Cleaned)
	for _, strategy := range e.experienceChain {
		if years, ok := strategy.match(folded); ok {
			return years, strategy.source
		}
	}

	return 0, ExperienceNone
}

func (e *Extractor) explicitYears(folded string) (int, bool) {
	for _, re := range explicitExperiencePatterns {
		m := re.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return e.capYears(n), true
	}
	return 0, false
}

type yearRange struct {
	from, to int
}

func (e *Extractor) dateRangeYears(folded string) (int, bool) {
	current := e.now().Year()

	var ranges []yearRange
	for _, m := range dateRangePattern.FindAllStringSubmatch(folded, -1) {
		from, err := strconv.Atoi(m[1])
		if err != nil || from < earliestCareerYear || from > current {
			continue
		}

		to := current
		if n, err := strconv.Atoi(m[2]); err == nil {
			to = min(n, current)
		}
		if to < from {
			continue
		}

		ranges = append(ranges, yearRange{from: from, to: to})
	}

	total := coveredYears(ranges)
	if total == 0 {
		return 0, false
	}
	return e.capYears(total), true
}

// coveredYears merges overlapping or adjacent ranges and sums their length.
func coveredYears(ranges []yearRange) int {
	if len(ranges) == 0 {
		return 0
	}

	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].from < ranges[j].from
	})

	total := 0
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if r.from <= cur.to {
			cur.to = max(cur.to, r.to)
			continue
		}
		total += cur.to - cur.from
		cur = r
	}
	return total + cur.to - cur.from
}

func (e *Extractor) mentionedYears(folded string) (int, bool) {
	if e.defaultYears < 0 || !experienceMentionPattern.MatchString(folded) {
		return 0, false
	}
	return e.capYears(e.defaultYears), true
}

func (e *Extractor) capYears(n int) int {
	return max(0, min(n, e.maxYears))
}
