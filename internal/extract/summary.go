package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/cvrank/internal/text"
)

const (
	NothingToSummarize  = "Nothing to summarize."
	SummaryNotAvailable = "Summary not available."

	DefaultSummarySentences = 4

	minSentenceLength = 30
	maxSummaryScanned = 25
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n+`)

	actionVerbs = []string{
		// english
		"developed", "designed", "built", "led", "managed", "implemented", "created",
		"improved", "optimized", "delivered", "launched", "migrated", "automated",
		"architected", "deployed", "maintained", "mentored", "reduced", "increased",
		// french
		"developpe", "concu", "realise", "dirige", "gere", "mis en place", "cree",
		"ameliore", "optimise", "livre", "lance", "migre", "automatise", "deploye",
		"encadre", "pilote", "conduit",
	}
)

// Summary picks a few informative sentences, favouring those that name
// skills or start with an action verb.
func (e *Extractor) Summary(doc text.DocumentText) string {
	if doc.Empty() {
		return NothingToSummarize
	}

	source := doc.Raw
	if strings.TrimSpace(source) == "" {
		source = doc.Cleaned
	}

	type candidate struct {
		sentence string
		score    int
	}

	var candidates []candidate
	for _, s := range sentenceSplit.Split(source, -1) {
		s = strings.Join(strings.Fields(s), " ")
		if len(s) <= minSentenceLength {
			continue
		}
		candidates = append(candidates, candidate{sentence: s, score: e.sentenceScore(s)})
		if len(candidates) == maxSummaryScanned {
			break
		}
	}

	if len(candidates) == 0 {
		return SummaryNotAvailable
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	picked := make([]string, 0, e.summarySentences)
	for _, c := range candidates[:min(e.summarySentences, len(candidates))] {
		picked = append(picked, strings.TrimRight(c.sentence, ".!? "))
	}

	return strings.Join(picked, ". ") + "."
}

func (e *Extractor) sentenceScore(sentence string) int {
	doc := text.Normalize(sentence)
	score := 2 * len(e.Skills(doc))

	folded := " " + text.Fold(doc.Cleaned) + " "
	for _, verb := range actionVerbs {
		if strings.Contains(folded, " "+verb+" ") {
			score++
		}
	}
	return score
}
