package similarity

import (
	"context"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/cvrank/internal/text"
)

const LexicalName = "lexical"

// Lexical compares two texts with TF-IDF vectors over unigrams and bigrams.
// The idf is fitted on the pair itself, so terms shared by both texts weigh
// less than terms unique to one of them.
type Lexical struct{}

func NewLexical() *Lexical {
	return &Lexical{}
}

func (l *Lexical) Name() string {
	return LexicalName
}

func (l *Lexical) Similarity(ctx context.Context, a, b string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, ErrEmptyText
	}

	ta := termCounts(a)
	tb := termCounts(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, nil
	}

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := ta[term]; ok {
			df++
		}
		if _, ok := tb[term]; ok {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	va := weigh(ta, idf)
	vb := weigh(tb, idf)

	dot := 0.0
	for term, wa := range va {
		dot += wa * vb[term]
	}

	return Clamp(dot), nil
}

// weigh returns the L2-normalized tf-idf vector of counts.
func weigh(counts map[string]int, idf func(string) float64) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	norm := 0.0
	for term, c := range counts {
		w := float64(c) * idf(term)
		vec[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

func termCounts(s string) map[string]int {
	tokens := tokenize(s)
	counts := make(map[string]int, 2*len(tokens))
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}
	return counts
}

// tokenize lower-cases and folds s, keeps runs of letters and digits (plus the
// '+' and '#' of "c++" or "c#") and drops stop words and one-rune tokens.
func tokenize(s string) []string {
	folded := text.Fold(strings.ToLower(s))
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimLeft(f, "+#")
		if utf8.RuneCountInString(f) < 2 || text.IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
