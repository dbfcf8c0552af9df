package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		cleaned   string
		wordCount int
	}{
		{
			name:      "empty",
			raw:       "",
			cleaned:   "",
			wordCount: 0,
		},
		{
			name:      "only whitespace",
			raw:       " \n\t \r\n ",
			cleaned:   "",
			wordCount: 0,
		},
		{
			name:      "collapses whitespace and lowercases",
			raw:       "  JEAN   DUPONT\n\nPython\tDjango  ",
			cleaned:   "jean dupont python django",
			wordCount: 4,
		},
		{
			name:      "keeps punctuation used by emails and skills",
			raw:       "Jean.Dupont@Email.com - C++, Node.js & CI/CD",
			cleaned:   "jean.dupont@email.com - c++, node.js & ci/cd",
			wordCount: 6,
		},
		{
			name:      "drops non printable characters",
			raw:       "py\u200bthon\x00 dja\x07ngo",
			cleaned:   "python django",
			wordCount: 2,
		},
		{
			name:      "keeps accents",
			raw:       "Expérience  Développeur",
			cleaned:   "expérience développeur",
			wordCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Normalize(tt.raw)
			assert.Equal(t, tt.cleaned, doc.Cleaned)
			assert.Equal(t, tt.wordCount, doc.WordCount)
			assert.Equal(t, tt.raw, doc.Raw)
			assert.Equal(t, tt.wordCount == 0, doc.Empty())
		})
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "annees d'experience", Fold("années d'expérience"))
	assert.Equal(t, "creee a paris", Fold("créée à paris"))
	assert.Equal(t, "plain", Fold("plain"))
}
