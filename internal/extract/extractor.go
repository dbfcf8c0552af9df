// Package extract pulls structured signals (skills, years of experience,
// candidate identity and a short summary) out of normalized résumé text.
//
// Every operation is total: malformed input degrades to an empty or default
// value instead of an error.
package extract

import (
	"time"

	"github.com/spigell/cvrank/internal/text"
)

const (
	DefaultExperienceYears = 3
	MaxExperienceYears     = 30
	DefaultNameLines       = 15
	UnknownCandidate       = "Unknown Candidate"
)

// Config tunes the extractor. Zero values select the defaults.
type Config struct {
	Vocabulary *Vocabulary
	// DefaultExperienceYears is returned when experience is mentioned without
	// any number or date range. Negative disables the fallback.
	DefaultExperienceYears int
	MaxExperienceYears     int
	NameLines              int
	SummarySentences       int
	Now                    func() time.Time
}

// Extractor is stateless after construction and safe for concurrent use.
type Extractor struct {
	vocabulary       *Vocabulary
	defaultYears     int
	maxYears         int
	nameLines        int
	summarySentences int
	now              func() time.Time
	experienceChain  []experienceStrategy
}

func New(cfg Config) *Extractor {
	e := &Extractor{
		vocabulary:       cfg.Vocabulary,
		defaultYears:     cfg.DefaultExperienceYears,
		maxYears:         cfg.MaxExperienceYears,
		nameLines:        cfg.NameLines,
		summarySentences: cfg.SummarySentences,
		now:              cfg.Now,
	}

	if e.vocabulary == nil {
		e.vocabulary = DefaultVocabulary()
	}
	if e.defaultYears == 0 {
		e.defaultYears = DefaultExperienceYears
	}
	if e.maxYears <= 0 {
		e.maxYears = MaxExperienceYears
	}
	if e.nameLines <= 0 {
		e.nameLines = DefaultNameLines
	}
	if e.summarySentences <= 0 {
		e.summarySentences = DefaultSummarySentences
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.experienceChain = []experienceStrategy{
		{source: ExperienceExplicit, match: e.explicitYears},
		{source: ExperienceDateRanges, match: e.dateRangeYears},
		{source: ExperienceMentioned, match: e.mentionedYears},
	}

	return e
}

// Profile bundles every signal extracted from one résumé.
type Profile struct {
	Identity         Identity         `json:"identity"`
	Skills           SkillSet         `json:"skills"`
	ExperienceYears  int              `json:"experienceYears"`
	ExperienceSource ExperienceSource `json:"experienceSource"`
	Summary          string           `json:"summary"`
	WordCount        int              `json:"wordCount"`
}

func (e *Extractor) Profile(doc text.DocumentText) Profile {
	years, source := e.ExperienceYears(doc)
	return Profile{
		Identity:         e.Identity(doc),
		Skills:           e.Skills(doc),
		ExperienceYears:  years,
		ExperienceSource: source,
		Summary:          e.Summary(doc),
		WordCount:        doc.WordCount,
	}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocabulary
}
