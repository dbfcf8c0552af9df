package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/text"
)

type stubEngine struct {
	value float64
	err   error
	calls int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Similarity(context.Context, string, string) (float64, error) {
	s.calls++
	return s.value, s.err
}

const (
	scenarioCV  = "JEAN DUPONT jean.dupont@email.com Python Django React 3 years experience"
	scenarioJob = "Developer needed: Python, Django, React, 2+ years"
)

// longCV pads a résumé past the short-text threshold.
func longCV(body string) string {
	filler := strings.Repeat("delivered reliable features for customers in production environments ", 8)
	return body + " " + filler
}

func newScorer(engine *stubEngine) *Scorer {
	return New(engine, extract.New(extract.Config{}), DefaultConfig(), zap.NewNop())
}

func TestScoreScenario(t *testing.T) {
	s := newScorer(&stubEngine{value: 0.7})
	res := s.Score(context.Background(), scenarioCV, scenarioJob)

	assert.Subset(t, res.MatchedSkills, []string{"python", "django", "react"})
	assert.Empty(t, res.MissingSkills)
	assert.Equal(t, 3, res.ExperienceYears)
	assert.True(t, res.LowConfidence)
	assert.Equal(t, DefaultLowConfidenceScore, res.Score)
}

func TestScoreEmptyInputs(t *testing.T) {
	engine := &stubEngine{value: 1}
	s := newScorer(engine)

	res := s.Score(context.Background(), "", scenarioJob)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, []string{}, res.MatchedSkills)
	assert.Equal(t, []string{}, res.MissingSkills)
	assert.Equal(t, extract.NothingToSummarize, res.Summary)

	res = s.Score(context.Background(), longCV("python"), "   ")
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 0, engine.calls)
}

func TestScoreBounds(t *testing.T) {
	inputs := []struct {
		cv, job string
		sim     float64
	}{
		{cv: longCV("python django react docker kubernetes"), job: "python django react docker kubernetes", sim: 1},
		{cv: longCV("accounting"), job: "python", sim: 0},
		{cv: "python", job: "python", sim: 1},
		{cv: strings.Repeat("python ", 500), job: "python", sim: 5},
		{cv: longCV("java"), job: "senior role", sim: -3},
	}

	for _, in := range inputs {
		res := newScorer(&stubEngine{value: in.sim}).Score(context.Background(), in.cv, in.job)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newScorer(&stubEngine{value: 0.42})
	cv := longCV("python developer with docker and 5 years experience")

	first := s.Score(context.Background(), cv, scenarioJob)
	second := s.Score(context.Background(), cv, scenarioJob)
	assert.Equal(t, first, second)
}

func TestScoreComposition(t *testing.T) {
	s := newScorer(&stubEngine{value: 0.5})
	res := s.Score(context.Background(), longCV("python and django"), "python django")

	assert.Equal(t, []string{"django", "python"}, res.MatchedSkills)
	assert.InDelta(t, 35.0, res.LexicalScore, 1e-9)
	assert.InDelta(t, 32.5, res.SemanticScore, 1e-9)
	assert.GreaterOrEqual(t, res.Score, 67.5)
	assert.LessOrEqual(t, res.Score, 67.5+DefaultMaxJitter+0.001)
	assert.False(t, res.Degraded)
}

func TestScoreMissingSkills(t *testing.T) {
	s := newScorer(&stubEngine{value: 0})
	res := s.Score(context.Background(), longCV("python"), "python kubernetes terraform")

	assert.Equal(t, []string{"python"}, res.MatchedSkills)
	assert.Equal(t, []string{"kubernetes", "terraform"}, res.MissingSkills)
	assert.InDelta(t, 35.0/3, res.LexicalScore, 0.01)
}

func TestScoreEmptyJobSkillsUsesBaseline(t *testing.T) {
	s := newScorer(&stubEngine{value: 0})
	res := s.Score(context.Background(), longCV("python"), "We are looking for a motivated person to join our friendly office")

	assert.Equal(t, DefaultEmptyJobBaseline, res.LexicalScore)
	assert.Empty(t, res.MatchedSkills)
	assert.Empty(t, res.MissingSkills)
	assert.GreaterOrEqual(t, res.Score, DefaultEmptyJobBaseline)
}

func TestScoreDegradedOnSimilarityError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(&stubEngine{err: errors.New("embedding backend unavailable")}, nil, DefaultConfig(), zap.New(core))

	res := s.Score(context.Background(), longCV("accounting"), "python kubernetes")

	require.True(t, res.Degraded)
	assert.Contains(t, res.Error, "embedding backend unavailable")
	assert.Equal(t, DefaultDegradedFloor, res.Score)
	assert.Equal(t, []string{"kubernetes", "python"}, res.MissingSkills)
	assert.Equal(t, 1, logs.FilterMessage("similarity failed, falling back to lexical score").Len())
}

func TestScoreDegradedKeepsLexicalAboveFloor(t *testing.T) {
	s := newScorer(&stubEngine{err: errors.New("timeout")})
	res := s.Score(context.Background(), longCV("python django"), "python django")

	assert.True(t, res.Degraded)
	assert.GreaterOrEqual(t, res.Score, 35.0)
	assert.Less(t, res.Score, 36.0)
}

func TestShortTextPenalty(t *testing.T) {
	s := newScorer(&stubEngine{})

	assert.Equal(t, 1.0, s.penalty(50))
	assert.Equal(t, 1.0, s.penalty(400))
	assert.InDelta(t, 0.75, s.penalty(25), 1e-9)
	assert.InDelta(t, 0.6, s.penalty(10), 1e-9)
	assert.GreaterOrEqual(t, s.penalty(0), DefaultMinPenalty)

	prev := 0.0
	for words := 0; words <= 60; words++ {
		p := s.penalty(words)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestJitter(t *testing.T) {
	s := newScorer(&stubEngine{})

	seen := map[float64]struct{}{}
	for i := 0; i < 200; i++ {
		cleaned := text.Normalize(strings.Repeat("x", i+1)).Cleaned
		j := s.jitter(cleaned)
		assert.GreaterOrEqual(t, j, 0.0)
		assert.LessOrEqual(t, j, DefaultMaxJitter+1e-12)
		assert.Equal(t, j, s.jitter(cleaned))
		seen[j] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestJitterPreservesOrdering(t *testing.T) {
	s := newScorer(&stubEngine{})
	cvA := text.Normalize(longCV("python"))
	cvB := text.Normalize(longCV("django"))

	high := s.finish(50.10, cvA)
	low := s.finish(50.0, cvB)
	assert.Greater(t, round2(high), round2(low))
}
