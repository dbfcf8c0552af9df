// Package scoring computes the compatibility of a résumé with a job description.
package scoring

import (
	"context"
	"hash/fnv"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/logger"
	"github.com/spigell/cvrank/internal/similarity"
	"github.com/spigell/cvrank/internal/text"
)

const (
	DefaultSemanticWeight     = 0.65
	DefaultLowConfidenceScore = 15.0
	DefaultDegradedFloor      = 10.0
	DefaultEmptyJobBaseline   = 5.0
	DefaultShortTextWords     = 50
	DefaultMinPenalty         = 0.5
	DefaultMaxJitter          = 0.09
	DefaultMinWords           = 10

	maxScore     = 100.0
	jitterBucket = 10
)

// Config holds the scoring constants. Start from DefaultConfig.
type Config struct {
	SemanticWeight     float64 `mapstructure:"semantic-weight" validate:"gte=0,lte=1"`
	LowConfidenceScore float64 `mapstructure:"low-confidence-score" validate:"gte=0,lte=100"`
	DegradedFloor      float64 `mapstructure:"degraded-floor" validate:"gte=0,lte=100"`
	EmptyJobBaseline   float64 `mapstructure:"empty-job-baseline" validate:"gte=0,lte=100"`
	ShortTextWords     int     `mapstructure:"short-text-words" validate:"gte=0"`
	MinPenalty         float64 `mapstructure:"min-penalty" validate:"gte=0,lte=1"`
	MaxJitter          float64 `mapstructure:"max-jitter" validate:"gte=0,lt=1"`
	MinWords           int     `mapstructure:"min-words" validate:"gte=0"`
}

// DefaultConfig returns the reference scoring constants.
func DefaultConfig() Config {
	return Config{
		SemanticWeight:     DefaultSemanticWeight,
		LowConfidenceScore: DefaultLowConfidenceScore,
		DegradedFloor:      DefaultDegradedFloor,
		EmptyJobBaseline:   DefaultEmptyJobBaseline,
		ShortTextWords:     DefaultShortTextWords,
		MinPenalty:         DefaultMinPenalty,
		MaxJitter:          DefaultMaxJitter,
		MinWords:           DefaultMinWords,
	}
}

// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	engine    similarity.Engine
	extractor *extract.Extractor
	cfg       Config
	logger    *zap.Logger
}

// Job is a job description prepared once and scored against many résumés.
type Job struct {
	Doc    text.DocumentText
	Skills extract.SkillSet
}

func New(engine similarity.Engine, extractor *extract.Extractor, cfg Config, log *zap.Logger) *Scorer {
	if engine == nil {
		engine = similarity.NewLexical()
	}
	if extractor == nil {
		extractor = extract.New(extract.Config{})
	}

	return &Scorer{
		engine:    engine,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger.WithEngine(log, engine.Name(), ""),
	}
}

func (s *Scorer) Extractor() *extract.Extractor {
	return s.extractor
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// PrepareJob normalizes a job description and extracts its skills.
func (s *Scorer) PrepareJob(jobText string) Job {
	doc := text.Normalize(jobText)
	return Job{Doc: doc, Skills: s.extractor.Skills(doc)}
}

// Score rates cvText against jobText.
func (s *Scorer) Score(ctx context.Context, cvText, jobText string) Result {
	return s.ScoreJob(ctx, cvText, s.PrepareJob(jobText))
}

// ScoreJob rates cvText against a prepared job. It always returns a result.
func (s *Scorer) ScoreJob(ctx context.Context, cvText string, job Job) Result {
	cv := text.Normalize(cvText)
	return s.ScoreDocument(ctx, cv, job)
}

func (s *Scorer) ScoreDocument(ctx context.Context, cv text.DocumentText, job Job) Result {
	if cv.Empty() || job.Doc.Empty() {
		res := emptyResult(s.extractor.Summary(cv))
		res.WordCount = cv.WordCount
		return res
	}

	jobSkills := job.Skills.Names()
	years, _ := s.extractor.ExperienceYears(cv)

	cvSkills := s.extractor.Skills(cv)
	lexical, matched, missing := s.lexical(job.Skills, jobSkills, cvSkills)

	if cv.WordCount < s.cfg.MinWords {
		s.logger.Debug("résumé too short, using low-confidence score",
			zap.Int("words", cv.WordCount),
			zap.Int("min_words", s.cfg.MinWords),
		)
		return Result{
			Score:           s.cfg.LowConfidenceScore,
			MatchedSkills:   matched,
			MissingSkills:   missing,
			Summary:         s.extractor.Summary(cv),
			ExperienceYears: years,
			WordCount:       cv.WordCount,
			LowConfidence:   true,
		}
	}

	res := Result{
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Summary:         s.extractor.Summary(cv),
		LexicalScore:    round2(lexical),
		ExperienceYears: years,
		WordCount:       cv.WordCount,
	}

	semantic, err := s.engine.Similarity(ctx, cv.Cleaned, job.Doc.Cleaned)
	if err != nil {
		s.logger.Debug("similarity failed, falling back to lexical score", zap.Error(err))
		res.Degraded = true
		res.Error = err.Error()
		score := s.finish(lexical, cv)
		res.Score = round2(math.Max(score, s.cfg.DegradedFloor))
		return res
	}

	semantic = similarity.Clamp(semantic)
	res.SemanticScore = round2(semantic * s.cfg.SemanticWeight * maxScore)
	res.Score = round2(s.finish(semantic*s.cfg.SemanticWeight*maxScore+lexical, cv))

	return res
}

// lexical spreads the lexical budget evenly over the job skills. A matched
// skill earns the mean of its job and résumé weights times its share.
func (s *Scorer) lexical(job extract.SkillSet, jobNames []string, cv extract.SkillSet) (float64, []string, []string) {
	matched := []string{}
	missing := []string{}

	if len(jobNames) == 0 {
		return s.cfg.EmptyJobBaseline, matched, missing
	}

	budget := (1 - s.cfg.SemanticWeight) * maxScore
	share := budget / float64(len(jobNames))

	score := 0.0
	for _, name := range jobNames {
		cvWeight, ok := cv[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		matched = append(matched, name)
		score += (job[name] + cvWeight) / 2 * share
	}

	return score, matched, missing
}

// finish applies the short-text penalty and the tie-break jitter, then clamps.
func (s *Scorer) finish(score float64, cv text.DocumentText) float64 {
	score *= s.penalty(cv.WordCount)
	score += s.jitter(cv.Cleaned)
	return math.Min(maxScore, math.Max(0, score))
}

func (s *Scorer) penalty(words int) float64 {
	if s.cfg.ShortTextWords <= 0 || words >= s.cfg.ShortTextWords {
		return 1
	}
	ratio := float64(words) / float64(s.cfg.ShortTextWords)
	return s.cfg.MinPenalty + (1-s.cfg.MinPenalty)*ratio
}

// jitter derives a reproducible offset in [0, MaxJitter] from the résumé text.
func (s *Scorer) jitter(cleaned string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cleaned))
	bucket := h.Sum64() % jitterBucket
	return float64(bucket) / float64(jitterBucket-1) * s.cfg.MaxJitter
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
