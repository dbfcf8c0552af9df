// Package ranking scores a batch of résumés against one job description,
// keeps the best résumé per candidate and orders the result.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/logger"
	"github.com/spigell/cvrank/internal/scoring"
	"github.com/spigell/cvrank/internal/text"
)

const (
	DefaultWorkers          = 4
	DefaultCandidateTimeout = 30 * time.Second
)

var (
	ErrCandidateTimeout = errors.New("candidate analysis timed out")
	ErrEmptyDocument    = errors.New("document could not be analyzed: no text")
)

type Config struct {
	Workers          int           `mapstructure:"workers" validate:"gte=0"`
	CandidateTimeout time.Duration `mapstructure:"candidate-timeout" validate:"gte=0"`
}

// Options narrows and paginates one ranking run.
type Options struct {
	IDs []string
	// Page is 1-based. PageSize 0 disables pagination.
	Page     int
	PageSize int
}

// Ranker is safe for concurrent use; it holds no per-run state.
type Ranker struct {
	scorer  *scoring.Scorer
	source  TextSource
	workers int
	timeout time.Duration
	logger  *zap.Logger
	newID   func() string
}

func New(scorer *scoring.Scorer, source TextSource, cfg Config, log *zap.Logger) *Ranker {
	if scorer == nil {
		scorer = scoring.New(nil, nil, scoring.DefaultConfig(), log)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	return &Ranker{
		scorer:  scorer,
		source:  source,
		workers: cfg.Workers,
		timeout: cfg.CandidateTimeout,
		logger:  logger.OrNop(log),
		newID:   func() string { return uuid.NewString() },
	}
}

// Rank never fails: candidates that cannot be analyzed are reported as failed
// entries.
func (r *Ranker) Rank(ctx context.Context, jobText string, candidates []Candidate, opts Options) *Ranking {
	runID := r.newID()
	log := r.logger.With(zap.String(logger.FieldRun, runID))

	selected, step := Select(candidates, opts.IDs)
	if len(opts.IDs) > 0 {
		log.Info("candidate selection",
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)
	}

	job := r.scorer.PrepareJob(jobText)
	entries := r.scoreAll(ctx, job, selected, log)

	var valid, failed []Entry
	for _, e := range entries {
		if e.Failed {
			failed = append(failed, e)
			continue
		}
		valid = append(valid, e)
	}

	sortByScore(valid)
	unique := dedupe(valid)

	ordered := make([]Entry, 0, len(unique)+len(failed))
	ordered = append(ordered, unique...)
	ordered = append(ordered, failed...)

	ranking := &Ranking{
		RunID: runID,
		Summary: Summary{
			TotalRequested:        requestedCount(candidates, opts.IDs),
			TotalFound:            len(selected),
			TotalAnalyzed:         len(valid),
			TotalFailed:           len(failed),
			TotalUniqueCandidates: len(unique),
			Selection:             step,
		},
		Entries: Paginate(ordered, opts.Page, opts.PageSize),
	}
	if opts.PageSize > 0 {
		ranking.Page = max(opts.Page, 1)
		ranking.PageSize = opts.PageSize
	}

	log.Info("ranking completed",
		zap.Int("found", ranking.Summary.TotalFound),
		zap.Int("analyzed", ranking.Summary.TotalAnalyzed),
		zap.Int("failed", ranking.Summary.TotalFailed),
		zap.Int("unique", ranking.Summary.TotalUniqueCandidates),
	)

	return ranking
}

// scoreAll fans candidates out to a bounded pool. Results keep input order.
func (r *Ranker) scoreAll(ctx context.Context, job scoring.Job, candidates []Candidate, log *zap.Logger) []Entry {
	entries := make([]Entry, len(candidates))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, c := range candidates {
		g.Go(func() error {
			entries[i] = r.scoreCandidate(ctx, job, c, log.With(logger.Candidate(c.ID)))
			return nil
		})
	}
	_ = g.Wait()

	return entries
}

func (r *Ranker) scoreCandidate(ctx context.Context, job scoring.Job, c Candidate, log *zap.Logger) Entry {
	entry := Entry{SourceID: c.ID, Identity: c.Identity}

	doc := text.Normalize(c.Text)
	if doc.Empty() {
		if reloaded, ok := r.reextract(ctx, c, log); ok {
			doc = reloaded
		}
	}
	if doc.Empty() {
		return r.fail(entry, ErrEmptyDocument, log)
	}

	res, err := r.scoreWithTimeout(ctx, doc, job)
	if err != nil {
		return r.fail(entry, err, log)
	}

	if res.LowConfidence {
		if reloaded, ok := r.reextract(ctx, c, log); ok && reloaded.WordCount > doc.WordCount {
			log.Debug("re-scoring re-extracted document",
				zap.Int("words_before", doc.WordCount),
				zap.Int("words_after", reloaded.WordCount),
			)
			if rescored, err := r.scoreWithTimeout(ctx, reloaded, job); err == nil {
				doc, res = reloaded, rescored
			}
		}
	}

	entry.Identity = r.resolveIdentity(c, doc)
	entry.Result = res

	log.Debug("candidate scored",
		zap.Float64("score", res.Score),
		zap.Bool("degraded", res.Degraded),
		zap.Bool("low_confidence", res.LowConfidence),
	)

	return entry
}

func (r *Ranker) scoreWithTimeout(ctx context.Context, doc text.DocumentText, job scoring.Job) (scoring.Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan scoring.Result, 1)
	go func() {
		done <- r.scorer.ScoreDocument(ctx, doc, job)
	}()

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return scoring.Result{}, fmt.Errorf("%w after %s", ErrCandidateTimeout, r.timeout)
		}
		return scoring.Result{}, ctx.Err()
	}
}

func (r *Ranker) reextract(ctx context.Context, c Candidate, log *zap.Logger) (text.DocumentText, bool) {
	if r.source == nil || strings.TrimSpace(c.Source) == "" {
		return text.DocumentText{}, false
	}

	raw, err := r.source.Text(ctx, c.Source)
	if err != nil {
		log.Debug("re-extraction failed", zap.String("source", c.Source), zap.Error(err))
		return text.DocumentText{}, false
	}

	return text.Normalize(raw), true
}

func (r *Ranker) resolveIdentity(c Candidate, doc text.DocumentText) extract.Identity {
	id := c.Identity
	if strings.TrimSpace(id.Name) != "" && strings.TrimSpace(id.Email) != "" {
		return id
	}

	extracted := r.scorer.Extractor().Identity(doc)
	if strings.TrimSpace(id.Name) == "" {
		id.Name = extracted.Name
		id.Source = extracted.Source
	}
	if strings.TrimSpace(id.Email) == "" {
		id.Email = extracted.Email
	}
	return id
}

func (r *Ranker) fail(entry Entry, err error, log *zap.Logger) Entry {
	log.Warn("candidate could not be analyzed", zap.Error(err))

	entry.Failed = true
	entry.FailureReason = err.Error()
	entry.Result = scoring.Result{MatchedSkills: []string{}, MissingSkills: []string{}}
	if entry.Identity.Name == "" {
		entry.Identity.Name = extract.UnknownCandidate
	}
	return entry
}

func sortByScore(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Result.Score > entries[j].Result.Score
	})
}

// dedupe keeps the first, best-scoring entry per email and records the others
// as its alternates. Entries without an email are never merged.
func dedupe(sorted []Entry) []Entry {
	unique := make([]Entry, 0, len(sorted))
	byEmail := make(map[string]int, len(sorted))

	for _, e := range sorted {
		key := strings.ToLower(strings.TrimSpace(e.Identity.Email))
		if key == "" {
			unique = append(unique, e)
			continue
		}

		if idx, ok := byEmail[key]; ok {
			unique[idx].Alternates = append(unique[idx].Alternates, Alternate{
				SourceID: e.SourceID,
				Score:    e.Result.Score,
			})
			unique[idx].Alternates = append(unique[idx].Alternates, e.Alternates...)
			continue
		}

		byEmail[key] = len(unique)
		unique = append(unique, e)
	}

	return unique
}

// Paginate returns the 1-based page of entries. A page past the end is empty.
func Paginate(entries []Entry, page, pageSize int) []Entry {
	if pageSize <= 0 {
		return entries
	}
	if page < 1 {
		page = 1
	}

	pages := len(entries) / pageSize
	if len(entries)%pageSize != 0 {
		pages++
	}
	if page > pages {
		return []Entry{}
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(entries))
	return entries[start:end]
}
