// Package gemini implements semantic similarity on top of Gemini text embeddings.
package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cvrank/internal/logger"
	"github.com/spigell/cvrank/internal/similarity"
	"github.com/spigell/cvrank/internal/utils"
)

const (
	Name              = "gemini"
	DefaultModel      = "gemini-embedding-001"
	DefaultMaxRetries = 3

	taskType        = "SEMANTIC_SIMILARITY"
	retryBackoff    = 2 * time.Second
	maxEmbedRunes   = 8000
	logPreviewRunes = 80
)

var waitFor = utils.WaitFor

// embedder is the subset of genai.Models used by the engine.
type embedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Engine embeds both texts and returns their cosine similarity. Embeddings
// are cached per text for the lifetime of the engine.
type Engine struct {
	models     embedder
	model      string
	maxRetries int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[[sha256.Size]byte][]float64
}

type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// New creates an engine backed by the Gemini API.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEngine(client.Models, cfg.Model, cfg.MaxRetries, log), nil
}

func newEngine(models embedder, model string, maxRetries int, log *zap.Logger) *Engine {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	return &Engine{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.WithEngine(log, Name, model),
		cache:      make(map[[sha256.Size]byte][]float64),
	}
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) Model() string {
	return e.model
}

func (e *Engine) Similarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, similarity.ErrEmptyText
	}

	va, err := e.embedding(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := e.embedding(ctx, b)
	if err != nil {
		return 0, err
	}

	cos, err := similarity.Cosine(va, vb)
	if err != nil {
		return 0, err
	}
	return similarity.Clamp(cos), nil
}

func (e *Engine) embedding(ctx context.Context, s string) ([]float64, error) {
	s = truncateRunes(s, maxEmbedRunes)
	key := sha256.Sum256([]byte(s))

	e.cacheMu.RLock()
	cached, ok := e.cache[key]
	e.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	values, err := e.embedWithRetry(ctx, s)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[key] = values
	e.cacheMu.Unlock()

	return values, nil
}

func (e *Engine) embedWithRetry(ctx context.Context, s string) ([]float64, error) {
	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		values, err := e.embed(ctx, s)
		if err == nil {
			return values, nil
		}
		lastErr = err

		if !isTemporary(err) || attempt == e.maxRetries {
			break
		}

		delay := utils.Backoff(retryBackoff, attempt)
		e.logger.Debug("retrying embedding request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("text_preview", utils.TruncateForLog(s, logPreviewRunes)),
			zap.Error(err),
		)
		if err := waitFor(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting to retry embedding: %w", err)
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

func (e *Engine) embed(ctx context.Context, s string) ([]float64, error) {
	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(s), &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	raw := resp.Embeddings[0].Values
	values := make([]float64, len(raw))
	for i, v := range raw {
		values[i] = float64(v)
	}
	return values, nil
}

// isTemporary reports whether the API error is worth retrying: rate limits and
// server-side failures.
func isTemporary(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return temporaryCode(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return temporaryCode(apiErrPtr.Code)
	}
	return false
}

func temporaryCode(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
