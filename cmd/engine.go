package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cvrank/internal/document"
	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/logger"
	"github.com/spigell/cvrank/internal/ranking"
	"github.com/spigell/cvrank/internal/scoring"
	"github.com/spigell/cvrank/internal/secrets"
	"github.com/spigell/cvrank/internal/similarity"
	"github.com/spigell/cvrank/internal/similarity/gemini"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// engine bundles the components built from the config for one command run.
type engine struct {
	config *Config
	logger *zap.Logger
	loader *document.Loader
	scorer *scoring.Scorer
	ranker *ranking.Ranker
}

func setup(ctx context.Context) (*engine, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	log.Debug("starting", zap.String("app", app), zap.String("version", version), zap.Any("config", redacted(config)))

	return newEngine(ctx, config, log)
}

func newEngine(ctx context.Context, config *Config, log *zap.Logger) (*engine, error) {
	extractor, err := newExtractor(config.Extraction, log)
	if err != nil {
		return nil, err
	}

	sim, err := newSimilarity(ctx, config, log)
	if err != nil {
		return nil, err
	}

	loader := document.NewLoader(config.Extraction.MaxDocumentBytes, log)
	scorer := scoring.New(sim, extractor, config.Scoring, log)
	ranker := ranking.New(scorer, loader, ranking.Config{
		Workers:          config.Ranking.Workers,
		CandidateTimeout: config.Ranking.CandidateTimeout,
	}, log)

	return &engine{
		config: config,
		logger: log,
		loader: loader,
		scorer: scorer,
		ranker: ranker,
	}, nil
}

func newExtractor(cfg ExtractionConfig, log *zap.Logger) (*extract.Extractor, error) {
	vocabulary := extract.DefaultVocabulary()

	if path := strings.TrimSpace(cfg.VocabularyFile); path != "" {
		loaded, err := extract.LoadVocabulary(path)
		if err != nil {
			return nil, err
		}
		vocabulary = loaded
		log.Info("vocabulary loaded", zap.String("file", path), zap.Int("skills", vocabulary.Len()))
	}

	return extract.New(extract.Config{
		Vocabulary:             vocabulary,
		DefaultExperienceYears: cfg.DefaultExperienceYears,
		MaxExperienceYears:     cfg.MaxExperienceYears,
		NameLines:              cfg.NameLines,
		SummarySentences:       cfg.SummarySentences,
	}), nil
}

// newSimilarity returns the lexical engine, blended with Gemini embeddings
// when AI is enabled.
func newSimilarity(ctx context.Context, config *Config, log *zap.Logger) (similarity.Engine, error) {
	var engine similarity.Engine = similarity.NewLexical()

	ai := config.AI
	if ai != nil && ai.Enabled {
		if ai.Gemini == nil {
			return nil, errors.New("ai.gemini section is required when ai is enabled")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: ai.Gemini.APIKey,
			Env:   geminiKeyEnv,
			File:  ai.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiKeyEnv)
		}

		semantic, err := gemini.New(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      ai.Gemini.Model,
			MaxRetries: ai.Gemini.MaxRetries,
		}, log)
		if err != nil {
			return nil, err
		}

		engine, err = similarity.NewBlend(
			similarity.Weighted{Engine: semantic, Weight: ai.Gemini.EmbeddingWeight},
			similarity.Weighted{Engine: engine, Weight: 1 - ai.Gemini.EmbeddingWeight},
		)
		if err != nil {
			return nil, err
		}
	}

	log.Info("similarity engine ready", logger.EngineFields(engine.Name(), "")...)

	return similarity.WithTimeout(engine, config.Ranking.SimilarityTimeout), nil
}

// readInput returns the inline text when set, otherwise the content of path.
func (e *engine) readInput(name, path, inline string) (string, error) {
	if inline = strings.TrimSpace(inline); inline != "" {
		return inline, nil
	}
	if path = strings.TrimSpace(path); path == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return e.loader.Load(path)
}

func redacted(config *Config) Config {
	out := *config
	if config.AI != nil && config.AI.Gemini != nil {
		ai := *config.AI
		g := *config.AI.Gemini
		if g.APIKey != "" {
			g.APIKey = "***"
		}
		ai.Gemini = &g
		out.AI = &ai
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
