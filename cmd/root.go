package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/ranking"
	"github.com/spigell/cvrank/internal/scoring"
	"github.com/spigell/cvrank/internal/similarity/gemini"
)

const (
	app       = "cvrank"
	envPrefix = "CVRANK"
)

type Config struct {
	Scoring    scoring.Config   `mapstructure:"scoring"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	AI         *AIConfig        `mapstructure:"ai"`
}

type ExtractionConfig struct {
	VocabularyFile         string `mapstructure:"vocabulary-file"`
	// DefaultExperienceYears of -1 disables the fallback for résumés that
	// mention experience without a number. Zero is rejected.
	DefaultExperienceYears int    `mapstructure:"default-experience-years" validate:"gte=-1,lte=30,ne=0"`
	MaxExperienceYears     int    `mapstructure:"max-experience-years" validate:"gte=1,lte=80"`
	NameLines              int    `mapstructure:"name-lines" validate:"gte=1"`
	SummarySentences       int    `mapstructure:"summary-sentences" validate:"gte=1"`
	MaxDocumentBytes       int64  `mapstructure:"max-document-bytes" validate:"gte=0"`
}

type RankingConfig struct {
	Workers           int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	CandidateTimeout  time.Duration `mapstructure:"candidate-timeout" validate:"gte=0"`
	SimilarityTimeout time.Duration `mapstructure:"similarity-timeout" validate:"gte=0"`
	PageSize          int           `mapstructure:"page-size" validate:"gte=0"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	EmbeddingWeight float64 `mapstructure:"embedding-weight" validate:"gte=0,lte=1"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "cvrank scores résumés against a job description and ranks candidates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command. An interrupt cancels in-flight scoring.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cvrank.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	sc := scoring.DefaultConfig()
	v.SetDefault("scoring.semantic-weight", sc.SemanticWeight)
	v.SetDefault("scoring.low-confidence-score", sc.LowConfidenceScore)
	v.SetDefault("scoring.degraded-floor", sc.DegradedFloor)
	v.SetDefault("scoring.empty-job-baseline", sc.EmptyJobBaseline)
	v.SetDefault("scoring.short-text-words", sc.ShortTextWords)
	v.SetDefault("scoring.min-penalty", sc.MinPenalty)
	v.SetDefault("scoring.max-jitter", sc.MaxJitter)
	v.SetDefault("scoring.min-words", sc.MinWords)

	v.SetDefault("extraction.vocabulary-file", "")
	v.SetDefault("extraction.default-experience-years", extract.DefaultExperienceYears)
	v.SetDefault("extraction.max-experience-years", extract.MaxExperienceYears)
	v.SetDefault("extraction.name-lines", extract.DefaultNameLines)
	v.SetDefault("extraction.summary-sentences", extract.DefaultSummarySentences)
	v.SetDefault("extraction.max-document-bytes", 0)

	v.SetDefault("ranking.workers", ranking.DefaultWorkers)
	v.SetDefault("ranking.candidate-timeout", ranking.DefaultCandidateTimeout)
	v.SetDefault("ranking.similarity-timeout", 10*time.Second)
	v.SetDefault("ranking.page-size", 0)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.gemini.max-retries", gemini.DefaultMaxRetries)
	v.SetDefault("ai.gemini.embedding-weight", scoring.DefaultSemanticWeight)
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless set explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

// configErr is reported by the first command that needs the config.
var configErr error

func getConfig() (*Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
