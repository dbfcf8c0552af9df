package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldEngine is the structured log field key for the similarity engine name.
	FieldEngine = "engine"
	// FieldModel is the structured log field key for the embedding model identifier.
	FieldModel = "model"
	// FieldCandidate is the structured log field key for a candidate source document.
	FieldCandidate = "candidate_id"
	// FieldRun is the structured log field key for a ranking run.
	FieldRun = "run_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// EngineFields describes a similarity engine and its model. Empty values are
// skipped.
func EngineFields(engine, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldEngine, Value: engine},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithEngine attaches the engine fields to the provided logger.
func WithEngine(logger *zap.Logger, engine, model string) *zap.Logger {
	return WithFields(logger, EngineFields(engine, model)...)
}

// Candidate returns the field identifying a candidate document.
func Candidate(id string) zap.Field {
	return zap.String(FieldCandidate, id)
}
