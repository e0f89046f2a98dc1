package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared by the scoring commands.
const (
	FieldProvider     = "ai_provider"
	FieldModel        = "ai_model"
	FieldModelVersion = "model_version"
	FieldRoleModel    = "role_model"
	FieldPromptHash   = "prompt_hash"
	FieldCandidate    = "candidate"
	FieldJob          = "job"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Pairs with a blank
// key or value are skipped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// WithProvider tags logger with the AI provider and model.
func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// WithPair tags logger with the candidate and job being scored.
func WithPair(logger *zap.Logger, candidate, job string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldCandidate, Value: candidate},
		StringField{Key: FieldJob, Value: job},
	)...)
}

// ScoreFields describes a produced score for audit log lines.
func ScoreFields(modelVersion, roleModel, promptHash string) []zap.Field {
	return StringFields(
		StringField{Key: FieldModelVersion, Value: modelVersion},
		StringField{Key: FieldRoleModel, Value: roleModel},
		StringField{Key: FieldPromptHash, Value: promptHash},
	)
}
