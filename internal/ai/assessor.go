package ai

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/rie/internal/logger"
)

const defaultMaxLogLength = 200

// Provider is implemented by generators that can name their backend for logs.
type Provider interface {
	Provider() string
}

// Assessor makes the single model call of a scoring request and decodes the reply.
// It never retries; a failed call yields an Absent verdict.
type Assessor struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssessor(generator Generator, log *zap.Logger, maxLogLength int) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	provider := ""
	if p, ok := generator.(Provider); ok {
		provider = p.Provider()
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &Assessor{
		generator: generator,
		logger:    logger.WithProvider(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

// Enabled reports whether Assess will call a model.
func (a *Assessor) Enabled() bool {
	return a != nil && a.generator != nil
}

// Assess sends the prompt and returns the decoded verdict. A nil or disabled
// assessor returns Absent without calling anything.
func (a *Assessor) Assess(ctx context.Context, prompt Prompt) Verdict {
	if !a.Enabled() {
		return NoOpinion("ai disabled")
	}

	hash := prompt.Hash()
	a.logger.Debug("ai generate request",
		zap.String(logger.FieldPromptHash, hash),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt.Text())),
		zap.String("prompt_preview", logger.TruncateForLog(prompt.User, a.maxLogLen)),
	)

	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Warn("ai call failed, using deterministic result",
			zap.String(logger.FieldPromptHash, hash),
			zap.Error(err),
		)
		v := NoOpinion(err.Error())
		v.Model = a.generator.Model()
		return v
	}

	a.logger.Debug("ai generate response",
		zap.String(logger.FieldPromptHash, hash),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	verdict := Decode(raw)
	verdict.Model = a.generator.Model()
	if verdict.Kind != Valid {
		a.logger.Warn("ai opinion rejected, using deterministic result",
			zap.String(logger.FieldPromptHash, hash),
			zap.Stringer("kind", verdict.Kind),
			zap.String("reason", verdict.Reason),
		)
	}
	return verdict
}
