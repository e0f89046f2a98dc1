// Package ai is the boundary to language-model opinions. It builds prompts,
// calls a Generator once and decodes the untrusted reply into a Verdict.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"
)

// Generator sends a prompt to a language model and returns the raw reply text.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

// Prompt is a system instruction plus a user message.
type Prompt struct {
	System string
	User   string
}

//go:embed prompts/screen.md
var screenSystem string

//go:embed prompts/review.md
var reviewSystem string

// Text is the prompt as it is hashed for audit.
func (p Prompt) Text() string {
	return p.System + "\n" + p.User
}

// Hash is the first 16 hex characters of the SHA-256 of Text.
func (p Prompt) Hash() string {
	sum := sha256.Sum256([]byte(p.Text()))
	return hex.EncodeToString(sum[:])[:16]
}

// ScreenPrompt builds the fit screening prompt around a JSON payload.
func ScreenPrompt(payload any) (Prompt, error) {
	return build(screenSystem, payload)
}

// ReviewPrompt builds the CV review prompt around a JSON payload.
func ReviewPrompt(payload any) (Prompt, error) {
	return build(reviewSystem, payload)
}

func build(system string, payload any) (Prompt, error) {
	user, err := json.Marshal(payload)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshal prompt payload: %w", err)
	}
	return Prompt{
		System: strings.Join(strings.Fields(system), " "),
		User:   string(user),
	}, nil
}
