// Package openrouter implements ai.Generator on an OpenAI compatible chat
// completions API, OpenRouter by default.
package openrouter

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/spigell/rie/internal/ai"
)

const (
	ProviderName   = "openrouter"
	DefaultBaseURL = "https://openrouter.ai/api/v1/"
	DefaultModel   = "openai/gpt-4o-mini"

	temperature = 0.2
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// SiteURL and AppName are sent as HTTP-Referer and X-Title when set.
	SiteURL string
	AppName string
}

type Generator struct {
	client *openai.Client
	model  string
}

var _ ai.Generator = (*Generator)(nil)

func NewGenerator(cfg Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openrouter api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if site := strings.TrimSpace(cfg.SiteURL); site != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", site))
	}
	if app := strings.TrimSpace(cfg.AppName); app != "" {
		opts = append(opts, option.WithHeader("X-Title", app))
	}

	return &Generator{client: openai.NewClient(opts...), model: model}, nil
}

// Generate sends the system and user messages and returns the first choice.
func (g *Generator) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("openrouter generator is not initialized")
	}
	if strings.TrimSpace(prompt.User) == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system := strings.TrimSpace(prompt.System); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    openai.F(messages),
		Model:       openai.F(openai.ChatModel(g.model)),
		Temperature: openai.F(temperature),
	})
	if err != nil {
		return "", errors.Wrapf(err, "chat completion with model %s", g.model)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openrouter returned empty response")
	}
	return content, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) Provider() string {
	return ProviderName
}
