package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/ai/gemini"
	"github.com/spigell/rie/internal/ai/openrouter"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/logger"
	"github.com/spigell/rie/internal/ontology"
	"github.com/spigell/rie/internal/rolemodel"
	"github.com/spigell/rie/internal/secrets"
	"github.com/spigell/rie/internal/skillmatch"
)

// newPipeline builds the scoring engines from the config. Bad weights or
// ontology conflicts are errors; a model that cannot be set up only disables
// the AI side.
func newPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*fusion.Pipeline, error) {
	table, err := loadOntology(config)
	if err != nil {
		return nil, err
	}

	roles, err := rolemodel.DefaultSelector(config.RoleModels)
	if err != nil {
		return nil, fmt.Errorf("role models: %w", err)
	}
	for _, key := range []string{rolemodel.Counseling, rolemodel.Tech, rolemodel.Default} {
		if weights, ok := roles.Profile(key); ok {
			logger.Debug("role model", zap.String("name", key), zap.Any("weights", weights))
		}
	}

	cv, err := cvreview.New(table, config.CVWeights)
	if err != nil {
		return nil, fmt.Errorf("cv weights: %w", err)
	}

	generator, err := newGenerator(ctx, config.AI)
	if err != nil {
		logger.Warn("skipping AI opinion", zap.Error(err))
	}

	maxLogLength := 0
	if config.AI != nil {
		maxLogLength = config.AI.MaxLogLength
	}

	return fusion.NewPipeline(
		skillmatch.New(table, roles),
		cv,
		ai.NewAssessor(generator, logger, maxLogLength),
		logger,
	), nil
}

func loadOntology(config *Config) (*ontology.Table, error) {
	var (
		table *ontology.Table
		err   error
	)
	if path := strings.TrimSpace(config.OntologyFile); path != "" {
		table, err = ontology.Load(path)
	} else {
		table, err = ontology.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("ontology: %w", err)
	}

	if config.MaxSkills > 0 {
		table = table.WithMaxSkills(config.MaxSkills)
	}
	return table, nil
}

// newGenerator returns a nil generator when AI is disabled.
func newGenerator(ctx context.Context, cfg *AIConfig) (ai.Generator, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case "", openrouter.ProviderName:
		or := cfg.OpenRouter
		if or == nil {
			or = &OpenRouterConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openrouter api key",
			File:  or.APIKeyFile,
			Env:   "OPENROUTER_API_KEY",
			Value: or.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openrouter.api-key-file or RIE_OPENROUTER_API_KEY_FILE)", err)
		}
		generator, err := openrouter.NewGenerator(openrouter.Config{
			APIKey:  apiKey,
			Model:   or.Model,
			BaseURL: or.BaseURL,
			SiteURL: or.SiteURL,
			AppName: or.AppName,
		})
		if err != nil {
			return nil, err
		}
		return generator, nil

	case gemini.ProviderName:
		gm := cfg.Gemini
		if gm == nil {
			gm = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gm.APIKeyFile,
			Env:   "GEMINI_API_KEY",
			Value: gm.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or RIE_GEMINI_API_KEY_FILE)", err)
		}
		generator, err := gemini.NewGenerator(ctx, apiKey, gm.Model)
		if err != nil {
			return nil, err
		}
		return generator, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// loadOpinion reads a stored model reply for offline replay.
func loadOpinion(path string) (*ai.Verdict, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading opinion %q: %w", path, err)
	}
	verdict := ai.Decode(string(data))
	verdict.Model = "replay"
	return &verdict, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mustLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func startup(cmdName string) (*zap.Logger, *Config) {
	logger := mustLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}

	logger.Info("starting "+app+" "+cmdName, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}
