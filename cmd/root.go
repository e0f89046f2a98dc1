package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/rie/internal/ai/gemini"
	"github.com/spigell/rie/internal/ai/openrouter"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/rolemodel"
	"github.com/spigell/rie/internal/screening"
)

const (
	app = "rie"
)

type Config struct {
	OntologyFile string                       `mapstructure:"ontology-file"`
	MaxSkills    int                          `mapstructure:"max-skills"`
	RoleModels   map[string]rolemodel.Weights `mapstructure:"role-models"`
	CVWeights    cvreview.Weights             `mapstructure:"cv-weights"`
	AuditFile    string                       `mapstructure:"audit-file"`
	Parallel     int                          `mapstructure:"parallel"`
	Screening    *screening.Config            `mapstructure:"screening"`
	AI           *AIConfig                    `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	Provider     string            `mapstructure:"provider"`
	MaxLogLength int               `mapstructure:"max-log-length"`
	OpenRouter   *OpenRouterConfig `mapstructure:"openrouter"`
	Gemini       *GeminiConfig     `mapstructure:"gemini"`
}

type OpenRouterConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	SiteURL    string `mapstructure:"site-url"`
	AppName    string `mapstructure:"app-name"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "rie scores candidates against jobs and grades resumes, optionally blending in a language model opinion",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.openrouter.api-key-file": "RIE_OPENROUTER_API_KEY_FILE",
		"ai.gemini.api-key-file":     "RIE_GEMINI_API_KEY_FILE",
		"audit-file":                 "RIE_AUDIT_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("max-skills", 50)
	viper.SetDefault("parallel", 4)
	viper.SetDefault("ai.provider", openrouter.ProviderName)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.openrouter.model", openrouter.DefaultModel)
	viper.SetDefault("ai.openrouter.app-name", app)
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is rie.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The default config file is optional, an explicit one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
