package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/resume"
	"github.com/spigell/interviewer/internal/store"
)

const (
	app = "interviewer"
)

type Config struct {
	Store     *StoreConfig     `mapstructure:"store"`
	Resume    *ResumeConfig    `mapstructure:"resume"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Questions *QuestionsConfig `mapstructure:"questions"`
	AI        *AIConfig        `mapstructure:"ai"`
}

type StoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Path    string       `mapstructure:"path"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
}

type ResumeConfig struct {
	MaxSizeBytes int64 `mapstructure:"max-size-bytes"`
}

type InterviewConfig struct {
	Role         string `mapstructure:"role"`
	UseAIScoring bool   `mapstructure:"use-ai-scoring"`
}

type QuestionsConfig struct {
	// Pools maps a tier name to its question templates.
	Pools map[string]any `mapstructure:"pools"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "interviewer runs timed technical interviews and keeps candidate records",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional, real environment variables take precedence.
	_ = godotenv.Load()

	envs := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"store.path":             "INTERVIEWER_STORE_PATH",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("store.backend", store.BackendFile)
	viper.SetDefault("store.path", store.DefaultPath)
	viper.SetDefault("resume.max-size-bytes", resume.DefaultMaxSizeBytes)
	viper.SetDefault("interview.role", interview.DefaultRole)
	viper.SetDefault("interview.use-ai-scoring", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", "15s")
	viper.SetDefault("ai.gemini.max-retries", 2)
	viper.SetDefault("ai.gemini.max-log-length", 500)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only an explicitly named file is required.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Store.Redis == nil {
		config.Store.Redis = &RedisConfig{}
	}
	if config.Resume == nil {
		config.Resume = &ResumeConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Questions == nil {
		config.Questions = &QuestionsConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
