package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/gemini"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/resume"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/secrets"
	"github.com/spigell/interviewer/internal/store"
)

// application holds what every command needs: config, logger and the store.
type application struct {
	config *Config
	logger *zap.Logger
	store  store.Store
}

func newApplication(ctx context.Context) (*application, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := store.Open(ctx, store.Config{
		Backend: config.Store.Backend,
		Path:    config.Store.Path,
		Redis: store.RedisConfig{
			URL:      config.Store.Redis.URL,
			Password: config.Store.Redis.Password,
		},
	}, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", config.Store.Backend, err)
	}

	return &application{config: config, logger: log, store: st}, nil
}

func (a *application) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *application) extractor() *resume.Extractor {
	return resume.NewExtractor(resume.Config{
		MaxSizeBytes: a.config.Resume.MaxSizeBytes,
	}, nil, a.logger.Named("resume"))
}

// interviews wires the session service. AI problems only disable the assist
// tier; scoring and summaries then use the local rules.
func (a *application) interviews(ctx context.Context) (*interview.Service, error) {
	bank, err := interview.DecodeBank(a.config.Questions.Pools)
	if err != nil {
		return nil, err
	}

	var (
		evaluator  ai.Evaluator
		summarizer ai.Summarizer
	)
	if a.config.AI.Enabled {
		assessor, err := newAssessor(ctx, a.config.AI, a.logger)
		if err != nil {
			a.logger.Warn("skipping AI assist", zap.Error(err))
		} else {
			evaluator = assessor
			summarizer = assessor
		}
	}

	log := a.logger.Named("interview")
	scorer := scoring.NewEngine(evaluator, a.config.AI.Timeout, log)
	finalizer := interview.NewFinalizer(summarizer, a.config.AI.Timeout, log)

	return interview.NewService(interview.Config{
		Role:      a.config.Interview.Role,
		Bank:      bank,
		UseAssist: a.config.Interview.UseAIScoring,
	}, a.store, scorer, finalizer, log), nil
}

func newAssessor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Assessor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	assessorLogger := logger.WithCommonFields(log, "gemini", generator.Model())

	return gemini.NewAssessor(generator, cfg.Gemini.MaxLogLength, assessorLogger), nil
}

// redacted returns a copy of the config safe to log.
func redacted(config *Config) Config {
	out := *config

	if config.AI != nil && config.AI.Gemini != nil && config.AI.Gemini.APIKey != "" {
		aiCfg := *config.AI
		gem := *config.AI.Gemini
		gem.APIKey = "<redacted>"
		aiCfg.Gemini = &gem
		out.AI = &aiCfg
	}
	if config.Store != nil && config.Store.Redis != nil && config.Store.Redis.Password != "" {
		st := *config.Store
		redisCfg := *config.Store.Redis
		redisCfg.Password = "<redacted>"
		st.Redis = &redisCfg
		out.Store = &st
	}

	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApplication adapts a command body that needs the wired application.
func withApplication(fn func(ctx context.Context, cmd *cobra.Command, a *application, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(ctx, cmd, a, args)
	}
}
