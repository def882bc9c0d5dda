package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rinadelph/cursor-automator/internal/config"
	"github.com/rinadelph/cursor-automator/internal/evaluator"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags. Empty string and zero values mean "not set"; the
	// config file and environment fill the gaps.
	flagStepsFile string
	flagProject   string
	flagRegion    string
	flagPoll      string
	flagRefresh   string
	flagLogDir    string
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
	flagLLMAssist bool
)

var rootCmd = &cobra.Command{
	Use:   "cursor-automator",
	Short: "Screen-watching automation for the Cursor editor agent",
	Long: `cursor-automator watches a screen region over the Cursor editor's button
area, recognizes its text with OCR, and drives the agent forward: accept
buttons get the accept chord, completed tasks get a continue message.

It also follows a markdown checklist (project_steps.md) to know which step
the agent is on, and records per-step timing metrics.

Configuration is loaded from .cursor-automator.yaml or environment
variables; flags override both.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Pick up a local .env before flags resolve their env defaults.
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStepsFile, "steps-file", "", "checklist file (default: project_steps.md)")
	pf.StringVar(&flagProject, "project", "", "project name used in metrics (default: project)")
	pf.StringVar(&flagRegion, "region", "", `screen region "left,top,right,bottom" (default: interactive selection)`)
	pf.StringVar(&flagPoll, "poll", "", "screen poll interval (default: 500ms)")
	pf.StringVar(&flagRefresh, "refresh", "", "checklist re-check interval (default: 1s)")
	pf.StringVar(&flagLogDir, "log-dir", "", "directory for session logs and metrics (default: logs)")
	pf.StringVar(&flagProvider, "provider", "", "LLM provider for advisory labels: anthropic, openai")
	pf.StringVar(&flagModel, "model", "", "LLM model name (default: claude-haiku-4-5 for anthropic, gpt-4o-mini for openai)")
	pf.StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	pf.StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	pf.Int64Var(&flagMaxTokens, "max-tokens", 0, "max LLM completion tokens (default: 1024)")
	pf.BoolVar(&flagLLMAssist, "llm-assist", false, "label unrecognized button text with an LLM (advisory only)")
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if flagStepsFile != "" {
		cfg.StepsFile = flagStepsFile
	}
	if flagProject != "" {
		cfg.ProjectName = flagProject
	}
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagPoll != "" {
		cfg.Poll = flagPoll
	}
	if flagRefresh != "" {
		cfg.Refresh = flagRefresh
	}
	if flagLogDir != "" {
		cfg.LogDir = flagLogDir
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagMaxTokens > 0 {
		cfg.MaxTokens = flagMaxTokens
	}
	if cmd.Flags().Changed("llm-assist") {
		cfg.LLMAssist = flagLLMAssist
	}

	// Flags may carry durations the file/env didn't; re-validate.
	return cfg, cfg.ParseDurations()
}

// getEvaluator builds the configured advisory evaluator.
func getEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	model := cfg.Model
	if model == "" {
		switch cfg.Provider {
		case "openai":
			model = "gpt-4o-mini"
		default:
			model = "claude-haiku-4-5"
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set CURSOR_AUTOMATOR_API_KEY, ANTHROPIC_API_KEY, or OPENAI_API_KEY")
	}
	return evaluator.New(evaluator.Config{
		Provider:  cfg.Provider,
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     model,
		MaxTokens: cfg.MaxTokens,
	})
}
