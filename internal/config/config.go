// Package config loads cursor-automator configuration from file and
// environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (CURSOR_AUTOMATOR_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .cursor-automator.yaml in current directory
//  2. ~/.config/cursor-automator/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cursor-automator configuration.
type Config struct {
	// Checklist settings
	StepsFile   string `yaml:"steps_file"`
	ProjectName string `yaml:"project_name"`

	// Screen settings
	Region string `yaml:"region"` // "left,top,right,bottom"; empty triggers interactive selection

	// Timing
	Poll    string `yaml:"poll"`    // Go duration string, e.g. "500ms"
	Refresh string `yaml:"refresh"` // checklist re-check interval, e.g. "1s"

	// Output
	LogDir string `yaml:"log_dir"`

	// Control socket for external operator commands; empty uses the
	// runtime-dir default, "off" disables.
	ControlSocket string `yaml:"control_socket"`

	// LLM assist (advisory labeling of unknown button text)
	LLMAssist bool   `yaml:"llm_assist"`
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	PollDuration    time.Duration `yaml:"-"`
	RefreshDuration time.Duration `yaml:"-"`

	// ConfigFile is the path of the loaded config file (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		StepsFile:   "project_steps.md",
		ProjectName: "project",
		Poll:        "500ms",
		Refresh:     "1s",
		LogDir:      "logs",
		Provider:    "anthropic",
		MaxTokens:   1024,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	if err := cfg.ParseDurations(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseDurations refreshes the parsed duration fields from the string
// fields. Called by Load, and again after flag overrides.
func (c *Config) ParseDurations() error {
	var err error
	c.PollDuration, err = parseDuration(c.Poll, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", c.Poll, err)
	}
	c.RefreshDuration, err = parseDuration(c.Refresh, time.Second)
	if err != nil {
		return fmt.Errorf("invalid refresh interval %q: %w", c.Refresh, err)
	}
	return nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".cursor-automator.yaml"); err == nil {
		return ".cursor-automator.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "cursor-automator", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.StepsFile != "" {
		cfg.StepsFile = file.StepsFile
	}
	if file.ProjectName != "" {
		cfg.ProjectName = file.ProjectName
	}
	if file.Region != "" {
		cfg.Region = file.Region
	}
	if file.Poll != "" {
		cfg.Poll = file.Poll
	}
	if file.Refresh != "" {
		cfg.Refresh = file.Refresh
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	if file.ControlSocket != "" {
		cfg.ControlSocket = file.ControlSocket
	}
	if file.LLMAssist {
		cfg.LLMAssist = file.LLMAssist
	}
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("CURSOR_AUTOMATOR_STEPS_FILE"); v != "" {
		cfg.StepsFile = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_PROJECT_NAME"); v != "" {
		cfg.ProjectName = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_POLL"); v != "" {
		cfg.Poll = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_CONTROL_SOCKET"); v != "" {
		cfg.ControlSocket = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_LLM_ASSIST"); v == "true" || v == "1" {
		cfg.LLMAssist = true
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CURSOR_AUTOMATOR_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks by provider.
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
}

// parseDuration parses a duration string. Empty returns the fallback.
func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
