package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
// For example, DEBATE_DEBATE_ROUNDS overrides debate.rounds.
const EnvPrefix = "DEBATE"

// Config represents the complete debate configuration
type Config struct {
	Debate  DebateConfig  `mapstructure:"debate"`
	Models  ModelsConfig  `mapstructure:"models"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// DebateConfig controls the shape of a debate run
type DebateConfig struct {
	// Rounds is the number of critique/fact-check/synthesis rounds (default: 3)
	Rounds int `mapstructure:"rounds"`
	// StageTimeoutSeconds bounds a single provider call (default: 300)
	StageTimeoutSeconds int `mapstructure:"stage_timeout_seconds"`
	// MaxTokens is the completion token budget per provider call (default: 8192)
	MaxTokens int64 `mapstructure:"max_tokens"`
	// CritiqueLogLimit caps the accumulated critique log in characters before
	// compression kicks in (default: 4000)
	CritiqueLogLimit int `mapstructure:"critique_log_limit"`
}

// ModelsConfig selects the model for each debate role
type ModelsConfig struct {
	// Critique is the Anthropic model used for the critique stage and the
	// final synthesis (default: "claude-sonnet-4-20250514")
	Critique string `mapstructure:"critique"`
	// FactCheck is the Perplexity model used for the fact-check stage
	// (default: "sonar-pro")
	FactCheck string `mapstructure:"fact_check"`
	// Synthesis is the OpenAI model used for the per-round synthesis stage
	// (default: "gpt-4o")
	Synthesis string `mapstructure:"synthesis"`
}

// RetryConfig controls retry behavior for transient provider failures
type RetryConfig struct {
	// MaxAttempts is the total number of tries per stage call, including the
	// first (default: 3)
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialBackoffSeconds is the delay before the first retry; later
	// retries double it (default: 2)
	InitialBackoffSeconds int `mapstructure:"initial_backoff_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// ServerConfig controls the REST API server
type ServerConfig struct {
	// Addr is the listen address for `debate serve` (default: ":8080")
	Addr string `mapstructure:"addr"`
	// ShutdownTimeoutSeconds bounds graceful shutdown (default: 10)
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// PathsConfig controls where debate runs store their artifacts
type PathsConfig struct {
	// OutputDir is the directory for checkpoints, logs, and the final
	// document. If empty, defaults to "debate_output" under the current
	// directory. Supports ~ for home directory expansion.
	OutputDir string `mapstructure:"output_dir"`
}

// ResolveOutputDir returns the resolved output directory path.
// If OutputDir is empty, it returns the default path relative to baseDir.
// If OutputDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveOutputDir(baseDir string) string {
	if p.OutputDir == "" {
		return filepath.Join(baseDir, "debate_output")
	}

	path := p.OutputDir

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Debate: DebateConfig{
			Rounds:              3,
			StageTimeoutSeconds: 300,
			MaxTokens:           8192,
			CritiqueLogLimit:    4000,
		},
		Models: ModelsConfig{
			Critique:  "claude-sonnet-4-20250514",
			FactCheck: "sonar-pro",
			Synthesis: "gpt-4o",
		},
		Retry: RetryConfig{
			MaxAttempts:           3,
			InitialBackoffSeconds: 2,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
		},
		Paths: PathsConfig{
			OutputDir: "", // Empty means use default: ./debate_output
		},
	}
}

// StageTimeout returns the per-stage timeout as a time.Duration
func (c *DebateConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// InitialBackoff returns the first retry delay as a time.Duration
func (c *RetryConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget as a time.Duration
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Debate defaults
	viper.SetDefault("debate.rounds", defaults.Debate.Rounds)
	viper.SetDefault("debate.stage_timeout_seconds", defaults.Debate.StageTimeoutSeconds)
	viper.SetDefault("debate.max_tokens", defaults.Debate.MaxTokens)
	viper.SetDefault("debate.critique_log_limit", defaults.Debate.CritiqueLogLimit)

	// Model defaults
	viper.SetDefault("models.critique", defaults.Models.Critique)
	viper.SetDefault("models.fact_check", defaults.Models.FactCheck)
	viper.SetDefault("models.synthesis", defaults.Models.Synthesis)

	// Retry defaults
	viper.SetDefault("retry.max_attempts", defaults.Retry.MaxAttempts)
	viper.SetDefault("retry.initial_backoff_seconds", defaults.Retry.InitialBackoffSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.shutdown_timeout_seconds", defaults.Server.ShutdownTimeoutSeconds)

	// Paths defaults
	viper.SetDefault("paths.output_dir", defaults.Paths.OutputDir)
}

// BindEnv wires DEBATE_* environment variables into viper so that, for
// example, DEBATE_MODELS_CRITIQUE overrides models.critique.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "debate")
	}
	// Fall back to ~/.config/debate
	home, err := os.UserHomeDir()
	if err != nil {
		return ".debate"
	}
	return filepath.Join(home, ".config", "debate")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
