package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("default config should validate cleanly, got: %v", ValidationErrors(errs))
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Debate.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", cfg.Debate.Rounds)
	}
	if cfg.Debate.MaxTokens != 8192 {
		t.Errorf("MaxTokens = %d, want 8192", cfg.Debate.MaxTokens)
	}
	if cfg.Debate.StageTimeout() != 5*time.Minute {
		t.Errorf("StageTimeout = %v, want 5m", cfg.Debate.StageTimeout())
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.InitialBackoff() != 2*time.Second {
		t.Errorf("InitialBackoff = %v, want 2s", cfg.Retry.InitialBackoff())
	}
	if cfg.Models.Critique == "" || cfg.Models.FactCheck == "" || cfg.Models.Synthesis == "" {
		t.Error("all default models must be set")
	}
}

func TestLoadFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("debate.rounds", 5)
	viper.Set("models.synthesis", "gpt-4o-mini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Debate.Rounds != 5 {
		t.Errorf("Rounds = %d, want 5", cfg.Debate.Rounds)
	}
	if cfg.Models.Synthesis != "gpt-4o-mini" {
		t.Errorf("Synthesis = %s", cfg.Models.Synthesis)
	}
	// Untouched sections keep their defaults
	if cfg.Debate.MaxTokens != 8192 {
		t.Errorf("MaxTokens = %d, want default 8192", cfg.Debate.MaxTokens)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("debate.rounds", 0)
	viper.Set("retry.max_attempts", 99)

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "debate.rounds") {
		t.Errorf("error should name debate.rounds: %v", err)
	}
	if !strings.Contains(err.Error(), "retry.max_attempts") {
		t.Errorf("error should name retry.max_attempts: %v", err)
	}
}

func TestBindEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	BindEnv()
	t.Setenv("DEBATE_DEBATE_ROUNDS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Debate.Rounds != 7 {
		t.Errorf("Rounds = %d, want 7 from env", cfg.Debate.Rounds)
	}
}

func TestResolveOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		outputDir string
		baseDir   string
		want      string
	}{
		{
			name:      "empty uses default under base",
			outputDir: "",
			baseDir:   "/work",
			want:      filepath.Join("/work", "debate_output"),
		},
		{
			name:      "relative resolved against base",
			outputDir: "runs/q3",
			baseDir:   "/work",
			want:      filepath.Join("/work", "runs", "q3"),
		},
		{
			name:      "absolute kept as is",
			outputDir: "/var/debates",
			baseDir:   "/work",
			want:      "/var/debates",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PathsConfig{OutputDir: tt.outputDir}
			if got := p.ResolveOutputDir(tt.baseDir); got != tt.want {
				t.Errorf("ResolveOutputDir = %s, want %s", got, tt.want)
			}
		})
	}
}
