package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "debate.rounds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDebate()...)
	errors = append(errors, c.validateModels()...)
	errors = append(errors, c.validateRetry()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

// validateDebate validates the DebateConfig
func (c *Config) validateDebate() []ValidationError {
	var errors []ValidationError

	const minRounds = 1
	const maxRounds = 20

	if c.Debate.Rounds < minRounds {
		errors = append(errors, ValidationError{
			Field:   "debate.rounds",
			Value:   c.Debate.Rounds,
			Message: fmt.Sprintf("must be at least %d", minRounds),
		})
	}
	if c.Debate.Rounds > maxRounds {
		errors = append(errors, ValidationError{
			Field:   "debate.rounds",
			Value:   c.Debate.Rounds,
			Message: fmt.Sprintf("exceeds maximum of %d", maxRounds),
		})
	}

	if c.Debate.StageTimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "debate.stage_timeout_seconds",
			Value:   c.Debate.StageTimeoutSeconds,
			Message: "must be positive",
		})
	}

	if c.Debate.MaxTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "debate.max_tokens",
			Value:   c.Debate.MaxTokens,
			Message: "must be positive",
		})
	}

	// The critique log needs enough headroom to keep round headers and
	// dissent lines intact after compression
	const minCritiqueLogLimit = 500
	if c.Debate.CritiqueLogLimit < minCritiqueLogLimit {
		errors = append(errors, ValidationError{
			Field:   "debate.critique_log_limit",
			Value:   c.Debate.CritiqueLogLimit,
			Message: fmt.Sprintf("must be at least %d characters", minCritiqueLogLimit),
		})
	}

	return errors
}

// validateModels validates the ModelsConfig
func (c *Config) validateModels() []ValidationError {
	var errors []ValidationError

	models := []struct {
		field string
		value string
	}{
		{"models.critique", c.Models.Critique},
		{"models.fact_check", c.Models.FactCheck},
		{"models.synthesis", c.Models.Synthesis},
	}
	for _, m := range models {
		if strings.TrimSpace(m.value) == "" {
			errors = append(errors, ValidationError{
				Field:   m.field,
				Value:   m.value,
				Message: "cannot be empty",
			})
		}
	}

	return errors
}

// validateRetry validates the RetryConfig
func (c *Config) validateRetry() []ValidationError {
	var errors []ValidationError

	const maxAttemptsLimit = 10

	if c.Retry.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "retry.max_attempts",
			Value:   c.Retry.MaxAttempts,
			Message: "must be at least 1 (the first try counts)",
		})
	}
	if c.Retry.MaxAttempts > maxAttemptsLimit {
		errors = append(errors, ValidationError{
			Field:   "retry.max_attempts",
			Value:   c.Retry.MaxAttempts,
			Message: fmt.Sprintf("exceeds maximum of %d", maxAttemptsLimit),
		})
	}

	if c.Retry.InitialBackoffSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.initial_backoff_seconds",
			Value:   c.Retry.InitialBackoffSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Server.Addr) == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "cannot be empty",
		})
	}

	if c.Server.ShutdownTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.shutdown_timeout_seconds",
			Value:   c.Server.ShutdownTimeoutSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if c.Paths.OutputDir != "" {
		path := c.Paths.OutputDir

		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "paths.output_dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "paths.output_dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}
