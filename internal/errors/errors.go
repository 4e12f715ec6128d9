// Package errors provides centralized error definitions and error handling
// utilities for the debate orchestrator. It defines domain-specific errors,
// error constructors with context wrapping, and classification helpers that
// the stage executor uses to decide retry behavior.
//
// # Error Types
//
// Domain-specific errors represent failures from specific subsystems:
//   - MarkerError: malformed protection markers in an input document
//   - ProviderError: a failed AI provider call, classified by kind
//   - ViolationError: protected content altered by a stage's output
//   - CheckpointError: checkpoint store I/O failure (fatal for the run)
//   - SessionError: debate session lifecycle failures
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewProviderError(errors.ProviderRateLimit, "perplexity", cause)
//	err := errors.NewMarkerError("unbalanced markers", errors.ErrUnbalancedMarkers).WithOffset(341)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrUnbalancedMarkers) { ... }
//
//	var provErr *errors.ProviderError
//	if errors.As(err, &provErr) && provErr.Kind == errors.ProviderAuth { ... }
//
//	if errors.IsRetryable(err) { ... }
//
// # Classification
//
// Retryable errors are transient provider failures (timeout, rate limit).
// Auth and malformed-response provider errors are terminal and must
// propagate immediately. Checkpoint errors are always fatal: a run that
// cannot persist stage output cannot guarantee resumability.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo Severity = iota
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that abort the whole run.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Marker-related sentinel errors
var (
	// ErrUnbalancedMarkers indicates a LOCKED_START without a matching
	// LOCKED_END or vice versa.
	ErrUnbalancedMarkers = New("unbalanced protection markers")
	// ErrNestedMarkers indicates a LOCKED_START inside an open protected region.
	ErrNestedMarkers = New("nested protection markers")
)

// Checkpoint-related sentinel errors
var (
	// ErrCheckpointNotFound indicates no checkpoint exists for the requested
	// round and stage.
	ErrCheckpointNotFound = New("checkpoint not found")
	// ErrCheckpointCorrupted indicates a checkpoint file could not be decoded.
	ErrCheckpointCorrupted = New("checkpoint data corrupted")
)

// Session-related sentinel errors
var (
	// ErrMissingCredential indicates a required provider credential is absent
	// from the environment.
	ErrMissingCredential = New("missing provider credential")
	// ErrNothingToResume indicates resume was requested but the output
	// directory holds no usable checkpoints.
	ErrNothingToResume = New("nothing to resume")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// DebateError is the base interface for all orchestrator errors. It extends
// the standard error interface with classification methods.
type DebateError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

// Is checks if this error matches the target via its cause chain.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity { return e.severity }

func (e *baseError) IsRetryable() bool { return e.retryable }

// -----------------------------------------------------------------------------
// MarkerError
// -----------------------------------------------------------------------------

// MarkerError reports malformed protection markers in a source document.
// It is fatal and is raised before any provider call is made.
//
// Example:
//
//	err := errors.NewMarkerError("second start marker before end", errors.ErrNestedMarkers).WithOffset(812)
type MarkerError struct {
	baseError
	Offset int // byte offset of the offending marker, -1 if unknown
}

// NewMarkerError creates a new MarkerError.
func NewMarkerError(message string, cause error) *MarkerError {
	return &MarkerError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
		Offset: -1,
	}
}

// WithOffset records the byte offset of the offending marker.
func (e *MarkerError) WithOffset(offset int) *MarkerError {
	e.Offset = offset
	return e
}

// Error returns the formatted error message.
func (e *MarkerError) Error() string {
	prefix := "marker error"
	if e.Offset >= 0 {
		prefix = fmt.Sprintf("marker error [offset=%d]", e.Offset)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *MarkerError) Is(target error) bool {
	if _, ok := target.(*MarkerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// ProviderError
// -----------------------------------------------------------------------------

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

const (
	// ProviderTimeout indicates the call exceeded its deadline. Retryable.
	ProviderTimeout ProviderErrorKind = "timeout"
	// ProviderRateLimit indicates the provider rejected the call due to rate
	// limiting or overload. Retryable.
	ProviderRateLimit ProviderErrorKind = "rate_limit"
	// ProviderAuth indicates rejected or missing credentials. Terminal.
	ProviderAuth ProviderErrorKind = "auth"
	// ProviderMalformedResponse indicates the provider returned a response the
	// adapter could not use. Terminal.
	ProviderMalformedResponse ProviderErrorKind = "malformed_response"
)

// retryable reports whether the kind represents a transient condition.
func (k ProviderErrorKind) retryable() bool {
	return k == ProviderTimeout || k == ProviderRateLimit
}

// ProviderError represents a failed AI provider call.
//
// Example:
//
//	err := errors.NewProviderError(errors.ProviderRateLimit, "perplexity", cause).WithModel("sonar-pro")
type ProviderError struct {
	baseError
	Kind     ProviderErrorKind
	Provider string
	Model    string
}

// NewProviderError creates a new ProviderError for the named provider.
func NewProviderError(kind ProviderErrorKind, provider string, cause error) *ProviderError {
	return &ProviderError{
		baseError: baseError{
			message:   string(kind),
			cause:     cause,
			severity:  SeverityError,
			retryable: kind.retryable(),
		},
		Kind:     kind,
		Provider: provider,
	}
}

// WithModel adds the model identifier to the error context.
func (e *ProviderError) WithModel(model string) *ProviderError {
	e.Model = model
	return e
}

// Error returns the formatted error message.
func (e *ProviderError) Error() string {
	var parts []string
	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	prefix := fmt.Sprintf("provider error (%s)", e.Kind)
	if len(parts) > 0 {
		prefix = fmt.Sprintf("provider error (%s) [%s]", e.Kind, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is checks if this error matches the target. A target *ProviderError with an
// empty Kind matches any provider error; a non-empty Kind must match exactly.
func (e *ProviderError) Is(target error) bool {
	if other, ok := target.(*ProviderError); ok {
		return other.Kind == "" || other.Kind == e.Kind
	}
	if e.Kind == ProviderTimeout && errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// ViolationError
// -----------------------------------------------------------------------------

// ViolationError reports that a stage's output altered or dropped protected
// content. It carries warning severity: the provider call itself succeeded,
// but the stage ignored an explicit preservation instruction. The executor
// treats the first violation per stage as retryable (one correction
// re-prompt) before surfacing it as a stage failure.
type ViolationError struct {
	baseError
	SpanIndex int    // index of the first violated span
	Stage     string // stage kind that produced the output
}

// NewViolationError creates a new ViolationError for the given span index.
func NewViolationError(spanIndex int) *ViolationError {
	return &ViolationError{
		baseError: baseError{
			message:  "protected content altered",
			severity: SeverityWarning,
		},
		SpanIndex: spanIndex,
	}
}

// WithStage adds the stage kind to the error context.
func (e *ViolationError) WithStage(stage string) *ViolationError {
	e.Stage = stage
	return e
}

// Error returns the formatted error message.
func (e *ViolationError) Error() string {
	parts := []string{fmt.Sprintf("span=%d", e.SpanIndex)}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}
	return fmt.Sprintf("protected content violation [%s]: %s", strings.Join(parts, ", "), e.message)
}

// Is checks if this error matches the target.
func (e *ViolationError) Is(target error) bool {
	if _, ok := target.(*ViolationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// CheckpointError
// -----------------------------------------------------------------------------

// CheckpointError represents a checkpoint store I/O failure. It is always
// fatal: a run that cannot persist a completed stage must abort rather than
// continue with state that would be lost on crash.
type CheckpointError struct {
	baseError
	Path string
}

// NewCheckpointError creates a new CheckpointError.
func NewCheckpointError(message string, cause error) *CheckpointError {
	return &CheckpointError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
		},
	}
}

// WithPath adds the affected file path to the error context.
func (e *CheckpointError) WithPath(path string) *CheckpointError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *CheckpointError) Error() string {
	prefix := "checkpoint error"
	if e.Path != "" {
		prefix = fmt.Sprintf("checkpoint error [path=%s]", e.Path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *CheckpointError) Is(target error) bool {
	if _, ok := target.(*CheckpointError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// SessionError
// -----------------------------------------------------------------------------

// SessionError represents errors related to debate session lifecycle.
//
// Example:
//
//	err := errors.NewSessionError("stage failed", cause).WithRound(2).WithStage("factcheck")
type SessionError struct {
	baseError
	Round int    // 1-based round index, 0 if unknown
	Stage string // stage kind, empty if unknown
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithRound adds the round index to the error context.
func (e *SessionError) WithRound(round int) *SessionError {
	e.Round = round
	return e
}

// WithStage adds the stage kind to the error context.
func (e *SessionError) WithStage(stage string) *SessionError {
	e.Stage = stage
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	var parts []string
	if e.Round > 0 {
		parts = append(parts, fmt.Sprintf("round=%d", e.Round))
	}
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}

	prefix := "session error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("session error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// TimeoutError
// -----------------------------------------------------------------------------

// TimeoutError represents an operation that timed out.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:   operation,
			severity:  SeverityWarning,
			retryable: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition that
// may succeed on retry. Provider timeout and rate-limit errors are retryable;
// auth and malformed-response errors are not. Checkpoint errors are never
// retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var debateErr DebateError
	if As(err, &debateErr) {
		return debateErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// GetSeverity returns the severity level of the error. Unknown errors default
// to SeverityError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var debateErr DebateError
	if As(err, &debateErr) {
		return debateErr.Severity()
	}

	return SeverityError
}

// ProviderKindOf returns the kind of the ProviderError in err's chain, or an
// empty kind if err does not wrap a ProviderError.
func ProviderKindOf(err error) ProviderErrorKind {
	var provErr *ProviderError
	if As(err, &provErr) {
		return provErr.Kind
	}
	return ""
}

// IsFatal returns true if the error must abort the whole run rather than the
// current stage. Checkpoint errors are the only fatal class below the session
// level.
func IsFatal(err error) bool {
	return GetSeverity(err) >= SeverityCritical
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
