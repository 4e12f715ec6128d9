// Package provider wraps each external AI service behind a uniform
// capability: submit a prompt, receive text. The debate pipeline never talks
// to a provider API directly; it holds a Set binding the three debate roles
// (critique, fact-check, synthesis) to adapters, so a fourth provider or a
// reordered pipeline requires no orchestrator change.
//
// Adapters classify failures as ProviderError kinds (timeout, rate_limit,
// auth, malformed_response) and never retry internally. Retry policy belongs
// to the stage executor, which knows which kinds are transient.
//
// Credentials are read from the process environment at construction time.
// Key formats are never parsed or validated here: a bad key surfaces as a
// terminal auth error on the first call.
package provider

import (
	"context"
	"os"
	"strings"

	"github.com/strategyclub/debate/internal/errors"
)

// Environment variables holding provider credentials.
const (
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvPerplexityKey = "PERPLEXITY_API_KEY"
)

// Well-known provider names.
const (
	NameClaude     = "claude"
	NamePerplexity = "perplexity"
	NameChatGPT    = "chatgpt"
)

// Request is a single prompt submission.
type Request struct {
	// System is the role instruction for the provider.
	System string
	// User is the prompt body (document plus prior critique context).
	User string
	// Model selects the provider-specific model identifier.
	Model string
	// MaxTokens bounds the response length. Zero means the adapter default.
	MaxTokens int64
}

// Provider is the uniform capability over one AI service. Each call is a
// single blocking request/response bounded by the context deadline.
// Implementations classify failures as *errors.ProviderError and do not
// retry.
type Provider interface {
	// Name returns the provider identity recorded in stage results.
	Name() string

	// Submit sends the request and returns the response text.
	Submit(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Provider interface. Used by tests to
// stub providers with scripted responses.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, req Request) (string, error)
}

// Name returns the stub's provider name.
func (f Func) Name() string { return f.ProviderName }

// Submit invokes the wrapped function.
func (f Func) Submit(ctx context.Context, req Request) (string, error) {
	return f.Fn(ctx, req)
}

// Set binds the three debate roles to concrete providers. The reference
// rotation is Claude for critique, Perplexity for fact-check, and ChatGPT
// for structural synthesis; the final meta-synthesis reuses the critique
// provider.
type Set struct {
	Critique  Provider
	FactCheck Provider
	Synthesis Provider
}

// MissingCredentials returns the names of required environment variables that
// are unset or blank. An empty result means all three providers can be
// constructed.
func MissingCredentials() []string {
	var missing []string
	for _, key := range []string{EnvAnthropicKey, EnvOpenAIKey, EnvPerplexityKey} {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// NewSetFromEnv constructs the reference provider rotation from environment
// credentials. All missing credentials are reported at once so the user can
// fix their environment in one pass.
func NewSetFromEnv() (*Set, error) {
	if missing := MissingCredentials(); len(missing) > 0 {
		return nil, errors.Wrapf(errors.ErrMissingCredential, "%s", strings.Join(missing, ", "))
	}

	return &Set{
		Critique:  NewAnthropic(os.Getenv(EnvAnthropicKey)),
		FactCheck: NewPerplexity(os.Getenv(EnvPerplexityKey)),
		Synthesis: NewOpenAI(os.Getenv(EnvOpenAIKey)),
	}, nil
}

// classifyStatus maps an HTTP status code to a provider error kind.
// 429 and the 5xx overload family are transient; 401/403 are terminal.
func classifyStatus(status int) errors.ProviderErrorKind {
	switch {
	case status == 401 || status == 403:
		return errors.ProviderAuth
	case status == 429 || status == 500 || status == 502 || status == 503 || status == 529:
		return errors.ProviderRateLimit
	case status == 408 || status == 504:
		return errors.ProviderTimeout
	default:
		return errors.ProviderMalformedResponse
	}
}

// classifyTransportErr converts a transport-level failure into the error the
// adapter should return. Deadlines and network failures become retryable
// timeouts; an explicit cancellation propagates as-is so the session can
// distinguish user aborts from provider trouble.
func classifyTransportErr(ctx context.Context, name string, err error) error {
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	return errors.NewProviderError(errors.ProviderTimeout, name, err)
}
