package stage

import (
	"context"
	"time"

	"github.com/strategyclub/debate/internal/document"
	"github.com/strategyclub/debate/internal/errors"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
)

// Config bounds a single stage execution.
type Config struct {
	// MaxAttempts is the total number of provider calls for one prompt,
	// including the first. Only transient failures consume extra attempts.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry; each further
	// retry doubles it.
	InitialBackoff time.Duration
	// Timeout bounds one provider call. Zero disables the per-call bound.
	Timeout time.Duration
	// MaxTokens is the completion budget passed to the provider.
	MaxTokens int64
}

// DefaultConfig returns the standard execution bounds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		Timeout:        5 * time.Minute,
		MaxTokens:      8192,
	}
}

// Request describes one stage invocation.
type Request struct {
	RunID    string
	Round    int
	Kind     Kind
	Provider provider.Provider
	Model    string

	// Input is the document as of the end of the previous stage
	// (or the original input for round 1's critique).
	Input string
	// CritiqueLog is the accumulated, possibly compressed, critique
	// history fed to the provider for context.
	CritiqueLog string
	// Source carries the protected spans of the original input document.
	// Every stage's output is verified against them.
	Source *document.Document
}

// Executor runs stages against providers with retry and verification.
type Executor struct {
	cfg Config
	log *logging.Logger
	bus *event.Bus

	// wait is replaceable in tests so retries do not sleep for real.
	wait func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor. A nil logger logs nowhere, a nil bus
// publishes nowhere.
func NewExecutor(cfg Config, log *logging.Logger, bus *event.Bus) *Executor {
	if log == nil {
		log = logging.NopLogger()
	}
	if bus == nil {
		bus = event.NewBus()
	}
	return &Executor{
		cfg:  cfg,
		log:  log,
		bus:  bus,
		wait: waitCtx,
	}
}

// Execute runs one stage: prompt, submit with bounded retry, parse the
// framed reply, and verify protected regions. A verification failure is
// re-prompted once with an explicit correction before it surfaces as an
// error; the provider call having succeeded does not make the stage
// successful.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	log := e.log.WithRun(req.RunID).WithRound(req.Round).WithStage(string(req.Kind))
	log.Info("stage started", "provider", req.Provider.Name(), "model", req.Model)
	e.bus.Publish(event.NewStageStartedEvent(req.RunID, req.Round, string(req.Kind), req.Provider.Name(), req.Model))

	system := systemPrompt(req.Kind)

	raw, err := e.submit(ctx, req, system, userPrompt(req.CritiqueLog, req.Input), log)
	if err != nil {
		return nil, err
	}

	doc, critique, framed := ParseFramed(raw)
	if !framed {
		log.Warn("framed reply format not recognized, using raw reply as document")
	}

	if req.Source != nil {
		if vErr := req.Source.Verify(doc); vErr != nil {
			log.Warn("protected region altered, re-prompting with correction", "error", vErr)

			raw, err = e.submit(ctx, req, system, correctionPrompt(req.CritiqueLog, req.Input), log)
			if err != nil {
				return nil, err
			}
			doc, critique, _ = ParseFramed(raw)

			if vErr = req.Source.Verify(doc); vErr != nil {
				var violation *errors.ViolationError
				if errors.As(vErr, &violation) {
					return nil, violation.WithStage(string(req.Kind))
				}
				return nil, vErr
			}
		}
	}

	return &Result{
		Round:       req.Round,
		Kind:        req.Kind,
		Provider:    req.Provider.Name(),
		Model:       req.Model,
		Input:       req.Input,
		Output:      doc,
		Critique:    critique,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// Submit sends an arbitrary prompt pair through the executor's retry
// policy, without framed-reply parsing or span verification. The final
// synthesis call uses it; its reply is a plain document.
func (e *Executor) Submit(ctx context.Context, req Request, system, user string) (string, error) {
	log := e.log.WithRun(req.RunID).WithStage(string(req.Kind))
	return e.submit(ctx, req, system, user, log)
}

// submit performs the provider call with bounded retry on transient
// failures. Auth and malformed-response errors return on the first attempt.
func (e *Executor) submit(ctx context.Context, req Request, system, user string, log *logging.Logger) (string, error) {
	preq := provider.Request{
		System:    system,
		User:      user,
		Model:     req.Model,
		MaxTokens: e.cfg.MaxTokens,
	}

	backoff := e.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		out, err := e.call(ctx, req.Provider, preq)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt == e.cfg.MaxAttempts {
			break
		}

		log.Warn("transient provider failure, retrying",
			"attempt", attempt, "backoff", backoff.String(), "error", err)
		e.bus.Publish(event.NewStageRetryingEvent(req.RunID, req.Round, string(req.Kind), attempt, err.Error()))

		if werr := e.wait(ctx, backoff); werr != nil {
			return "", werr
		}
		backoff *= 2
	}

	return "", lastErr
}

// call bounds a single provider request with the configured timeout.
func (e *Executor) call(ctx context.Context, p provider.Provider, preq provider.Request) (string, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	return p.Submit(ctx, preq)
}

// waitCtx sleeps for d unless the context ends first.
func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
