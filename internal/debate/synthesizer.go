package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/strategyclub/debate/internal/document"
	"github.com/strategyclub/debate/internal/errors"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/stage"
)

// kindFinal labels the meta-synthesis call in logs and events. It is not a
// round stage and is never checkpointed as one.
const kindFinal stage.Kind = "final"

const systemFinal = `You are a meta-synthesis moderator. You receive a strategy document that was revised over several rounds by three AI systems (Claude, Perplexity, ChatGPT), together with the full critique log.

Your task:
1. Produce a final, clean strategy document in Markdown.
   - Remove all meta commentary and reviewer notes.
   - The document should read as if written by a single expert.
2. End the document with a section "` + DissentSectionHeading + `".
   - List every point where the AI systems held different positions that could not be reconciled.
   - Format per entry:
     **Topic:** [description]
     - **Claude's position:** [...]
     - **Perplexity's position:** [...]
     - **ChatGPT's position:** [...]
     - **Recommendation:** [recommendation for the human decision]
3. If no genuine dissent points exist, write: "All three systems converged on a shared position."

IMPORTANT: Content between ` + document.StartMarker + ` and ` + document.EndMarker + ` must appear unchanged in the final document (without the markers themselves).`

const finalCorrection = `Your previous reply altered protected content. Every region that was between ` +
	document.StartMarker + ` and ` + document.EndMarker +
	` in the input must appear byte for byte in the final document. Produce the final document again.`

func finalUserPrompt(text, fullLog string) string {
	return fmt.Sprintf("Final document text after all rounds:\n\n%s\n\n---\n\nFull critique log:\n\n%s", text, fullLog)
}

// Synthesize produces the final document and dissent register from the
// session's current document state and full critique log. The call goes to
// the critique-capable provider. A failure here is fatal for the run but
// leaves every round checkpoint intact, so the final step can be re-run
// alone from stored history.
func (s *Session) Synthesize(ctx context.Context) (*Outcome, error) {
	s.bus.Publish(event.NewSynthesisStartedEvent(s.opts.RunID))
	s.log.Info("final synthesis started")

	req := stage.Request{
		RunID:    s.opts.RunID,
		Round:    s.opts.Rounds,
		Kind:     kindFinal,
		Provider: s.providers.Critique,
		Model:    s.opts.Models.Critique,
	}

	raw, err := s.exec.Submit(ctx, req, systemFinal, finalUserPrompt(s.text, s.critiqueLog))
	if err != nil {
		return nil, errors.NewSessionError("final synthesis failed", err)
	}
	final := strings.TrimSpace(raw)

	if vErr := s.source.Verify(final); vErr != nil {
		s.log.Warn("final document altered a protected region, re-prompting", "error", vErr)

		raw, err = s.exec.Submit(ctx, req, systemFinal,
			finalUserPrompt(s.text, s.critiqueLog)+"\n\n---\n\n"+finalCorrection)
		if err != nil {
			return nil, errors.NewSessionError("final synthesis failed", err)
		}
		final = strings.TrimSpace(raw)

		if vErr = s.source.Verify(final); vErr != nil {
			var violation *errors.ViolationError
			if errors.As(vErr, &violation) {
				return nil, violation.WithStage(string(kindFinal))
			}
			return nil, vErr
		}
	}

	register := ParseDissentRegister(final)

	path, err := s.store.WriteFinal(final)
	if err != nil {
		return nil, err
	}

	s.log.Info("final synthesis completed", "dissent_entries", register.Count(), "path", path)
	s.bus.Publish(event.NewSynthesisCompletedEvent(s.opts.RunID, register.Count()))

	return &Outcome{
		FinalDocument: final,
		Register:      register,
		FinalPath:     path,
		History:       s.historySnapshot(),
	}, nil
}

// SynthesizeFromCheckpoints re-runs only the final synthesis from stored
// round history. Every requested round must already be fully checkpointed.
func (s *Session) SynthesizeFromCheckpoints(ctx context.Context) (*Outcome, error) {
	resume, err := s.store.Scan(s.opts.Rounds)
	if err != nil {
		return nil, s.fail(err)
	}
	if !resume.Done {
		return nil, s.fail(errors.Wrapf(errors.ErrNothingToResume,
			"round history incomplete: round %d %s missing",
			resume.NextRound, stage.Order()[resume.NextIndex]))
	}

	s.rebuild(resume)

	outcome, err := s.Synthesize(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	s.complete()
	s.bus.Publish(event.NewRunCompletedEvent(s.opts.RunID, s.opts.Rounds, outcome.Register.Count(), outcome.FinalPath))
	return outcome, nil
}
