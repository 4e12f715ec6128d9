// Package internal contains integration tests that verify the packages work
// together correctly: the event bus feeding the progress UI, and checkpoints
// surviving across session instances.
package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/debate"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
	"github.com/strategyclub/debate/internal/stage"
	"github.com/strategyclub/debate/internal/tui"
)

func framed(doc string) string {
	return stage.DocumentFrame + "\n" + doc + "\n" + stage.CritiqueFrame + "\n- [CHANGED] adjusted\n" + stage.EndFrame
}

func stubProviders(finalDoc string) *provider.Set {
	passthrough := func(name string) provider.Provider {
		return provider.Func{ProviderName: name, Fn: func(_ context.Context, req provider.Request) (string, error) {
			if strings.Contains(req.System, "meta-synthesis moderator") {
				return finalDoc, nil
			}
			return framed(name + " revision"), nil
		}}
	}
	return &provider.Set{
		Critique:  passthrough("claude"),
		FactCheck: passthrough("perplexity"),
		Synthesis: passthrough("chatgpt"),
	}
}

func newSession(t *testing.T, dir string, bus *event.Bus, rounds int, resume bool) *debate.Session {
	t.Helper()
	log := logging.NopLogger()
	store := checkpoint.NewStore(dir, log)
	exec := stage.NewExecutor(stage.Config{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		Timeout:        5 * time.Second,
		MaxTokens:      1024,
	}, log, bus)
	sess, err := debate.NewSession(debate.Options{
		Input:     "# Strategy\n\nInitial draft.",
		Rounds:    rounds,
		OutputDir: dir,
		Resume:    resume,
		Models:    debate.Models{Critique: "c", FactCheck: "f", Synthesis: "s"},
	}, stubProviders("# Final\n\nAll three systems converged on a shared position."), store, exec, log, bus)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

// TestRunFeedsProgressSubscriber verifies that a full run publishes the
// event sequence the progress UI consumes, through the same subscription
// the TUI uses.
func TestRunFeedsProgressSubscriber(t *testing.T) {
	bus := event.NewBus()
	events, cancel := tui.Subscribe(bus)
	defer cancel()

	sess := newSession(t, t.TempDir(), bus, 2, false)
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	cancel()

	counts := make(map[string]int)
	for ev := range events {
		counts[ev.EventType()]++
	}

	want := map[string]int{
		"run.started":         1,
		"round.started":       2,
		"stage.completed":     6,
		"round.completed":     2,
		"synthesis.started":   1,
		"synthesis.completed": 1,
		"run.completed":       1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s events = %d, want %d", typ, counts[typ], n)
		}
	}
	if counts["run.failed"] != 0 {
		t.Errorf("unexpected run.failed events: %d", counts["run.failed"])
	}
}

// TestResumeAcrossSessionInstances runs one round's checkpoints through a
// first session, then resumes with a fresh session, store, and bus, the
// way a restarted process would.
func TestResumeAcrossSessionInstances(t *testing.T) {
	dir := t.TempDir()

	first := newSession(t, dir, event.NewBus(), 2, false)
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A fresh process resuming a finished run should redo nothing and
	// still produce the final document.
	second := newSession(t, dir, event.NewBus(), 2, true)
	outcome, err := second.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.History) != 6 {
		t.Errorf("history = %d entries, want 6", len(outcome.History))
	}
	if !strings.Contains(outcome.FinalDocument, "converged") {
		t.Errorf("final document = %q", outcome.FinalDocument)
	}
}
