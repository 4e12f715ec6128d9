package debate

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/document"
	"github.com/strategyclub/debate/internal/errors"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
	"github.com/strategyclub/debate/internal/stage"
)

// Session owns the state of one debate run: the document as it moves
// through stages, the accumulated critique log, and the round history.
// In-memory state is always rebuildable from the checkpoint store.
type Session struct {
	opts      Options
	providers *provider.Set
	store     *checkpoint.Store
	exec      *stage.Executor
	log       *logging.Logger
	bus       *event.Bus

	// source carries the protected spans of the original input; every
	// stage output is verified against it.
	source *document.Document

	mu        sync.Mutex
	status    Status
	lastRound int
	lastStage stage.Kind
	failure   string

	text        string
	critiqueLog string
	history     []*stage.Result
}

// NewSession validates the input document and prepares a run. Malformed
// protection markers are rejected here, before any provider call.
func NewSession(opts Options, providers *provider.Set, store *checkpoint.Store, exec *stage.Executor, log *logging.Logger, bus *event.Bus) (*Session, error) {
	if opts.RunID == "" {
		opts.RunID = filepath.Base(opts.OutputDir)
	}
	if opts.CritiqueLogLimit <= 0 {
		opts.CritiqueLogLimit = DefaultCritiqueLogLimit
	}
	if log == nil {
		log = logging.NopLogger()
	}
	if bus == nil {
		bus = event.NewBus()
	}

	source, err := document.Extract(opts.Input)
	if err != nil {
		return nil, err
	}

	return &Session{
		opts:      opts,
		providers: providers,
		store:     store,
		exec:      exec,
		log:       log.WithRun(opts.RunID),
		bus:       bus,
		source:    source,
		status:    StatusInProgress,
		text:      opts.Input,
	}, nil
}

// Snapshot returns a point-in-time view of the run. Safe to call from
// other goroutines while the run executes.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Status:      s.status,
		RoundsTotal: s.opts.Rounds,
		LastRound:   s.lastRound,
		LastStage:   string(s.lastStage),
		Error:       s.failure,
	}
}

// Run executes the debate: all remaining rounds in order, then the final
// synthesis. On resume, round history is rebuilt purely from checkpoint
// records before continuing.
func (s *Session) Run(ctx context.Context) (*Outcome, error) {
	startRound, startIndex := 1, 0
	resumed := false

	if s.opts.Resume {
		resume, err := s.store.Scan(s.opts.Rounds)
		if err != nil {
			return nil, s.fail(err)
		}
		if len(resume.History) > 0 {
			s.rebuild(resume)
			startRound, startIndex = resume.NextRound, resume.NextIndex
			resumed = true
			s.log.Info("resumed from checkpoints", "next_round", startRound, "next_stage", string(stage.Order()[startIndex]))
		}
	}

	s.bus.Publish(event.NewRunStartedEvent(s.opts.RunID, s.opts.Rounds, startRound, resumed))

	for round := startRound; round <= s.opts.Rounds; round++ {
		s.bus.Publish(event.NewRoundStartedEvent(s.opts.RunID, round, s.opts.Rounds))

		// All stages of a round share the context compressed at round start.
		critiqueContext := CompressCritiqueLog(s.critiqueLog, s.opts.CritiqueLogLimit)

		for i, kind := range stage.Order() {
			if round == startRound && i < startIndex {
				continue
			}
			if err := s.runStage(ctx, round, kind, critiqueContext); err != nil {
				return nil, s.fail(err)
			}
		}

		s.bus.Publish(event.NewRoundCompletedEvent(s.opts.RunID, round))
	}

	outcome, err := s.Synthesize(ctx)
	if err != nil {
		return nil, s.fail(err)
	}

	s.complete()
	s.bus.Publish(event.NewRunCompletedEvent(s.opts.RunID, s.opts.Rounds, outcome.Register.Count(), outcome.FinalPath))
	return outcome, nil
}

// runStage executes one stage and durably checkpoints its result. The next
// stage never starts before the checkpoint write succeeds.
func (s *Session) runStage(ctx context.Context, round int, kind stage.Kind, critiqueContext string) error {
	res, err := s.exec.Execute(ctx, stage.Request{
		RunID:       s.opts.RunID,
		Round:       round,
		Kind:        kind,
		Provider:    s.providerFor(kind),
		Model:       s.modelFor(kind),
		Input:       s.text,
		CritiqueLog: critiqueContext,
		Source:      s.source,
	})
	if err != nil {
		return errors.NewSessionError("stage failed", err).WithRound(round).WithStage(string(kind))
	}

	if err := s.store.Save(res); err != nil {
		return err
	}
	s.bus.Publish(event.NewStageCompletedEvent(s.opts.RunID, round, string(kind), res.Provider, res.Critique))

	s.mu.Lock()
	s.text = res.Output
	s.critiqueLog += logEntry(round, res.Provider, res.Critique)
	s.history = append(s.history, res)
	s.lastRound, s.lastStage = round, kind
	s.mu.Unlock()

	return nil
}

// rebuild restores session state from a checkpoint scan.
func (s *Session) rebuild(resume *checkpoint.Resume) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = resume.History
	s.critiqueLog = ""
	for _, res := range resume.History {
		s.critiqueLog += logEntry(res.Round, res.Provider, res.Critique)
	}
	if out := resume.LastOutput(); out != "" {
		s.text = out
	}
	if n := len(resume.History); n > 0 {
		last := resume.History[n-1]
		s.lastRound, s.lastStage = last.Round, last.Kind
	}
}

func (s *Session) providerFor(kind stage.Kind) provider.Provider {
	switch kind {
	case stage.FactCheck:
		return s.providers.FactCheck
	case stage.Synthesis:
		return s.providers.Synthesis
	default:
		return s.providers.Critique
	}
}

func (s *Session) modelFor(kind stage.Kind) string {
	switch kind {
	case stage.FactCheck:
		return s.opts.Models.FactCheck
	case stage.Synthesis:
		return s.opts.Models.Synthesis
	default:
		return s.opts.Models.Critique
	}
}

func (s *Session) complete() {
	s.mu.Lock()
	s.status = StatusCompleted
	s.mu.Unlock()
}

// fail records the failure, reporting the furthest completed stage and the
// specific reason. Completed rounds stay valid and resumable.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.status = StatusFailed
	s.failure = err.Error()
	lastRound, lastStage := s.lastRound, s.lastStage
	s.mu.Unlock()

	s.log.Error("run failed", "error", err, "last_round", lastRound, "last_stage", string(lastStage))
	s.bus.Publish(event.NewRunFailedEvent(s.opts.RunID, lastRound, string(lastStage), err.Error()))
	return err
}

// historySnapshot returns a copy of the round history.
func (s *Session) historySnapshot() []*stage.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*stage.Result, len(s.history))
	copy(out, s.history)
	return out
}
