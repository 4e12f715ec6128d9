// Package checkpoint persists per-stage debate artifacts to the run's
// output directory.
//
// Every completed stage is written as one JSON file before the next stage
// starts, so a crash or abort loses at most the in-flight stage. The store
// is the sole source of truth on resume: session history is rebuilt from
// the files, never assumed fresh.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strategyclub/debate/internal/errors"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/stage"
)

const (
	// filePattern names one stage checkpoint by round and stage kind, so
	// resume scanning is order-independent.
	filePattern = "round_%d_%s.json"

	// FinalFileName holds the synthesized document plus dissent register.
	FinalFileName = "final_document.md"
)

// Store reads and writes stage checkpoints under a single output directory.
// A run owns its output directory exclusively; concurrent runs must use
// distinct directories.
type Store struct {
	dir string
	log *logging.Logger
}

// NewStore creates a Store for the given output directory. The directory is
// created lazily on the first write.
func NewStore(dir string, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Store{dir: dir, log: log}
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the checkpoint file path for a round and stage kind.
func (s *Store) Path(round int, kind stage.Kind) string {
	return filepath.Join(s.dir, fmt.Sprintf(filePattern, round, kind))
}

// FinalPath returns the path of the final document file.
func (s *Store) FinalPath() string {
	return filepath.Join(s.dir, FinalFileName)
}

// Save durably persists one stage result. It must succeed before the
// orchestrator proceeds to the next stage; a write failure is fatal because
// the run can no longer guarantee resumability.
func (s *Store) Save(res *stage.Result) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.NewCheckpointError("create output directory", err).WithPath(s.dir)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.NewCheckpointError("encode stage result", err)
	}

	path := s.Path(res.Round, res.Kind)
	if err := atomicWriteFile(path, data, 0644); err != nil {
		return errors.NewCheckpointError("write checkpoint", err).WithPath(path)
	}

	s.log.Debug("checkpoint written", "path", path, "round", res.Round, "stage", string(res.Kind))
	return nil
}

// Load reads and validates one stage checkpoint. A missing file reports
// ErrCheckpointNotFound; an unreadable or inconsistent record reports
// ErrCheckpointCorrupted.
func (s *Store) Load(round int, kind stage.Kind) (*stage.Result, error) {
	path := s.Path(round, kind)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCheckpointNotFound, "round %d %s", round, kind)
		}
		return nil, errors.NewCheckpointError("read checkpoint", err).WithPath(path)
	}

	var res stage.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrapf(errors.ErrCheckpointCorrupted, "%s: %v", path, err)
	}

	// The record must describe the slot it was loaded from.
	if res.Round != round || res.Kind != kind || res.CompletedAt.IsZero() {
		return nil, errors.Wrapf(errors.ErrCheckpointCorrupted,
			"%s: record is for round %d %s", path, res.Round, res.Kind)
	}

	return &res, nil
}

// WriteFinal persists the final document and returns its path.
func (s *Store) WriteFinal(content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.NewCheckpointError("create output directory", err).WithPath(s.dir)
	}
	path := s.FinalPath()
	if err := atomicWriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.NewCheckpointError("write final document", err).WithPath(path)
	}
	return path, nil
}

// ReadFinal returns the previously written final document.
func (s *Store) ReadFinal() (string, error) {
	data, err := os.ReadFile(s.FinalPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCheckpointNotFound, "final document")
		}
		return "", errors.NewCheckpointError("read final document", err).WithPath(s.FinalPath())
	}
	return string(data), nil
}

// Resume describes where a resumed run continues.
type Resume struct {
	// History holds the contiguous prefix of completed stage results in
	// execution order.
	History []*stage.Result
	// NextRound and NextIndex locate the first missing stage. NextIndex
	// indexes into the fixed stage order within NextRound.
	NextRound int
	NextIndex int
	// Done reports that every stage of every requested round is present.
	Done bool
}

// LastOutput returns the output of the furthest completed stage, which is
// the input document state for the next stage. Empty when nothing completed.
func (r *Resume) LastOutput() string {
	if len(r.History) == 0 {
		return ""
	}
	return r.History[len(r.History)-1].Output
}

// Scan walks rounds 1..totalRounds in execution order and returns the
// resume point at the first missing or invalid checkpoint. A corrupted
// record is treated as the gap: the run re-executes that stage rather than
// trusting a record downstream stages may never have seen.
func (s *Store) Scan(totalRounds int) (*Resume, error) {
	resume := &Resume{NextRound: 1, NextIndex: 0}

	for round := 1; round <= totalRounds; round++ {
		for i, kind := range stage.Order() {
			res, err := s.Load(round, kind)
			if err != nil {
				if errors.Is(err, errors.ErrCheckpointCorrupted) {
					s.log.Warn("ignoring corrupted checkpoint", "round", round, "stage", string(kind), "error", err)
				} else if !errors.Is(err, errors.ErrCheckpointNotFound) {
					return nil, err
				}
				resume.NextRound = round
				resume.NextIndex = i
				return resume, nil
			}
			resume.History = append(resume.History, res)
		}
	}

	resume.NextRound = totalRounds + 1
	resume.NextIndex = 0
	resume.Done = true
	return resume, nil
}
