package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/config"
	"github.com/strategyclub/debate/internal/debate"
	"github.com/strategyclub/debate/internal/event"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
	"github.com/strategyclub/debate/internal/stage"
	"github.com/strategyclub/debate/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <document.md>",
	Short: "Run a debate over a strategy document",
	Long: `Run a full debate over the given markdown document.

Each round sends the document through critique, fact-checking, and
synthesis. Every completed stage is checkpointed to the output
directory before the next one starts, so a crashed or interrupted run
can be resumed with --resume.

Examples:
  # Three rounds (the default) over strategy.md
  debate run strategy.md

  # Five rounds into a custom output directory
  debate run strategy.md --rounds 5 --output ./out

  # Pick up an interrupted run where it stopped
  debate run strategy.md --resume --output ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runRounds  int
	runOutput  string
	runResume  bool
	runNoTUI   bool
	runVerbose bool
	runContext string
)

func init() {
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "number of debate rounds (default from config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output directory for checkpoints and the final document")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "resume from existing checkpoints in the output directory")
	runCmd.Flags().BoolVar(&runNoTUI, "no-tui", false, "disable the progress UI even on a terminal")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print each stage's critique notes as it completes")
	runCmd.Flags().StringVar(&runContext, "context", "", "file with supplementary context appended to the document")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runRounds > 0 {
		cfg.Debate.Rounds = runRounds
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input document: %w", err)
	}
	text := string(input)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("input document %s is empty", args[0])
	}
	if runContext != "" {
		extra, err := os.ReadFile(runContext)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		text += "\n\n---\n\n**Supplementary context:**\n" + string(extra)
	}

	providers, err := provider.NewSetFromEnv()
	if err != nil {
		return err
	}

	outputDir, err := resolveOutputDir(cfg, runOutput)
	if err != nil {
		return err
	}

	log := logging.NopLogger()
	if cfg.Logging.Enabled {
		log, err = logging.NewLogger(outputDir, cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer log.Close()
	}

	bus := event.NewBus()
	store := checkpoint.NewStore(outputDir, log)
	exec := stage.NewExecutor(stage.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff(),
		Timeout:        cfg.Debate.StageTimeout(),
		MaxTokens:      cfg.Debate.MaxTokens,
	}, log, bus)

	sess, err := debate.NewSession(debate.Options{
		Input:     text,
		Rounds:    cfg.Debate.Rounds,
		OutputDir: outputDir,
		Resume:    runResume,
		Models: debate.Models{
			Critique:  cfg.Models.Critique,
			FactCheck: cfg.Models.FactCheck,
			Synthesis: cfg.Models.Synthesis,
		},
		CritiqueLogLimit: cfg.Debate.CritiqueLogLimit,
	}, providers, store, exec, log, bus)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tui.IsInteractive() && !runNoTUI && !runVerbose {
		return runWithProgress(ctx, sess, bus)
	}

	if runVerbose {
		id := bus.Subscribe("stage.completed", printStageNotes)
		defer bus.Unsubscribe(id)
	}

	outcome, err := sess.Run(ctx)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

// runWithProgress drives the session in the background while the
// progress UI consumes the event stream on the terminal.
func runWithProgress(ctx context.Context, sess *debate.Session, bus *event.Bus) error {
	events, cancel := tui.Subscribe(bus)
	defer cancel()

	type runResult struct {
		outcome *debate.Outcome
		err     error
	}
	done := make(chan runResult, 1)
	go func() {
		outcome, err := sess.Run(ctx)
		done <- runResult{outcome, err}
		cancel()
	}()

	if err := tui.Run(events); err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	res := <-done
	if res.err != nil {
		return res.err
	}
	printOutcome(res.outcome)
	return nil
}

// printStageNotes prints the opening lines of each stage's critique.
func printStageNotes(ev event.Event) {
	sc, ok := ev.(event.StageCompletedEvent)
	if !ok {
		return
	}
	fmt.Print(stageNotes(sc))
}

// stageNotes formats the first five critique lines and summarizes the rest.
func stageNotes(sc event.StageCompletedEvent) string {
	lines := strings.Split(strings.TrimSpace(sc.Critique), "\n")
	if len(lines) > 5 {
		rest := len(lines) - 5
		lines = append(lines[:5], fmt.Sprintf("... (%d more)", rest))
	}
	return fmt.Sprintf("[round %d] %s (%s):\n  %s\n", sc.Round, sc.Stage, sc.Provider, strings.Join(lines, "\n  "))
}

func printOutcome(outcome *debate.Outcome) {
	fmt.Printf("Final document: %s\n", outcome.FinalPath)
	if n := outcome.Register.Count(); n > 0 {
		fmt.Printf("Dissent register: %d unresolved topic(s)\n", n)
	} else {
		fmt.Println("Dissent register: all systems converged")
	}
}

func resolveOutputDir(cfg *config.Config, flag string) (string, error) {
	if flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", fmt.Errorf("failed to resolve output directory: %w", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cfg.Paths.ResolveOutputDir(cwd), nil
}
