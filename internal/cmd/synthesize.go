package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
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
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <document.md>",
	Short: "Produce the final synthesis from completed checkpoints",
	Long: `Produce the final meta-synthesis for a run whose rounds have all
completed. The round history is read from the checkpoint directory,
so only the final synthesis call is made. Fails if any round stage
is missing from the checkpoints.`,
	Args: cobra.ExactArgs(1),
	RunE: runSynthesize,
}

var (
	synthRounds int
	synthOutput string
)

func init() {
	synthesizeCmd.Flags().IntVarP(&synthRounds, "rounds", "r", 0, "number of rounds the run was started with (default from config)")
	synthesizeCmd.Flags().StringVarP(&synthOutput, "output", "o", "", "checkpoint directory of the completed run")
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if synthRounds > 0 {
		cfg.Debate.Rounds = synthRounds
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input document: %w", err)
	}
	if strings.TrimSpace(string(input)) == "" {
		return fmt.Errorf("input document %s is empty", args[0])
	}

	providers, err := provider.NewSetFromEnv()
	if err != nil {
		return err
	}

	outputDir, err := resolveOutputDir(cfg, synthOutput)
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
		Input:     string(input),
		Rounds:    cfg.Debate.Rounds,
		OutputDir: outputDir,
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

	outcome, err := sess.SynthesizeFromCheckpoints(ctx)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}
