package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strategyclub/debate/internal/checkpoint"
	"github.com/strategyclub/debate/internal/config"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/stage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress for a run",
	Long: `Display which stages of a debate run have completed, based on the
checkpoint files in the output directory. With --follow, watches the
directory and reprints whenever a new checkpoint lands, which is
useful for observing a run from a second terminal.`,
	RunE: runStatus,
}

var (
	statusRounds int
	statusOutput string
	statusFollow bool
)

func init() {
	statusCmd.Flags().IntVarP(&statusRounds, "rounds", "r", 0, "number of rounds the run was started with (default from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "", "checkpoint directory of the run")
	statusCmd.Flags().BoolVarP(&statusFollow, "follow", "f", false, "watch the directory and reprint on new checkpoints")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rounds := cfg.Debate.Rounds
	if statusRounds > 0 {
		rounds = statusRounds
	}

	outputDir, err := resolveOutputDir(cfg, statusOutput)
	if err != nil {
		return err
	}

	store := checkpoint.NewStore(outputDir, logging.NopLogger())
	if err := printProgress(store, rounds); err != nil {
		return err
	}
	if !statusFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return checkpoint.Watch(ctx, outputDir, func(string) {
		fmt.Println()
		if err := printProgress(store, rounds); err != nil {
			fmt.Fprintf(os.Stderr, "status: %v\n", err)
		}
	})
}

func printProgress(store *checkpoint.Store, rounds int) error {
	resume, err := store.Scan(rounds)
	if err != nil {
		return err
	}

	fmt.Printf("Checkpoints: %s\n", store.Dir())
	if len(resume.History) == 0 {
		fmt.Println("No completed stages")
		return nil
	}

	for _, res := range resume.History {
		fmt.Printf("[round %d] %-10s %s (%s) at %s\n",
			res.Round, res.Kind, res.Provider, res.Model,
			res.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	if resume.Done {
		if final, err := store.ReadFinal(); err == nil {
			fmt.Printf("\nAll %d round(s) complete, final document: %d bytes\n", rounds, len(final))
		} else {
			fmt.Printf("\nAll %d round(s) complete, awaiting final synthesis\n", rounds)
		}
		return nil
	}

	next := stage.Order()[resume.NextIndex]
	fmt.Printf("\nNext stage: round %d %s\n", resume.NextRound, next)
	return nil
}
