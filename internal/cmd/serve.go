package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strategyclub/debate/internal/config"
	"github.com/strategyclub/debate/internal/logging"
	"github.com/strategyclub/debate/internal/provider"
	"github.com/strategyclub/debate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the REST API server. Debates are started with POST /api/debates
and run in the background; clients poll for status and fetch the
result when the run completes.

Set ` + web.EnvAPIToken + ` to require a bearer token on /api routes.
Without it the server accepts unauthenticated requests and is meant
for local use only.`,
	RunE: runServe,
}

var (
	serveAddr   string
	serveOutput string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVarP(&serveOutput, "output", "o", "", "base directory for per-job output directories")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	providers, err := provider.NewSetFromEnv()
	if err != nil {
		return err
	}

	baseDir, err := resolveOutputDir(cfg, serveOutput)
	if err != nil {
		return err
	}

	log := logging.NopLogger()
	if cfg.Logging.Enabled {
		log, err = logging.NewLogger(baseDir, cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer log.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on %s\n", cfg.Server.Addr)
	return web.NewServer(cfg, providers, baseDir, log).Run(ctx)
}
