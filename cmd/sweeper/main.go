package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/showcase/internal/app"
	"github.com/templui/showcase/internal/config"
	"github.com/templui/showcase/internal/logger"
)

// opener builds the application the commands run against. The commands
// close what it returns.
type opener func(ctx context.Context) (*app.App, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], openApp, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, open opener, out io.Writer) int {
	rootCmd := newRootCmd(open, out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		slog.Error("sweeper failed", "error", err)
		logger.Flush()
		return 1
	}
	logger.Flush()
	return 0
}

func newRootCmd(open opener, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sweeper",
		Short:         "Reclaim uploads that no entity claimed within the grace period",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), open, func(a *app.App) error {
				result, err := a.Sweeper.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(out, map[string]int{"reclaimedCount": result.Reclaimed})
			})
		},
	}

	// audit
	var dryRun bool
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Delete stored objects that have no registry entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), open, func(a *app.App) error {
				result, err := a.Auditor.Run(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				return writeJSON(out, result)
			})
		},
	}
	auditCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report unregistered objects without deleting them")
	rootCmd.AddCommand(auditCmd)

	return rootCmd
}

// openApp loads the environment config. Logs go to stderr so stdout carries
// only the JSON result.
func openApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	slog.SetDefault(logger.New(os.Stderr, cfg.IsDevelopment(), cfg.SentryDSN))

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

func withApp(ctx context.Context, open opener, fn func(a *app.App) error) error {
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	return fn(a)
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
