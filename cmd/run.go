package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/modeshift/internal/backup"
	"github.com/papapumpkin/modeshift/internal/config"
	"github.com/papapumpkin/modeshift/internal/journal"
	"github.com/papapumpkin/modeshift/internal/migrate"
	"github.com/papapumpkin/modeshift/internal/plan"
	"github.com/papapumpkin/modeshift/internal/ui"
	"github.com/papapumpkin/modeshift/internal/verify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full migration workflow",
	RunE:  runMigration,
}

func init() {
	runCmd.Flags().BoolP("yes", "y", false, "accept all confirmations without asking")
	rootCmd.AddCommand(runCmd)
}

func runMigration(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	autoYes, _ := cmd.Flags().GetBool("yes")

	printer := ui.New()
	printer.Banner()

	p, verrs, err := plan.Load(cfg.PlanPath)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		for _, e := range verrs {
			printer.Error(e.Error())
		}
		return fmt.Errorf("plan %s is invalid", cfg.PlanPath)
	}

	jr := journal.New(printer.Entry)
	orch := &migrate.Orchestrator{
		Plan:    p,
		Config:  cfg,
		Journal: jr,
		UI:      printer,
		Confirm: &migrate.StdinConfirmer{In: os.Stdin, Out: os.Stderr, AutoYes: autoYes},
		Backup:  &backup.Manager{Root: cfg.BackupRoot, Journal: jr},
		Runner: &verify.Runner{
			Command:   cfg.TestRunner,
			EntryPath: cfg.TestEntry,
			WorkDir:   cfg.WorkDir,
		},
	}

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	if _, err := orch.Run(ctx); err != nil {
		if errors.Is(err, migrate.ErrAborted) {
			printer.Info(err.Error())
			os.Exit(1)
		}
		return err
	}
	// Test failure is reported in the summary and report, not via the
	// exit code: the migration itself completed.
	return nil
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		printer.Info("\nshutting down...")
		cancel()
	}()
	return ctx, cancel
}
