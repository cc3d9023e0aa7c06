package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/modeshift/internal/backup"
	"github.com/papapumpkin/modeshift/internal/migrate"
	"github.com/papapumpkin/modeshift/internal/ui"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <backup-dir>",
	Short: "Restore every file from a backup snapshot",
	Long: "Rollback restores the whole backup: every file recorded in the backup's\n" +
		"manifest is copied back over its original path. Partial restoration is not\n" +
		"supported.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := ui.New()
		autoYes, _ := cmd.Flags().GetBool("yes")

		rec, err := backup.LoadRecord(args[0])
		if err != nil {
			return err
		}

		confirm := &migrate.StdinConfirmer{In: os.Stdin, Out: os.Stderr, AutoYes: autoYes}
		ok, err := confirm.Confirm(fmt.Sprintf("Restore %d file(s) from %s?", len(rec.SourceFiles), rec.Path))
		if err != nil {
			return err
		}
		if !ok {
			printer.Info("rollback aborted")
			os.Exit(1)
		}

		if err := backup.Restore(rec); err != nil {
			return err
		}
		printer.CheckOK(fmt.Sprintf("restored %d file(s) from %s", len(rec.SourceFiles), rec.Path))
		return nil
	},
}

func init() {
	rollbackCmd.Flags().BoolP("yes", "y", false, "restore without asking")
	rootCmd.AddCommand(rollbackCmd)
}
