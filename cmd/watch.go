package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/modeshift/internal/config"
	"github.com/papapumpkin/modeshift/internal/plan"
	"github.com/papapumpkin/modeshift/internal/registry"
	"github.com/papapumpkin/modeshift/internal/ui"
	"github.com/papapumpkin/modeshift/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the registry whenever it or the plan changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		printer := ui.New()

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

		w, err := watch.New([]string{cfg.RegistryPath, cfg.PlanPath})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		ctx, cancel := setupSignalContext(printer)
		defer cancel()

		revalidate := func() {
			reg, err := registry.Load(cfg.RegistryPath)
			if err != nil {
				printer.Error(fmt.Sprintf("registry unreadable, treating as empty: %v", err))
				reg = registry.Empty(cfg.RegistryPath)
			}
			result := registry.Validate(reg, p.Contract)
			printer.ValidationResult(result.MissingRequired, result.MissingOptional)
		}

		printer.Info(fmt.Sprintf("watching %s and %s (ctrl-c to stop)", cfg.RegistryPath, cfg.PlanPath))
		revalidate()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ch, ok := <-w.Changes:
				if !ok {
					return nil
				}
				if ch.File == filepath.Clean(cfg.PlanPath) {
					if np, nerrs, err := plan.Load(cfg.PlanPath); err == nil && len(nerrs) == 0 {
						p = np
					} else {
						printer.Error("plan changed but no longer parses; keeping previous contract")
					}
				}
				printer.Info(fmt.Sprintf("%s changed", ch.File))
				revalidate()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
