package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/modeshift/internal/config"
	"github.com/papapumpkin/modeshift/internal/plan"
	"github.com/papapumpkin/modeshift/internal/registry"
	"github.com/papapumpkin/modeshift/internal/ui"
	"github.com/papapumpkin/modeshift/internal/verify"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check preconditions and the registry contract without migrating",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		printer := ui.New()
		ok := true

		runner := &verify.Runner{Command: cfg.TestRunner, EntryPath: cfg.TestEntry}
		if err := runner.Validate(); err != nil {
			printer.CheckFail(fmt.Sprintf("test runtime: %v", err))
			ok = false
		} else {
			printer.CheckOK(fmt.Sprintf("test runtime %q found", cfg.TestRunner))
		}

		p, verrs, err := plan.Load(cfg.PlanPath)
		switch {
		case err != nil:
			printer.CheckFail(fmt.Sprintf("plan: %v", err))
			ok = false
		case len(verrs) > 0:
			for _, e := range verrs {
				printer.CheckFail(fmt.Sprintf("plan: %v", e))
			}
			ok = false
		default:
			printer.CheckOK(fmt.Sprintf("plan %s parsed (%d mapping(s))", cfg.PlanPath, len(p.Mappings)))
		}

		if p != nil && len(verrs) == 0 {
			reg, err := registry.Load(cfg.RegistryPath)
			if err != nil {
				printer.CheckFail(fmt.Sprintf("registry: %v", err))
				reg = registry.Empty(cfg.RegistryPath)
			} else {
				printer.CheckOK(fmt.Sprintf("registry %s parsed (%d service(s))", cfg.RegistryPath, len(reg.Services)))
			}
			result := registry.Validate(reg, p.Contract)
			printer.ValidationResult(result.MissingRequired, result.MissingOptional)
			if !result.RequiredSatisfied {
				ok = false
			}
		}

		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
