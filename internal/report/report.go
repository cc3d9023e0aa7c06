// Package report renders the migration report: a single markdown
// document written inside the backup directory. The report is the run's
// durable audit artifact; a run without one is not complete.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/papapumpkin/modeshift/internal/backup"
	"github.com/papapumpkin/modeshift/internal/journal"
	"github.com/papapumpkin/modeshift/internal/plan"
	"github.com/papapumpkin/modeshift/internal/registry"
	"github.com/papapumpkin/modeshift/internal/rewrite"
	"github.com/papapumpkin/modeshift/internal/verify"
)

// FileName is the report document written under the backup path.
const FileName = "migration-report.md"

// Data aggregates everything the report renders.
type Data struct {
	GeneratedAt  time.Time
	Backup       *backup.Record
	Mappings     []plan.Mapping
	RegistryPath string
	Validation   registry.Result
	Outcomes     []rewrite.Outcome
	UpdatedFiles int
	Test         *verify.Outcome // nil means the tests did not run
	TestNote     string          // set when Test is nil: why not
	Entries      []journal.Entry
}

// Write renders the report and writes it under d.Backup.Path. The
// report path is returned. A write failure here is fatal to the run.
func Write(d Data) (string, error) {
	path := filepath.Join(d.Backup.Path, FileName)
	if err := os.WriteFile(path, []byte(render(d)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func render(d Data) string {
	var b strings.Builder

	b.WriteString("# Migration Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Mode Mappings\n\n")
	b.WriteString("| Old identifier | New identifier |\n")
	b.WriteString("|---|---|\n")
	for _, m := range d.Mappings {
		fmt.Fprintf(&b, "| `%s` | `%s` |\n", m.Old, m.New)
	}
	b.WriteString("\n")

	b.WriteString("## Registry Validation\n\n")
	fmt.Fprintf(&b, "Registry: `%s`\n\n", d.RegistryPath)
	if d.Validation.RequiredSatisfied {
		b.WriteString("All required services present.\n")
	} else {
		for _, name := range d.Validation.MissingRequired {
			fmt.Fprintf(&b, "- **missing required service:** `%s`\n", name)
		}
	}
	for _, name := range d.Validation.MissingOptional {
		fmt.Fprintf(&b, "- missing optional service: `%s`\n", name)
	}
	b.WriteString("\n")

	b.WriteString("## Rewritten Files\n\n")
	fmt.Fprintf(&b, "%d file(s) updated.\n\n", d.UpdatedFiles)
	for _, o := range d.Outcomes {
		if o.Matched {
			fmt.Fprintf(&b, "- `%s` — %d replacement(s)\n", o.Path, o.OccurrencesReplaced)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Integration Tests\n\n")
	switch {
	case d.Test == nil && d.TestNote != "":
		fmt.Fprintf(&b, "Tests %s.\n", d.TestNote)
	case d.Test == nil:
		b.WriteString("Tests skipped: no test entry point found.\n")
	case d.Test.Passed:
		b.WriteString("Tests **passed** (exit code 0).\n")
	default:
		fmt.Fprintf(&b, "Tests **FAILED** (exit code %d). The migration completed, but the new configuration did not verify.\n", d.Test.ExitCode)
	}
	if d.Test != nil && strings.TrimSpace(d.Test.Stderr) != "" {
		b.WriteString("\n```\n")
		b.WriteString(strings.TrimRight(d.Test.Stderr, "\n"))
		b.WriteString("\n```\n")
	}
	b.WriteString("\n")

	b.WriteString("## Rollback\n\n")
	fmt.Fprintf(&b, "A full backup of every mutated input lives in `%s`.\n", d.Backup.Path)
	b.WriteString("To roll the migration back, restore it with:\n\n")
	fmt.Fprintf(&b, "    modeshift rollback %s\n\n", d.Backup.Path)
	fmt.Fprintf(&b, "or copy the files listed in `%s` back over their original paths by hand.\n\n", backup.ManifestName)

	b.WriteString("## Log\n\n")
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "- `%s` [%s] %s\n", e.Timestamp.Format("15:04:05"), e.Level, e.Message)
	}

	return b.String()
}
