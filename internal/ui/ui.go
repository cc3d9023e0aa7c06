// Package ui renders console output for the migration workflow. All
// output goes to stderr so piped stdout stays clean.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/papapumpkin/modeshift/internal/journal"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	blue    = "\033[34m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

type Printer struct{}

func New() *Printer {
	return &Printer{}
}

func (p *Printer) Banner() {
	fmt.Fprintln(os.Stderr, bold+cyan+"  ╔══════════════════════════════════════╗"+reset)
	fmt.Fprintln(os.Stderr, bold+cyan+"  ║"+reset+bold+"  MODESHIFT  "+dim+"config migration tool"+reset+bold+cyan+"   ║"+reset)
	fmt.Fprintln(os.Stderr, bold+cyan+"  ╚══════════════════════════════════════╝"+reset)
	fmt.Fprintln(os.Stderr)
}

// Stage prints a section divider for an orchestrator stage.
func (p *Printer) Stage(name string) {
	fmt.Fprintf(os.Stderr, "\n"+bold+magenta+"── %s ──"+reset+"\n", name)
}

// Entry prints a single journal entry, tagged by level. It is the echo
// hook wired into the run's journal.
func (p *Printer) Entry(e journal.Entry) {
	ts := dim + e.Timestamp.Format("15:04:05") + reset
	switch e.Level {
	case journal.LevelSuccess:
		fmt.Fprintf(os.Stderr, "%s "+green+"✓"+reset+" %s\n", ts, e.Message)
	case journal.LevelWarning:
		fmt.Fprintf(os.Stderr, "%s "+yellow+"⚠"+reset+" %s\n", ts, e.Message)
	case journal.LevelError:
		fmt.Fprintf(os.Stderr, "%s "+red+"✗"+reset+" %s\n", ts, e.Message)
	default:
		fmt.Fprintf(os.Stderr, "%s "+blue+"·"+reset+" %s\n", ts, e.Message)
	}
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(os.Stderr, dim+"%s"+reset+"\n", msg)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, red+bold+"error: "+reset+"%s\n", msg)
}

// CheckOK and CheckFail render dependency-probe lines for the validate
// command.
func (p *Printer) CheckOK(msg string) {
	fmt.Fprintf(os.Stderr, green+"✓"+reset+" %s\n", msg)
}

func (p *Printer) CheckFail(msg string) {
	fmt.Fprintf(os.Stderr, red+"✗"+reset+" %s\n", msg)
}

// TestOutput echoes a line of integration-test output as it streams in.
func (p *Printer) TestOutput(stream, line string) {
	tag := dim + "[" + stream + "]" + reset
	fmt.Fprintf(os.Stderr, "  %s %s\n", tag, line)
}

// ValidationResult renders the outcome of a registry/contract check.
func (p *Printer) ValidationResult(missingRequired, missingOptional []string) {
	if len(missingRequired) == 0 && len(missingOptional) == 0 {
		fmt.Fprintln(os.Stderr, green+bold+"✓ registry satisfies compatibility contract"+reset)
		return
	}
	for _, name := range missingRequired {
		fmt.Fprintf(os.Stderr, red+bold+"✗ required service missing:"+reset+" %s\n", name)
	}
	for _, name := range missingOptional {
		fmt.Fprintf(os.Stderr, yellow+"⚠ optional service missing:"+reset+" %s\n", name)
	}
}

// MappingTable renders the old → new identifier table.
func (p *Printer) MappingTable(pairs [][2]string) {
	width := 0
	for _, pr := range pairs {
		if len(pr[0]) > width {
			width = len(pr[0])
		}
	}
	for _, pr := range pairs {
		pad := strings.Repeat(" ", width-len(pr[0]))
		fmt.Fprintf(os.Stderr, "  %s%s "+dim+"→"+reset+" "+cyan+"%s"+reset+"\n", pr[0], pad, pr[1])
	}
}

// SummaryData carries the final run summary.
type SummaryData struct {
	BackupDir    string
	UpdatedFiles int
	TestsSkipped bool
	TestsPassed  bool
	ReportPath   string
}

// Summary prints the end-of-run summary. A failed verification is
// flagged prominently even though the migration itself completed.
func (p *Printer) Summary(d SummaryData) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, bold+"migration complete"+reset)
	fmt.Fprintf(os.Stderr, "  backup:  %s\n", d.BackupDir)
	fmt.Fprintf(os.Stderr, "  updated: %d file(s)\n", d.UpdatedFiles)
	switch {
	case d.TestsSkipped:
		fmt.Fprintf(os.Stderr, "  tests:   "+yellow+"skipped"+reset+"\n")
	case d.TestsPassed:
		fmt.Fprintf(os.Stderr, "  tests:   "+green+"passed"+reset+"\n")
	default:
		fmt.Fprintf(os.Stderr, "  tests:   "+red+bold+"FAILED"+reset+" — verify before relying on the migrated config\n")
	}
	fmt.Fprintf(os.Stderr, "  report:  %s\n", d.ReportPath)
}
