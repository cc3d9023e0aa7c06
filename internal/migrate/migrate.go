// Package migrate sequences the migration workflow: confirm, back up,
// validate, rewrite, test, report. Stages run strictly in order; no
// stage starts before the previous stage's effects are complete, and
// once a backup exists the orchestrator makes a best effort to finish
// and report rather than leave the tree in an undocumented state.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/papapumpkin/modeshift/internal/backup"
	"github.com/papapumpkin/modeshift/internal/config"
	"github.com/papapumpkin/modeshift/internal/journal"
	"github.com/papapumpkin/modeshift/internal/plan"
	"github.com/papapumpkin/modeshift/internal/registry"
	"github.com/papapumpkin/modeshift/internal/report"
	"github.com/papapumpkin/modeshift/internal/rewrite"
	"github.com/papapumpkin/modeshift/internal/ui"
	"github.com/papapumpkin/modeshift/internal/verify"
)

// ErrAborted is returned when the run stops before mutating anything:
// a failed precondition, a declined confirmation, or a backup failure.
var ErrAborted = errors.New("migration aborted")

// Result summarizes a completed run.
type Result struct {
	Backup       *backup.Record
	Validation   registry.Result
	Outcomes     []rewrite.Outcome
	UpdatedFiles int
	Test         *verify.Outcome // nil when the tests did not run
	TestNote     string          // set when Test is nil: why not
	ReportPath   string
}

// Orchestrator wires the migration components into a single
// user-confirmed workflow.
type Orchestrator struct {
	Plan    *plan.Plan
	Config  config.Config
	Journal *journal.Journal
	UI      *ui.Printer
	Confirm Confirmer
	Backup  *backup.Manager
	Runner  *verify.Runner

	state State
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	if s != StateDone && s != StateAborted {
		o.UI.Stage(strings.ReplaceAll(s.String(), "_", " "))
	}
}

// Run executes the workflow. It returns ErrAborted (possibly wrapped)
// when the run stops cleanly before mutation, and a nil error on
// completion — including the case where the integration tests failed,
// which is reported rather than returned.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	// Preconditions: the plan document already parsed (that is how
	// o.Plan was built); the test runtime must be executable.
	o.setState(StateCheckingPreconditions)
	if err := o.Runner.Validate(); err != nil {
		o.state = StateAborted
		return nil, fmt.Errorf("%w: %v", ErrAborted, err)
	}
	o.Journal.Info("preconditions satisfied (%d mapping(s), %d scan root(s))",
		len(o.Plan.Mappings), len(o.Plan.Roots))

	o.setState(StateAwaitingConfirmation)
	o.UI.MappingTable(mappingPairs(o.Plan.Mappings))
	ok, err := o.Confirm.Confirm("Proceed with the migration? A backup will be taken first.")
	if err != nil {
		o.state = StateAborted
		return nil, fmt.Errorf("%w: %v", ErrAborted, err)
	}
	if !ok {
		o.state = StateAborted
		return nil, ErrAborted
	}

	rec, err := o.backUp()
	if err != nil {
		o.state = StateAborted
		return nil, fmt.Errorf("%w: %v", ErrAborted, err)
	}

	// Mirror the journal to disk now that a durable location exists.
	sink, err := journal.NewSink(filepath.Join(rec.Path, "events.jsonl"))
	if err != nil {
		o.Journal.Warn("journal sink unavailable: %v", err)
	} else {
		o.Journal.AttachSink(sink)
		defer sink.Close()
	}

	validation, err := o.validateRegistry()
	if err != nil {
		o.state = StateAborted
		return nil, err
	}

	o.setState(StateRewriting)
	rw := &rewrite.Rewriter{Journal: o.Journal}
	outcomes, updated := rw.Run(o.Plan.Mappings, o.Plan.Roots)
	o.Journal.Info("rewrite complete: %d file(s) updated", updated)

	testOutcome, testNote := o.runTests(ctx)

	o.setState(StateReporting)
	reportPath, err := report.Write(report.Data{
		GeneratedAt:  time.Now(),
		Backup:       rec,
		Mappings:     o.Plan.Mappings,
		RegistryPath: o.Config.RegistryPath,
		Validation:   validation,
		Outcomes:     outcomes,
		UpdatedFiles: updated,
		Test:         testOutcome,
		TestNote:     testNote,
		Entries:      o.Journal.Entries(),
	})
	if err != nil {
		// The one fatal condition after mutation: a run without its
		// audit artifact cannot be considered complete.
		return nil, err
	}
	o.Journal.Success("report written to %s", reportPath)

	o.state = StateDone
	o.UI.Summary(ui.SummaryData{
		BackupDir:    rec.Path,
		UpdatedFiles: updated,
		TestsSkipped: testOutcome == nil,
		TestsPassed:  testOutcome != nil && testOutcome.Passed,
		ReportPath:   reportPath,
	})

	return &Result{
		Backup:       rec,
		Validation:   validation,
		Outcomes:     outcomes,
		UpdatedFiles: updated,
		Test:         testOutcome,
		TestNote:     testNote,
		ReportPath:   reportPath,
	}, nil
}

// backUp snapshots the registry document and every scan root. Failure
// here is fatal: no later stage may run without a safety net.
func (o *Orchestrator) backUp() (*backup.Record, error) {
	o.setState(StateBackingUp)
	sources := []string{o.Config.RegistryPath}
	for _, r := range o.Plan.Roots {
		sources = append(sources, r.Dir)
	}
	rec, err := o.Backup.Create(sources)
	if err != nil {
		return nil, err
	}
	o.Journal.Success("backup created at %s", rec.Path)
	return rec, nil
}

// validateRegistry checks the registry against the contract. Missing
// required services pause for a second confirmation instead of aborting
// unconditionally.
func (o *Orchestrator) validateRegistry() (registry.Result, error) {
	o.setState(StateValidatingConfig)

	reg, err := registry.Load(o.Config.RegistryPath)
	if err != nil {
		// The document's absence is a data condition, not a crash:
		// every required service will simply report missing.
		o.Journal.Warn("registry unreadable, treating as empty: %v", err)
		reg = registry.Empty(o.Config.RegistryPath)
	}

	result := registry.Validate(reg, o.Plan.Contract)
	for _, name := range result.MissingRequired {
		o.Journal.Error("required service missing from registry: %s", name)
	}
	for _, name := range result.MissingOptional {
		o.Journal.Warn("optional service missing from registry: %s", name)
	}
	o.UI.ValidationResult(result.MissingRequired, result.MissingOptional)

	if !result.RequiredSatisfied {
		ok, err := o.Confirm.Confirm("Required services are missing. Continue anyway?")
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		if !ok {
			return result, ErrAborted
		}
		o.Journal.Warn("continuing despite missing required services (user override)")
	}
	return result, nil
}

// runTests executes the integration-test entry point. Every failure
// mode here is soft: the migration still completes and the report
// records what happened. A nil outcome comes with a note saying why
// the tests did not run.
func (o *Orchestrator) runTests(ctx context.Context) (*verify.Outcome, string) {
	o.setState(StateTesting)
	o.Runner.OnLine = o.UI.TestOutput

	outcome, err := o.Runner.Run(ctx)
	if err != nil {
		o.Journal.Warn("integration tests could not run: %v", err)
		return nil, fmt.Sprintf("could not run: %v", err)
	}
	if outcome == nil {
		o.Journal.Warn("test entry point %s not found, skipping tests", o.Runner.EntryPath)
		return nil, fmt.Sprintf("skipped: no test entry point at %s", o.Runner.EntryPath)
	}
	if outcome.Passed {
		o.Journal.Success("integration tests passed")
	} else {
		o.Journal.Warn("integration tests FAILED (exit code %d)", outcome.ExitCode)
	}
	return outcome, ""
}

func mappingPairs(mappings []plan.Mapping) [][2]string {
	pairs := make([][2]string, 0, len(mappings))
	for _, m := range mappings {
		pairs = append(pairs, [2]string{m.Old, m.New})
	}
	return pairs
}
