// Package verify runs the external integration-test entry point and
// interprets its exit code as the pass/fail verification signal for the
// migrated configuration.
package verify

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one integration-test run.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Passed   bool
}

// Runner spawns the test entry point as a child process.
type Runner struct {
	// Command is the runtime used to execute the entry point, e.g. "node".
	Command string
	// EntryPath is the test entry script. If it does not exist the run
	// is skipped.
	EntryPath string
	// WorkDir is inherited by the child process.
	WorkDir string
	// OnLine, if set, receives each output line as it arrives. stream is
	// "stdout" or "stderr".
	OnLine func(stream, line string)
}

// Validate checks that the configured runtime is available on the host.
func (r *Runner) Validate() error {
	if _, err := exec.LookPath(r.Command); err != nil {
		return fmt.Errorf("test runtime %q not found: %w", r.Command, err)
	}
	return nil
}

// Run executes the entry point and captures its output. A nil Outcome
// with a nil error means the entry point does not exist and tests were
// skipped. stdout and stderr are drained concurrently while the process
// runs; the outcome is built only after both streams have closed and
// the process has exited.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	if _, err := os.Stat(r.EntryPath); os.IsNotExist(err) {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, r.Command, r.EntryPath)
	cmd.Dir = r.WorkDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s %s: %w", r.Command, r.EntryPath, err)
	}

	// Drain both streams concurrently so a chatty child can never fill
	// a pipe and deadlock before exiting.
	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return r.drain("stdout", stdout, &outBuf) })
	g.Go(func() error { return r.drain("stderr", stderr, &errBuf) })

	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if drainErr != nil {
		return nil, fmt.Errorf("draining test output: %w", drainErr)
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("running tests: %w", waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Outcome{
		ExitCode: exitCode,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Passed:   exitCode == 0,
	}, nil
}

// drain copies one stream line by line into buf, echoing each line to
// OnLine as it arrives.
func (r *Runner) drain(stream string, src io.Reader, buf *bytes.Buffer) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if r.OnLine != nil {
			r.OnLine(stream, line)
		}
	}
	return scanner.Err()
}
