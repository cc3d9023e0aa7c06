package migrate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks a yes/no question and returns the answer. Tests inject
// their own implementation.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// StdinConfirmer reads answers from In, one line per question. EOF is
// treated as "no". AutoYes accepts every question without asking, for
// --yes runs and non-interactive environments.
type StdinConfirmer struct {
	In      io.Reader
	Out     io.Writer
	AutoYes bool

	scanner *bufio.Scanner
}

func (c *StdinConfirmer) Confirm(prompt string) (bool, error) {
	if c.AutoYes {
		fmt.Fprintf(c.Out, "%s [y/N] y (auto-accepted)\n", prompt)
		return true, nil
	}

	fmt.Fprintf(c.Out, "%s [y/N] ", prompt)
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		// EOF: treat as decline.
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(c.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
