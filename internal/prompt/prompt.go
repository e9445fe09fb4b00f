// Package prompt implements remediate.Confirmer for interactive and
// non-interactive runs.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/JakeFAU/linkrot/internal/remediate"
)

var (
	_ remediate.Confirmer = (*Terminal)(nil)
	_ remediate.Confirmer = Decline{}
)

// Terminal asks each question on out and reads a one-line answer from in.
// Only "y" or "yes" (any case) confirms; anything else, EOF or a read error
// declines.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal builds a Terminal confirmer.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if out == nil {
		out = io.Discard
	}
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and waits for an answer. The read itself is not
// interruptible; a context canceled before the prompt declines immediately.
func (t *Terminal) Confirm(ctx context.Context, p remediate.Prompt) bool {
	if ctx.Err() != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprint(t.out, p.String()); err != nil {
		return false
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Decline answers no to every prompt so non-interactive runs report without
// mutating the store.
type Decline struct {
	Logger *zap.Logger
}

// Confirm logs the skipped question and returns false.
func (d Decline) Confirm(_ context.Context, p remediate.Prompt) bool {
	if d.Logger != nil {
		d.Logger.Info("non-interactive run, declining remediation",
			zap.String("url", p.URL),
			zap.String("snapshot", p.SnapshotURL),
		)
	}
	return false
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// ForStdio picks the Terminal confirmer when in is a terminal and Decline
// otherwise.
func ForStdio(in *os.File, out io.Writer, logger *zap.Logger) remediate.Confirmer {
	if IsInteractive(in) {
		return NewTerminal(in, out)
	}
	return Decline{Logger: logger}
}
