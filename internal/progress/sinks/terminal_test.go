package sinks

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/linkrot/internal/progress"
)

func TestTerminalRendersMonotonicCounter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Emit(progress.Event{Stage: progress.StageBatchStart, Total: 3})
	term.Emit(progress.Event{Stage: progress.StageCheckDone, Done: 2, Total: 3})
	term.Emit(progress.Event{Stage: progress.StageCheckDone, Done: 1, Total: 3})
	term.Emit(progress.Event{Stage: progress.StageCheckDone, Done: 3, Total: 3})
	term.Emit(progress.Event{Stage: progress.StageRemediation, Outcome: "skipped"})
	term.Emit(progress.Event{Stage: progress.StageBatchDone, Done: 3, Total: 3})

	require.Equal(t, "\rchecked 0/3\rchecked 2/3\rchecked 3/3\rchecked 3/3\n", buf.String())
}

func TestTerminalNilWriter(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		NewTerminal(nil).Emit(progress.Event{Stage: progress.StageBatchStart, Total: 1})
	})
}
