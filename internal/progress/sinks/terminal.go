package sinks

import (
	"fmt"
	"io"
	"sync"

	"github.com/JakeFAU/linkrot/internal/progress"
)

// Terminal renders a single-line check counter ("checked 12/40") on w. It is
// a synchronous progress.Emitter: each call only formats a short line under a
// mutex, so the checker is never held up by buffering.
type Terminal struct {
	mu   sync.Mutex
	w    io.Writer
	last int64
}

// NewTerminal returns a Terminal writing to w; a nil writer discards output.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = io.Discard
	}
	return &Terminal{w: w}
}

// Emit implements progress.Emitter.
func (t *Terminal) Emit(evt progress.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt.Stage {
	case progress.StageBatchStart:
		t.last = 0
		fmt.Fprintf(t.w, "\rchecked 0/%d", evt.Total)
	case progress.StageCheckDone:
		// completions can arrive out of order from the pool
		if evt.Done <= t.last {
			return
		}
		t.last = evt.Done
		fmt.Fprintf(t.w, "\rchecked %d/%d", evt.Done, evt.Total)
	case progress.StageBatchDone:
		fmt.Fprintf(t.w, "\rchecked %d/%d\n", evt.Done, evt.Total)
	}
}
